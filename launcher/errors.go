package launcher

import (
	"fmt"
	"strings"
)

// RuntimeNotFoundError indicates no Python interpreter could be resolved.
type RuntimeNotFoundError struct {
	Candidates []string
	Err        error
}

func (e *RuntimeNotFoundError) Error() string {
	return fmt.Sprintf("python runtime not found (tried: %s); install Python and make sure it is on PATH",
		strings.Join(e.Candidates, ", "))
}

func (e *RuntimeNotFoundError) Unwrap() error {
	return e.Err
}

// ManifestMissingError indicates the dependency manifest does not exist.
type ManifestMissingError struct {
	Path string
}

func (e *ManifestMissingError) Error() string {
	return fmt.Sprintf("dependency manifest %s not found", e.Path)
}

// InstallError indicates the dependency installer exited non-zero.
type InstallError struct {
	ExitCode int
	Output   string
}

func (e *InstallError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("dependency installation failed with exit code %d: %s", e.ExitCode, e.Output)
	}
	return fmt.Sprintf("dependency installation failed with exit code %d", e.ExitCode)
}

// CredentialError indicates the required token variable is unset and the
// launcher is configured to treat that as fatal.
type CredentialError struct {
	Variable string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("required credential %s is not set; define it in the environment or the overlay file", e.Variable)
}
