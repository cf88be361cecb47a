// Package pyruntime resolves a Python interpreter on the search path and
// checks its version against a supported range.
package pyruntime

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/blang/semver"
)

// Candidates are the interpreter names tried, in order, when no explicit
// interpreter path is configured. "py" covers the Windows launcher.
var Candidates = []string{"python3", "python", "py"}

// Interpreter describes a resolved Python runtime.
type Interpreter struct {
	Path    string
	Version semver.Version
}

// Resolve returns the path of the first usable interpreter. An explicit
// non-empty path short-circuits the candidate search.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		path, err := exec.LookPath(explicit)
		if err != nil {
			return "", fmt.Errorf("configured interpreter %q not found: %w", explicit, err)
		}
		return path, nil
	}

	for _, name := range Candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	return "", ErrNotFound
}

// Probe runs the interpreter's --version and parses the reported version.
func Probe(ctx context.Context, path string) (Interpreter, error) {
	// Python 2.x prints the version to stderr, 3.x to stdout.
	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil {
		return Interpreter{}, fmt.Errorf("failed to run %s --version: %w", path, err)
	}

	version, err := ParseVersion(string(out))
	if err != nil {
		return Interpreter{}, err
	}

	return Interpreter{Path: path, Version: version}, nil
}

// ParseVersion extracts the semantic version from "--version" output such
// as "Python 3.11.4". Two-part versions are tolerated and get a zero patch.
func ParseVersion(output string) (semver.Version, error) {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Python") {
		return semver.Version{}, fmt.Errorf("unrecognized version output: %q", strings.TrimSpace(output))
	}

	version, err := semver.ParseTolerant(fields[1])
	if err != nil {
		return semver.Version{}, fmt.Errorf("failed to parse version %q: %w", fields[1], err)
	}

	return version, nil
}

// CheckRange validates version against a semver range expression such as
// ">=3.9.0 <3.13.0". An empty range accepts every version.
func CheckRange(version semver.Version, rangeExpr string) error {
	if rangeExpr == "" {
		return nil
	}

	supported, err := semver.ParseRange(rangeExpr)
	if err != nil {
		return fmt.Errorf("invalid version range %q: %w", rangeExpr, err)
	}

	if !supported(version) {
		return &IncompatibleVersionError{Version: version, Range: rangeExpr}
	}

	return nil
}
