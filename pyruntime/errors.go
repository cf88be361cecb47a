package pyruntime

import (
	"errors"
	"fmt"

	"github.com/blang/semver"
)

// ErrNotFound is returned when no interpreter candidate resolves on the
// search path.
var ErrNotFound = errors.New("no python interpreter found on PATH")

// IncompatibleVersionError indicates the resolved interpreter falls outside
// the supported version range.
type IncompatibleVersionError struct {
	Version semver.Version
	Range   string
}

func (e *IncompatibleVersionError) Error() string {
	return fmt.Sprintf("python %s is not supported (requires %s)", e.Version, e.Range)
}
