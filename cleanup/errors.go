package cleanup

import "fmt"

// RuleError indicates a cleanup rule expression could not be compiled.
type RuleError struct {
	Expression string
	Reason     string
	Err        error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("invalid cleanup rule '%s': %s", e.Expression, e.Reason)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}
