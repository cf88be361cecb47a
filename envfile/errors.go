package envfile

import "fmt"

// ParseError indicates a line in an overlay file that does not conform to
// the KEY=VALUE grammar.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d (%q): %s", e.Line, e.Text, e.Reason)
}
