package bitfile

import "fmt"

// ParseError indicates that a bitstream file is malformed. Line is 1-based;
// a Line of 0 means the error concerns the file as a whole.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("invalid bitstream: %s", e.Reason)
	}
	return fmt.Sprintf("invalid bitstream: line %d: %s", e.Line, e.Reason)
}
