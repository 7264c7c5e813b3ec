package front

import "fmt"

// SyntaxError is raised when the textual body DSL cannot be parsed or
// lowered: unexpected indentation, an unterminated bracket, an unknown
// statement keyword, or any other shape the grammar does not accept.
type SyntaxError struct {
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("front: %s", e.Reason)
}
