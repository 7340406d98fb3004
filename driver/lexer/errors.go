package lexer

import "fmt"

// NoViableAltError reports input that matches no lexical rule in the
// current mode. The stream is left at the offending position; no recovery
// is attempted.
type NoViableAltError struct {
	StartIndex int
	Index      int
	Line       int
	Col        int
	Mode       int
}

func (e *NoViableAltError) Error() string {
	return fmt.Sprintf("%d:%d: no viable alternative at character %d", e.Line, e.Col, e.Index)
}
