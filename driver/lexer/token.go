package lexer

import (
	"fmt"

	"github.com/mi9rem/garnet/atn"
)

const (
	ChannelDefault = 0
	ChannelHidden  = 1
)

// Token is one lexeme. Stop is exclusive; Line and Col locate the first
// character, counting lines from 1 and columns from 0.
type Token struct {
	Type    int
	Channel int
	Start   int
	Stop    int
	Line    int
	Col     int
	Lexeme  string
}

func (t *Token) EOF() bool {
	return t.Type == atn.SymbolEOF
}

func (t *Token) String() string {
	if t.EOF() {
		return fmt.Sprintf("[@%d:%d <EOF>]", t.Line, t.Col)
	}
	return fmt.Sprintf("[@%d:%d %q type=%d]", t.Line, t.Col, t.Lexeme, t.Type)
}
