// Package parser predicts alternatives over a parse network with an
// adaptive two-tier strategy: fast SLL prediction cached in per-decision
// DFAs, with a full-context retry when SLL cannot commit.
package parser

import (
	"github.com/mi9rem/garnet/atn"
	"github.com/mi9rem/garnet/driver/lexer"
)

// TokenStream is random-access token input restricted to the default
// channel.
type TokenStream interface {
	// LA returns the type of the k-th token of lookahead (1-based).
	LA(k int) int
	// LT returns the k-th token of lookahead, or the EOF token past the
	// end.
	LT(k int) *lexer.Token
	// Get returns the token at absolute index i.
	Get(i int) *lexer.Token
	Index() int
	Consume()
	Seek(index int)
	Mark() int
	Release(marker int)
	Size() int
}

// Stream is a slice-backed TokenStream. Off-channel tokens are filtered
// out at construction.
type Stream struct {
	tokens []*lexer.Token
	index  int
}

// NewStream builds a stream from already-lexed tokens. A final EOF token
// is appended when missing.
func NewStream(tokens []*lexer.Token) *Stream {
	var kept []*lexer.Token
	for _, t := range tokens {
		if t.Channel == lexer.ChannelDefault || t.EOF() {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 || !kept[len(kept)-1].EOF() {
		pos := 0
		if len(kept) > 0 {
			pos = kept[len(kept)-1].Stop
		}
		kept = append(kept, &lexer.Token{Type: atn.SymbolEOF, Start: pos, Stop: pos, Line: 1})
	}
	return &Stream{tokens: kept}
}

// NewStreamFromLexer drains l and returns a stream over its tokens.
func NewStreamFromLexer(l *lexer.Lexer) (*Stream, error) {
	var tokens []*lexer.Token
	for {
		t, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
		if t.EOF() {
			return NewStream(tokens), nil
		}
	}
}

func (s *Stream) LA(k int) int {
	return s.LT(k).Type
}

func (s *Stream) LT(k int) *lexer.Token {
	if k == 0 {
		return nil
	}
	i := s.index + k
	if k > 0 {
		i--
	}
	if i < 0 {
		return nil
	}
	if i >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[i]
}

func (s *Stream) Get(i int) *lexer.Token {
	if i < 0 || i >= len(s.tokens) {
		return nil
	}
	return s.tokens[i]
}

func (s *Stream) Index() int {
	return s.index
}

func (s *Stream) Consume() {
	if s.index < len(s.tokens)-1 {
		s.index++
	}
}

func (s *Stream) Seek(index int) {
	s.index = index
}

func (s *Stream) Mark() int {
	return -1
}

func (s *Stream) Release(marker int) {
}

func (s *Stream) Size() int {
	return len(s.tokens)
}

// Tokens returns the retained tokens, EOF included.
func (s *Stream) Tokens() []*lexer.Token {
	return s.tokens
}
