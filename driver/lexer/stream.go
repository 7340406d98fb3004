// Package lexer tokenizes character input by simulating a lexical network,
// caching what it learns in per-mode DFAs.
package lexer

import (
	"io"

	"github.com/mi9rem/garnet/atn"
)

// CharStream is random-access character input. Positions count runes, not
// bytes.
type CharStream interface {
	// LA returns the k-th symbol of lookahead (1-based), or SymbolEOF past
	// the end. Negative k looks backward.
	LA(k int) int
	Index() int
	Consume()
	Seek(index int)
	Mark() int
	Release(marker int)
	Size() int
	// Text returns the characters in [start, stop).
	Text(start, stop int) string
}

// Stream is an in-memory CharStream.
type Stream struct {
	runes []rune
	index int
}

func NewStream(src string) *Stream {
	return &Stream{runes: []rune(src)}
}

func NewStreamFromReader(r io.Reader) (*Stream, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewStream(string(b)), nil
}

func (s *Stream) LA(k int) int {
	if k == 0 {
		return 0
	}
	i := s.index + k
	if k > 0 {
		i--
	}
	if i < 0 || i >= len(s.runes) {
		return atn.SymbolEOF
	}
	return int(s.runes[i])
}

func (s *Stream) Index() int {
	return s.index
}

func (s *Stream) Consume() {
	if s.index < len(s.runes) {
		s.index++
	}
}

func (s *Stream) Seek(index int) {
	s.index = index
}

// Mark is a no-op for an in-memory stream; the whole input stays
// addressable.
func (s *Stream) Mark() int {
	return -1
}

func (s *Stream) Release(marker int) {
}

func (s *Stream) Size() int {
	return len(s.runes)
}

func (s *Stream) Text(start, stop int) string {
	if start < 0 {
		start = 0
	}
	if stop > len(s.runes) {
		stop = len(s.runes)
	}
	if start >= stop {
		return ""
	}
	return string(s.runes[start:stop])
}
