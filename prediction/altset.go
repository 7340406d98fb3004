package prediction

import (
	"fmt"
	"strings"
)

// InvalidAlt marks "no alternative chosen". Real alternatives are numbered
// from 1.
const InvalidAlt = 0

// AltSet is a bit set of alternative numbers. The zero value is an empty
// set ready for use.
type AltSet struct {
	words []uint64
}

func (s *AltSet) Add(alt int) {
	w := alt >> 6
	for len(s.words) <= w {
		s.words = append(s.words, 0)
	}
	s.words[w] |= 1 << (uint(alt) & 63)
}

func (s *AltSet) Contains(alt int) bool {
	w := alt >> 6
	return w < len(s.words) && s.words[w]&(1<<(uint(alt)&63)) != 0
}

func (s *AltSet) Len() int {
	n := 0
	for _, w := range s.words {
		for ; w != 0; w &= w - 1 {
			n++
		}
	}
	return n
}

// Min returns the smallest member, or InvalidAlt when the set is empty.
func (s *AltSet) Min() int {
	for i, w := range s.words {
		if w == 0 {
			continue
		}
		for b := 0; b < 64; b++ {
			if w&(1<<uint(b)) != 0 {
				return i<<6 | b
			}
		}
	}
	return InvalidAlt
}

func (s *AltSet) Or(o *AltSet) {
	for len(s.words) < len(o.words) {
		s.words = append(s.words, 0)
	}
	for i, w := range o.words {
		s.words[i] |= w
	}
}

func (s *AltSet) Equals(o *AltSet) bool {
	long, short := s.words, o.words
	if len(long) < len(short) {
		long, short = short, long
	}
	for i, w := range long {
		var ow uint64
		if i < len(short) {
			ow = short[i]
		}
		if w != ow {
			return false
		}
	}
	return true
}

// Alts returns the members in ascending order.
func (s *AltSet) Alts() []int {
	var alts []int
	for i, w := range s.words {
		for b := 0; b < 64; b++ {
			if w&(1<<uint(b)) != 0 {
				alts = append(alts, i<<6|b)
			}
		}
	}
	return alts
}

func (s *AltSet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, alt := range s.Alts() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", alt)
	}
	b.WriteByte('}')
	return b.String()
}
