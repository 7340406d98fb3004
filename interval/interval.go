// Package interval provides half-open integer intervals and ordered
// interval sets, used to represent character and token classes.
package interval

import (
	"fmt"
	"strings"
)

// Interval is a half-open range [Start, Stop) over symbol values.
type Interval struct {
	Start int
	Stop  int
}

func New(start, stop int) Interval {
	return Interval{Start: start, Stop: stop}
}

func (i Interval) Contains(v int) bool {
	return v >= i.Start && v < i.Stop
}

func (i Interval) Len() int {
	return i.Stop - i.Start
}

func (i Interval) String() string {
	if i.Len() == 1 {
		return fmt.Sprintf("%v", i.Start)
	}
	return fmt.Sprintf("%v..%v", i.Start, i.Stop-1)
}

// Set is an ordered union of disjoint, non-adjacent intervals.
// The zero value is not usable; call NewSet.
type Set struct {
	intervals []Interval
}

func NewSet(intervals ...Interval) *Set {
	s := &Set{}
	for _, i := range intervals {
		s.AddRange(i.Start, i.Stop)
	}
	return s
}

// AddOne adds the single value v.
func (s *Set) AddOne(v int) {
	s.AddRange(v, v+1)
}

// AddRange adds the half-open range [start, stop), coalescing it with any
// overlapping or adjacent intervals already in the set.
func (s *Set) AddRange(start, stop int) {
	if stop <= start {
		return
	}
	k := 0
	for k < len(s.intervals) && s.intervals[k].Stop < start {
		k++
	}
	// Intervals from k on overlap or follow [start, stop).
	merged := Interval{Start: start, Stop: stop}
	end := k
	for end < len(s.intervals) && s.intervals[end].Start <= stop {
		if s.intervals[end].Start < merged.Start {
			merged.Start = s.intervals[end].Start
		}
		if s.intervals[end].Stop > merged.Stop {
			merged.Stop = s.intervals[end].Stop
		}
		end++
	}
	tail := append([]Interval{merged}, s.intervals[end:]...)
	s.intervals = append(s.intervals[:k], tail...)
}

func (s *Set) Contains(v int) bool {
	lo, hi := 0, len(s.intervals)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case v < s.intervals[mid].Start:
			hi = mid
		case v >= s.intervals[mid].Stop:
			lo = mid + 1
		default:
			return true
		}
	}
	return false
}

// Len returns the number of values contained in the set.
func (s *Set) Len() int {
	n := 0
	for _, i := range s.intervals {
		n += i.Len()
	}
	return n
}

// First returns the lowest value in the set, or ok=false when empty.
func (s *Set) First() (int, bool) {
	if len(s.intervals) == 0 {
		return 0, false
	}
	return s.intervals[0].Start, true
}

func (s *Set) Intervals() []Interval {
	return s.intervals
}

func (s *Set) Union(o *Set) {
	for _, i := range o.intervals {
		s.AddRange(i.Start, i.Stop)
	}
}

// Complement returns the values of [min, max) not contained in s.
func (s *Set) Complement(min, max int) *Set {
	c := NewSet()
	next := min
	for _, i := range s.intervals {
		if i.Start > next {
			c.AddRange(next, minInt(i.Start, max))
		}
		if i.Stop > next {
			next = i.Stop
		}
	}
	if next < max {
		c.AddRange(next, max)
	}
	return c
}

func (s *Set) String() string {
	if len(s.intervals) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	for k, i := range s.intervals {
		if k > 0 {
			b.WriteString(", ")
		}
		b.WriteString(i.String())
	}
	b.WriteByte('}')
	return b.String()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
