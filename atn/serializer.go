package atn

import (
	"encoding/binary"

	"github.com/mi9rem/garnet/interval"
)

// Serialize flattens a network into the int32 form Deserialize reads.
// Epsilon edges out of rule stop states are omitted; Deserialize rebuilds
// them from the call sites.
func Serialize(n *Network) []int32 {
	w := &writer{}
	w.write(SerializedVersion)
	w.writeUUID()
	w.write(int(n.Kind))
	w.write(n.MaxSymbol)

	w.write(len(n.States))
	var nonGreedy, precedence []int
	for _, s := range n.States {
		w.write(int(s.Kind))
		w.write(s.RuleIndex)
		switch {
		case s.Kind == StateLoopEnd:
			w.write(s.LoopBack.Num)
		case s.Kind.isBlockStart():
			w.write(s.EndState.Num)
		}
		if s.NonGreedy {
			nonGreedy = append(nonGreedy, s.Num)
		}
		if s.IsPrecedenceRule {
			precedence = append(precedence, s.Num)
		}
	}
	w.writeList(nonGreedy)
	w.writeList(precedence)

	w.write(len(n.RuleStart))
	for i, s := range n.RuleStart {
		w.write(s.Num)
		if n.Kind == GrammarLexer {
			w.write(n.RuleToTokenType[i])
		}
	}

	w.write(len(n.ModeStart))
	for _, s := range n.ModeStart {
		w.write(s.Num)
	}

	sets, setIndex := collectSets(n)
	w.writeSets(sets)

	var edges [][6]int
	for _, s := range n.States {
		if s.Kind == StateRuleStop {
			continue
		}
		for _, t := range s.Transitions {
			edges = append(edges, serializeEdge(s, t, setIndex))
		}
	}
	w.write(len(edges))
	for _, e := range edges {
		for _, v := range e {
			w.write(v)
		}
	}

	w.write(len(n.DecisionStates))
	for _, s := range n.DecisionStates {
		w.write(s.Num)
	}

	if n.Kind == GrammarLexer {
		w.write(len(n.LexerActions))
		for _, a := range n.LexerActions {
			w.write(int(a.Kind))
			w.write(a.Data1)
			w.write(a.Data2)
		}
	}
	return w.data
}

func serializeEdge(src *State, t *Transition, setIndex map[*interval.Set]int) [6]int {
	e := [6]int{src.Num, t.Target.Num, int(t.Kind), 0, 0, 0}
	switch t.Kind {
	case TransitionAtom:
		if t.Symbol == SymbolEOF {
			e[5] = 1
		} else {
			e[3] = t.Symbol
		}
	case TransitionRange:
		iv := t.Label.Intervals()[0]
		if iv.Start == SymbolEOF {
			e[4] = iv.Stop
			e[5] = 1
		} else {
			e[3], e[4] = iv.Start, iv.Stop
		}
	case TransitionSet, TransitionNotSet:
		e[3] = setIndex[t.Label]
	case TransitionRule:
		e[1] = t.FollowState.Num
		e[3] = t.Target.Num
		e[4] = t.RuleIndex
		e[5] = t.Precedence
	case TransitionPredicate:
		e[3], e[4] = t.RuleIndex, t.PredIndex
		if t.CtxDependent {
			e[5] = 1
		}
	case TransitionPrecedence:
		e[3] = t.Precedence
	case TransitionAction:
		e[3], e[4] = t.RuleIndex, t.ActionIndex
		if t.CtxDependent {
			e[5] = 1
		}
	}
	return e
}

// collectSets gathers the distinct label sets referenced by set and not-set
// edges, narrow (16-bit packable) sets first, and returns the ordering each
// edge serializes against.
func collectSets(n *Network) ([]*interval.Set, map[*interval.Set]int) {
	var narrow, wide []*interval.Set
	seen := make(map[*interval.Set]bool)
	for _, s := range n.States {
		for _, t := range s.Transitions {
			if t.Kind != TransitionSet && t.Kind != TransitionNotSet {
				continue
			}
			if seen[t.Label] {
				continue
			}
			seen[t.Label] = true
			if packable(t.Label) {
				narrow = append(narrow, t.Label)
			} else {
				wide = append(wide, t.Label)
			}
		}
	}
	sets := append(narrow, wide...)
	index := make(map[*interval.Set]int, len(sets))
	for i, set := range sets {
		index[set] = i
	}
	return sets, index
}

func packable(set *interval.Set) bool {
	for _, iv := range set.Intervals() {
		if iv.Start == SymbolEOF && iv.Len() == 1 {
			continue
		}
		if iv.Start < 0 || iv.Stop-1 > 0xFFFF {
			return false
		}
	}
	return true
}

type writer struct {
	data []int32
}

func (w *writer) write(v int) {
	w.data = append(w.data, int32(v))
}

func (w *writer) writeUUID() {
	for i := 0; i < 4; i++ {
		w.write(int(int32(binary.BigEndian.Uint32(SerializedUUID[i*4:]))))
	}
}

func (w *writer) writeList(vs []int) {
	w.write(len(vs))
	for _, v := range vs {
		w.write(v)
	}
}

func (w *writer) writeSets(sets []*interval.Set) {
	var narrow, wide []*interval.Set
	for _, set := range sets {
		if packable(set) {
			narrow = append(narrow, set)
		} else {
			wide = append(wide, set)
		}
	}
	w.write(len(narrow))
	for _, set := range narrow {
		ivs, hasEOF := splitEOF(set)
		w.write(len(ivs))
		w.writeBool(hasEOF)
		for _, iv := range ivs {
			w.write(iv.Start<<16 | (iv.Stop - 1))
		}
	}
	w.write(len(wide))
	for _, set := range wide {
		ivs, hasEOF := splitEOF(set)
		w.write(len(ivs))
		w.writeBool(hasEOF)
		for _, iv := range ivs {
			w.write(iv.Start)
			w.write(iv.Stop)
		}
	}
}

func (w *writer) writeBool(b bool) {
	if b {
		w.write(1)
	} else {
		w.write(0)
	}
}

// splitEOF separates the EOF marker from a set's regular ranges so EOF can
// travel as a flag instead of a negative range bound.
func splitEOF(set *interval.Set) ([]interval.Interval, bool) {
	var ivs []interval.Interval
	hasEOF := false
	for _, iv := range set.Intervals() {
		if iv.Start == SymbolEOF {
			hasEOF = true
			if iv.Len() > 1 {
				ivs = append(ivs, interval.New(iv.Start+1, iv.Stop))
			}
			continue
		}
		ivs = append(ivs, iv)
	}
	return ivs, hasEOF
}
