// Package atn models a grammar's augmented transition network: typed
// states, typed transitions, and the tables a recognizer needs to simulate
// it. Networks are built by Deserialize and are read-only afterward.
package atn

import (
	"fmt"

	"github.com/mi9rem/garnet/interval"
)

type GrammarKind int

const (
	GrammarLexer GrammarKind = iota
	GrammarParser
)

func (k GrammarKind) String() string {
	switch k {
	case GrammarLexer:
		return "lexer"
	case GrammarParser:
		return "parser"
	}
	return fmt.Sprintf("grammar-kind(%d)", int(k))
}

// Network is the deserialized automaton for one grammar.
type Network struct {
	Kind      GrammarKind
	MaxSymbol int

	States         []*State
	DecisionStates []*State

	RuleStart []*State
	RuleStop  []*State

	// Lexer-only tables.
	ModeStart       []*State
	RuleToTokenType []int
	LexerActions    []LexerAction
}

func newNetwork(kind GrammarKind, maxSymbol int) *Network {
	return &Network{Kind: kind, MaxSymbol: maxSymbol}
}

func (n *Network) addState(s *State) {
	s.Num = len(n.States)
	n.States = append(n.States, s)
}

// DecisionState returns the decision-th decision state.
func (n *Network) DecisionState(decision int) *State {
	return n.DecisionStates[decision]
}

// NextTokens computes the set of symbols that can follow s with no
// particular invocation context. The set contains SymbolEpsilon when the
// end of s's rule is reachable without consuming input.
func (n *Network) NextTokens(s *State) *interval.Set {
	set := interval.NewSet()
	n.look(s, set, make(map[*State]bool))
	return set
}

func (n *Network) look(s *State, set *interval.Set, seen map[*State]bool) {
	if seen[s] {
		return
	}
	seen[s] = true
	if s.Kind == StateRuleStop {
		set.AddOne(SymbolEpsilon)
		return
	}
	for _, t := range s.Transitions {
		switch t.Kind {
		case TransitionRule:
			called := interval.NewSet()
			n.look(t.Target, called, make(map[*State]bool))
			fallsOff := called.Contains(SymbolEpsilon)
			for _, i := range called.Intervals() {
				if i.Start == SymbolEpsilon && i.Len() == 1 {
					continue
				}
				set.AddRange(i.Start, i.Stop)
			}
			if fallsOff {
				n.look(t.FollowState, set, seen)
			}
		case TransitionEpsilon, TransitionPredicate, TransitionPrecedence, TransitionAction:
			n.look(t.Target, set, seen)
		case TransitionAtom:
			set.AddOne(t.Symbol)
		case TransitionRange, TransitionSet:
			set.Union(t.Label)
		case TransitionNotSet:
			set.Union(t.Label.Complement(SymbolEOF, n.MaxSymbol+1))
		case TransitionWildcard:
			set.AddRange(SymbolEOF, n.MaxSymbol+1)
		}
	}
}
