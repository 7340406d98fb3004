package atn

import (
	"fmt"

	"github.com/mi9rem/garnet/interval"
)

// Symbol values reserved by the runtime. Regular token types and character
// values are positive.
const (
	SymbolEOF     = -1
	SymbolEpsilon = -2
)

type TransitionKind int

const (
	TransitionEpsilon TransitionKind = iota + 1
	TransitionAtom
	TransitionRange
	TransitionSet
	TransitionNotSet
	TransitionWildcard
	TransitionRule
	TransitionPredicate
	TransitionPrecedence
	TransitionAction
)

// Transition is an edge of the network. It is a closed tagged union: Kind
// selects which operand fields are meaningful and drives Matches/IsEpsilon,
// so the compiler can check exhaustiveness where transitions are consumed.
type Transition struct {
	Kind   TransitionKind
	Target *State

	// Atom operand.
	Symbol int

	// Range/set/not-set operand.
	Label *interval.Set

	// Rule call operands. Target is the invoked rule's start state.
	FollowState *State
	Precedence  int

	// Predicate and action operands. RuleIndex is shared with rule calls
	// and predicates.
	RuleIndex    int
	PredIndex    int
	ActionIndex  int
	CtxDependent bool

	// Synthesized epsilon transitions out of a precedence rule's stop state
	// carry the rule index they unwind to; -1 otherwise.
	OutermostPrecedenceReturn int
}

func NewEpsilonTransition(target *State, outermostPrecedenceReturn int) *Transition {
	return &Transition{
		Kind:                      TransitionEpsilon,
		Target:                    target,
		OutermostPrecedenceReturn: outermostPrecedenceReturn,
	}
}

func NewAtomTransition(target *State, symbol int) *Transition {
	return &Transition{Kind: TransitionAtom, Target: target, Symbol: symbol}
}

func NewRangeTransition(target *State, start, stop int) *Transition {
	return &Transition{Kind: TransitionRange, Target: target, Label: interval.NewSet(interval.New(start, stop))}
}

func NewSetTransition(target *State, label *interval.Set) *Transition {
	return &Transition{Kind: TransitionSet, Target: target, Label: label}
}

func NewNotSetTransition(target *State, label *interval.Set) *Transition {
	return &Transition{Kind: TransitionNotSet, Target: target, Label: label}
}

func NewWildcardTransition(target *State) *Transition {
	return &Transition{Kind: TransitionWildcard, Target: target}
}

func NewRuleTransition(ruleStart *State, ruleIndex, precedence int, followState *State) *Transition {
	return &Transition{
		Kind:        TransitionRule,
		Target:      ruleStart,
		RuleIndex:   ruleIndex,
		Precedence:  precedence,
		FollowState: followState,
	}
}

func NewPredicateTransition(target *State, ruleIndex, predIndex int, ctxDependent bool) *Transition {
	return &Transition{
		Kind:         TransitionPredicate,
		Target:       target,
		RuleIndex:    ruleIndex,
		PredIndex:    predIndex,
		CtxDependent: ctxDependent,
	}
}

func NewPrecedencePredicateTransition(target *State, precedence int) *Transition {
	return &Transition{Kind: TransitionPrecedence, Target: target, Precedence: precedence}
}

func NewActionTransition(target *State, ruleIndex, actionIndex int, ctxDependent bool) *Transition {
	return &Transition{
		Kind:         TransitionAction,
		Target:       target,
		RuleIndex:    ruleIndex,
		ActionIndex:  actionIndex,
		CtxDependent: ctxDependent,
	}
}

// IsEpsilon reports whether the transition consumes no input symbol.
func (t *Transition) IsEpsilon() bool {
	switch t.Kind {
	case TransitionEpsilon, TransitionRule, TransitionPredicate,
		TransitionPrecedence, TransitionAction:
		return true
	}
	return false
}

// Matches reports whether the transition accepts symbol. min and max bound
// the symbol vocabulary and are consulted by not-set and wildcard edges.
func (t *Transition) Matches(symbol, min, max int) bool {
	switch t.Kind {
	case TransitionAtom:
		return t.Symbol == symbol
	case TransitionRange, TransitionSet:
		return t.Label.Contains(symbol)
	case TransitionNotSet:
		return symbol >= min && symbol <= max && !t.Label.Contains(symbol)
	case TransitionWildcard:
		return symbol >= min && symbol <= max
	}
	return false
}

func (t *Transition) String() string {
	switch t.Kind {
	case TransitionEpsilon:
		return "epsilon"
	case TransitionAtom:
		return fmt.Sprintf("atom(%v)", t.Symbol)
	case TransitionRange, TransitionSet:
		return fmt.Sprintf("set(%v)", t.Label)
	case TransitionNotSet:
		return fmt.Sprintf("not-set(%v)", t.Label)
	case TransitionWildcard:
		return "wildcard"
	case TransitionRule:
		return fmt.Sprintf("rule(%v)", t.RuleIndex)
	case TransitionPredicate:
		return fmt.Sprintf("pred(%v:%v)", t.RuleIndex, t.PredIndex)
	case TransitionPrecedence:
		return fmt.Sprintf("prec(%v)", t.Precedence)
	case TransitionAction:
		return fmt.Sprintf("action(%v:%v)", t.RuleIndex, t.ActionIndex)
	}
	return fmt.Sprintf("transition-kind(%d)", int(t.Kind))
}
