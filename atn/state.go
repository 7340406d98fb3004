package atn

import "fmt"

type StateKind int

const (
	StateBasic StateKind = iota
	StateRuleStart
	StateBlockStart
	StatePlusBlockStart
	StateStarBlockStart
	StateTokenStart
	StateRuleStop
	StateBlockEnd
	StateStarLoopBack
	StateStarLoopEntry
	StatePlusLoopBack
	StateLoopEnd
)

func (k StateKind) String() string {
	switch k {
	case StateBasic:
		return "basic"
	case StateRuleStart:
		return "rule-start"
	case StateBlockStart:
		return "block-start"
	case StatePlusBlockStart:
		return "plus-block-start"
	case StateStarBlockStart:
		return "star-block-start"
	case StateTokenStart:
		return "token-start"
	case StateRuleStop:
		return "rule-stop"
	case StateBlockEnd:
		return "block-end"
	case StateStarLoopBack:
		return "star-loop-back"
	case StateStarLoopEntry:
		return "star-loop-entry"
	case StatePlusLoopBack:
		return "plus-loop-back"
	case StateLoopEnd:
		return "loop-end"
	}
	return fmt.Sprintf("state-kind(%d)", int(k))
}

// IsDecision reports whether states of this kind require a prediction to
// choose among their outgoing alternatives.
func (k StateKind) IsDecision() bool {
	switch k {
	case StateBlockStart, StatePlusBlockStart, StateStarBlockStart,
		StateTokenStart, StateStarLoopEntry, StatePlusLoopBack:
		return true
	}
	return false
}

func (k StateKind) isBlockStart() bool {
	switch k {
	case StateBlockStart, StatePlusBlockStart, StateStarBlockStart:
		return true
	}
	return false
}

// State is a node of the transition network. All states share one struct;
// Kind selects which of the link fields are meaningful. States are created
// by the deserializer and must be treated as immutable afterward.
type State struct {
	Num         int
	Kind        StateKind
	RuleIndex   int
	Transitions []*Transition

	// EpsilonOnly is true iff every outgoing transition is unconditional.
	EpsilonOnly bool

	// Decision state fields.
	Decision  int
	NonGreedy bool

	// Rule start fields.
	StopState        *State
	IsPrecedenceRule bool

	// Block start / block end links.
	EndState   *State
	StartState *State

	// Loop-end and loop-entry back link.
	LoopBack *State

	// PrecedenceDecision marks the star-loop entry that decides whether a
	// left-recursive rule continues or completes.
	PrecedenceDecision bool
}

func newState(kind StateKind, ruleIndex int) *State {
	return &State{
		Num:       -1,
		Kind:      kind,
		RuleIndex: ruleIndex,
		Decision:  -1,
	}
}

// AddTransition appends t and keeps the epsilon-only flag consistent.
func (s *State) AddTransition(t *Transition) {
	if len(s.Transitions) == 0 {
		s.EpsilonOnly = t.IsEpsilon()
	} else if s.EpsilonOnly != t.IsEpsilon() {
		s.EpsilonOnly = false
	}
	s.Transitions = append(s.Transitions, t)
}

func (s *State) String() string {
	return fmt.Sprintf("%d", s.Num)
}
