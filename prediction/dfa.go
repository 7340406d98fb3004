package prediction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mi9rem/garnet/atn"
)

// PredPrediction pairs an alternative with the semantic context that must
// hold for an accept state to predict it.
type PredPrediction struct {
	Pred SemanticContext
	Alt  int
}

// DFAState caches one prediction outcome: the config set that produced it,
// the edges discovered so far, and what to do on accept.
type DFAState struct {
	Num     int
	Configs *ConfigSet
	edges   map[int]*DFAState

	IsAccept   bool
	Prediction int

	// RequiresFullContext marks SLL states whose answer cannot be trusted;
	// prediction restarts with full context when it reaches one.
	RequiresFullContext bool

	// Predicates, when non-nil, replaces Prediction: the alternatives must
	// be gated through their contexts at prediction time.
	Predicates []*PredPrediction

	// Lexer accept side effects.
	Executor *atn.ActionExecutor
}

func NewDFAState(num int, configs *ConfigSet) *DFAState {
	return &DFAState{Num: num, Configs: configs, Prediction: InvalidAlt}
}

// ErrorState is the sink recorded for symbols proven to match nothing.
var ErrorState = &DFAState{Num: -1, Configs: NewConfigSet(false), Prediction: InvalidAlt}

// Edge returns the target cached for symbol, ErrorState if the symbol is
// known to fail, or nil if untried.
func (d *DFAState) Edge(symbol int) *DFAState {
	return d.edges[symbol]
}

func (d *DFAState) SetEdge(symbol int, target *DFAState) {
	if d.edges == nil {
		d.edges = make(map[int]*DFAState)
	}
	d.edges[symbol] = target
}

// Equality is by config set; two states reached through different symbol
// sequences but holding the same configs are the same state.
func (d *DFAState) Hash() int {
	return d.Configs.Hash()
}

func (d *DFAState) Equals(o *DFAState) bool {
	return d == o || d.Configs.Equals(o.Configs)
}

func (d *DFAState) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%v", d.Num, d.Configs)
	if d.IsAccept {
		if d.Predicates != nil {
			fmt.Fprintf(&b, "=>%v", d.Predicates)
		} else {
			fmt.Fprintf(&b, "=>%d", d.Prediction)
		}
	}
	return b.String()
}

// DFA accumulates the states discovered for one decision. A left-recursive
// decision keeps one start state per precedence level instead of s0.
type DFA struct {
	DecisionState *atn.State
	Decision      int

	states    map[int][]*DFAState
	numStates int
	s0        *DFAState

	precedenceDFA   bool
	precedenceStart map[int]*DFAState
}

func NewDFA(decisionState *atn.State, decision int) *DFA {
	d := &DFA{
		DecisionState: decisionState,
		Decision:      decision,
		states:        make(map[int][]*DFAState),
	}
	if decisionState != nil && decisionState.PrecedenceDecision {
		d.precedenceDFA = true
		d.precedenceStart = make(map[int]*DFAState)
	}
	return d
}

func (d *DFA) IsPrecedenceDFA() bool {
	return d.precedenceDFA
}

func (d *DFA) S0() *DFAState {
	return d.s0
}

func (d *DFA) SetS0(s *DFAState) {
	d.s0 = s
}

func (d *DFA) PrecedenceStartState(precedence int) *DFAState {
	if !d.precedenceDFA {
		panic("precedence start state on a non-precedence DFA")
	}
	return d.precedenceStart[precedence]
}

func (d *DFA) SetPrecedenceStartState(precedence int, s *DFAState) {
	if !d.precedenceDFA {
		panic("precedence start state on a non-precedence DFA")
	}
	if precedence < 0 {
		return
	}
	d.precedenceStart[precedence] = s
}

// Intern returns the canonical state equal to s, numbering and recording s
// when it is new.
func (d *DFA) Intern(s *DFAState) *DFAState {
	h := s.Hash()
	for _, existing := range d.states[h] {
		if existing.Equals(s) {
			return existing
		}
	}
	s.Num = d.numStates
	d.numStates++
	d.states[h] = append(d.states[h], s)
	return s
}

func (d *DFA) NumStates() int {
	return d.numStates
}

// States returns the recorded states ordered by number.
func (d *DFA) States() []*DFAState {
	var all []*DFAState
	for _, bucket := range d.states {
		all = append(all, bucket...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Num < all[j].Num })
	return all
}
