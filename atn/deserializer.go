package atn

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/mi9rem/garnet/interval"
)

// SerializedVersion is the only wire version this runtime reads.
const SerializedVersion = 1

// SerializedUUID identifies the feature set of the wire format. A payload
// carrying any other UUID is rejected.
var SerializedUUID = uuid.MustParse("59627784-3be5-417a-b9eb-8131a7286089")

// FormatError reports a malformed serialized network.
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string {
	return "malformed network: " + e.msg
}

func formatErrorf(format string, args ...interface{}) *FormatError {
	return &FormatError{msg: fmt.Sprintf(format, args...)}
}

type reader struct {
	data []int32
	pos  int
}

func (r *reader) read() int {
	if r.pos >= len(r.data) {
		panic(formatErrorf("unexpected end of data at offset %v", r.pos))
	}
	v := r.data[r.pos]
	r.pos++
	return int(v)
}

func (r *reader) readUUID() uuid.UUID {
	var u uuid.UUID
	for i := 0; i < 4; i++ {
		binary.BigEndian.PutUint32(u[i*4:], uint32(r.read()))
	}
	return u
}

// Deserialize reconstructs a network from its serialized form. The input is
// validated as it is read; any structural defect yields a *FormatError.
func Deserialize(data []int32) (n *Network, err error) {
	defer func() {
		if p := recover(); p != nil {
			if fe, ok := p.(*FormatError); ok {
				n, err = nil, fe
				return
			}
			panic(p)
		}
	}()

	r := &reader{data: data}

	version := r.read()
	if version != SerializedVersion {
		panic(formatErrorf("version %v, want %v", version, SerializedVersion))
	}
	u := r.readUUID()
	if u != SerializedUUID {
		panic(formatErrorf("uuid %v, want %v", u, SerializedUUID))
	}

	kind := GrammarKind(r.read())
	if kind != GrammarLexer && kind != GrammarParser {
		panic(formatErrorf("grammar kind %v", int(kind)))
	}
	n = newNetwork(kind, r.read())

	d := &deserializer{r: r, n: n}
	d.readStates()
	d.readRules()
	d.readModes()
	sets := d.readSets()
	d.readEdges(sets)
	d.readDecisions()
	if kind == GrammarLexer {
		d.readLexerActions()
	}
	d.connectRuleReturns()
	d.markPrecedenceDecisions()
	d.verify()
	return n, nil
}

type deserializer struct {
	r *reader
	n *Network

	// Deferred block-start to block-end links, resolved once every state
	// exists.
	pendingEnds map[int]int
	pendingLoop map[int]int
}

func (d *deserializer) readStates() {
	nstates := d.r.read()
	d.pendingEnds = make(map[int]int)
	d.pendingLoop = make(map[int]int)
	for i := 0; i < nstates; i++ {
		kind := StateKind(d.r.read())
		if kind < StateBasic || kind > StateLoopEnd {
			panic(formatErrorf("state %v: kind %v", i, int(kind)))
		}
		ruleIndex := d.r.read()
		s := newState(kind, ruleIndex)
		switch {
		case kind == StateLoopEnd:
			d.pendingLoop[i] = d.r.read()
		case kind.isBlockStart():
			d.pendingEnds[i] = d.r.read()
		}
		d.n.addState(s)
	}
	for src, end := range d.pendingEnds {
		es := d.state(end)
		if es.Kind != StateBlockEnd {
			panic(formatErrorf("state %v: end state %v is %v", src, end, es.Kind))
		}
		d.n.States[src].EndState = es
		es.StartState = d.n.States[src]
	}
	for src, lb := range d.pendingLoop {
		d.n.States[src].LoopBack = d.state(lb)
	}

	numNonGreedy := d.r.read()
	for i := 0; i < numNonGreedy; i++ {
		d.state(d.r.read()).NonGreedy = true
	}
	numPrecedence := d.r.read()
	for i := 0; i < numPrecedence; i++ {
		d.state(d.r.read()).IsPrecedenceRule = true
	}
}

func (d *deserializer) readRules() {
	nrules := d.r.read()
	d.n.RuleStart = make([]*State, nrules)
	d.n.RuleStop = make([]*State, nrules)
	if d.n.Kind == GrammarLexer {
		d.n.RuleToTokenType = make([]int, nrules)
	}
	for i := 0; i < nrules; i++ {
		start := d.state(d.r.read())
		if start.Kind != StateRuleStart {
			panic(formatErrorf("rule %v: start state %v is %v", i, start.Num, start.Kind))
		}
		d.n.RuleStart[i] = start
		if d.n.Kind == GrammarLexer {
			d.n.RuleToTokenType[i] = d.r.read()
		}
	}
	for _, s := range d.n.States {
		if s.Kind != StateRuleStop {
			continue
		}
		if s.RuleIndex < 0 || s.RuleIndex >= nrules {
			panic(formatErrorf("state %v: rule index %v out of range", s.Num, s.RuleIndex))
		}
		d.n.RuleStop[s.RuleIndex] = s
		d.n.RuleStart[s.RuleIndex].StopState = s
	}
	for i := range d.n.RuleStop {
		if d.n.RuleStop[i] == nil {
			panic(formatErrorf("rule %v has no stop state", i))
		}
	}
}

func (d *deserializer) readModes() {
	nmodes := d.r.read()
	for i := 0; i < nmodes; i++ {
		s := d.state(d.r.read())
		if s.Kind != StateTokenStart {
			panic(formatErrorf("mode %v: state %v is %v", i, s.Num, s.Kind))
		}
		d.n.ModeStart = append(d.n.ModeStart, s)
	}
}

// readSets reads the shared symbol sets, first those whose values all fit in
// a packed 16-bit pair, then the wide ones.
func (d *deserializer) readSets() []*interval.Set {
	var sets []*interval.Set
	n16 := d.r.read()
	for i := 0; i < n16; i++ {
		nranges := d.r.read()
		set := interval.NewSet()
		if d.r.read() != 0 {
			set.AddOne(SymbolEOF)
		}
		for j := 0; j < nranges; j++ {
			packed := d.r.read()
			start := packed >> 16
			stop := packed & 0xFFFF
			set.AddRange(start, stop+1)
		}
		sets = append(sets, set)
	}
	n32 := d.r.read()
	for i := 0; i < n32; i++ {
		nranges := d.r.read()
		set := interval.NewSet()
		if d.r.read() != 0 {
			set.AddOne(SymbolEOF)
		}
		for j := 0; j < nranges; j++ {
			start := d.r.read()
			stop := d.r.read()
			set.AddRange(start, stop)
		}
		sets = append(sets, set)
	}
	return sets
}

func (d *deserializer) readEdges(sets []*interval.Set) {
	nedges := d.r.read()
	for i := 0; i < nedges; i++ {
		src := d.state(d.r.read())
		trgIndex := d.r.read()
		kind := TransitionKind(d.r.read())
		arg1, arg2, arg3 := d.r.read(), d.r.read(), d.r.read()
		src.AddTransition(d.edge(kind, trgIndex, arg1, arg2, arg3, sets))
	}
}

func (d *deserializer) edge(kind TransitionKind, trgIndex, arg1, arg2, arg3 int, sets []*interval.Set) *Transition {
	trg := d.state(trgIndex)
	switch kind {
	case TransitionEpsilon:
		return NewEpsilonTransition(trg, -1)
	case TransitionAtom:
		if arg3 != 0 {
			return NewAtomTransition(trg, SymbolEOF)
		}
		return NewAtomTransition(trg, arg1)
	case TransitionRange:
		if arg3 != 0 {
			return NewRangeTransition(trg, SymbolEOF, arg2)
		}
		return NewRangeTransition(trg, arg1, arg2)
	case TransitionSet:
		return NewSetTransition(trg, d.set(sets, arg1))
	case TransitionNotSet:
		return NewNotSetTransition(trg, d.set(sets, arg1))
	case TransitionWildcard:
		return NewWildcardTransition(trg)
	case TransitionRule:
		start := d.state(arg1)
		if start.Kind != StateRuleStart {
			panic(formatErrorf("rule edge: state %v is %v", arg1, start.Kind))
		}
		return NewRuleTransition(start, arg2, arg3, trg)
	case TransitionPredicate:
		return NewPredicateTransition(trg, arg1, arg2, arg3 != 0)
	case TransitionPrecedence:
		return NewPrecedencePredicateTransition(trg, arg1)
	case TransitionAction:
		return NewActionTransition(trg, arg1, arg2, arg3 != 0)
	}
	panic(formatErrorf("transition kind %v", int(kind)))
}

func (d *deserializer) readDecisions() {
	ndecisions := d.r.read()
	for i := 0; i < ndecisions; i++ {
		s := d.state(d.r.read())
		if !s.Kind.IsDecision() {
			panic(formatErrorf("decision %v: state %v is %v", i, s.Num, s.Kind))
		}
		s.Decision = i
		d.n.DecisionStates = append(d.n.DecisionStates, s)
	}
}

func (d *deserializer) readLexerActions() {
	nactions := d.r.read()
	for i := 0; i < nactions; i++ {
		kind := LexerActionKind(d.r.read())
		if kind < LexerActionChannel || kind > LexerActionType {
			panic(formatErrorf("lexer action %v: kind %v", i, int(kind)))
		}
		d.n.LexerActions = append(d.n.LexerActions, LexerAction{
			Kind:  kind,
			Data1: d.r.read(),
			Data2: d.r.read(),
		})
	}
}

// connectRuleReturns gives every rule stop state an epsilon edge back to the
// follow state of each call site, so closure can return from a rule without
// consulting the caller's tables.
func (d *deserializer) connectRuleReturns() {
	for _, s := range d.n.States {
		// Plus-loop-back and star-loop-back states reach their owning
		// decision through their single outgoing edge.
		switch s.Kind {
		case StatePlusLoopBack:
			for _, t := range s.Transitions {
				if t.Target.Kind == StatePlusBlockStart {
					t.Target.LoopBack = s
				}
			}
		case StateStarLoopBack:
			for _, t := range s.Transitions {
				if t.Target.Kind == StateStarLoopEntry {
					t.Target.LoopBack = s
				}
			}
		}
		for _, t := range s.Transitions {
			if t.Kind != TransitionRule {
				continue
			}
			outermost := -1
			if d.n.RuleStart[t.RuleIndex].IsPrecedenceRule && t.Precedence == 0 {
				outermost = t.RuleIndex
			}
			ret := NewEpsilonTransition(t.FollowState, outermost)
			d.n.RuleStop[t.RuleIndex].AddTransition(ret)
		}
	}
}

// markPrecedenceDecisions flags the star-loop entry of each left-recursive
// rule, which the simulator treats specially when seeding prediction.
func (d *deserializer) markPrecedenceDecisions() {
	for _, s := range d.n.States {
		if s.Kind != StateStarLoopEntry || !d.n.RuleStart[s.RuleIndex].IsPrecedenceRule {
			continue
		}
		last := s.Transitions[len(s.Transitions)-1].Target
		if last.Kind != StateLoopEnd || !last.EpsilonOnly || len(last.Transitions) != 1 {
			continue
		}
		if last.Transitions[0].Target.Kind == StateRuleStop {
			s.PrecedenceDecision = true
		}
	}
}

func (d *deserializer) verify() {
	for _, s := range d.n.States {
		d.check(s.EpsilonOnly || len(s.Transitions) <= 1 || s.Kind.IsDecision() || s.Kind == StateRuleStop,
			"state %v: multiple non-epsilon transitions outside a decision", s.Num)
		switch s.Kind {
		case StatePlusBlockStart:
			d.check(s.LoopBack != nil, "state %v: plus block start without loop back", s.Num)
		case StateStarLoopEntry:
			d.check(s.LoopBack != nil, "state %v: star loop entry without loop back", s.Num)
			d.check(len(s.Transitions) == 2, "state %v: star loop entry with %v transitions", s.Num, len(s.Transitions))
			a, b := s.Transitions[0].Target.Kind, s.Transitions[1].Target.Kind
			d.check(a == StateStarBlockStart && b == StateLoopEnd ||
				a == StateLoopEnd && b == StateStarBlockStart,
				"state %v: star loop entry targets %v and %v", s.Num, a, b)
		case StateStarLoopBack:
			d.check(len(s.Transitions) == 1 && s.Transitions[0].Target.Kind == StateStarLoopEntry,
				"state %v: star loop back does not return to loop entry", s.Num)
		case StateLoopEnd:
			d.check(s.LoopBack != nil, "state %v: loop end without loop back", s.Num)
		case StateRuleStart:
			d.check(s.StopState != nil, "state %v: rule start without stop state", s.Num)
		case StateBlockEnd:
			d.check(s.StartState != nil, "state %v: block end without block start", s.Num)
		}
		if s.Kind.isBlockStart() {
			d.check(s.EndState != nil, "state %v: block start without block end", s.Num)
		}
		if s.Decision >= 0 {
			d.check(s.Decision < len(d.n.DecisionStates) && d.n.DecisionStates[s.Decision] == s,
				"state %v: inconsistent decision %v", s.Num, s.Decision)
		}
	}
}

func (d *deserializer) check(ok bool, format string, args ...interface{}) {
	if !ok {
		panic(formatErrorf(format, args...))
	}
}

func (d *deserializer) state(index int) *State {
	if index < 0 || index >= len(d.n.States) {
		panic(formatErrorf("state index %v out of range", index))
	}
	return d.n.States[index]
}

func (d *deserializer) set(sets []*interval.Set, index int) *interval.Set {
	if index < 0 || index >= len(sets) {
		panic(formatErrorf("set index %v out of range", index))
	}
	return sets[index]
}
