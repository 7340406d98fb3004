package parser

import (
	"errors"
	"testing"

	"github.com/mi9rem/garnet/atn"
	"github.com/mi9rem/garnet/driver/lexer"
	"github.com/mi9rem/garnet/prediction"
)

// Token types shared by the test grammars.
const (
	tokINT    = 1
	tokPLUS   = 2
	tokLParen = 2
	tokRParen = 3
	tokA      = 1
)

func tokens(types ...int) *Stream {
	ts := make([]*lexer.Token, len(types))
	for i, ty := range types {
		ts[i] = &lexer.Token{Type: ty, Start: i, Stop: i + 1, Line: 1, Col: i}
	}
	return NewStream(ts)
}

func roundTrip(t *testing.T, n *atn.Network) *atn.Network {
	t.Helper()
	out, err := atn.Deserialize(atn.Serialize(n))
	if err != nil {
		t.Fatalf("invalid test network: %v", err)
	}
	return out
}

// exprNetwork assembles the left-recursion elimination of
//
//	s: e EOF ;
//	e: e '+' e | INT ;
//
// the way a grammar compiler renders it: a precedence rule whose loop
// alternative is guarded by a precedence predicate and whose recursive
// call carries the next precedence level.
//
//	s: e[0] EOF ;
//	e[p]: INT ( {2 >= p}? '+' e[3] )* ;
func exprNetwork(t *testing.T) (*atn.Network, map[string]int) {
	t.Helper()
	b := atn.NewBuilder(atn.GrammarParser, 2)

	startS := b.AddState(atn.StateRuleStart, 0)
	r0 := b.AddState(atn.StateBasic, 0)
	r1 := b.AddState(atn.StateBasic, 0)
	r2 := b.AddState(atn.StateBasic, 0)
	stopS := b.AddState(atn.StateRuleStop, 0)

	startE := b.AddState(atn.StateRuleStart, 1)
	startE.IsPrecedenceRule = true
	e0 := b.AddState(atn.StateBasic, 1)
	e1 := b.AddState(atn.StateBasic, 1)
	loopEntry := b.AddState(atn.StateStarLoopEntry, 1)
	starBlock := b.AddState(atn.StateStarBlockStart, 1)
	q1 := b.AddState(atn.StateBasic, 1)
	q2 := b.AddState(atn.StateBasic, 1)
	q3 := b.AddState(atn.StateBasic, 1)
	blockEnd := b.AddState(atn.StateBlockEnd, 1)
	loopBack := b.AddState(atn.StateStarLoopBack, 1)
	loopEnd := b.AddState(atn.StateLoopEnd, 1)
	stopE := b.AddState(atn.StateRuleStop, 1)
	starBlock.EndState = blockEnd
	loopEnd.LoopBack = loopBack

	startS.AddTransition(atn.NewEpsilonTransition(r0, -1))
	r0.AddTransition(atn.NewRuleTransition(startE, 1, 0, r1))
	r1.AddTransition(atn.NewAtomTransition(r2, atn.SymbolEOF))
	r2.AddTransition(atn.NewEpsilonTransition(stopS, -1))

	startE.AddTransition(atn.NewEpsilonTransition(e0, -1))
	e0.AddTransition(atn.NewAtomTransition(e1, tokINT))
	e1.AddTransition(atn.NewEpsilonTransition(loopEntry, -1))
	loopEntry.AddTransition(atn.NewEpsilonTransition(starBlock, -1))
	loopEntry.AddTransition(atn.NewEpsilonTransition(loopEnd, -1))
	starBlock.AddTransition(atn.NewPrecedencePredicateTransition(q1, 2))
	q1.AddTransition(atn.NewAtomTransition(q2, tokPLUS))
	q2.AddTransition(atn.NewRuleTransition(startE, 1, 3, q3))
	q3.AddTransition(atn.NewEpsilonTransition(blockEnd, -1))
	blockEnd.AddTransition(atn.NewEpsilonTransition(loopBack, -1))
	loopBack.AddTransition(atn.NewEpsilonTransition(loopEntry, -1))
	loopEnd.AddTransition(atn.NewEpsilonTransition(stopE, -1))

	b.AddRule(startS, 0)
	b.AddRule(startE, 0)
	b.AddDecision(loopEntry)

	nums := map[string]int{
		"r0": r0.Num,
		"q2": q2.Num,
	}
	return roundTrip(t, b.Network()), nums
}

// precRec reports the precedence a parser would be operating at while
// recursing through a left-recursive rule.
type precRec struct {
	prec int
}

func (r *precRec) Sempred(ruleIndex, predIndex int) bool { return true }
func (r *precRec) Precpred(precedence int) bool          { return precedence >= r.prec }
func (r *precRec) Precedence() int                       { return r.prec }

func TestAdaptivePredict_PrecedenceClimbing(t *testing.T) {
	n, nums := exprNetwork(t)
	rec := &precRec{}
	sim := NewSimulator(n, WithRecognizer(rec))

	if !sim.DFA(0).IsPrecedenceDFA() {
		t.Fatal("the loop decision was not recognized as a precedence decision")
	}

	input := tokens(tokINT, tokPLUS, tokINT, tokPLUS, tokINT, atn.SymbolEOF)

	// Rule stacks as the parser would build them: s invokes e from r0, and
	// each loop iteration re-invokes e from q2.
	inS := EmptyRuleStack()
	inE := NewRuleStack(inS, nums["r0"])
	inNestedE := NewRuleStack(inE, nums["q2"])

	// The decision points of parsing "1+1+1": the outer e at precedence 0
	// stays in the loop while input remains, and each recursive e at
	// precedence 3 exits immediately because the guard 2 >= 3 fails.
	steps := []struct {
		caption string
		index   int
		prec    int
		ctx     *RuleStack
		alt     int
	}{
		{"outer e takes the loop at the first +", 1, 0, inE, 1},
		{"nested e rejects the second + and exits", 3, 3, inNestedE, 2},
		{"outer e takes the loop at the second +", 3, 0, inE, 1},
		{"nested e exits at EOF", 5, 3, inNestedE, 2},
		{"outer e exits at EOF", 5, 0, inE, 2},
	}
	for _, step := range steps {
		rec.prec = step.prec
		input.Seek(step.index)
		alt, err := sim.AdaptivePredict(input, 0, step.ctx)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", step.caption, err)
		}
		if alt != step.alt {
			t.Errorf("%v: got alternative %v, want %v", step.caption, alt, step.alt)
		}
		if input.Index() != step.index {
			t.Errorf("%v: stream moved from %v to %v", step.caption, step.index, input.Index())
		}
	}

	// Each precedence level got its own start state in the shared DFA.
	dfa := sim.DFA(0)
	if dfa.PrecedenceStartState(0) == nil || dfa.PrecedenceStartState(3) == nil {
		t.Error("missing precedence start states after prediction")
	}
	if dfa.PrecedenceStartState(0) == dfa.PrecedenceStartState(3) {
		t.Error("precedence levels share a start state")
	}
}

// ambiguousNetwork assembles s: A | A, a decision no amount of input can
// resolve.
func ambiguousNetwork(t *testing.T) *atn.Network {
	t.Helper()
	b := atn.NewBuilder(atn.GrammarParser, 1)

	startS := b.AddState(atn.StateRuleStart, 0)
	block := b.AddState(atn.StateBlockStart, 0)
	b1 := b.AddState(atn.StateBasic, 0)
	b2 := b.AddState(atn.StateBasic, 0)
	c1 := b.AddState(atn.StateBasic, 0)
	c2 := b.AddState(atn.StateBasic, 0)
	end := b.AddState(atn.StateBlockEnd, 0)
	stopS := b.AddState(atn.StateRuleStop, 0)
	block.EndState = end

	startS.AddTransition(atn.NewEpsilonTransition(block, -1))
	block.AddTransition(atn.NewEpsilonTransition(b1, -1))
	block.AddTransition(atn.NewEpsilonTransition(c1, -1))
	b1.AddTransition(atn.NewAtomTransition(b2, tokA))
	b2.AddTransition(atn.NewEpsilonTransition(end, -1))
	c1.AddTransition(atn.NewAtomTransition(c2, tokA))
	c2.AddTransition(atn.NewEpsilonTransition(end, -1))
	end.AddTransition(atn.NewEpsilonTransition(stopS, -1))

	b.AddRule(startS, 0)
	b.AddDecision(block)
	return roundTrip(t, b.Network())
}

// recordingListener counts diagnostic callbacks.
type recordingListener struct {
	ambiguities  int
	fullContexts int
	sensitivity  int
	exact        bool
	ambigAlts    *prediction.AltSet
}

func (l *recordingListener) ReportAmbiguity(dfa *prediction.DFA, startIndex, stopIndex int,
	exact bool, ambigAlts *prediction.AltSet, configs *prediction.ConfigSet) {
	l.ambiguities++
	l.exact = exact
	l.ambigAlts = ambigAlts
}

func (l *recordingListener) ReportAttemptingFullContext(dfa *prediction.DFA, startIndex, stopIndex int,
	conflictingAlts *prediction.AltSet, configs *prediction.ConfigSet) {
	l.fullContexts++
}

func (l *recordingListener) ReportContextSensitivity(dfa *prediction.DFA, startIndex, stopIndex int,
	prediction int, configs *prediction.ConfigSet) {
	l.sensitivity++
}

func TestAdaptivePredict_ExactAmbiguity(t *testing.T) {
	n := ambiguousNetwork(t)
	listener := &recordingListener{}
	sim := NewSimulator(n,
		WithMode(prediction.ModeLLExactAmbigDetection),
		WithListener(listener))

	input := tokens(tokA, atn.SymbolEOF)
	alt, err := sim.AdaptivePredict(input, 0, EmptyRuleStack())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// An unresolvable ambiguity resolves to the lowest alternative.
	if alt != 1 {
		t.Errorf("got alternative %v, want 1", alt)
	}
	if listener.fullContexts != 1 {
		t.Errorf("got %v full-context attempts, want 1", listener.fullContexts)
	}
	if listener.ambiguities != 1 {
		t.Fatalf("got %v ambiguity reports, want 1", listener.ambiguities)
	}
	if !listener.exact {
		t.Error("the ambiguity was not reported as exact")
	}
	if alts := listener.ambigAlts.Alts(); len(alts) != 2 || alts[0] != 1 || alts[1] != 2 {
		t.Errorf("got ambiguous alternatives %v, want [1 2]", alts)
	}
}

func TestAdaptivePredict_SLLStopsAtConflict(t *testing.T) {
	n := ambiguousNetwork(t)
	listener := &recordingListener{}
	sim := NewSimulator(n,
		WithMode(prediction.ModeSLL),
		WithListener(listener))

	input := tokens(tokA, atn.SymbolEOF)
	alt, err := sim.AdaptivePredict(input, 0, EmptyRuleStack())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alt != 1 {
		t.Errorf("got alternative %v, want 1", alt)
	}
	// SLL commits at the conflict without escalating.
	if listener.fullContexts != 0 {
		t.Errorf("got %v full-context attempts, want 0", listener.fullContexts)
	}
}

// parenNetwork assembles e: INT | '(' e ')', a decision the first token
// always settles.
func parenNetwork(t *testing.T) *atn.Network {
	t.Helper()
	b := atn.NewBuilder(atn.GrammarParser, 3)

	startE := b.AddState(atn.StateRuleStart, 0)
	block := b.AddState(atn.StateBlockStart, 0)
	a1 := b.AddState(atn.StateBasic, 0)
	a2 := b.AddState(atn.StateBasic, 0)
	p1 := b.AddState(atn.StateBasic, 0)
	p2 := b.AddState(atn.StateBasic, 0)
	p3 := b.AddState(atn.StateBasic, 0)
	p4 := b.AddState(atn.StateBasic, 0)
	end := b.AddState(atn.StateBlockEnd, 0)
	stopE := b.AddState(atn.StateRuleStop, 0)
	block.EndState = end

	startE.AddTransition(atn.NewEpsilonTransition(block, -1))
	block.AddTransition(atn.NewEpsilonTransition(a1, -1))
	block.AddTransition(atn.NewEpsilonTransition(p1, -1))
	a1.AddTransition(atn.NewAtomTransition(a2, tokINT))
	a2.AddTransition(atn.NewEpsilonTransition(end, -1))
	p1.AddTransition(atn.NewAtomTransition(p2, tokLParen))
	p2.AddTransition(atn.NewRuleTransition(startE, 0, 0, p3))
	p3.AddTransition(atn.NewAtomTransition(p4, tokRParen))
	p4.AddTransition(atn.NewEpsilonTransition(end, -1))
	end.AddTransition(atn.NewEpsilonTransition(stopE, -1))

	b.AddRule(startE, 0)
	b.AddDecision(block)
	return roundTrip(t, b.Network())
}

func TestAdaptivePredict_CachesDecisions(t *testing.T) {
	n := parenNetwork(t)
	sim := NewSimulator(n)

	input := tokens(tokINT, atn.SymbolEOF)
	alt, err := sim.AdaptivePredict(input, 0, EmptyRuleStack())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alt != 1 {
		t.Errorf("got alternative %v, want 1", alt)
	}

	cached := sim.DFA(0).NumStates()
	if cached == 0 {
		t.Fatal("no DFA states were cached")
	}

	// A second prediction over the same token is answered from the DFA
	// without growing it.
	input = tokens(tokINT, tokRParen)
	alt, err = sim.AdaptivePredict(input, 0, EmptyRuleStack())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alt != 1 {
		t.Errorf("got alternative %v, want 1", alt)
	}
	if got := sim.DFA(0).NumStates(); got != cached {
		t.Errorf("DFA grew from %v to %v states on a cached prediction", cached, got)
	}

	input = tokens(tokLParen, tokINT, tokRParen, atn.SymbolEOF)
	alt, err = sim.AdaptivePredict(input, 0, EmptyRuleStack())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alt != 2 {
		t.Errorf("got alternative %v, want 2", alt)
	}
}

func TestAdaptivePredict_NoViableAlt(t *testing.T) {
	n := parenNetwork(t)
	sim := NewSimulator(n)

	input := tokens(tokRParen, atn.SymbolEOF)
	_, err := sim.AdaptivePredict(input, 0, EmptyRuleStack())
	var nva *NoViableAltError
	if !errors.As(err, &nva) {
		t.Fatalf("got %v, want NoViableAltError", err)
	}
	if nva.Decision != 0 || nva.StartIndex != 0 {
		t.Errorf("unexpected error detail: %+v", nva)
	}
	if nva.Offending == nil || nva.Offending.Type != tokRParen {
		t.Errorf("got offending token %v, want the unmatched parenthesis", nva.Offending)
	}
}

func TestStream_FiltersChannels(t *testing.T) {
	raw := []*lexer.Token{
		{Type: 1, Channel: lexer.ChannelDefault},
		{Type: 9, Channel: lexer.ChannelHidden},
		{Type: 2, Channel: lexer.ChannelDefault},
	}
	s := NewStream(raw)
	if s.Size() != 3 {
		t.Fatalf("got %v tokens, want 2 plus EOF", s.Size())
	}
	if s.LA(1) != 1 || s.LA(2) != 2 || s.LA(3) != atn.SymbolEOF {
		t.Error("hidden-channel token leaked into the stream")
	}
	// Lookahead clamps at EOF.
	if s.LA(9) != atn.SymbolEOF {
		t.Error("lookahead past the end is not EOF")
	}
	s.Consume()
	if s.LT(-1).Type != 1 {
		t.Error("lookback does not see the consumed token")
	}
}
