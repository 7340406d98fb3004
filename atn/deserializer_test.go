package atn

import (
	"testing"

	"github.com/mi9rem/garnet/interval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLexerNetwork assembles a one-mode lexer with two rules:
//
//	A (type 1): 'a'
//	W (type 2): [ \t]+ rendered as a single set match, skip action
func buildLexerNetwork() *Network {
	b := NewBuilder(GrammarLexer, 127)

	mode := b.AddState(StateTokenStart, 0)

	startA := b.AddState(StateRuleStart, 0)
	a0 := b.AddState(StateBasic, 0)
	a1 := b.AddState(StateBasic, 0)
	stopA := b.AddState(StateRuleStop, 0)
	startA.AddTransition(NewEpsilonTransition(a0, -1))
	a0.AddTransition(NewAtomTransition(a1, 'a'))
	a1.AddTransition(NewEpsilonTransition(stopA, -1))

	ws := interval.NewSet()
	ws.AddOne(' ')
	ws.AddOne('\t')
	skip := b.AddLexerAction(LexerAction{Kind: LexerActionSkip})
	startW := b.AddState(StateRuleStart, 1)
	w0 := b.AddState(StateBasic, 1)
	w1 := b.AddState(StateBasic, 1)
	w2 := b.AddState(StateBasic, 1)
	stopW := b.AddState(StateRuleStop, 1)
	startW.AddTransition(NewEpsilonTransition(w0, -1))
	w0.AddTransition(NewSetTransition(w1, ws))
	w1.AddTransition(NewActionTransition(w2, 1, skip, false))
	w2.AddTransition(NewEpsilonTransition(stopW, -1))

	mode.AddTransition(NewEpsilonTransition(startA, -1))
	mode.AddTransition(NewEpsilonTransition(startW, -1))

	b.AddRule(startA, 1)
	b.AddRule(startW, 2)
	b.AddMode(mode)
	b.AddDecision(mode)
	return b.Network()
}

// buildParserNetwork assembles:
//
//	s: e EOF
//	e: INT | '(' e ')'
//
// with INT=1, LPAREN=2, RPAREN=3.
func buildParserNetwork() *Network {
	b := NewBuilder(GrammarParser, 3)

	startS := b.AddState(StateRuleStart, 0)
	s0 := b.AddState(StateBasic, 0)
	s1 := b.AddState(StateBasic, 0)
	s2 := b.AddState(StateBasic, 0)
	stopS := b.AddState(StateRuleStop, 0)

	startE := b.AddState(StateRuleStart, 1)
	block := b.AddState(StateBlockStart, 1)
	alt1a := b.AddState(StateBasic, 1)
	alt1b := b.AddState(StateBasic, 1)
	alt2a := b.AddState(StateBasic, 1)
	alt2b := b.AddState(StateBasic, 1)
	alt2c := b.AddState(StateBasic, 1)
	alt2d := b.AddState(StateBasic, 1)
	end := b.AddState(StateBlockEnd, 1)
	stopE := b.AddState(StateRuleStop, 1)
	block.EndState = end

	startS.AddTransition(NewEpsilonTransition(s0, -1))
	s0.AddTransition(NewRuleTransition(startE, 1, 0, s1))
	s1.AddTransition(NewAtomTransition(s2, SymbolEOF))
	s2.AddTransition(NewEpsilonTransition(stopS, -1))

	startE.AddTransition(NewEpsilonTransition(block, -1))
	block.AddTransition(NewEpsilonTransition(alt1a, -1))
	block.AddTransition(NewEpsilonTransition(alt2a, -1))
	alt1a.AddTransition(NewAtomTransition(alt1b, 1))
	alt1b.AddTransition(NewEpsilonTransition(end, -1))
	alt2a.AddTransition(NewAtomTransition(alt2b, 2))
	alt2b.AddTransition(NewRuleTransition(startE, 1, 0, alt2c))
	alt2c.AddTransition(NewAtomTransition(alt2d, 3))
	alt2d.AddTransition(NewEpsilonTransition(end, -1))
	end.AddTransition(NewEpsilonTransition(stopE, -1))

	b.AddRule(startS, 0)
	b.AddRule(startE, 0)
	b.AddDecision(block)
	return b.Network()
}

func TestDeserialize_LexerRoundTrip(t *testing.T) {
	data := Serialize(buildLexerNetwork())
	n, err := Deserialize(data)
	require.NoError(t, err)

	assert.Equal(t, GrammarLexer, n.Kind)
	assert.Equal(t, 127, n.MaxSymbol)
	assert.Len(t, n.States, 10)
	assert.Len(t, n.RuleStart, 2)
	assert.Len(t, n.ModeStart, 1)
	assert.Equal(t, []int{1, 2}, n.RuleToTokenType)
	require.Len(t, n.LexerActions, 1)
	assert.Equal(t, LexerActionSkip, n.LexerActions[0].Kind)

	mode := n.ModeStart[0]
	assert.Equal(t, StateTokenStart, mode.Kind)
	assert.Equal(t, 0, mode.Decision)
	assert.Same(t, mode, n.DecisionState(0))

	for i, start := range n.RuleStart {
		require.NotNil(t, start.StopState, "rule %d", i)
		assert.Same(t, n.RuleStop[i], start.StopState)
	}

	// The set label survives with its contents.
	w0 := n.RuleStart[1].Transitions[0].Target
	trans := w0.Transitions[0]
	assert.Equal(t, TransitionSet, trans.Kind)
	assert.True(t, trans.Label.Contains(' '))
	assert.True(t, trans.Label.Contains('\t'))
	assert.False(t, trans.Label.Contains('a'))
}

func TestDeserialize_ParserRoundTrip(t *testing.T) {
	data := Serialize(buildParserNetwork())
	n, err := Deserialize(data)
	require.NoError(t, err)

	assert.Equal(t, GrammarParser, n.Kind)
	require.Len(t, n.RuleStop, 2)

	// Rule stops get synthesized epsilon edges back to every call site's
	// follow state.
	stopE := n.RuleStop[1]
	require.Len(t, stopE.Transitions, 2)
	var follows []int
	for _, tr := range stopE.Transitions {
		assert.Equal(t, TransitionEpsilon, tr.Kind)
		follows = append(follows, tr.Target.Num)
	}
	assert.ElementsMatch(t, []int{2, 11}, follows)

	block := n.DecisionState(0)
	assert.Equal(t, StateBlockStart, block.Kind)
	require.NotNil(t, block.EndState)
	assert.Same(t, block, block.EndState.StartState)
}

func TestDeserialize_FormatErrors(t *testing.T) {
	valid := Serialize(buildLexerNetwork())

	tests := []struct {
		caption string
		mutate  func(data []int32) []int32
	}{
		{
			caption: "empty payload",
			mutate:  func(data []int32) []int32 { return nil },
		},
		{
			caption: "truncated payload",
			mutate:  func(data []int32) []int32 { return data[:len(data)/2] },
		},
		{
			caption: "unsupported version",
			mutate: func(data []int32) []int32 {
				data[0] = 99
				return data
			},
		},
		{
			caption: "foreign uuid",
			mutate: func(data []int32) []int32 {
				data[1] ^= 1
				return data
			},
		},
		{
			caption: "bad grammar kind",
			mutate: func(data []int32) []int32 {
				data[5] = 7
				return data
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			data := make([]int32, len(valid))
			copy(data, valid)
			n, err := Deserialize(tt.mutate(data))
			assert.Nil(t, n)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
		})
	}
}

func TestNetwork_NextTokens(t *testing.T) {
	data := Serialize(buildParserNetwork())
	n, err := Deserialize(data)
	require.NoError(t, err)

	// At the start of e, either alternative's first token is viable.
	first := n.NextTokens(n.RuleStart[1])
	assert.True(t, first.Contains(1))
	assert.True(t, first.Contains(2))
	assert.False(t, first.Contains(3))
	assert.False(t, first.Contains(SymbolEpsilon))

	// At the end of e, the rule is completable without input.
	last := n.NextTokens(n.RuleStop[1])
	assert.True(t, last.Contains(SymbolEpsilon))

	// After '(' e the next token is ')'.
	alt2c := n.States[11]
	after := n.NextTokens(alt2c)
	assert.True(t, after.Contains(3))
	assert.False(t, after.Contains(1))
}
