package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/mi9rem/garnet/atn"
	"github.com/mi9rem/garnet/interval"
)

// Token types of the test grammar.
const (
	kindIF = 1
	kindID = 2
	kindWS = 3
)

// buildTestNetwork assembles a lexer equivalent to:
//
//	IF: 'if' ;
//	ID: [a-z] [a-z]* ;
//	WS: [ \n] -> skip ;
//
// Rule order gives IF priority over ID on equal-length matches.
func buildTestNetwork(t *testing.T) *atn.Network {
	t.Helper()
	b := atn.NewBuilder(atn.GrammarLexer, 127)

	mode := b.AddState(atn.StateTokenStart, 0)

	startIF := b.AddState(atn.StateRuleStart, 0)
	f0 := b.AddState(atn.StateBasic, 0)
	f1 := b.AddState(atn.StateBasic, 0)
	f2 := b.AddState(atn.StateBasic, 0)
	stopIF := b.AddState(atn.StateRuleStop, 0)
	startIF.AddTransition(atn.NewEpsilonTransition(f0, -1))
	f0.AddTransition(atn.NewAtomTransition(f1, 'i'))
	f1.AddTransition(atn.NewAtomTransition(f2, 'f'))
	f2.AddTransition(atn.NewEpsilonTransition(stopIF, -1))

	startID := b.AddState(atn.StateRuleStart, 1)
	a0 := b.AddState(atn.StateBasic, 1)
	a1 := b.AddState(atn.StateBasic, 1)
	loopEntry := b.AddState(atn.StateStarLoopEntry, 1)
	starBlock := b.AddState(atn.StateStarBlockStart, 1)
	g1 := b.AddState(atn.StateBasic, 1)
	blockEnd := b.AddState(atn.StateBlockEnd, 1)
	loopBack := b.AddState(atn.StateStarLoopBack, 1)
	loopEnd := b.AddState(atn.StateLoopEnd, 1)
	stopID := b.AddState(atn.StateRuleStop, 1)
	starBlock.EndState = blockEnd
	loopEnd.LoopBack = loopBack
	startID.AddTransition(atn.NewEpsilonTransition(a0, -1))
	a0.AddTransition(atn.NewRangeTransition(a1, 'a', 'z'+1))
	a1.AddTransition(atn.NewEpsilonTransition(loopEntry, -1))
	loopEntry.AddTransition(atn.NewEpsilonTransition(starBlock, -1))
	loopEntry.AddTransition(atn.NewEpsilonTransition(loopEnd, -1))
	starBlock.AddTransition(atn.NewRangeTransition(g1, 'a', 'z'+1))
	g1.AddTransition(atn.NewEpsilonTransition(blockEnd, -1))
	blockEnd.AddTransition(atn.NewEpsilonTransition(loopBack, -1))
	loopBack.AddTransition(atn.NewEpsilonTransition(loopEntry, -1))
	loopEnd.AddTransition(atn.NewEpsilonTransition(stopID, -1))

	wsChars := interval.NewSet()
	wsChars.AddOne(' ')
	wsChars.AddOne('\n')
	skip := b.AddLexerAction(atn.LexerAction{Kind: atn.LexerActionSkip})
	startWS := b.AddState(atn.StateRuleStart, 2)
	w0 := b.AddState(atn.StateBasic, 2)
	w1 := b.AddState(atn.StateBasic, 2)
	w2 := b.AddState(atn.StateBasic, 2)
	stopWS := b.AddState(atn.StateRuleStop, 2)
	startWS.AddTransition(atn.NewEpsilonTransition(w0, -1))
	w0.AddTransition(atn.NewSetTransition(w1, wsChars))
	w1.AddTransition(atn.NewActionTransition(w2, 2, skip, false))
	w2.AddTransition(atn.NewEpsilonTransition(stopWS, -1))

	mode.AddTransition(atn.NewEpsilonTransition(startIF, -1))
	mode.AddTransition(atn.NewEpsilonTransition(startID, -1))
	mode.AddTransition(atn.NewEpsilonTransition(startWS, -1))

	b.AddRule(startIF, kindIF)
	b.AddRule(startID, kindID)
	b.AddRule(startWS, kindWS)
	b.AddMode(mode)
	b.AddDecision(mode)
	b.AddDecision(loopEntry)

	n, err := atn.Deserialize(atn.Serialize(b.Network()))
	if err != nil {
		t.Fatalf("invalid test network: %v", err)
	}
	return n
}

func TestLexer_Next(t *testing.T) {
	type expected struct {
		kind   int
		lexeme string
		line   int
		col    int
	}
	tests := []struct {
		caption string
		src     string
		tokens  []expected
	}{
		{
			caption: "keyword wins over identifier on equal length",
			src:     "if",
			tokens: []expected{
				{kindIF, "if", 1, 0},
			},
		},
		{
			caption: "longest match wins over rule priority",
			src:     "ifx if",
			tokens: []expected{
				{kindID, "ifx", 1, 0},
				{kindIF, "if", 1, 4},
			},
		},
		{
			caption: "identifier prefixes of the keyword",
			src:     "i ifer",
			tokens: []expected{
				{kindID, "i", 1, 0},
				{kindID, "ifer", 1, 2},
			},
		},
		{
			caption: "newlines are skipped and counted",
			src:     "ab\ncd",
			tokens: []expected{
				{kindID, "ab", 1, 0},
				{kindID, "cd", 2, 0},
			},
		},
		{
			caption: "empty input",
			src:     "",
			tokens:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			l := NewLexer(buildTestNetwork(t), NewStream(tt.src))
			for i, want := range tt.tokens {
				tok, err := l.Next()
				if err != nil {
					t.Fatalf("token %v: unexpected error: %v", i, err)
				}
				if tok.Type != want.kind || tok.Lexeme != want.lexeme {
					t.Errorf("token %v: got %v %q, want %v %q", i, tok.Type, tok.Lexeme, want.kind, want.lexeme)
				}
				if tok.Line != want.line || tok.Col != want.col {
					t.Errorf("token %v: got position %v:%v, want %v:%v", i, tok.Line, tok.Col, want.line, want.col)
				}
			}
			for i := 0; i < 2; i++ {
				tok, err := l.Next()
				if err != nil {
					t.Fatalf("unexpected error at EOF: %v", err)
				}
				if !tok.EOF() {
					t.Fatalf("got %v, want EOF", tok)
				}
			}
		})
	}
}

func TestLexer_NoViableAlt(t *testing.T) {
	l := NewLexer(buildTestNetwork(t), NewStream("ab ?"))

	tok, err := l.Next()
	if err != nil || tok.Type != kindID {
		t.Fatalf("got %v, %v, want leading identifier", tok, err)
	}

	_, err = l.Next()
	var nva *NoViableAltError
	if !errors.As(err, &nva) {
		t.Fatalf("got %v, want NoViableAltError", err)
	}
	if nva.Line != 1 || nva.Col != 3 {
		t.Errorf("got failure position %v:%v, want 1:3", nva.Line, nva.Col)
	}
}

func TestLexer_DFAIsReused(t *testing.T) {
	n := buildTestNetwork(t)
	l := NewLexer(n, NewStream("ab ab ab"))
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.EOF() {
			break
		}
	}
	// Identical token shapes collapse into a handful of cached states.
	if got := l.Simulator().DFA(DefaultMode).NumStates(); got == 0 {
		t.Fatal("no DFA states were cached")
	}
}

func TestStreamFromReader(t *testing.T) {
	s, err := NewStreamFromReader(strings.NewReader("ab"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Size() != 2 || s.LA(1) != 'a' || s.LA(2) != 'b' || s.LA(3) != atn.SymbolEOF {
		t.Fatalf("unexpected stream contents")
	}
	s.Consume()
	if s.LA(-1) != 'a' || s.LA(1) != 'b' {
		t.Fatalf("unexpected lookaround after consume")
	}
}
