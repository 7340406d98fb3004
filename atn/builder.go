package atn

// Builder assembles a network in memory. It performs no validation of its
// own; run the result through Serialize and Deserialize to get the linked,
// verified form the simulators expect.
type Builder struct {
	n *Network
}

func NewBuilder(kind GrammarKind, maxSymbol int) *Builder {
	return &Builder{n: newNetwork(kind, maxSymbol)}
}

func (b *Builder) AddState(kind StateKind, ruleIndex int) *State {
	s := newState(kind, ruleIndex)
	b.n.addState(s)
	return s
}

// AddRule registers start as the entry of the next rule. tokenType is only
// meaningful for lexer grammars.
func (b *Builder) AddRule(start *State, tokenType int) {
	b.n.RuleStart = append(b.n.RuleStart, start)
	if b.n.Kind == GrammarLexer {
		b.n.RuleToTokenType = append(b.n.RuleToTokenType, tokenType)
	}
}

func (b *Builder) AddMode(start *State) {
	b.n.ModeStart = append(b.n.ModeStart, start)
}

// AddDecision assigns s the next decision number.
func (b *Builder) AddDecision(s *State) {
	s.Decision = len(b.n.DecisionStates)
	b.n.DecisionStates = append(b.n.DecisionStates, s)
}

func (b *Builder) AddLexerAction(a LexerAction) int {
	b.n.LexerActions = append(b.n.LexerActions, a)
	return len(b.n.LexerActions) - 1
}

func (b *Builder) Network() *Network {
	return b.n
}
