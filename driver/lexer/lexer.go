package lexer

import (
	"github.com/mi9rem/garnet/atn"
)

// Internal token types used by skip/more actions before a real type is
// assigned.
const (
	tokenInvalid = 0
	tokenMore    = -2
	tokenSkip    = -3
)

// DefaultMode is the mode every lexer starts in.
const DefaultMode = 0

type option func(l *Lexer)

// WithPredicates supplies the predicate implementations the grammar
// references.
func WithPredicates(preds Predicates) option {
	return func(l *Lexer) {
		l.preds = preds
	}
}

// WithActionHandler supplies the function invoked for custom lexer
// actions.
func WithActionHandler(handle func(ruleIndex, actionIndex int)) option {
	return func(l *Lexer) {
		l.handleAction = handle
	}
}

// Lexer drives a Simulator over one input, applying skip/more/mode logic
// and producing tokens.
type Lexer struct {
	net   *atn.Network
	input CharStream
	sim   *Simulator

	preds        Predicates
	handleAction func(ruleIndex, actionIndex int)

	mode      int
	modeStack []int

	tokenStartIndex int
	tokenStartLine  int
	tokenStartCol   int
	tokenType       int
	channel         int

	hitEOF bool
}

func NewLexer(net *atn.Network, input CharStream, opts ...option) *Lexer {
	l := &Lexer{
		net:   net,
		input: input,
		mode:  DefaultMode,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.sim = NewSimulator(net, l, l.preds)
	return l
}

// Next returns the next token on any channel. At end of input it returns
// an EOF token, repeatedly. Unmatchable input yields a *NoViableAltError
// with the stream left at the failure point.
func (l *Lexer) Next() (*Token, error) {
outer:
	for {
		if l.hitEOF {
			return l.emitEOF(), nil
		}
		l.tokenStartIndex = l.input.Index()
		l.tokenStartLine = l.sim.Line()
		l.tokenStartCol = l.sim.Col()
		l.channel = ChannelDefault
		for {
			l.tokenType = tokenInvalid
			ttype, err := l.sim.Match(l.input, l.mode)
			if err != nil {
				return nil, err
			}
			if l.input.LA(1) == atn.SymbolEOF {
				l.hitEOF = true
			}
			if l.tokenType == tokenInvalid {
				l.tokenType = ttype
			}
			switch l.tokenType {
			case tokenSkip:
				continue outer
			case tokenMore:
				continue
			}
			return l.emit(), nil
		}
	}
}

func (l *Lexer) emit() *Token {
	stop := l.input.Index()
	return &Token{
		Type:    l.tokenType,
		Channel: l.channel,
		Start:   l.tokenStartIndex,
		Stop:    stop,
		Line:    l.tokenStartLine,
		Col:     l.tokenStartCol,
		Lexeme:  l.input.Text(l.tokenStartIndex, stop),
	}
}

func (l *Lexer) emitEOF() *Token {
	pos := l.input.Index()
	return &Token{
		Type:    atn.SymbolEOF,
		Channel: ChannelDefault,
		Start:   pos,
		Stop:    pos,
		Line:    l.sim.Line(),
		Col:     l.sim.Col(),
	}
}

// Mode returns the current lexical mode.
func (l *Lexer) Mode() int {
	return l.mode
}

// Simulator exposes the underlying simulator, for DFA inspection.
func (l *Lexer) Simulator() *Simulator {
	return l.sim
}

// The atn.LexerOps implementation below receives the action side effects
// the simulator replays on accept.

func (l *Lexer) SetType(tokenType int) {
	l.tokenType = tokenType
}

func (l *Lexer) SetChannel(channel int) {
	l.channel = channel
}

func (l *Lexer) SetMode(mode int) {
	l.mode = mode
}

func (l *Lexer) PushMode(mode int) {
	l.modeStack = append(l.modeStack, l.mode)
	l.mode = mode
}

func (l *Lexer) PopMode() {
	if len(l.modeStack) == 0 {
		panic("pop on an empty mode stack")
	}
	l.mode = l.modeStack[len(l.modeStack)-1]
	l.modeStack = l.modeStack[:len(l.modeStack)-1]
}

func (l *Lexer) More() {
	l.tokenType = tokenMore
}

func (l *Lexer) Skip() {
	l.tokenType = tokenSkip
}

func (l *Lexer) Action(ruleIndex, actionIndex int) {
	if l.handleAction != nil {
		l.handleAction(ruleIndex, actionIndex)
	}
}
