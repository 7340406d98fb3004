package lexer

import (
	"fmt"

	"github.com/mi9rem/garnet/atn"
	"github.com/mi9rem/garnet/prediction"
)

// Predicates evaluates the predicates referenced by a lexical grammar.
type Predicates interface {
	Sempred(ruleIndex, predIndex int) bool
}

// simState snapshots the most recent accept candidate so the simulator can
// rewind to it when a longer match falls through.
type simState struct {
	index int
	line  int
	col   int
	state *prediction.DFAState
}

// Simulator runs maximal-munch matching over a lexical network. It owns one
// DFA per mode and the context cache shared by all of them. A Simulator is
// not safe for concurrent use.
type Simulator struct {
	net       *atn.Network
	modeToDFA []*prediction.DFA
	ctxCache  *prediction.ContextCache

	ops   atn.LexerOps
	preds Predicates

	mode       int
	startIndex int
	line       int
	col        int
	prevAccept simState
}

// NewSimulator builds a simulator over net. ops receives the side effects
// of lexer actions and may be nil for grammars without actions; preds may
// be nil, which makes every predicate true.
func NewSimulator(net *atn.Network, ops atn.LexerOps, preds Predicates) *Simulator {
	if net.Kind != atn.GrammarLexer {
		panic(fmt.Sprintf("lexer simulator over a %v network", net.Kind))
	}
	dfas := make([]*prediction.DFA, len(net.ModeStart))
	for i, s := range net.ModeStart {
		dfas[i] = prediction.NewDFA(s, i)
	}
	return &Simulator{
		net:       net,
		modeToDFA: dfas,
		ctxCache:  prediction.NewContextCache(),
		ops:       ops,
		preds:     preds,
		line:      1,
	}
}

func (s *Simulator) Line() int {
	return s.line
}

func (s *Simulator) Col() int {
	return s.col
}

// SetPosition primes the line and column counters, for streams that do not
// begin at the start of their source.
func (s *Simulator) SetPosition(line, col int) {
	s.line = line
	s.col = col
}

// DFA exposes the cached automaton of mode, for inspection.
func (s *Simulator) DFA(mode int) *prediction.DFA {
	return s.modeToDFA[mode]
}

// Match consumes the longest prefix matching some rule of mode and returns
// its token type. At end of input with nothing consumed it returns
// SymbolEOF. The input is left after the matched text, or at the point of
// failure when the error is non-nil.
func (s *Simulator) Match(input CharStream, mode int) (int, error) {
	s.mode = mode
	marker := input.Mark()
	defer input.Release(marker)
	s.startIndex = input.Index()
	s.prevAccept = simState{index: -1}
	dfa := s.modeToDFA[mode]
	if dfa.S0() == nil {
		return s.matchATN(input)
	}
	return s.execATN(input, dfa.S0())
}

func (s *Simulator) matchATN(input CharStream) (int, error) {
	s0Closure := s.computeStartState(input, s.net.ModeStart[s.mode])
	suppressEdge := s0Closure.HasSemanticContext
	s0Closure.HasSemanticContext = false
	next := s.addDFAState(s0Closure)
	if !suppressEdge {
		s.modeToDFA[s.mode].SetS0(next)
	}
	return s.execATN(input, next)
}

func (s *Simulator) execATN(input CharStream, ds0 *prediction.DFAState) (int, error) {
	if ds0.IsAccept {
		s.captureSimState(input, ds0)
	}
	t := input.LA(1)
	st := ds0
	for {
		target := st.Edge(t)
		if target == nil {
			target = s.computeTargetState(input, st, t)
		}
		if target == prediction.ErrorState {
			break
		}
		// Consume before accept checks so the snapshot sits after the
		// accepted character.
		if t != atn.SymbolEOF {
			s.consume(input)
		}
		if target.IsAccept {
			s.captureSimState(input, target)
			if t == atn.SymbolEOF {
				break
			}
		}
		t = input.LA(1)
		st = target
	}
	return s.failOrAccept(input, t)
}

func (s *Simulator) computeTargetState(input CharStream, from *prediction.DFAState, t int) *prediction.DFAState {
	reach := prediction.NewOrderedConfigSet()
	s.getReachableConfigSet(input, from.Configs, reach, t)
	if reach.Len() == 0 {
		if !reach.HasSemanticContext {
			s.addDFAEdge(from, t, prediction.ErrorState)
		}
		return prediction.ErrorState
	}
	return s.addDFAEdgeConfigs(from, t, reach)
}

// getReachableConfigSet advances every config of closure over t. Once an
// alternative reaches an accept state, later configs of the same
// alternative that passed through a non-greedy decision are dropped: the
// non-greedy match must not grow.
func (s *Simulator) getReachableConfigSet(input CharStream, closure, reach *prediction.ConfigSet, t int) {
	skipAlt := prediction.InvalidAlt
	for _, cfg := range closure.Configs() {
		currentAltReachedAcceptState := cfg.Alt == skipAlt
		if currentAltReachedAcceptState && cfg.PassedThroughNonGreedy {
			continue
		}
		for _, trans := range cfg.State.Transitions {
			target := s.getReachableTarget(trans, t)
			if target == nil {
				continue
			}
			exec := cfg.Executor
			if exec != nil {
				exec = exec.FixOffsetBeforeMatch(input.Index() - s.startIndex)
			}
			treatEOFAsEpsilon := t == atn.SymbolEOF
			derived := derive(cfg.WithExecutor(cfg.State, exec), target)
			if s.closure(input, derived, reach, currentAltReachedAcceptState, true, treatEOFAsEpsilon) {
				skipAlt = cfg.Alt
				break
			}
		}
	}
}

func (s *Simulator) getReachableTarget(trans *atn.Transition, t int) *atn.State {
	if trans.Matches(t, 0, s.net.MaxSymbol) {
		return trans.Target
	}
	return nil
}

func (s *Simulator) computeStartState(input CharStream, modeStart *atn.State) *prediction.ConfigSet {
	configs := prediction.NewOrderedConfigSet()
	for i, trans := range modeStart.Transitions {
		cfg := prediction.NewConfig(trans.Target, i+1, prediction.Empty, prediction.None)
		s.closure(input, cfg, configs, false, false, false)
	}
	return configs
}

// closure adds cfg and everything epsilon-reachable from it to configs. It
// reports whether the current alternative reached an accept state.
func (s *Simulator) closure(input CharStream, cfg *prediction.Config, configs *prediction.ConfigSet,
	currentAltReachedAcceptState, speculative, treatEOFAsEpsilon bool) bool {

	if cfg.State.Kind == atn.StateRuleStop {
		if cfg.Ctx.HasEmptyPath() {
			if cfg.Ctx.IsEmpty() {
				configs.Add(cfg, nil)
				return true
			}
			configs.Add(cfg.WithContext(cfg.State, prediction.Empty), nil)
			currentAltReachedAcceptState = true
		}
		for i := 0; i < cfg.Ctx.Length(); i++ {
			if cfg.Ctx.ReturnState(i) == prediction.EmptyReturnState {
				continue
			}
			returnState := s.net.States[cfg.Ctx.ReturnState(i)]
			cont := derive(cfg.WithContext(cfg.State, cfg.Ctx.Parent(i)), returnState)
			currentAltReachedAcceptState = s.closure(input, cont, configs,
				currentAltReachedAcceptState, speculative, treatEOFAsEpsilon)
		}
		return currentAltReachedAcceptState
	}

	if !cfg.State.EpsilonOnly {
		if !currentAltReachedAcceptState || !cfg.PassedThroughNonGreedy {
			configs.Add(cfg, nil)
		}
	}
	for _, trans := range cfg.State.Transitions {
		if c := s.getEpsilonTarget(input, cfg, trans, configs, speculative, treatEOFAsEpsilon); c != nil {
			currentAltReachedAcceptState = s.closure(input, c, configs,
				currentAltReachedAcceptState, speculative, treatEOFAsEpsilon)
		}
	}
	return currentAltReachedAcceptState
}

func (s *Simulator) getEpsilonTarget(input CharStream, cfg *prediction.Config, trans *atn.Transition,
	configs *prediction.ConfigSet, speculative, treatEOFAsEpsilon bool) *prediction.Config {

	switch trans.Kind {
	case atn.TransitionRule:
		ctx := prediction.Singleton(cfg.Ctx, trans.FollowState.Num)
		return derive(cfg.WithContext(cfg.State, ctx), trans.Target)

	case atn.TransitionPredicate:
		// The predicate outcome may depend on where the match started, so
		// the decision is not cacheable: the set is poisoned and the DFA
		// edge suppressed.
		configs.HasSemanticContext = true
		if s.evaluatePredicate(input, trans.RuleIndex, trans.PredIndex, speculative) {
			return derive(cfg, trans.Target)
		}
		return nil

	case atn.TransitionAction:
		if cfg.Ctx.HasEmptyPath() {
			// Actions only fire for the outermost rule; a config still
			// inside a called rule keeps its executor unchanged.
			exec := atn.AppendExecutor(cfg.Executor, s.net.LexerActions[trans.ActionIndex])
			return derive(cfg.WithExecutor(cfg.State, exec), trans.Target)
		}
		return derive(cfg, trans.Target)

	case atn.TransitionEpsilon:
		return derive(cfg, trans.Target)

	case atn.TransitionPrecedence:
		panic("precedence predicate in a lexical grammar")

	case atn.TransitionAtom, atn.TransitionRange, atn.TransitionSet,
		atn.TransitionNotSet, atn.TransitionWildcard:
		if treatEOFAsEpsilon && trans.Matches(atn.SymbolEOF, 0, s.net.MaxSymbol) {
			return derive(cfg, trans.Target)
		}
		return nil
	}
	return nil
}

func (s *Simulator) evaluatePredicate(input CharStream, ruleIndex, predIndex int, speculative bool) bool {
	if s.preds == nil {
		return true
	}
	if !speculative {
		return s.preds.Sempred(ruleIndex, predIndex)
	}
	savedLine, savedCol := s.line, s.col
	index := input.Index()
	marker := input.Mark()
	defer func() {
		s.line, s.col = savedLine, savedCol
		input.Seek(index)
		input.Release(marker)
	}()
	s.consume(input)
	return s.preds.Sempred(ruleIndex, predIndex)
}

func (s *Simulator) captureSimState(input CharStream, state *prediction.DFAState) {
	s.prevAccept = simState{
		index: input.Index(),
		line:  s.line,
		col:   s.col,
		state: state,
	}
}

func (s *Simulator) failOrAccept(input CharStream, t int) (int, error) {
	if s.prevAccept.index >= 0 {
		s.accept(input, s.prevAccept)
		return s.prevAccept.state.Prediction, nil
	}
	if t == atn.SymbolEOF && input.Index() == s.startIndex {
		return atn.SymbolEOF, nil
	}
	return 0, &NoViableAltError{
		StartIndex: s.startIndex,
		Index:      input.Index(),
		Line:       s.line,
		Col:        s.col,
		Mode:       s.mode,
	}
}

func (s *Simulator) accept(input CharStream, acc simState) {
	input.Seek(acc.index)
	s.line = acc.line
	s.col = acc.col
	if acc.state.Executor != nil && s.ops != nil {
		acc.state.Executor.Execute(s.ops, input, s.startIndex)
	}
}

func (s *Simulator) addDFAEdgeConfigs(from *prediction.DFAState, t int, configs *prediction.ConfigSet) *prediction.DFAState {
	suppressEdge := configs.HasSemanticContext
	configs.HasSemanticContext = false
	to := s.addDFAState(configs)
	if !suppressEdge {
		s.addDFAEdge(from, t, to)
	}
	return to
}

func (s *Simulator) addDFAEdge(from *prediction.DFAState, t int, to *prediction.DFAState) {
	from.SetEdge(t, to)
}

func (s *Simulator) addDFAState(configs *prediction.ConfigSet) *prediction.DFAState {
	proposed := prediction.NewDFAState(-1, configs)
	if cfg := firstRuleStopConfig(configs); cfg != nil {
		proposed.IsAccept = true
		proposed.Executor = cfg.Executor
		proposed.Prediction = s.net.RuleToTokenType[cfg.State.RuleIndex]
	}
	configs.OptimizeConfigs(s.ctxCache)
	configs.SetReadOnly()
	return s.modeToDFA[s.mode].Intern(proposed)
}

// firstRuleStopConfig returns the stop-state config of the highest-priority
// rule, relying on closure's insertion order.
func firstRuleStopConfig(configs *prediction.ConfigSet) *prediction.Config {
	for _, c := range configs.Configs() {
		if c.State.Kind == atn.StateRuleStop {
			return c
		}
	}
	return nil
}

func (s *Simulator) consume(input CharStream) {
	if input.LA(1) == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}
	input.Consume()
}

// derive relocates c to target, recording a pass through a non-greedy
// decision.
func derive(c *prediction.Config, target *atn.State) *prediction.Config {
	d := c.WithState(target)
	if target.Kind.IsDecision() && target.NonGreedy {
		d.PassedThroughNonGreedy = true
	}
	return d
}
