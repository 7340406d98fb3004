package parser

import (
	"fmt"

	"github.com/mi9rem/garnet/atn"
	"github.com/mi9rem/garnet/prediction"
)

// Recognizer is the parser-side surface prediction consults: predicate
// evaluation plus the precedence the parser is currently operating at.
type Recognizer interface {
	prediction.Recognizer
	Precedence() int
}

type option func(s *Simulator)

// WithMode selects the prediction mode. The default is prediction.ModeLL.
func WithMode(mode prediction.Mode) option {
	return func(s *Simulator) {
		s.mode = mode
	}
}

// WithRecognizer supplies predicate evaluation and the current precedence.
// Without one, every predicate is true and the precedence is zero.
func WithRecognizer(rec Recognizer) option {
	return func(s *Simulator) {
		s.rec = rec
	}
}

// WithListener supplies a diagnostics listener.
func WithListener(listener Listener) option {
	return func(s *Simulator) {
		s.listener = listener
	}
}

// Simulator performs adaptive prediction over a parse network. It owns one
// DFA per decision and the context cache shared by all of them. A
// Simulator is not safe for concurrent use.
type Simulator struct {
	net           *atn.Network
	decisionToDFA []*prediction.DFA
	ctxCache      *prediction.ContextCache

	mode     prediction.Mode
	rec      Recognizer
	listener Listener

	// Per-prediction scratch.
	input        TokenStream
	startIndex   int
	outerContext *RuleStack
	dfa          *prediction.DFA
	mergeCache   *prediction.MergeCache
}

func NewSimulator(net *atn.Network, opts ...option) *Simulator {
	if net.Kind != atn.GrammarParser {
		panic(fmt.Sprintf("parser simulator over a %v network", net.Kind))
	}
	dfas := make([]*prediction.DFA, len(net.DecisionStates))
	for i, s := range net.DecisionStates {
		dfas[i] = prediction.NewDFA(s, i)
	}
	return &Simulator{
		net:           net,
		decisionToDFA: dfas,
		ctxCache:      prediction.NewContextCache(),
		mode:          prediction.ModeLL,
	}
}

// DFA exposes the cached automaton of decision, for inspection.
func (s *Simulator) DFA(decision int) *prediction.DFA {
	return s.decisionToDFA[decision]
}

// AdaptivePredict returns the alternative decision takes on the input
// ahead, consulting and extending the decision's DFA. outerContext is the
// rule stack at the decision point; it is only consulted when prediction
// must fall back to full context. The stream position is restored before
// returning.
func (s *Simulator) AdaptivePredict(input TokenStream, decision int, outerContext *RuleStack) (int, error) {
	s.input = input
	s.startIndex = input.Index()
	s.outerContext = outerContext
	dfa := s.decisionToDFA[decision]
	s.dfa = dfa
	s.mergeCache = prediction.NewMergeCache()
	defer func() {
		s.mergeCache = nil
		s.dfa = nil
	}()

	m := input.Mark()
	index := input.Index()
	defer func() {
		input.Seek(index)
		input.Release(m)
	}()

	var s0 *prediction.DFAState
	if dfa.IsPrecedenceDFA() {
		s0 = dfa.PrecedenceStartState(s.precedence())
	} else {
		s0 = dfa.S0()
	}
	if s0 == nil {
		// The start set is always computed as if at the decision entry;
		// the true outer context only matters for the full-context stage.
		s0Closure := s.computeStartState(dfa.DecisionState, nil, false)
		if dfa.IsPrecedenceDFA() {
			s0Closure = s.applyPrecedenceFilter(s0Closure)
			s0 = s.addDFAState(dfa, prediction.NewDFAState(-1, s0Closure))
			dfa.SetPrecedenceStartState(s.precedence(), s0)
		} else {
			s0 = s.addDFAState(dfa, prediction.NewDFAState(-1, s0Closure))
			dfa.SetS0(s0)
		}
	}
	return s.execATN(dfa, s0, input, index, outerContext)
}

func (s *Simulator) execATN(dfa *prediction.DFA, s0 *prediction.DFAState, input TokenStream,
	startIndex int, outerContext *RuleStack) (int, error) {

	previous := s0
	t := input.LA(1)
	for {
		d := previous.Edge(t)
		if d == nil {
			d = s.computeTargetState(dfa, previous, t)
		}
		if d == prediction.ErrorState {
			// The DFA hit a dead end. Before failing, see whether some
			// alternative already made it out of the decision rule; taking
			// it lets the caller produce a better error downstream.
			e := s.noViableAlt(input, previous.Configs, startIndex)
			input.Seek(startIndex)
			alt := s.synValidOrSemInvalidAltThatFinishedDecisionEntryRule(previous.Configs)
			if alt != prediction.InvalidAlt {
				return alt, nil
			}
			return prediction.InvalidAlt, e
		}

		if d.RequiresFullContext && s.mode != prediction.ModeSLL {
			conflictingAlts := d.Configs.ConflictingAlts
			if d.Predicates != nil {
				conflictIndex := input.Index()
				if conflictIndex != startIndex {
					input.Seek(startIndex)
				}
				conflictingAlts = s.evalSemanticContexts(d.Predicates, true)
				if conflictingAlts.Len() == 1 {
					return conflictingAlts.Min(), nil
				}
				if conflictIndex != startIndex {
					input.Seek(conflictIndex)
				}
			}
			s.reportAttemptingFullContext(dfa, conflictingAlts, d.Configs, startIndex, input.Index())
			s0Closure := s.computeStartState(dfa.DecisionState, outerContext, true)
			return s.execATNWithFullContext(dfa, d, s0Closure, input, startIndex)
		}

		if d.IsAccept {
			if d.Predicates == nil {
				return d.Prediction, nil
			}
			stopIndex := input.Index()
			input.Seek(startIndex)
			alts := s.evalSemanticContexts(d.Predicates, true)
			switch alts.Len() {
			case 0:
				return prediction.InvalidAlt, s.noViableAlt(input, d.Configs, startIndex)
			case 1:
				return alts.Min(), nil
			default:
				// Predicates did not narrow it down to one alternative.
				s.reportAmbiguity(dfa, startIndex, stopIndex, false, alts, d.Configs)
				return alts.Min(), nil
			}
		}

		previous = d
		if t != atn.SymbolEOF {
			input.Consume()
			t = input.LA(1)
		}
	}
}

func (s *Simulator) computeTargetState(dfa *prediction.DFA, previous *prediction.DFAState, t int) *prediction.DFAState {
	reach := s.computeReachSet(previous.Configs, t, false)
	if reach == nil {
		s.addDFAEdge(dfa, previous, t, prediction.ErrorState)
		return prediction.ErrorState
	}

	d := prediction.NewDFAState(-1, reach)
	predictedAlt := uniqueAltOf(reach)
	if predictedAlt != prediction.InvalidAlt {
		d.IsAccept = true
		d.Configs.UniqueAlt = predictedAlt
		d.Prediction = predictedAlt
	} else if prediction.HasSLLConflictTerminatingPrediction(s.mode, reach) {
		conflicting := prediction.JoinAlts(prediction.ConflictingAltSubsets(reach))
		d.Configs.ConflictingAlts = conflicting
		d.RequiresFullContext = true
		d.IsAccept = true
		d.Prediction = conflicting.Min()
	}
	if d.IsAccept && d.Configs.HasSemanticContext {
		s.predicateDFAState(d, dfa.DecisionState)
		if d.Predicates != nil {
			d.Prediction = prediction.InvalidAlt
		}
	}
	return s.addDFAEdge(dfa, previous, t, d)
}

func (s *Simulator) execATNWithFullContext(dfa *prediction.DFA, d *prediction.DFAState,
	s0 *prediction.ConfigSet, input TokenStream, startIndex int) (int, error) {

	foundExactAmbig := false
	var reach *prediction.ConfigSet
	previous := s0
	input.Seek(startIndex)
	t := input.LA(1)
	predictedAlt := prediction.InvalidAlt
	for {
		reach = s.computeReachSet(previous, t, true)
		if reach == nil {
			e := s.noViableAlt(input, previous, startIndex)
			input.Seek(startIndex)
			alt := s.synValidOrSemInvalidAltThatFinishedDecisionEntryRule(previous)
			if alt != prediction.InvalidAlt {
				return alt, nil
			}
			return prediction.InvalidAlt, e
		}

		altSubSets := prediction.ConflictingAltSubsets(reach)
		reach.UniqueAlt = prediction.UniqueAlt(altSubSets)
		if reach.UniqueAlt != prediction.InvalidAlt {
			predictedAlt = reach.UniqueAlt
			break
		}
		if s.mode != prediction.ModeLLExactAmbigDetection {
			predictedAlt = prediction.ResolvesToJustOneViableAlt(altSubSets)
			if predictedAlt != prediction.InvalidAlt {
				break
			}
		} else if prediction.AllSubsetsConflict(altSubSets) && prediction.AllSubsetsEqual(altSubSets) {
			foundExactAmbig = true
			predictedAlt = prediction.JoinAlts(altSubSets).Min()
			break
		}

		previous = reach
		if t != atn.SymbolEOF {
			input.Consume()
			t = input.LA(1)
		}
	}

	if reach.UniqueAlt != prediction.InvalidAlt {
		s.reportContextSensitivity(dfa, predictedAlt, reach, startIndex, input.Index())
		return predictedAlt, nil
	}
	s.reportAmbiguity(dfa, startIndex, input.Index(), foundExactAmbig, reach.Alts(), reach)
	return predictedAlt, nil
}

func (s *Simulator) computeReachSet(closure *prediction.ConfigSet, t int, fullCtx bool) *prediction.ConfigSet {
	intermediate := prediction.NewConfigSet(fullCtx)

	// Stop-state configs cannot move over t themselves, but once the rest
	// of the set has been advanced they may still be the right answer at
	// EOF or under full context.
	var skippedStopStates []*prediction.Config

	for _, c := range closure.Configs() {
		if c.State.Kind == atn.StateRuleStop {
			if fullCtx || t == atn.SymbolEOF {
				skippedStopStates = append(skippedStopStates, c)
			}
			continue
		}
		for _, trans := range c.State.Transitions {
			if target := s.getReachableTarget(trans, t); target != nil {
				intermediate.Add(c.WithState(target), s.mergeCache)
			}
		}
	}

	var reach *prediction.ConfigSet
	if skippedStopStates == nil && t != atn.SymbolEOF {
		if intermediate.Len() == 1 || uniqueAltOf(intermediate) != prediction.InvalidAlt {
			reach = intermediate
		}
	}
	if reach == nil {
		reach = prediction.NewConfigSet(fullCtx)
		busy := newBusySet()
		treatEOFAsEpsilon := t == atn.SymbolEOF
		for _, c := range intermediate.Configs() {
			s.closure(c, reach, busy, false, fullCtx, 0, treatEOFAsEpsilon)
		}
	}
	if t == atn.SymbolEOF {
		reach = s.removeAllConfigsNotInRuleStopState(reach, reach == intermediate)
	}
	if skippedStopStates != nil && (!fullCtx || !prediction.HasConfigInRuleStopState(reach)) {
		for _, c := range skippedStopStates {
			reach.Add(c, s.mergeCache)
		}
	}
	if reach.Len() == 0 {
		return nil
	}
	return reach
}

// removeAllConfigsNotInRuleStopState keeps only stop-state configs. When
// lookToEndOfRule is set, a config sitting on an epsilon-only state whose
// rule end is epsilon-reachable is moved to that end first.
func (s *Simulator) removeAllConfigsNotInRuleStopState(configs *prediction.ConfigSet, lookToEndOfRule bool) *prediction.ConfigSet {
	if prediction.AllConfigsInRuleStopStates(configs) {
		return configs
	}
	result := prediction.NewConfigSet(configs.FullCtx)
	for _, c := range configs.Configs() {
		if c.State.Kind == atn.StateRuleStop {
			result.Add(c, s.mergeCache)
			continue
		}
		if lookToEndOfRule && c.State.EpsilonOnly {
			next := s.net.NextTokens(c.State)
			if next.Contains(atn.SymbolEpsilon) {
				end := s.net.RuleStop[c.State.RuleIndex]
				result.Add(c.WithState(end), s.mergeCache)
			}
		}
	}
	return result
}

func (s *Simulator) computeStartState(p *atn.State, ctx *RuleStack, fullCtx bool) *prediction.ConfigSet {
	initial := prediction.FromRuleStack(s.net, ctx)
	configs := prediction.NewConfigSet(fullCtx)
	for i, t := range p.Transitions {
		c := prediction.NewConfig(t.Target, i+1, initial, nil)
		busy := newBusySet()
		s.closure(c, configs, busy, true, fullCtx, 0, false)
	}
	return configs
}

// applyPrecedenceFilter implements the special seeding of a left-recursive
// decision: for the primary alternative only the configs whose precedence
// predicate can still succeed survive, and the recursive alternatives drop
// any config the primary alternative already covers with the same context.
func (s *Simulator) applyPrecedenceFilter(configs *prediction.ConfigSet) *prediction.ConfigSet {
	statesFromAlt1 := make(map[int]*prediction.Context)
	result := prediction.NewConfigSet(configs.FullCtx)
	for _, c := range configs.Configs() {
		if c.Alt != 1 {
			continue
		}
		updated := c.SemCtx.EvalPrecedence(s)
		if updated == nil {
			continue
		}
		statesFromAlt1[c.State.Num] = c.Ctx
		if updated != c.SemCtx {
			result.Add(c.WithSemCtx(c.State, updated), s.mergeCache)
		} else {
			result.Add(c, s.mergeCache)
		}
	}
	for _, c := range configs.Configs() {
		if c.Alt == 1 {
			continue
		}
		if !c.PrecedenceFilterSuppressed {
			if ctx, ok := statesFromAlt1[c.State.Num]; ok && ctx.Equals(c.Ctx) {
				continue
			}
		}
		result.Add(c, s.mergeCache)
	}
	return result
}

func (s *Simulator) getReachableTarget(trans *atn.Transition, ttype int) *atn.State {
	if trans.Matches(ttype, 0, s.net.MaxSymbol) {
		return trans.Target
	}
	return nil
}

func (s *Simulator) predicateDFAState(d *prediction.DFAState, decisionState *atn.State) {
	nalts := len(decisionState.Transitions)
	altsToCollect := d.Configs.ConflictingAlts
	if d.Configs.UniqueAlt != prediction.InvalidAlt {
		altsToCollect = &prediction.AltSet{}
		altsToCollect.Add(d.Configs.UniqueAlt)
	}
	altToPred := s.predsForAmbigAlts(altsToCollect, d.Configs, nalts)
	if altToPred != nil {
		d.Predicates = s.predicatePredictions(altsToCollect, altToPred)
		d.Prediction = prediction.InvalidAlt
	} else {
		d.Prediction = altsToCollect.Min()
	}
}

func (s *Simulator) predsForAmbigAlts(ambigAlts *prediction.AltSet, configs *prediction.ConfigSet, nalts int) []prediction.SemanticContext {
	altToPred := make([]prediction.SemanticContext, nalts+1)
	for _, c := range configs.Configs() {
		if ambigAlts.Contains(c.Alt) {
			altToPred[c.Alt] = prediction.Or(altToPred[c.Alt], c.SemCtx)
		}
	}
	nPredAlts := 0
	for i := 1; i <= nalts; i++ {
		if altToPred[i] == nil {
			altToPred[i] = prediction.None
		} else if altToPred[i] != prediction.None {
			nPredAlts++
		}
	}
	if nPredAlts == 0 {
		return nil
	}
	return altToPred
}

func (s *Simulator) predicatePredictions(ambigAlts *prediction.AltSet, altToPred []prediction.SemanticContext) []*prediction.PredPrediction {
	var pairs []*prediction.PredPrediction
	containsPredicate := false
	for i := 1; i < len(altToPred); i++ {
		pred := altToPred[i]
		if ambigAlts != nil && ambigAlts.Contains(i) {
			pairs = append(pairs, &prediction.PredPrediction{Pred: pred, Alt: i})
		}
		if pred != prediction.None {
			containsPredicate = true
		}
	}
	if !containsPredicate {
		return nil
	}
	return pairs
}

// evalSemanticContexts evaluates accept-state predicate pairs in
// alternative order. With complete false it stops at the first viable
// alternative.
func (s *Simulator) evalSemanticContexts(pairs []*prediction.PredPrediction, complete bool) *prediction.AltSet {
	predictions := &prediction.AltSet{}
	for _, pair := range pairs {
		if pair.Pred == prediction.None {
			predictions.Add(pair.Alt)
			if !complete {
				break
			}
			continue
		}
		if pair.Pred.Eval(s) {
			predictions.Add(pair.Alt)
			if !complete {
				break
			}
		}
	}
	return predictions
}

// synValidOrSemInvalidAltThatFinishedDecisionEntryRule is the error
// fallback: prefer an alternative that completed the decision rule with
// its predicates satisfied, then one that completed it at all.
func (s *Simulator) synValidOrSemInvalidAltThatFinishedDecisionEntryRule(configs *prediction.ConfigSet) int {
	semValid, semInvalid := s.splitAccordingToSemanticValidity(configs)
	if alt := altThatFinishedDecisionEntryRule(semValid); alt != prediction.InvalidAlt {
		return alt
	}
	if semInvalid.Len() > 0 {
		if alt := altThatFinishedDecisionEntryRule(semInvalid); alt != prediction.InvalidAlt {
			return alt
		}
	}
	return prediction.InvalidAlt
}

func (s *Simulator) splitAccordingToSemanticValidity(configs *prediction.ConfigSet) (succeeded, failed *prediction.ConfigSet) {
	succeeded = prediction.NewConfigSet(configs.FullCtx)
	failed = prediction.NewConfigSet(configs.FullCtx)
	for _, c := range configs.Configs() {
		if c.SemCtx == prediction.None || c.SemCtx.Eval(s) {
			succeeded.Add(c, nil)
		} else {
			failed.Add(c, nil)
		}
	}
	return succeeded, failed
}

func altThatFinishedDecisionEntryRule(configs *prediction.ConfigSet) int {
	alts := &prediction.AltSet{}
	for _, c := range configs.Configs() {
		if c.ReachesIntoOuterContext > 0 ||
			(c.State.Kind == atn.StateRuleStop && c.Ctx.HasEmptyPath()) {
			alts.Add(c.Alt)
		}
	}
	return alts.Min()
}

func (s *Simulator) closure(config *prediction.Config, configs *prediction.ConfigSet, busy *busySet,
	collectPredicates, fullCtx bool, depth int, treatEOFAsEpsilon bool) {

	if config.State.Kind == atn.StateRuleStop {
		if !config.Ctx.IsEmpty() {
			for i := 0; i < config.Ctx.Length(); i++ {
				if config.Ctx.ReturnState(i) == prediction.EmptyReturnState {
					if fullCtx {
						configs.Add(config.WithContext(config.State, prediction.Empty), s.mergeCache)
						continue
					}
					// SLL treats the empty path as a wildcard caller and
					// keeps chasing the follow links below.
					s.closureWork(config, configs, busy, collectPredicates, fullCtx, depth, treatEOFAsEpsilon)
					continue
				}
				returnState := s.net.States[config.Ctx.ReturnState(i)]
				c := config.WithContext(returnState, config.Ctx.Parent(i))
				s.closure(c, configs, busy, collectPredicates, fullCtx, depth-1, treatEOFAsEpsilon)
			}
			return
		}
		if fullCtx {
			configs.Add(config, s.mergeCache)
			return
		}
	}
	s.closureWork(config, configs, busy, collectPredicates, fullCtx, depth, treatEOFAsEpsilon)
}

func (s *Simulator) closureWork(config *prediction.Config, configs *prediction.ConfigSet, busy *busySet,
	collectPredicates, fullCtx bool, depth int, treatEOFAsEpsilon bool) {

	p := config.State
	if !p.EpsilonOnly {
		configs.Add(config, s.mergeCache)
	}
	for _, t := range p.Transitions {
		continueCollecting := collectPredicates && t.Kind != atn.TransitionAction
		c := s.getEpsilonTarget(config, t, continueCollecting, depth == 0, fullCtx, treatEOFAsEpsilon)
		if c == nil {
			continue
		}
		newDepth := depth
		if p.Kind == atn.StateRuleStop {
			// The config escaped past the end of the decision's rule into
			// the surrounding grammar.
			if s.dfa != nil && s.dfa.IsPrecedenceDFA() {
				if t.OutermostPrecedenceReturn == s.dfa.DecisionState.RuleIndex {
					c.PrecedenceFilterSuppressed = true
				}
			}
			c.ReachesIntoOuterContext++
			if !busy.add(c) {
				continue
			}
			configs.DipsIntoOuterContext = true
			newDepth--
		} else {
			if !t.IsEpsilon() && !busy.add(c) {
				continue
			}
			if t.Kind == atn.TransitionRule && newDepth >= 0 {
				newDepth++
			}
		}
		s.closure(c, configs, busy, continueCollecting, fullCtx, newDepth, treatEOFAsEpsilon)
	}
}

func (s *Simulator) getEpsilonTarget(config *prediction.Config, t *atn.Transition,
	collectPredicates, inContext, fullCtx, treatEOFAsEpsilon bool) *prediction.Config {

	switch t.Kind {
	case atn.TransitionRule:
		ctx := prediction.Singleton(config.Ctx, t.FollowState.Num)
		return config.WithContext(t.Target, ctx)
	case atn.TransitionPrecedence:
		return s.precedenceTransition(config, t, collectPredicates, inContext, fullCtx)
	case atn.TransitionPredicate:
		return s.predTransition(config, t, collectPredicates, inContext, fullCtx)
	case atn.TransitionAction, atn.TransitionEpsilon:
		return config.WithState(t.Target)
	case atn.TransitionAtom, atn.TransitionRange, atn.TransitionSet,
		atn.TransitionNotSet, atn.TransitionWildcard:
		if treatEOFAsEpsilon && t.Matches(atn.SymbolEOF, atn.SymbolEOF, s.net.MaxSymbol) {
			return config.WithState(t.Target)
		}
		return nil
	}
	return nil
}

func (s *Simulator) precedenceTransition(config *prediction.Config, t *atn.Transition,
	collectPredicates, inContext, fullCtx bool) *prediction.Config {

	if !collectPredicates || !inContext {
		return config.WithState(t.Target)
	}
	if fullCtx {
		// Under full context the input position is the real decision
		// start, so the predicate can be decided now instead of being
		// carried in the config.
		currentPosition := s.input.Index()
		s.input.Seek(s.startIndex)
		succeeds := s.Precpred(t.Precedence)
		s.input.Seek(currentPosition)
		if succeeds {
			return config.WithState(t.Target)
		}
		return nil
	}
	sem := prediction.And(config.SemCtx, prediction.NewPrecedencePredicate(t.Precedence))
	return config.WithSemCtx(t.Target, sem)
}

func (s *Simulator) predTransition(config *prediction.Config, t *atn.Transition,
	collectPredicates, inContext, fullCtx bool) *prediction.Config {

	if !collectPredicates || (t.CtxDependent && !inContext) {
		return config.WithState(t.Target)
	}
	if fullCtx {
		currentPosition := s.input.Index()
		s.input.Seek(s.startIndex)
		succeeds := s.Sempred(t.RuleIndex, t.PredIndex)
		s.input.Seek(currentPosition)
		if succeeds {
			return config.WithState(t.Target)
		}
		return nil
	}
	sem := prediction.And(config.SemCtx, prediction.NewPredicate(t.RuleIndex, t.PredIndex, t.CtxDependent))
	return config.WithSemCtx(t.Target, sem)
}

func (s *Simulator) addDFAEdge(dfa *prediction.DFA, from *prediction.DFAState, t int, to *prediction.DFAState) *prediction.DFAState {
	if to == nil {
		return nil
	}
	if to != prediction.ErrorState {
		to = s.addDFAState(dfa, to)
	}
	if from == nil || t < atn.SymbolEOF || t > s.net.MaxSymbol {
		return to
	}
	from.SetEdge(t, to)
	return to
}

func (s *Simulator) addDFAState(dfa *prediction.DFA, d *prediction.DFAState) *prediction.DFAState {
	if d == prediction.ErrorState {
		return d
	}
	if !d.Configs.ReadOnly() {
		d.Configs.OptimizeConfigs(s.ctxCache)
		d.Configs.SetReadOnly()
	}
	return dfa.Intern(d)
}

func (s *Simulator) noViableAlt(input TokenStream, configs *prediction.ConfigSet, startIndex int) error {
	decision := 0
	if s.dfa != nil {
		decision = s.dfa.Decision
	}
	return &NoViableAltError{
		Decision:   decision,
		StartIndex: startIndex,
		Offending:  input.LT(1),
		Configs:    configs,
	}
}

func (s *Simulator) reportAttemptingFullContext(dfa *prediction.DFA, conflictingAlts *prediction.AltSet,
	configs *prediction.ConfigSet, startIndex, stopIndex int) {
	if s.listener == nil {
		return
	}
	if conflictingAlts == nil {
		conflictingAlts = configs.Alts()
	}
	s.listener.ReportAttemptingFullContext(dfa, startIndex, stopIndex, conflictingAlts, configs)
}

func (s *Simulator) reportContextSensitivity(dfa *prediction.DFA, predictedAlt int,
	configs *prediction.ConfigSet, startIndex, stopIndex int) {
	if s.listener == nil {
		return
	}
	s.listener.ReportContextSensitivity(dfa, startIndex, stopIndex, predictedAlt, configs)
}

func (s *Simulator) reportAmbiguity(dfa *prediction.DFA, startIndex, stopIndex int, exact bool,
	ambigAlts *prediction.AltSet, configs *prediction.ConfigSet) {
	if s.listener == nil {
		return
	}
	s.listener.ReportAmbiguity(dfa, startIndex, stopIndex, exact, ambigAlts, configs)
}

// Sempred and Precpred make the simulator a prediction.Recognizer,
// delegating to the configured recognizer with permissive defaults.

func (s *Simulator) Sempred(ruleIndex, predIndex int) bool {
	if s.rec == nil {
		return true
	}
	return s.rec.Sempred(ruleIndex, predIndex)
}

func (s *Simulator) Precpred(precedence int) bool {
	if s.rec == nil {
		return true
	}
	return s.rec.Precpred(precedence)
}

func (s *Simulator) precedence() int {
	if s.rec == nil {
		return 0
	}
	return s.rec.Precedence()
}

// uniqueAltOf scans configs directly, unlike prediction.UniqueAlt which
// works on conflict subsets.
func uniqueAltOf(configs *prediction.ConfigSet) int {
	alt := prediction.InvalidAlt
	for _, c := range configs.Configs() {
		if alt == prediction.InvalidAlt {
			alt = c.Alt
		} else if c.Alt != alt {
			return prediction.InvalidAlt
		}
	}
	return alt
}

// busySet tracks configs already expanded by closure, by full structural
// equality.
type busySet struct {
	buckets map[int][]*prediction.Config
}

func newBusySet() *busySet {
	return &busySet{buckets: make(map[int][]*prediction.Config)}
}

// add reports whether c was not yet present.
func (b *busySet) add(c *prediction.Config) bool {
	h := c.Hash()
	for _, existing := range b.buckets[h] {
		if existing.Equals(c) {
			return false
		}
	}
	b.buckets[h] = append(b.buckets[h], c)
	return true
}
