package prediction

import (
	"fmt"

	"github.com/mi9rem/garnet/atn"
)

// Mode selects how much work prediction does before declaring a result.
type Mode int

const (
	// ModeSLL never falls back to full context. Fastest; reports a
	// conflict where full context might still disambiguate.
	ModeSLL Mode = iota
	// ModeLL falls back to full-context prediction when SLL conflicts.
	ModeLL
	// ModeLLExactAmbigDetection additionally keeps resolving until the
	// reported ambiguity is exact rather than heuristic.
	ModeLLExactAmbigDetection
)

func (m Mode) String() string {
	switch m {
	case ModeSLL:
		return "SLL"
	case ModeLL:
		return "LL"
	case ModeLLExactAmbigDetection:
		return "LL-exact-ambig-detection"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// HasSLLConflictTerminatingPrediction reports whether SLL prediction can
// stop consuming input at this config set: either every config has reached
// a rule stop, or the set conflicts in a way more input cannot repair.
func HasSLLConflictTerminatingPrediction(mode Mode, configs *ConfigSet) bool {
	// Pure SLL ignores predicates when judging conflicts; strip them so
	// configs differing only in semantic context collapse.
	if mode == ModeSLL && configs.HasSemanticContext {
		dup := NewConfigSet(false)
		for _, c := range configs.Configs() {
			dup.Add(c.WithSemCtx(c.State, None), nil)
		}
		configs = dup
	}
	if AllConfigsInRuleStopStates(configs) {
		return true
	}
	altsets := ConflictingAltSubsets(configs)
	return hasConflictingAltSet(altsets) && !hasStateAssociatedWithOneAlt(configs)
}

// HasConfigInRuleStopState reports whether any config sits on a rule stop.
func HasConfigInRuleStopState(configs *ConfigSet) bool {
	for _, c := range configs.Configs() {
		if c.State.Kind == atn.StateRuleStop {
			return true
		}
	}
	return false
}

// AllConfigsInRuleStopStates reports whether every config sits on a rule
// stop.
func AllConfigsInRuleStopStates(configs *ConfigSet) bool {
	for _, c := range configs.Configs() {
		if c.State.Kind != atn.StateRuleStop {
			return false
		}
	}
	return true
}

// ConflictingAltSubsets groups the configs by (state, context) and returns
// the alternative set of each group. A group with more than one
// alternative is a conflict: the same input prefix in the same context
// reaches the same place under competing alternatives.
func ConflictingAltSubsets(configs *ConfigSet) []*AltSet {
	type group struct {
		stateNum int
		ctx      *Context
		alts     *AltSet
	}
	buckets := make(map[int][]*group)
	var order []*group
	for _, c := range configs.Configs() {
		h := hashFinish(hashUpdate(hashUpdate(hashInit(), c.State.Num), c.Ctx.Hash()), 2)
		var g *group
		for _, candidate := range buckets[h] {
			if candidate.stateNum == c.State.Num && candidate.ctx.Equals(c.Ctx) {
				g = candidate
				break
			}
		}
		if g == nil {
			g = &group{stateNum: c.State.Num, ctx: c.Ctx, alts: &AltSet{}}
			buckets[h] = append(buckets[h], g)
			order = append(order, g)
		}
		g.alts.Add(c.Alt)
	}
	altsets := make([]*AltSet, len(order))
	for i, g := range order {
		altsets[i] = g.alts
	}
	return altsets
}

// hasStateAssociatedWithOneAlt reports whether some network state is
// reached by exactly one alternative, meaning more input may still
// disambiguate.
func hasStateAssociatedWithOneAlt(configs *ConfigSet) bool {
	byState := make(map[int]*AltSet)
	for _, c := range configs.Configs() {
		alts := byState[c.State.Num]
		if alts == nil {
			alts = &AltSet{}
			byState[c.State.Num] = alts
		}
		alts.Add(c.Alt)
	}
	for _, alts := range byState {
		if alts.Len() == 1 {
			return true
		}
	}
	return false
}

func hasConflictingAltSet(altsets []*AltSet) bool {
	for _, alts := range altsets {
		if alts.Len() > 1 {
			return true
		}
	}
	return false
}

// AllSubsetsConflict reports whether every subset has competing
// alternatives.
func AllSubsetsConflict(altsets []*AltSet) bool {
	for _, alts := range altsets {
		if alts.Len() == 1 {
			return false
		}
	}
	return true
}

// AllSubsetsEqual reports whether every subset holds the same
// alternatives.
func AllSubsetsEqual(altsets []*AltSet) bool {
	for _, alts := range altsets[1:] {
		if !alts.Equals(altsets[0]) {
			return false
		}
	}
	return true
}

// ResolvesToJustOneViableAlt returns the single alternative that full
// context prediction would settle on, taking the minimum of each subset,
// or InvalidAlt when the subsets disagree.
func ResolvesToJustOneViableAlt(altsets []*AltSet) int {
	viable := InvalidAlt
	for _, alts := range altsets {
		min := alts.Min()
		if viable == InvalidAlt {
			viable = min
		} else if viable != min {
			return InvalidAlt
		}
	}
	return viable
}

// UniqueAlt returns the lone alternative across all subsets, or
// InvalidAlt.
func UniqueAlt(altsets []*AltSet) int {
	all := JoinAlts(altsets)
	if all.Len() == 1 {
		return all.Min()
	}
	return InvalidAlt
}

// JoinAlts unions the subsets.
func JoinAlts(altsets []*AltSet) *AltSet {
	all := &AltSet{}
	for _, alts := range altsets {
		all.Or(alts)
	}
	return all
}
