package prediction

import (
	"testing"

	"github.com/mi9rem/garnet/atn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStates(t *testing.T, kinds ...atn.StateKind) []*atn.State {
	t.Helper()
	b := atn.NewBuilder(atn.GrammarParser, 9)
	states := make([]*atn.State, len(kinds))
	for i, k := range kinds {
		states[i] = b.AddState(k, 0)
	}
	return states
}

func TestConflictingAltSubsets(t *testing.T) {
	ss := testStates(t, atn.StateBasic, atn.StateBasic)
	ctxA := Singleton(Empty, 4)
	ctxB := Singleton(Empty, 5)

	configs := NewConfigSet(false)
	// Same state and context under two alternatives: a conflict pair.
	configs.Add(NewConfig(ss[0], 1, ctxA, nil), nil)
	configs.Add(NewConfig(ss[0], 2, ctxA, nil), nil)
	// Same state, different context: separate subset.
	configs.Add(NewConfig(ss[0], 3, ctxB, nil), nil)
	// Different state entirely.
	configs.Add(NewConfig(ss[1], 1, ctxA, nil), nil)

	subsets := ConflictingAltSubsets(configs)
	require.Len(t, subsets, 3)
	assert.Equal(t, []int{1, 2}, subsets[0].Alts())
	assert.Equal(t, []int{3}, subsets[1].Alts())
	assert.Equal(t, []int{1}, subsets[2].Alts())

	assert.False(t, AllSubsetsConflict(subsets))
	assert.False(t, AllSubsetsEqual(subsets))
	assert.Equal(t, InvalidAlt, UniqueAlt(subsets))
	assert.Equal(t, []int{1, 2, 3}, JoinAlts(subsets).Alts())
}

func TestHasSLLConflictTerminatingPrediction(t *testing.T) {
	t.Run("conflict with no singly-predicted state terminates", func(t *testing.T) {
		ss := testStates(t, atn.StateBasic)
		ctx := Singleton(Empty, 4)
		configs := NewConfigSet(false)
		configs.Add(NewConfig(ss[0], 1, ctx, nil), nil)
		configs.Add(NewConfig(ss[0], 2, ctx, nil), nil)
		assert.True(t, HasSLLConflictTerminatingPrediction(ModeSLL, configs))
		assert.True(t, HasSLLConflictTerminatingPrediction(ModeLL, configs))
	})

	t.Run("a state reached by one alternative keeps prediction going", func(t *testing.T) {
		ss := testStates(t, atn.StateBasic, atn.StateBasic)
		ctx := Singleton(Empty, 4)
		configs := NewConfigSet(false)
		configs.Add(NewConfig(ss[0], 1, ctx, nil), nil)
		configs.Add(NewConfig(ss[0], 2, ctx, nil), nil)
		// More input may still separate the alternatives here.
		configs.Add(NewConfig(ss[1], 1, ctx, nil), nil)
		assert.False(t, HasSLLConflictTerminatingPrediction(ModeLL, configs))
	})

	t.Run("all configs at rule stops terminate", func(t *testing.T) {
		ss := testStates(t, atn.StateRuleStop)
		configs := NewConfigSet(false)
		configs.Add(NewConfig(ss[0], 1, Empty, nil), nil)
		configs.Add(NewConfig(ss[0], 2, Empty, nil), nil)
		assert.True(t, HasSLLConflictTerminatingPrediction(ModeLL, configs))
		assert.True(t, AllConfigsInRuleStopStates(configs))
		assert.True(t, HasConfigInRuleStopState(configs))
	})

	t.Run("SLL strips predicates before judging", func(t *testing.T) {
		ss := testStates(t, atn.StateBasic)
		ctx := Singleton(Empty, 4)
		configs := NewConfigSet(false)
		configs.Add(NewConfig(ss[0], 1, ctx, NewPredicate(0, 0, false)), nil)
		configs.Add(NewConfig(ss[0], 2, ctx, nil), nil)
		assert.True(t, HasSLLConflictTerminatingPrediction(ModeSLL, configs))
	})
}

func TestResolvesToJustOneViableAlt(t *testing.T) {
	mk := func(altsets ...[]int) []*AltSet {
		sets := make([]*AltSet, len(altsets))
		for i, alts := range altsets {
			sets[i] = &AltSet{}
			for _, a := range alts {
				sets[i].Add(a)
			}
		}
		return sets
	}

	assert.Equal(t, 1, ResolvesToJustOneViableAlt(mk([]int{1, 2}, []int{1, 3})))
	assert.Equal(t, InvalidAlt, ResolvesToJustOneViableAlt(mk([]int{1, 2}, []int{2, 3})))
	assert.Equal(t, 2, ResolvesToJustOneViableAlt(mk([]int{2}, []int{2})))

	assert.True(t, AllSubsetsConflict(mk([]int{1, 2}, []int{2, 3})))
	assert.True(t, AllSubsetsEqual(mk([]int{1, 2}, []int{1, 2})))
	assert.Equal(t, 2, UniqueAlt(mk([]int{2}, []int{2})))
}

func TestConfigSet_MergesByKey(t *testing.T) {
	ss := testStates(t, atn.StateBasic)
	configs := NewConfigSet(false)

	added := configs.Add(NewConfig(ss[0], 1, Singleton(Empty, 4), nil), nil)
	assert.True(t, added)
	// Same (state, alt, semantic context): contexts merge in place.
	added = configs.Add(NewConfig(ss[0], 1, Singleton(Empty, 5), nil), nil)
	assert.True(t, added)
	assert.Equal(t, 1, configs.Len())
	assert.Equal(t, 2, configs.Configs()[0].Ctx.Length())

	// A different alternative is a separate config.
	configs.Add(NewConfig(ss[0], 2, Singleton(Empty, 4), nil), nil)
	assert.Equal(t, 2, configs.Len())
	assert.Equal(t, []int{1, 2}, configs.Alts().Alts())
}

func TestConfigSet_ReadOnly(t *testing.T) {
	ss := testStates(t, atn.StateBasic)
	configs := NewConfigSet(false)
	configs.Add(NewConfig(ss[0], 1, Empty, nil), nil)
	configs.SetReadOnly()
	assert.Panics(t, func() {
		configs.Add(NewConfig(ss[0], 2, Empty, nil), nil)
	})
}

func TestOrderedConfigSet_KeepsDistinctConfigs(t *testing.T) {
	ss := testStates(t, atn.StateBasic)
	configs := NewOrderedConfigSet()

	base := NewConfig(ss[0], 1, Singleton(Empty, 4), nil)
	assert.True(t, configs.Add(base, nil))
	// A fully equal config is a duplicate.
	assert.False(t, configs.Add(NewConfig(ss[0], 1, Singleton(Empty, 4), nil), nil))
	// A differing context is kept instead of merged.
	assert.True(t, configs.Add(NewConfig(ss[0], 1, Singleton(Empty, 5), nil), nil))
	assert.Equal(t, 2, configs.Len())

	// Executor differences also separate configs.
	exec := atn.NewActionExecutor(atn.LexerAction{Kind: atn.LexerActionSkip})
	withExec := base.WithExecutor(base.State, exec)
	assert.True(t, configs.Add(withExec, nil))
	assert.Equal(t, 3, configs.Len())
}
