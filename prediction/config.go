package prediction

import (
	"fmt"

	"github.com/mi9rem/garnet/atn"
)

// Config is one thread of a prediction: a network state reached for a
// specific alternative under a specific rule-invocation context, gated by a
// semantic context. Configs are treated as immutable once added to a set
// except for the in-place context merge performed by ConfigSet.Add.
type Config struct {
	State  *atn.State
	Alt    int
	Ctx    *Context
	SemCtx SemanticContext

	// ReachesIntoOuterContext counts how far closure escaped past the end
	// of the decision's rule. Nonzero values make SLL results suspect.
	ReachesIntoOuterContext int

	// PrecedenceFilterSuppressed exempts this config from the precedence
	// filter applied at left-recursive decision entry.
	PrecedenceFilterSuppressed bool

	// Lexer-only fields.
	Executor               *atn.ActionExecutor
	PassedThroughNonGreedy bool
}

func NewConfig(state *atn.State, alt int, ctx *Context, semCtx SemanticContext) *Config {
	if semCtx == nil {
		semCtx = None
	}
	return &Config{State: state, Alt: alt, Ctx: ctx, SemCtx: semCtx}
}

// WithState returns a copy of c located at state.
func (c *Config) WithState(state *atn.State) *Config {
	d := *c
	d.State = state
	return &d
}

func (c *Config) WithContext(state *atn.State, ctx *Context) *Config {
	d := *c
	d.State = state
	d.Ctx = ctx
	return &d
}

func (c *Config) WithSemCtx(state *atn.State, semCtx SemanticContext) *Config {
	d := *c
	d.State = state
	d.SemCtx = semCtx
	return &d
}

func (c *Config) WithExecutor(state *atn.State, exec *atn.ActionExecutor) *Config {
	d := *c
	d.State = state
	d.Executor = exec
	return &d
}

// Hash covers the fields Equals compares.
func (c *Config) Hash() int {
	h := hashUpdate(hashInit(), c.State.Num)
	h = hashUpdate(h, c.Alt)
	h = hashUpdate(h, c.Ctx.Hash())
	h = hashUpdate(h, c.SemCtx.Hash())
	return hashFinish(h, 4)
}

// Equals is full structural equality as used by parser prediction.
func (c *Config) Equals(o *Config) bool {
	if c == o {
		return true
	}
	return c.State.Num == o.State.Num &&
		c.Alt == o.Alt &&
		c.Ctx.Equals(o.Ctx) &&
		c.SemCtx.Equals(o.SemCtx) &&
		c.PrecedenceFilterSuppressed == o.PrecedenceFilterSuppressed
}

// LexerHash additionally covers the lexer-only fields.
func (c *Config) LexerHash() int {
	h := hashUpdate(hashInit(), c.Hash())
	if c.PassedThroughNonGreedy {
		h = hashUpdate(h, 1)
	} else {
		h = hashUpdate(h, 0)
	}
	h = hashUpdate(h, int(c.Executor.Hash()))
	return hashFinish(h, 3)
}

// LexerEquals is the equality the ordered lexer config set deduplicates
// with.
func (c *Config) LexerEquals(o *Config) bool {
	if c == o {
		return true
	}
	return c.PassedThroughNonGreedy == o.PassedThroughNonGreedy &&
		c.Executor.Equals(o.Executor) &&
		c.Equals(o)
}

// keyHash identifies the merge bucket for parser sets: configs differing
// only in context share one bucket and get their contexts merged.
func (c *Config) keyHash() int {
	h := hashUpdate(hashInit(), c.State.Num)
	h = hashUpdate(h, c.Alt)
	h = hashUpdate(h, c.SemCtx.Hash())
	return hashFinish(h, 3)
}

func (c *Config) keyEquals(o *Config) bool {
	return c.State.Num == o.State.Num &&
		c.Alt == o.Alt &&
		c.SemCtx.Equals(o.SemCtx)
}

func (c *Config) String() string {
	s := fmt.Sprintf("(%v,%d,[%v]", c.State, c.Alt, c.Ctx)
	if c.SemCtx != None {
		s += "," + c.SemCtx.String()
	}
	if c.ReachesIntoOuterContext > 0 {
		s += fmt.Sprintf(",up=%d", c.ReachesIntoOuterContext)
	}
	return s + ")"
}
