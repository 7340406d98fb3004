package prediction

import (
	"fmt"
	"strings"

	"github.com/mi9rem/garnet/atn"
)

// EmptyReturnState is the return state of the empty context. It sorts after
// every real state number, which the array merge relies on.
const EmptyReturnState = 0x7FFFFFFF

// Context is a persistent stack of rule return states. A node holds one or
// more (parent, returnState) pairs sorted by ascending return state; sharing
// parents across nodes is what keeps closure tractable. Contexts are
// immutable once built and are compared structurally.
type Context struct {
	parents      []*Context
	returnStates []int
	cachedHash   int
}

// Empty is the context of a rule invoked from nowhere. During SLL
// prediction it also stands for "any caller".
var Empty = &Context{
	parents:      []*Context{nil},
	returnStates: []int{EmptyReturnState},
	cachedHash:   hashFinish(hashUpdate(hashUpdate(hashInit(), 0), EmptyReturnState), 4),
}

func newContext(parents []*Context, returnStates []int) *Context {
	h := hashInit()
	for _, p := range parents {
		h = hashUpdate(h, p.Hash())
	}
	for _, rs := range returnStates {
		h = hashUpdate(h, rs)
	}
	return &Context{
		parents:      parents,
		returnStates: returnStates,
		cachedHash:   hashFinish(h, 2*len(parents)),
	}
}

// Singleton returns the context that returns to returnState and then
// continues as parent.
func Singleton(parent *Context, returnState int) *Context {
	if parent == nil && returnState == EmptyReturnState {
		return Empty
	}
	return newContext([]*Context{parent}, []int{returnState})
}

func (c *Context) Length() int {
	return len(c.returnStates)
}

func (c *Context) Parent(i int) *Context {
	return c.parents[i]
}

func (c *Context) ReturnState(i int) int {
	return c.returnStates[i]
}

func (c *Context) IsEmpty() bool {
	return c == Empty
}

// HasEmptyPath reports whether one of c's paths ends without a caller.
// EmptyReturnState sorts last, so only the final slot needs checking.
func (c *Context) HasEmptyPath() bool {
	return c.returnStates[len(c.returnStates)-1] == EmptyReturnState
}

func (c *Context) Hash() int {
	if c == nil {
		return 0
	}
	return c.cachedHash
}

func (c *Context) Equals(o *Context) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil || c.cachedHash != o.cachedHash ||
		len(c.returnStates) != len(o.returnStates) {
		return false
	}
	for i, rs := range c.returnStates {
		if rs != o.returnStates[i] {
			return false
		}
	}
	for i, p := range c.parents {
		if !p.Equals(o.parents[i]) {
			return false
		}
	}
	return true
}

func (c *Context) String() string {
	if c.IsEmpty() {
		return "$"
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, rs := range c.returnStates {
		if i > 0 {
			b.WriteByte(',')
		}
		if rs == EmptyReturnState {
			b.WriteByte('$')
			continue
		}
		fmt.Fprintf(&b, "%d", rs)
		if c.parents[i] != nil && !c.parents[i].IsEmpty() {
			b.WriteByte(' ')
			b.WriteString(c.parents[i].String())
		}
	}
	b.WriteByte(']')
	return b.String()
}

// RuleStack is the invocation chain a recognizer carries while parsing. It
// is converted to a Context when full-context prediction needs the real
// caller stack.
type RuleStack interface {
	// Parent returns the invoking frame, or nil at the outermost frame.
	Parent() RuleStack
	// InvokingState is the network state whose rule transition created this
	// frame, or a negative value at the outermost frame.
	InvokingState() int
}

// FromRuleStack converts a recognizer's rule stack into a context. The
// invoking state's single transition must be the rule call; its follow
// state is where the rule returns to.
func FromRuleStack(n *atn.Network, stack RuleStack) *Context {
	if stack == nil || stack.InvokingState() < 0 {
		return Empty
	}
	parent := FromRuleStack(n, stack.Parent())
	call := n.States[stack.InvokingState()].Transitions[0]
	return Singleton(parent, call.FollowState.Num)
}

// MergeCache memoizes Merge results within one prediction. Keys are looked
// up in both argument orders.
type MergeCache struct {
	m map[[2]*Context]*Context
}

func NewMergeCache() *MergeCache {
	return &MergeCache{m: make(map[[2]*Context]*Context)}
}

func (c *MergeCache) get(a, b *Context) (*Context, bool) {
	if v, ok := c.m[[2]*Context{a, b}]; ok {
		return v, true
	}
	v, ok := c.m[[2]*Context{b, a}]
	return v, ok
}

func (c *MergeCache) put(a, b *Context, v *Context) {
	c.m[[2]*Context{a, b}] = v
}

// Merge combines two contexts reaching the same configuration.
// rootIsWildcard selects the local-context interpretation of Empty: as a
// wildcard it absorbs the other operand, otherwise Empty is a real empty
// stack and survives alongside it.
func Merge(a, b *Context, rootIsWildcard bool, cache *MergeCache) *Context {
	if a == b || a.Equals(b) {
		return a
	}
	if len(a.returnStates) == 1 && len(b.returnStates) == 1 {
		return mergeSingletons(a, b, rootIsWildcard, cache)
	}
	if rootIsWildcard {
		if a.IsEmpty() {
			return a
		}
		if b.IsEmpty() {
			return b
		}
	}
	return mergeArrays(a, b, rootIsWildcard, cache)
}

func mergeSingletons(a, b *Context, rootIsWildcard bool, cache *MergeCache) *Context {
	if cache != nil {
		if v, ok := cache.get(a, b); ok {
			return v
		}
	}
	if m := mergeRoot(a, b, rootIsWildcard); m != nil {
		cachePut(cache, a, b, m)
		return m
	}

	if a.returnStates[0] == b.returnStates[0] {
		parent := Merge(a.parents[0], b.parents[0], rootIsWildcard, cache)
		if parent == a.parents[0] {
			cachePut(cache, a, b, a)
			return a
		}
		if parent == b.parents[0] {
			cachePut(cache, a, b, b)
			return b
		}
		m := Singleton(parent, a.returnStates[0])
		cachePut(cache, a, b, m)
		return m
	}

	// Distinct return states become a two-entry array node.
	var singleParent *Context
	if a.parents[0] == b.parents[0] || a.parents[0].Equals(b.parents[0]) {
		singleParent = a.parents[0]
	}
	ra, rb := a.returnStates[0], b.returnStates[0]
	pa, pb := a.parents[0], b.parents[0]
	if ra > rb {
		ra, rb = rb, ra
		pa, pb = pb, pa
	}
	if singleParent != nil {
		pa, pb = singleParent, singleParent
	}
	m := newContext([]*Context{pa, pb}, []int{ra, rb})
	cachePut(cache, a, b, m)
	return m
}

// mergeRoot handles the cases where one operand is Empty. It returns nil
// when neither is.
func mergeRoot(a, b *Context, rootIsWildcard bool) *Context {
	if rootIsWildcard {
		if a.IsEmpty() || b.IsEmpty() {
			return Empty
		}
		return nil
	}
	switch {
	case a.IsEmpty() && b.IsEmpty():
		return Empty
	case a.IsEmpty():
		return newContext([]*Context{b.parents[0], nil}, []int{b.returnStates[0], EmptyReturnState})
	case b.IsEmpty():
		return newContext([]*Context{a.parents[0], nil}, []int{a.returnStates[0], EmptyReturnState})
	}
	return nil
}

func mergeArrays(a, b *Context, rootIsWildcard bool, cache *MergeCache) *Context {
	if cache != nil {
		if v, ok := cache.get(a, b); ok {
			return v
		}
	}

	i, j, k := 0, 0, 0
	mergedStates := make([]int, len(a.returnStates)+len(b.returnStates))
	mergedParents := make([]*Context, len(mergedStates))
	for i < len(a.returnStates) && j < len(b.returnStates) {
		pa, pb := a.parents[i], b.parents[j]
		switch {
		case a.returnStates[i] == b.returnStates[j]:
			payload := a.returnStates[i]
			bothEmpty := payload == EmptyReturnState && pa == nil && pb == nil
			if bothEmpty || pa.Equals(pb) {
				mergedParents[k] = pa
			} else {
				mergedParents[k] = Merge(pa, pb, rootIsWildcard, cache)
			}
			mergedStates[k] = payload
			i++
			j++
		case a.returnStates[i] < b.returnStates[j]:
			mergedParents[k] = pa
			mergedStates[k] = a.returnStates[i]
			i++
		default:
			mergedParents[k] = pb
			mergedStates[k] = b.returnStates[j]
			j++
		}
		k++
	}
	for ; i < len(a.returnStates); i++ {
		mergedParents[k] = a.parents[i]
		mergedStates[k] = a.returnStates[i]
		k++
	}
	for ; j < len(b.returnStates); j++ {
		mergedParents[k] = b.parents[j]
		mergedStates[k] = b.returnStates[j]
		k++
	}

	if k == 1 {
		m := Singleton(mergedParents[0], mergedStates[0])
		cachePut(cache, a, b, m)
		return m
	}
	mergedParents = mergedParents[:k]
	mergedStates = mergedStates[:k]
	combineCommonParents(mergedParents)
	m := newContext(mergedParents, mergedStates)
	if m.Equals(a) {
		cachePut(cache, a, b, a)
		return a
	}
	if m.Equals(b) {
		cachePut(cache, a, b, b)
		return b
	}
	cachePut(cache, a, b, m)
	return m
}

// combineCommonParents makes structurally equal parents pointer-identical
// so later merges hit the fast paths.
func combineCommonParents(parents []*Context) {
	unique := make(map[int][]*Context)
	for i, p := range parents {
		if p == nil {
			continue
		}
		h := p.Hash()
		found := false
		for _, q := range unique[h] {
			if p.Equals(q) {
				parents[i] = q
				found = true
				break
			}
		}
		if !found {
			unique[h] = append(unique[h], p)
		}
	}
}

func cachePut(cache *MergeCache, a, b, v *Context) {
	if cache != nil {
		cache.put(a, b, v)
	}
}

// ContextCache interns contexts so graphs built by different predictions
// share structure. It lives as long as its owning recognizer.
type ContextCache struct {
	buckets map[int][]*Context
	size    int
}

func NewContextCache() *ContextCache {
	return &ContextCache{buckets: make(map[int][]*Context)}
}

func (c *ContextCache) Len() int {
	return c.size
}

// Add returns the canonical context equal to ctx, adding ctx when none is
// interned yet.
func (c *ContextCache) Add(ctx *Context) *Context {
	if ctx.IsEmpty() {
		return Empty
	}
	if existing := c.Get(ctx); existing != nil {
		return existing
	}
	h := ctx.Hash()
	c.buckets[h] = append(c.buckets[h], ctx)
	c.size++
	return ctx
}

func (c *ContextCache) Get(ctx *Context) *Context {
	for _, q := range c.buckets[ctx.Hash()] {
		if ctx.Equals(q) {
			return q
		}
	}
	return nil
}

// CachedContext rewrites ctx so that it and every ancestor is interned in
// cache. visited carries the rewrite across one batch of calls so shared
// subgraphs are processed once.
func CachedContext(ctx *Context, cache *ContextCache, visited map[*Context]*Context) *Context {
	if ctx.IsEmpty() {
		return ctx
	}
	if v, ok := visited[ctx]; ok {
		return v
	}
	if existing := cache.Get(ctx); existing != nil {
		visited[ctx] = existing
		return existing
	}

	changed := false
	parents := ctx.parents
	for i, p := range ctx.parents {
		if p == nil {
			continue
		}
		cp := CachedContext(p, cache, visited)
		if cp == p && !changed {
			continue
		}
		if !changed {
			parents = make([]*Context, len(ctx.parents))
			copy(parents, ctx.parents)
			changed = true
		}
		parents[i] = cp
	}
	if !changed {
		cache.Add(ctx)
		visited[ctx] = ctx
		return ctx
	}
	updated := newContext(parents, ctx.returnStates)
	updated = cache.Add(updated)
	visited[updated] = updated
	visited[ctx] = updated
	return updated
}
