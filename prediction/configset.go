package prediction

import (
	"fmt"
	"strings"
)

// ConfigSet is the working set of one prediction step. Parser sets merge
// the contexts of configs agreeing on (state, alt, semantic context);
// ordered sets keep every distinct config, which lexer simulation needs to
// preserve rule priority.
type ConfigSet struct {
	configs []*Config
	lookup  map[int][]*Config
	ordered bool

	// FullCtx records which merge interpretation built this set; it also
	// participates in set equality so SLL and LL DFA states never unify.
	FullCtx bool

	readOnly   bool
	cachedHash int

	// Scratch fields the simulators maintain while filling the set.
	UniqueAlt            int
	ConflictingAlts      *AltSet
	HasSemanticContext   bool
	DipsIntoOuterContext bool
}

func NewConfigSet(fullCtx bool) *ConfigSet {
	return &ConfigSet{
		lookup:    make(map[int][]*Config),
		FullCtx:   fullCtx,
		UniqueAlt: InvalidAlt,
	}
}

// NewOrderedConfigSet returns a set that deduplicates by full lexer
// equality and never merges contexts.
func NewOrderedConfigSet() *ConfigSet {
	s := NewConfigSet(false)
	s.ordered = true
	return s
}

// Add inserts config, merging contexts when a parser set already tracks the
// same (state, alt, semantic context). mergeCache may be nil. It reports
// whether the set changed.
func (s *ConfigSet) Add(config *Config, mergeCache *MergeCache) bool {
	if s.readOnly {
		panic("add to a read-only config set")
	}
	if config.SemCtx != None {
		s.HasSemanticContext = true
	}
	if config.ReachesIntoOuterContext > 0 {
		s.DipsIntoOuterContext = true
	}

	if s.ordered {
		h := config.LexerHash()
		for _, existing := range s.lookup[h] {
			if existing.LexerEquals(config) {
				return false
			}
		}
		s.lookup[h] = append(s.lookup[h], config)
		s.configs = append(s.configs, config)
		s.cachedHash = 0
		return true
	}

	h := config.keyHash()
	for _, existing := range s.lookup[h] {
		if !existing.keyEquals(config) {
			continue
		}
		rootIsWildcard := !s.FullCtx
		merged := Merge(existing.Ctx, config.Ctx, rootIsWildcard, mergeCache)
		if config.ReachesIntoOuterContext > existing.ReachesIntoOuterContext {
			existing.ReachesIntoOuterContext = config.ReachesIntoOuterContext
		}
		if config.PrecedenceFilterSuppressed {
			existing.PrecedenceFilterSuppressed = true
		}
		if merged == existing.Ctx {
			return false
		}
		existing.Ctx = merged
		s.cachedHash = 0
		return true
	}
	s.lookup[h] = append(s.lookup[h], config)
	s.configs = append(s.configs, config)
	s.cachedHash = 0
	return true
}

func (s *ConfigSet) Configs() []*Config {
	return s.configs
}

func (s *ConfigSet) Len() int {
	return len(s.configs)
}

// Alts returns the set of alternatives represented.
func (s *ConfigSet) Alts() *AltSet {
	alts := &AltSet{}
	for _, c := range s.configs {
		alts.Add(c.Alt)
	}
	return alts
}

// OptimizeConfigs interns every context in cache, collapsing shared
// suffixes across configs.
func (s *ConfigSet) OptimizeConfigs(cache *ContextCache) {
	if s.readOnly {
		panic("optimize a read-only config set")
	}
	if cache == nil || len(s.configs) == 0 {
		return
	}
	visited := make(map[*Context]*Context)
	for _, c := range s.configs {
		c.Ctx = CachedContext(c.Ctx, cache, visited)
	}
}

// SetReadOnly freezes the set. The dedup index is dropped; a frozen set
// only serves lookups and comparisons.
func (s *ConfigSet) SetReadOnly() {
	s.readOnly = true
	s.lookup = nil
}

func (s *ConfigSet) ReadOnly() bool {
	return s.readOnly
}

func (s *ConfigSet) Hash() int {
	if s.readOnly && s.cachedHash != 0 {
		return s.cachedHash
	}
	h := hashInit()
	for _, c := range s.configs {
		h = hashUpdate(h, c.Hash())
	}
	h = hashFinish(h, len(s.configs))
	if h == 0 {
		h = 1
	}
	if s.readOnly {
		s.cachedHash = h
	}
	return h
}

// Equals compares element-wise. Insertion order is deterministic for a
// given decision, so order-sensitive comparison is sufficient for DFA state
// deduplication.
func (s *ConfigSet) Equals(o *ConfigSet) bool {
	if s == o {
		return true
	}
	if s.FullCtx != o.FullCtx || len(s.configs) != len(o.configs) {
		return false
	}
	for i, c := range s.configs {
		if s.ordered {
			if !c.LexerEquals(o.configs[i]) {
				return false
			}
		} else if !c.Equals(o.configs[i]) {
			return false
		}
	}
	return true
}

func (s *ConfigSet) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, c := range s.configs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.String())
	}
	b.WriteByte(']')
	if s.HasSemanticContext {
		fmt.Fprintf(&b, ",hasSemanticContext=%v", s.HasSemanticContext)
	}
	if s.UniqueAlt != InvalidAlt {
		fmt.Fprintf(&b, ",uniqueAlt=%d", s.UniqueAlt)
	}
	if s.ConflictingAlts != nil {
		fmt.Fprintf(&b, ",conflictingAlts=%v", s.ConflictingAlts)
	}
	if s.DipsIntoOuterContext {
		b.WriteString(",dipsIntoOuterContext")
	}
	return b.String()
}
