package prediction

import (
	"fmt"
	"sort"
	"strings"
)

// Recognizer is the surface a semantic context evaluates against.
type Recognizer interface {
	// Sempred runs the predIndex-th predicate of ruleIndex.
	Sempred(ruleIndex, predIndex int) bool
	// Precpred reports whether precedence is allowed at the current
	// precedence level.
	Precpred(precedence int) bool
}

// SemanticContext is a boolean formula over grammar predicates gating a
// configuration. Implementations are immutable.
type SemanticContext interface {
	Eval(rec Recognizer) bool
	// EvalPrecedence partially evaluates the precedence predicates in the
	// formula. It returns the simplified context, None when the formula
	// became trivially true, or nil when it became trivially false.
	EvalPrecedence(rec Recognizer) SemanticContext
	Hash() int
	Equals(o SemanticContext) bool
	String() string
}

// None is the trivially true context carried by unpredicated
// configurations.
var None SemanticContext = &Predicate{RuleIndex: -1, PredIndex: -1}

// Predicate is a reference to one grammar predicate.
type Predicate struct {
	RuleIndex    int
	PredIndex    int
	CtxDependent bool
}

func NewPredicate(ruleIndex, predIndex int, ctxDependent bool) *Predicate {
	return &Predicate{RuleIndex: ruleIndex, PredIndex: predIndex, CtxDependent: ctxDependent}
}

func (p *Predicate) Eval(rec Recognizer) bool {
	if p == None {
		return true
	}
	return rec.Sempred(p.RuleIndex, p.PredIndex)
}

func (p *Predicate) EvalPrecedence(rec Recognizer) SemanticContext {
	return p
}

func (p *Predicate) Hash() int {
	h := hashUpdate(hashInit(), p.RuleIndex)
	h = hashUpdate(h, p.PredIndex)
	if p.CtxDependent {
		h = hashUpdate(h, 1)
	} else {
		h = hashUpdate(h, 0)
	}
	return hashFinish(h, 3)
}

func (p *Predicate) Equals(o SemanticContext) bool {
	q, ok := o.(*Predicate)
	return ok && p.RuleIndex == q.RuleIndex && p.PredIndex == q.PredIndex &&
		p.CtxDependent == q.CtxDependent
}

func (p *Predicate) String() string {
	return fmt.Sprintf("{%d:%d}?", p.RuleIndex, p.PredIndex)
}

// PrecedencePredicate guards the alternatives of a left-recursive rule.
type PrecedencePredicate struct {
	Precedence int
}

func NewPrecedencePredicate(precedence int) *PrecedencePredicate {
	return &PrecedencePredicate{Precedence: precedence}
}

func (p *PrecedencePredicate) Eval(rec Recognizer) bool {
	return rec.Precpred(p.Precedence)
}

func (p *PrecedencePredicate) EvalPrecedence(rec Recognizer) SemanticContext {
	if rec.Precpred(p.Precedence) {
		return None
	}
	return nil
}

func (p *PrecedencePredicate) Hash() int {
	return hashFinish(hashUpdate(hashInit(), p.Precedence), 1)
}

func (p *PrecedencePredicate) Equals(o SemanticContext) bool {
	q, ok := o.(*PrecedencePredicate)
	return ok && p.Precedence == q.Precedence
}

func (p *PrecedencePredicate) String() string {
	return fmt.Sprintf("{%d>=prec}?", p.Precedence)
}

// AND is a conjunction of contexts. Build with And.
type AND struct {
	opnds []SemanticContext
}

// And conjoins two contexts. Operands are flattened and deduplicated, and
// of several precedence predicates only the weakest survives since the
// others are implied by it.
func And(a, b SemanticContext) SemanticContext {
	if a == nil || a == None {
		return b
	}
	if b == nil || b == None {
		return a
	}
	set := newOperandSet()
	for _, op := range []SemanticContext{a, b} {
		if and, ok := op.(*AND); ok {
			for _, o := range and.opnds {
				set.add(o)
			}
		} else {
			set.add(op)
		}
	}
	prec := set.takePrecedencePredicates()
	if len(prec) > 0 {
		weakest := prec[0]
		for _, p := range prec[1:] {
			if p.Precedence < weakest.Precedence {
				weakest = p
			}
		}
		set.addOperand(weakest)
	}
	opnds := set.operands()
	if len(opnds) == 1 {
		return opnds[0]
	}
	return &AND{opnds: opnds}
}

func (a *AND) Eval(rec Recognizer) bool {
	for _, op := range a.opnds {
		if !op.Eval(rec) {
			return false
		}
	}
	return true
}

func (a *AND) EvalPrecedence(rec Recognizer) SemanticContext {
	differs := false
	var operands []SemanticContext
	for _, op := range a.opnds {
		evaluated := op.EvalPrecedence(rec)
		differs = differs || evaluated != op
		if evaluated == nil {
			return nil
		}
		if evaluated != None {
			operands = append(operands, evaluated)
		}
	}
	if !differs {
		return a
	}
	if len(operands) == 0 {
		return None
	}
	result := operands[0]
	for _, op := range operands[1:] {
		result = And(result, op)
	}
	return result
}

func (a *AND) Hash() int {
	h := hashUpdate(hashInit(), len(a.opnds))
	for _, op := range a.opnds {
		h = hashUpdate(h, op.Hash())
	}
	return hashFinish(h, len(a.opnds)+1)
}

func (a *AND) Equals(o SemanticContext) bool {
	b, ok := o.(*AND)
	if !ok || len(a.opnds) != len(b.opnds) {
		return false
	}
	for i, op := range a.opnds {
		if !op.Equals(b.opnds[i]) {
			return false
		}
	}
	return true
}

func (a *AND) String() string {
	return joinOperands(a.opnds, "&&")
}

// OR is a disjunction of contexts. Build with Or.
type OR struct {
	opnds []SemanticContext
}

// Or disjoins two contexts. Of several precedence predicates only the
// strongest survives since it implies the others.
func Or(a, b SemanticContext) SemanticContext {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a == None || b == None {
		return None
	}
	set := newOperandSet()
	for _, op := range []SemanticContext{a, b} {
		if or, ok := op.(*OR); ok {
			for _, o := range or.opnds {
				set.add(o)
			}
		} else {
			set.add(op)
		}
	}
	prec := set.takePrecedencePredicates()
	if len(prec) > 0 {
		strongest := prec[0]
		for _, p := range prec[1:] {
			if p.Precedence > strongest.Precedence {
				strongest = p
			}
		}
		set.addOperand(strongest)
	}
	opnds := set.operands()
	if len(opnds) == 1 {
		return opnds[0]
	}
	return &OR{opnds: opnds}
}

func (o *OR) Eval(rec Recognizer) bool {
	for _, op := range o.opnds {
		if op.Eval(rec) {
			return true
		}
	}
	return false
}

func (o *OR) EvalPrecedence(rec Recognizer) SemanticContext {
	differs := false
	var operands []SemanticContext
	for _, op := range o.opnds {
		evaluated := op.EvalPrecedence(rec)
		differs = differs || evaluated != op
		if evaluated == None {
			return None
		}
		if evaluated != nil {
			operands = append(operands, evaluated)
		}
	}
	if !differs {
		return o
	}
	if len(operands) == 0 {
		return nil
	}
	result := operands[0]
	for _, op := range operands[1:] {
		result = Or(result, op)
	}
	return result
}

func (o *OR) Hash() int {
	h := hashUpdate(hashInit(), -len(o.opnds))
	for _, op := range o.opnds {
		h = hashUpdate(h, op.Hash())
	}
	return hashFinish(h, len(o.opnds)+1)
}

func (o *OR) Equals(other SemanticContext) bool {
	b, ok := other.(*OR)
	if !ok || len(o.opnds) != len(b.opnds) {
		return false
	}
	for i, op := range o.opnds {
		if !op.Equals(b.opnds[i]) {
			return false
		}
	}
	return true
}

func (o *OR) String() string {
	return joinOperands(o.opnds, "||")
}

func joinOperands(opnds []SemanticContext, sep string) string {
	var b strings.Builder
	for i, op := range opnds {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(op.String())
	}
	return b.String()
}

// operandSet deduplicates operands while building composites and keeps a
// deterministic order.
type operandSet struct {
	opnds []SemanticContext
	prec  []*PrecedencePredicate
}

func newOperandSet() *operandSet {
	return &operandSet{}
}

func (s *operandSet) add(op SemanticContext) {
	if p, ok := op.(*PrecedencePredicate); ok {
		s.prec = append(s.prec, p)
		return
	}
	s.addOperand(op)
}

func (s *operandSet) addOperand(op SemanticContext) {
	for _, existing := range s.opnds {
		if existing.Equals(op) {
			return
		}
	}
	s.opnds = append(s.opnds, op)
}

// takePrecedencePredicates removes and returns the precedence predicates
// accumulated so far.
func (s *operandSet) takePrecedencePredicates() []*PrecedencePredicate {
	prec := s.prec
	s.prec = nil
	return prec
}

func (s *operandSet) operands() []SemanticContext {
	opnds := s.opnds
	sort.SliceStable(opnds, func(i, j int) bool {
		return opnds[i].Hash() < opnds[j].Hash()
	})
	return opnds
}
