package parser

import "github.com/mi9rem/garnet/prediction"

// RuleStack records the chain of rule invocations a recognizer is inside
// of. The zero invocation, with no parent and a negative invoking state,
// is the outermost frame.
type RuleStack struct {
	parent        *RuleStack
	invokingState int
}

// NewRuleStack pushes a frame for the rule entered from invokingState.
// parent may be nil for the outermost frame.
func NewRuleStack(parent *RuleStack, invokingState int) *RuleStack {
	return &RuleStack{parent: parent, invokingState: invokingState}
}

// EmptyRuleStack returns an outermost frame.
func EmptyRuleStack() *RuleStack {
	return &RuleStack{invokingState: -1}
}

func (s *RuleStack) Parent() prediction.RuleStack {
	if s == nil || s.parent == nil {
		return nil
	}
	return s.parent
}

func (s *RuleStack) InvokingState() int {
	if s == nil {
		return -1
	}
	return s.invokingState
}
