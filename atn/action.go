package atn

import "fmt"

type LexerActionKind int

const (
	LexerActionChannel LexerActionKind = iota
	LexerActionCustom
	LexerActionMode
	LexerActionMore
	LexerActionPopMode
	LexerActionPushMode
	LexerActionSkip
	LexerActionType
)

// LexerAction is an immutable description of a side effect attached to a
// lexer rule. Data1/Data2 are interpreted per kind: channel, mode, push-mode
// and type actions use Data1 as their operand; custom actions use Data1 as
// the rule index and Data2 as the action index.
type LexerAction struct {
	Kind  LexerActionKind
	Data1 int
	Data2 int
}

// IsPositionDependent reports whether the action must observe the input
// position it was written at in the grammar rather than the match end.
func (a LexerAction) IsPositionDependent() bool {
	return a.Kind == LexerActionCustom
}

func (a LexerAction) String() string {
	switch a.Kind {
	case LexerActionChannel:
		return fmt.Sprintf("channel(%v)", a.Data1)
	case LexerActionCustom:
		return fmt.Sprintf("custom(%v:%v)", a.Data1, a.Data2)
	case LexerActionMode:
		return fmt.Sprintf("mode(%v)", a.Data1)
	case LexerActionMore:
		return "more"
	case LexerActionPopMode:
		return "popMode"
	case LexerActionPushMode:
		return fmt.Sprintf("pushMode(%v)", a.Data1)
	case LexerActionSkip:
		return "skip"
	case LexerActionType:
		return fmt.Sprintf("type(%v)", a.Data1)
	}
	return fmt.Sprintf("lexer-action(%d)", int(a.Kind))
}

// LexerOps is the surface of the driving lexer that actions mutate.
type LexerOps interface {
	SetType(tokenType int)
	SetChannel(channel int)
	SetMode(mode int)
	PushMode(mode int)
	PopMode()
	More()
	Skip()
	Action(ruleIndex, actionIndex int)
}

// Positioner is the slice of a character stream the executor needs to
// replay position-dependent actions.
type Positioner interface {
	Index() int
	Seek(index int)
}

// ActionExecutor is an immutable ordered list of lexer actions together
// with a per-action input offset. Offsets start unset (-1) and are fixed by
// FixOffsetBeforeMatch once the surrounding match has consumed input, so an
// action literal shared by many states never needs to be mutated.
type ActionExecutor struct {
	actions []LexerAction
	offsets []int
	hash    uint64
}

func NewActionExecutor(actions ...LexerAction) *ActionExecutor {
	offsets := make([]int, len(actions))
	for i := range offsets {
		offsets[i] = -1
	}
	return newActionExecutor(actions, offsets)
}

func newActionExecutor(actions []LexerAction, offsets []int) *ActionExecutor {
	h := uint64(14695981039346656037)
	for i, a := range actions {
		h = (h ^ uint64(a.Kind)) * 1099511628211
		h = (h ^ uint64(uint32(a.Data1))) * 1099511628211
		h = (h ^ uint64(uint32(a.Data2))) * 1099511628211
		h = (h ^ uint64(uint32(offsets[i]))) * 1099511628211
	}
	return &ActionExecutor{actions: actions, offsets: offsets, hash: h}
}

// AppendExecutor returns an executor running all of e's actions (e may be
// nil) followed by a.
func AppendExecutor(e *ActionExecutor, a LexerAction) *ActionExecutor {
	if e == nil {
		return NewActionExecutor(a)
	}
	actions := make([]LexerAction, len(e.actions)+1)
	copy(actions, e.actions)
	actions[len(e.actions)] = a
	offsets := make([]int, len(e.offsets)+1)
	copy(offsets, e.offsets)
	offsets[len(e.offsets)] = -1
	return newActionExecutor(actions, offsets)
}

// FixOffsetBeforeMatch pins every position-dependent action whose offset is
// still unset to offset, returning a new executor when anything changed.
func (e *ActionExecutor) FixOffsetBeforeMatch(offset int) *ActionExecutor {
	var updated []int
	for i, a := range e.actions {
		if a.IsPositionDependent() && e.offsets[i] < 0 {
			if updated == nil {
				updated = make([]int, len(e.offsets))
				copy(updated, e.offsets)
			}
			updated[i] = offset
		}
	}
	if updated == nil {
		return e
	}
	return newActionExecutor(e.actions, updated)
}

// Execute replays the actions against ops. startIndex is the start of the
// just-matched text; input is positioned at the match end and is restored
// there before returning.
func (e *ActionExecutor) Execute(ops LexerOps, input Positioner, startIndex int) {
	stop := input.Index()
	requiresSeek := false
	defer func() {
		if requiresSeek {
			input.Seek(stop)
		}
	}()
	for i, a := range e.actions {
		if a.IsPositionDependent() && e.offsets[i] >= 0 {
			input.Seek(startIndex + e.offsets[i])
			requiresSeek = startIndex+e.offsets[i] != stop
		}
		apply(ops, a)
	}
}

func apply(ops LexerOps, a LexerAction) {
	switch a.Kind {
	case LexerActionChannel:
		ops.SetChannel(a.Data1)
	case LexerActionCustom:
		ops.Action(a.Data1, a.Data2)
	case LexerActionMode:
		ops.SetMode(a.Data1)
	case LexerActionMore:
		ops.More()
	case LexerActionPopMode:
		ops.PopMode()
	case LexerActionPushMode:
		ops.PushMode(a.Data1)
	case LexerActionSkip:
		ops.Skip()
	case LexerActionType:
		ops.SetType(a.Data1)
	default:
		panic(fmt.Sprintf("unknown lexer action kind %d", int(a.Kind)))
	}
}

func (e *ActionExecutor) Hash() uint64 {
	if e == nil {
		return 0
	}
	return e.hash
}

func (e *ActionExecutor) Equals(o *ActionExecutor) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil || e.hash != o.hash || len(e.actions) != len(o.actions) {
		return false
	}
	for i := range e.actions {
		if e.actions[i] != o.actions[i] || e.offsets[i] != o.offsets[i] {
			return false
		}
	}
	return true
}
