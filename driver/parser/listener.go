package parser

import "github.com/mi9rem/garnet/prediction"

// Listener receives prediction diagnostics. Indexes are token stream
// positions bracketing the input the decision looked at.
type Listener interface {
	// ReportAmbiguity fires when a decision is genuinely ambiguous: the
	// alternatives in ambigAlts match the same input. exact is false when
	// the ambiguity was resolved heuristically rather than proven.
	ReportAmbiguity(dfa *prediction.DFA, startIndex, stopIndex int, exact bool,
		ambigAlts *prediction.AltSet, configs *prediction.ConfigSet)

	// ReportAttemptingFullContext fires when SLL prediction conflicts and
	// the decision is retried with full context.
	ReportAttemptingFullContext(dfa *prediction.DFA, startIndex, stopIndex int,
		conflictingAlts *prediction.AltSet, configs *prediction.ConfigSet)

	// ReportContextSensitivity fires when the full-context retry settled
	// on a single alternative, proving the decision context sensitive.
	ReportContextSensitivity(dfa *prediction.DFA, startIndex, stopIndex int,
		prediction int, configs *prediction.ConfigSet)
}

// NoopListener discards all diagnostics.
type NoopListener struct{}

func (NoopListener) ReportAmbiguity(*prediction.DFA, int, int, bool, *prediction.AltSet, *prediction.ConfigSet) {
}

func (NoopListener) ReportAttemptingFullContext(*prediction.DFA, int, int, *prediction.AltSet, *prediction.ConfigSet) {
}

func (NoopListener) ReportContextSensitivity(*prediction.DFA, int, int, int, *prediction.ConfigSet) {
}
