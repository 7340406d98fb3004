package parser

import (
	"fmt"

	"github.com/mi9rem/garnet/driver/lexer"
	"github.com/mi9rem/garnet/prediction"
)

// NoViableAltError reports a decision where no alternative matches the
// input from StartIndex on.
type NoViableAltError struct {
	Decision   int
	StartIndex int
	Offending  *lexer.Token
	Configs    *prediction.ConfigSet
}

func (e *NoViableAltError) Error() string {
	if e.Offending != nil {
		return fmt.Sprintf("%d:%d: no viable alternative at %v (decision %d)",
			e.Offending.Line, e.Offending.Col, e.Offending, e.Decision)
	}
	return fmt.Sprintf("no viable alternative at token %d (decision %d)", e.StartIndex, e.Decision)
}
