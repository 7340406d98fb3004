package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mi9rem/garnet/atn"
	"github.com/mi9rem/garnet/driver/lexer"
	"github.com/mi9rem/garnet/driver/parser"
	"github.com/mi9rem/garnet/prediction"
	"github.com/spf13/cobra"
)

var predictFlags = struct {
	tokens   *string
	decision *int
	mode     *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "predict <network file path>",
		Short:   "Predict the alternative a decision takes on a token sequence",
		Example: `  garnet predict parser.json --tokens "1 2 1" --decision 0`,
		Args:    cobra.ExactArgs(1),
		RunE:    runPredict,
	}
	predictFlags.tokens = cmd.Flags().StringP("tokens", "t", "", "space-separated token types; -1 is EOF")
	predictFlags.decision = cmd.Flags().IntP("decision", "d", 0, "decision number")
	predictFlags.mode = cmd.Flags().String("mode", "ll", "prediction mode: sll, ll, or exact")
	rootCmd.AddCommand(cmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	name, net, err := readNetwork(args[0])
	if err != nil {
		return err
	}
	if net.Kind != atn.GrammarParser {
		return fmt.Errorf("%s is a %v network; predict needs a parser network", name, net.Kind)
	}
	if *predictFlags.decision < 0 || *predictFlags.decision >= len(net.DecisionStates) {
		return fmt.Errorf("the network has no decision %v", *predictFlags.decision)
	}

	var mode prediction.Mode
	switch *predictFlags.mode {
	case "sll":
		mode = prediction.ModeSLL
	case "ll":
		mode = prediction.ModeLL
	case "exact":
		mode = prediction.ModeLLExactAmbigDetection
	default:
		return fmt.Errorf("unknown prediction mode %s", *predictFlags.mode)
	}

	var tokens []*lexer.Token
	for i, field := range strings.Fields(*predictFlags.tokens) {
		ty, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("invalid token type %s: %w", field, err)
		}
		tokens = append(tokens, &lexer.Token{Type: ty, Start: i, Stop: i + 1, Line: 1, Col: i})
	}

	sim := parser.NewSimulator(net,
		parser.WithMode(mode),
		parser.WithListener(diagnosticListener{}))
	alt, err := sim.AdaptivePredict(parser.NewStream(tokens), *predictFlags.decision, parser.EmptyRuleStack())
	if err != nil {
		return err
	}
	fmt.Printf("decision %v predicts alternative %v\n", *predictFlags.decision, alt)
	return nil
}

// diagnosticListener forwards prediction diagnostics to the CLI logger.
type diagnosticListener struct{}

func (diagnosticListener) ReportAmbiguity(dfa *prediction.DFA, startIndex, stopIndex int,
	exact bool, ambigAlts *prediction.AltSet, configs *prediction.ConfigSet) {
	log.Noticef("ambiguity at decision %v, tokens %v..%v: alternatives %v (exact=%v)",
		dfa.Decision, startIndex, stopIndex, ambigAlts, exact)
}

func (diagnosticListener) ReportAttemptingFullContext(dfa *prediction.DFA, startIndex, stopIndex int,
	conflictingAlts *prediction.AltSet, configs *prediction.ConfigSet) {
	log.Infof("falling back to full context at decision %v, tokens %v..%v: conflicting alternatives %v",
		dfa.Decision, startIndex, stopIndex, conflictingAlts)
}

func (diagnosticListener) ReportContextSensitivity(dfa *prediction.DFA, startIndex, stopIndex int,
	predicted int, configs *prediction.ConfigSet) {
	log.Infof("context sensitivity at decision %v, tokens %v..%v: alternative %v",
		dfa.Decision, startIndex, stopIndex, predicted)
}
