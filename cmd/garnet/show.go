package main

import (
	"fmt"
	"os"

	"github.com/mi9rem/garnet/atn"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var showFlags = struct {
	states *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "show <network file path>",
		Short: "Describe the contents of a network file",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	showFlags.states = cmd.Flags().Bool("states", false, "also list every state and its transitions")
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	name, net, err := readNetwork(args[0])
	if err != nil {
		return err
	}
	w := os.Stdout

	fmt.Fprintf(w, "name:       %v\n", name)
	fmt.Fprintf(w, "kind:       %v\n", net.Kind)
	fmt.Fprintf(w, "max symbol: %v\n", net.MaxSymbol)
	fmt.Fprintf(w, "states:     %v\n", len(net.States))
	fmt.Fprintf(w, "rules:      %v\n", len(net.RuleStart))
	fmt.Fprintf(w, "decisions:  %v\n", len(net.DecisionStates))
	if net.Kind == atn.GrammarLexer {
		fmt.Fprintf(w, "modes:      %v\n", len(net.ModeStart))
		fmt.Fprintf(w, "actions:    %v\n", len(net.LexerActions))
	}

	byRule := make(map[int]int)
	for _, s := range net.States {
		byRule[s.RuleIndex]++
	}
	rules := maps.Keys(byRule)
	slices.Sort(rules)
	fmt.Fprintln(w, "rule sizes:")
	for _, r := range rules {
		fmt.Fprintf(w, "  rule %d: %d states", r, byRule[r])
		if net.Kind == atn.GrammarLexer {
			fmt.Fprintf(w, " (token type %d)", net.RuleToTokenType[r])
		}
		fmt.Fprintln(w)
	}

	if *showFlags.states {
		fmt.Fprintln(w, "states:")
		for _, s := range net.States {
			fmt.Fprintf(w, "  %4d %v rule=%d", s.Num, s.Kind, s.RuleIndex)
			if s.Decision >= 0 {
				fmt.Fprintf(w, " decision=%d", s.Decision)
			}
			if s.PrecedenceDecision {
				fmt.Fprint(w, " precedence")
			}
			fmt.Fprintln(w)
			for _, t := range s.Transitions {
				fmt.Fprintf(w, "        -> %v on %v\n", t.Target, t)
			}
		}
	}
	return nil
}
