package main

import (
	"fmt"
	"os"

	"github.com/mi9rem/garnet/atn"
	"github.com/mi9rem/garnet/driver/lexer"
	"github.com/spf13/cobra"
)

var lexFlags = struct {
	source *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "lex <network file path>",
		Short:   "Tokenize a text stream",
		Example: `  cat src | garnet lex lexer.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runLex,
	}
	lexFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	rootCmd.AddCommand(cmd)
}

func runLex(cmd *cobra.Command, args []string) error {
	name, net, err := readNetwork(args[0])
	if err != nil {
		return err
	}
	if net.Kind != atn.GrammarLexer {
		return fmt.Errorf("%s is a %v network; lex needs a lexer network", name, net.Kind)
	}

	src := os.Stdin
	if *lexFlags.source != "" {
		f, err := os.Open(*lexFlags.source)
		if err != nil {
			return fmt.Errorf("cannot open the source file %s: %w", *lexFlags.source, err)
		}
		defer f.Close()
		src = f
	}
	input, err := lexer.NewStreamFromReader(src)
	if err != nil {
		return err
	}

	l := lexer.NewLexer(net, input)
	for {
		tok, err := l.Next()
		if err != nil {
			return err
		}
		if tok.EOF() {
			return nil
		}
		fmt.Fprintf(os.Stdout, "%d:%d\ttype=%d\tchannel=%d\t%q\n",
			tok.Line, tok.Col, tok.Type, tok.Channel, tok.Lexeme)
	}
}
