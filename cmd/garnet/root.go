package main

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("garnet")

var rootFlags = struct {
	verbose *int
}{}

var rootCmd = &cobra.Command{
	Use:   "garnet",
	Short: "Run recognizers over serialized grammar networks",
	Long: `garnet loads a serialized grammar network and simulates it:
- Tokenizes a text stream according to a lexical network.
- Inspects the structure of a network file.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commonlog.Configure(*rootFlags.verbose, nil)
	},
}

func init() {
	rootFlags.verbose = rootCmd.PersistentFlags().CountP("verbose", "v", "increase diagnostic verbosity")
}

func Execute() error {
	return rootCmd.Execute()
}
