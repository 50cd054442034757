package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threadqa",
		Short: "Answer questions from archived discussion threads",
		Long: `threadqa answers questions from an archive of forum discussions.

Questions are matched against stored subthreads, the best matches are packed
into a bounded context, and a language model answers with links to the
discussions it used. When the model is unreachable the matched links are
still returned.

Configuration is read from the environment and from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		NewServeCmd(),
		NewAskCmd(),
		NewLoadCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
