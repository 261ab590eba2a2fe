package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

// newRootCmd builds the command tree. Flags are bound afresh on every call,
// so each tree starts from the flag defaults.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chipenc",
		Short: "A sound chip score encoder.",
		Long:  "A CLI tool to pack MIDI scores into noise, triangle and pulse channel bitstreams.",
		Run: func(cmd *cobra.Command, args []string) {
			// Display help when no subcommand is provided
			fmt.Fprintln(cmd.OutOrStdout(), "Usage: chipenc [command]")
			fmt.Fprintln(cmd.OutOrStdout(), "Use 'chipenc help' for a list of commands.")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(cmd.OutOrStdout())
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress command output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Increase command output")

	rootCmd.AddCommand(newEncodeCmd(), newInspectCmd(), newVersionCmd())
	return rootCmd
}

var quiet bool
var verbose bool

func Execute() error {
	return newRootCmd().Execute()
}
