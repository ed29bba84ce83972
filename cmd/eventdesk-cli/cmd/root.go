package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "eventdesk-cli",
	Short: "Run and inspect the EventDesk contact notification service",
	Long: `eventdesk-cli starts the EventDesk server, checks a running instance end
to end and lists the topics it publishes internally.`,
	SilenceUsage: true,
}

// Execute runs the CLI and exits non-zero on failure. Cobra has already
// printed the error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
