package cmd

import "github.com/spf13/cobra"

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Explore the bus topics",
	Long: `Inspect the topics EventDesk publishes on its internal bus: contact
module events and the realtime gateway's client lifecycle events.

Examples:
  eventdesk-cli topics list --scope framework
  eventdesk-cli topics get contact.message.created
  eventdesk-cli topics validate contact.message.created`,
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
