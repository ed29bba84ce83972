package cmd

import (
	"fmt"

	"github.com/nfrund/eventdesk/cmd/eventdesk-cli/internal/topics"
	"github.com/spf13/cobra"
)

var getOutputFormat string

var topicsGetCmd = &cobra.Command{
	Use:   "get <topic-name>",
	Short: "Get detailed information about a specific topic",
	Long: `Show name, scope, module, description, pattern, example and metadata
for one registered topic.

Examples:
  eventdesk-cli topics get contact.message.created
  eventdesk-cli topics get gateway.client.connected --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runTopicsGet,
}

func runTopicsGet(cmd *cobra.Command, args []string) error {
	manager, err := topics.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize topics: %w", err)
	}

	name := args[0]
	topic, ok := manager.Get(name)
	if !ok {
		return fmt.Errorf("topic '%s' not found; run 'eventdesk-cli topics list' to see registered topics", name)
	}
	return topics.DisplayTopicDetails(cmd.OutOrStdout(), topic, getOutputFormat)
}

func init() {
	topicsCmd.AddCommand(topicsGetCmd)
	topicsGetCmd.Flags().StringVarP(&getOutputFormat, "format", "f", "table", "Output format (table, json)")
}
