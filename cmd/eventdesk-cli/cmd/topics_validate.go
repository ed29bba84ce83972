package cmd

import (
	"errors"
	"fmt"

	"github.com/nfrund/eventdesk/cmd/eventdesk-cli/internal/topics"
	"github.com/spf13/cobra"
)

var topicsValidateCmd = &cobra.Command{
	Use:   "validate <topic-name>",
	Short: "Validate a topic definition",
	Long: `Check a topic name against the naming rules and, when the topic is
registered, check its definition too.

The validation covers:
- name format (lowercase, alphanumeric, dots only)
- reserved prefixes (system., internal., debug.)
- definition completeness and scope rules

Examples:
  eventdesk-cli topics validate contact.message.created
  eventdesk-cli topics validate Invalid.Topic`,
	Args: cobra.ExactArgs(1),
	RunE: runTopicsValidate,
}

var errTopicInvalid = errors.New("topic validation failed")

func runTopicsValidate(cmd *cobra.Command, args []string) error {
	manager, err := topics.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize topics: %w", err)
	}

	name := args[0]
	nameErr := manager.ValidateTopicName(name)

	topic, found := manager.Get(name)
	var defErr error
	if found {
		defErr = manager.Validate(topic)
	} else if nameErr == nil {
		defErr = fmt.Errorf("topic '%s' not found", name)
	}

	if !topics.DisplayValidationResult(cmd.OutOrStdout(), topic, nameErr, defErr) {
		return errTopicInvalid
	}
	return nil
}

func init() {
	topicsCmd.AddCommand(topicsValidateCmd)
}
