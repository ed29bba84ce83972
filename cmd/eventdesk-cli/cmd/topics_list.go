package cmd

import (
	"fmt"
	"strings"

	"github.com/nfrund/eventdesk/cmd/eventdesk-cli/internal/topics"
	"github.com/nfrund/eventdesk/internal/topicmgr"
	"github.com/spf13/cobra"
)

var (
	listOutputFormat string
	listModuleFilter string
	listScopeFilter  string
)

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered topics",
	Long: `List the topics EventDesk registers on its bus.

Examples:
  eventdesk-cli topics list
  eventdesk-cli topics list --format json
  eventdesk-cli topics list --module contact
  eventdesk-cli topics list --scope framework`,
	RunE: runTopicsList,
}

// topicFilter narrows a listing by owning module and scope. Empty fields match everything.
type topicFilter struct {
	module string
	scope  topicmgr.TopicScope
}

func (f topicFilter) apply(m *topicmgr.Manager) []topicmgr.Topic {
	if f.module == "" {
		if f.scope == "" {
			return m.List()
		}
		return m.ListByScope(f.scope)
	}

	var out []topicmgr.Topic
	for _, t := range m.ListByModule(f.module) {
		if f.scope == "" || t.Scope() == f.scope {
			out = append(out, t)
		}
	}
	return out
}

func (f topicFilter) String() string {
	var parts []string
	if f.module != "" {
		parts = append(parts, fmt.Sprintf("module '%s'", f.module))
	}
	if f.scope != "" {
		parts = append(parts, fmt.Sprintf("scope '%s'", f.scope))
	}
	return strings.Join(parts, ", ")
}

func runTopicsList(cmd *cobra.Command, _ []string) error {
	if listOutputFormat != "table" && listOutputFormat != "json" {
		return fmt.Errorf("unsupported output format '%s', use 'table' or 'json'", listOutputFormat)
	}

	filter := topicFilter{module: listModuleFilter}
	if listScopeFilter != "" {
		scope, ok := parseScope(listScopeFilter)
		if !ok {
			return fmt.Errorf("invalid scope '%s', valid scopes: framework, module", listScopeFilter)
		}
		filter.scope = scope
	}

	manager, err := topics.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize topics: %w", err)
	}

	out := cmd.OutOrStdout()
	found := filter.apply(manager)
	if len(found) == 0 {
		if desc := filter.String(); desc != "" {
			fmt.Fprintf(out, "No topics found matching: %s\n", desc)
		} else {
			fmt.Fprintln(out, "No topics found")
		}
		return nil
	}

	if listOutputFormat == "json" {
		return topics.DisplayTopicsJSON(out, found)
	}
	topics.DisplayTopicsTable(out, found)
	return nil
}

func parseScope(s string) (topicmgr.TopicScope, bool) {
	switch scope := topicmgr.TopicScope(strings.ToLower(s)); scope {
	case topicmgr.ScopeFramework, topicmgr.ScopeModule:
		return scope, true
	default:
		return "", false
	}
}

func init() {
	topicsCmd.AddCommand(topicsListCmd)

	flags := topicsListCmd.Flags()
	flags.StringVarP(&listOutputFormat, "format", "f", "table", "Output format (table, json)")
	flags.StringVarP(&listModuleFilter, "module", "m", "", "Only topics owned by this module")
	flags.StringVarP(&listScopeFilter, "scope", "s", "", "Only topics in this scope (framework, module)")
}
