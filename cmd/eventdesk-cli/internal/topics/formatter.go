package topics

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/nfrund/eventdesk/internal/topicmgr"
)

// topicView is the JSON shape of a topic.
type topicView struct {
	Name        string         `json:"name"`
	Scope       string         `json:"scope"`
	Module      string         `json:"module"`
	Description string         `json:"description"`
	Pattern     string         `json:"pattern"`
	Example     string         `json:"example"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func viewOf(t topicmgr.Topic) topicView {
	return topicView{
		Name:        t.Name(),
		Scope:       string(t.Scope()),
		Module:      t.Module(),
		Description: t.Description(),
		Pattern:     t.Pattern(),
		Example:     t.Example(),
		Metadata:    t.Metadata(),
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// owner names the module that owns t, or placeholder for framework topics.
func owner(t topicmgr.Topic, placeholder string) string {
	if m := t.Module(); m != "" {
		return m
	}
	return placeholder
}

// DisplayTopicsTable writes topics as an aligned table.
func DisplayTopicsTable(out io.Writer, list []topicmgr.Topic) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCOPE\tMODULE\tDESCRIPTION\tEXAMPLE")
	for _, t := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			t.Name(), t.Scope(), owner(t, "-"),
			truncateString(t.Description(), 40), truncateString(t.Example(), 30))
	}
	w.Flush()
}

// DisplayTopicsJSON writes topics and their count as indented JSON.
func DisplayTopicsJSON(out io.Writer, list []topicmgr.Topic) error {
	views := make([]topicView, 0, len(list))
	for _, t := range list {
		views = append(views, viewOf(t))
	}
	return writeJSON(out, struct {
		Topics []topicView `json:"topics"`
		Count  int         `json:"count"`
	}{Topics: views, Count: len(views)})
}

// DisplayTopicDetails writes every field of one topic as labelled lines or JSON.
func DisplayTopicDetails(out io.Writer, t topicmgr.Topic, format string) error {
	if format == "json" {
		return writeJSON(out, viewOf(t))
	}

	rows := [][2]string{
		{"Name", t.Name()},
		{"Scope", string(t.Scope())},
		{"Module", owner(t, "(framework)")},
		{"Description", t.Description()},
		{"Pattern", t.Pattern()},
		{"Example", t.Example()},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%-12s %s\n", r[0]+":", r[1])
	}

	if md := t.Metadata(); len(md) > 0 {
		fmt.Fprintln(out, "Metadata:")
		for _, k := range slices.Sorted(maps.Keys(md)) {
			fmt.Fprintf(out, "  %s: %v\n", k, md[k])
		}
	}
	return nil
}

// DisplayValidationResult reports whether the topic passed and explains why not.
func DisplayValidationResult(out io.Writer, t topicmgr.Topic, nameErr, defErr error) bool {
	switch {
	case nameErr != nil:
		fmt.Fprintf(out, "❌ Topic name validation failed: %v\n", nameErr)
		fmt.Fprintln(out, "   Topic names look like module.entity.action, e.g. contact.message.created")
		return false
	case defErr != nil:
		fmt.Fprintf(out, "❌ Topic validation failed: %v\n", defErr)
		return false
	}

	fmt.Fprintf(out, "✅ Topic '%s' is valid\n", t.Name())
	fmt.Fprintf(out, "   Scope: %s\n", t.Scope())
	fmt.Fprintf(out, "   Module: %s\n", owner(t, "(framework)"))
	return true
}

func truncateString(s string, maxLen int) string {
	switch {
	case len(s) <= maxLen:
		return s
	case maxLen <= 3:
		return "..."
	default:
		return s[:maxLen-3] + "..."
	}
}
