package topics

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nfrund/eventdesk/internal/topicmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTopic = topicmgr.DefineModule(topicmgr.TopicConfig{
	Name:        "contact.message.created",
	Module:      "contact",
	Description: "A contact message was stored and should be relayed to realtime clients",
	Pattern:     "contact.message.created",
	Example:     `{"type":"new_message"}`,
	Metadata:    map[string]any{"b": 2, "a": 1},
})

func TestDisplayTopicsTable(t *testing.T) {
	var out bytes.Buffer
	DisplayTopicsTable(&out, []topicmgr.Topic{sampleTopic})

	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "contact.message.created")
	assert.Contains(t, out.String(), "A contact message was stored and shou...")
}

func TestDisplayTopicDetails_SortsMetadata(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, DisplayTopicDetails(&out, sampleTopic, "table"))
	assert.Contains(t, out.String(), "Metadata:\n  a: 1\n  b: 2\n")
}

func TestDisplayValidationResult(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, DisplayValidationResult(&out, sampleTopic, nil, nil))
	assert.False(t, DisplayValidationResult(&out, nil, errors.New("bad name"), nil))
	assert.False(t, DisplayValidationResult(&out, sampleTopic, nil, errors.New("bad definition")))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcd...", truncateString("abcdefghij", 7))
	assert.Equal(t, "...", truncateString("abcdefghij", 2))
}

func TestInitialize(t *testing.T) {
	m, err := Initialize()
	require.NoError(t, err)
	_, ok := m.Get("contact.message.created")
	assert.True(t, ok)
}
