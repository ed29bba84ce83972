package topicmgr

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Register(t *testing.T) {
	m := NewManager()

	created := DefineModule(TopicConfig{
		Name:        "contact.message.created",
		Module:      "contact",
		Description: "A contact message was persisted",
		Pattern:     "contact.message.created",
	})
	connected := DefineFramework(TopicConfig{
		Name:        "gateway.client.connected",
		Module:      "ignored",
		Description: "A realtime client connected",
		Pattern:     "gateway.client.connected",
	})

	require.NoError(t, m.Register(created))
	require.NoError(t, m.Register(connected))
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, "", connected.Module(), "framework topics drop their module")

	got, ok := m.Get("contact.message.created")
	require.True(t, ok)
	assert.Equal(t, ScopeModule, got.Scope())

	assert.Equal(t, []string{"contact.message.created", "gateway.client.connected"}, m.Names())
	assert.Len(t, m.ListFrameworkTopics(), 1)

	t.Run("duplicate registration fails", func(t *testing.T) {
		err := m.Register(created)
		assert.ErrorIs(t, err, ErrDuplicateTopic)
		var topicErr *TopicError
		require.True(t, errors.As(err, &topicErr))
		assert.Equal(t, "contact", topicErr.Module)
	})

	t.Run("ensure registered tolerates duplicates", func(t *testing.T) {
		assert.NoError(t, m.EnsureRegistered(created))
	})

	t.Run("unknown topic is reported", func(t *testing.T) {
		err := m.CheckTopicExists("contact.message.deleted")
		assert.ErrorIs(t, err, ErrTopicNotFound)
		assert.EqualError(t, err, "topic not found: contact.message.deleted")
		assert.NoError(t, m.CheckTopicExists("gateway.client.connected"))
	})
}

func TestManager_RegisterRejectsInvalidTopics(t *testing.T) {
	tests := []struct {
		name  string
		topic Topic
	}{
		{"uppercase name", DefineModule(TopicConfig{Name: "Contact.Created", Module: "contact", Description: "d", Pattern: "p"})},
		{"reserved prefix", DefineModule(TopicConfig{Name: "system.boot", Module: "system", Description: "d", Pattern: "p"})},
		{"missing description", DefineModule(TopicConfig{Name: "contact.x", Module: "contact", Pattern: "p"})},
		{"module topic without module", DefineModule(TopicConfig{Name: "contact.x", Description: "d", Pattern: "p"})},
		{"framework topic with foreign prefix", DefineFramework(TopicConfig{Name: "chat.message", Description: "d", Pattern: "p"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			err := m.Register(tt.topic)
			assert.ErrorIs(t, err, ErrInvalidTopic)
			assert.NotErrorIs(t, err, ErrDuplicateTopic)
			assert.Zero(t, m.Count())
		})
	}
}

func TestManager_RegisterNil(t *testing.T) {
	m := NewManager()
	assert.ErrorIs(t, m.Register(nil), ErrInvalidTopic)
	assert.ErrorIs(t, m.EnsureRegistered(nil), ErrInvalidTopic)
}

func TestTypedTopic_MetadataIsCopied(t *testing.T) {
	topic := DefineModule(TopicConfig{
		Name:        "contact.message.created",
		Module:      "contact",
		Description: "d",
		Pattern:     "contact.message.created",
		Metadata:    map[string]any{"event": "new_message"},
	})

	md := topic.Metadata()
	md["event"] = "changed"
	assert.Equal(t, "new_message", topic.Metadata()["event"])
}

func TestManager_Filters(t *testing.T) {
	m := NewManager()
	m.MustRegister(DefineModule(TopicConfig{Name: "contact.message.created", Module: "contact", Description: "d", Pattern: "p"}))
	m.MustRegister(DefineModule(TopicConfig{Name: "audit.entry.added", Module: "audit", Description: "d", Pattern: "p"}))
	m.MustRegister(DefineFramework(TopicConfig{Name: "gateway.client.connected", Description: "d", Pattern: "p"}))

	assert.Len(t, m.ListByScope(ScopeModule), 2)
	assert.Len(t, m.ListByScope(ScopeFramework), 1)

	contact := m.ListByModule("contact")
	require.Len(t, contact, 1)
	assert.Equal(t, "contact.message.created", contact[0].Name())
	assert.Empty(t, m.ListByModule("missing"))

	assert.NoError(t, m.ValidateTopicName("contact.message.read"))
	assert.Error(t, m.ValidateTopicName("debug.dump"))
	assert.Error(t, m.Validate(DefineModule(TopicConfig{Name: "contact.x", Module: "contact"})))

	m.Reset()
	assert.Zero(t, m.Count())
}

func TestValidator_Rules(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateName("contact.message.created"))
	assert.ErrorContains(t, v.ValidateName(""), "cannot be empty")
	assert.ErrorContains(t, v.ValidateName(strings.Repeat("a", 101)), "longer than 100")
	assert.ErrorContains(t, v.ValidateName("contact..created"), "lowercase alphanumeric")
	assert.ErrorContains(t, v.ValidateName("internal.tick"), `reserved prefix "internal."`)

	long := DefineModule(TopicConfig{Name: "contact.x", Module: strings.Repeat("m", 51), Description: "d", Pattern: "p"})
	assert.ErrorContains(t, v.ValidateDefinition(long), "invalid module name")

	framework := DefineFramework(TopicConfig{Name: "server.started", Description: "d", Pattern: "p"})
	assert.NoError(t, v.ValidateDefinition(framework))

	blankPattern := DefineFramework(TopicConfig{Name: "server.started", Description: "d", Pattern: "  "})
	assert.EqualError(t, v.ValidateDefinition(blankPattern), "topic pattern cannot be empty")
}
