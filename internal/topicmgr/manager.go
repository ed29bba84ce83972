package topicmgr

import (
	"fmt"
	"sync"
)

// Manager validates and registers topics and answers lookups from the bus.
type Manager struct {
	topics    *catalog
	validator *Validator
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{topics: newCatalog(), validator: NewValidator()}
}

// DefineFramework declares a topic owned by a core service. Any module in
// config is dropped.
func DefineFramework(config TopicConfig) Topic {
	config.Scope = ScopeFramework
	config.Module = ""
	return &TypedTopic{cfg: config}
}

// DefineModule declares a topic owned by config.Module.
func DefineModule(config TopicConfig) Topic {
	config.Scope = ScopeModule
	return &TypedTopic{cfg: config}
}

// Register validates topic and adds it. Failures are *TopicError.
func (m *Manager) Register(topic Topic) error {
	if topic == nil {
		return &TopicError{Kind: ErrInvalidTopic, Cause: errNilTopic}
	}
	if err := m.validator.ValidateDefinition(topic); err != nil {
		return &TopicError{Topic: topic.Name(), Module: topic.Module(), Kind: ErrInvalidTopic, Cause: err}
	}
	return m.topics.add(topic)
}

// MustRegister is Register for package-level declarations.
func (m *Manager) MustRegister(topic Topic) {
	if err := m.Register(topic); err != nil {
		panic(fmt.Sprintf("failed to register topic: %v", err))
	}
}

// EnsureRegistered registers topic unless one of the same name is present.
func (m *Manager) EnsureRegistered(topic Topic) error {
	if topic != nil {
		if _, ok := m.topics.get(topic.Name()); ok {
			return nil
		}
	}
	return m.Register(topic)
}

// Get looks a topic up by name.
func (m *Manager) Get(name string) (Topic, bool) {
	return m.topics.get(name)
}

// CheckTopicExists reports ErrTopicNotFound for names never registered.
func (m *Manager) CheckTopicExists(name string) error {
	if _, ok := m.topics.get(name); !ok {
		return &TopicError{Topic: name, Kind: ErrTopicNotFound}
	}
	return nil
}

// List returns all topics sorted by name.
func (m *Manager) List() []Topic {
	return m.topics.all(nil)
}

// ListFrameworkTopics returns the topics of core services.
func (m *Manager) ListFrameworkTopics() []Topic {
	return m.ListByScope(ScopeFramework)
}

// ListByScope returns the topics of one scope sorted by name.
func (m *Manager) ListByScope(scope TopicScope) []Topic {
	return m.topics.all(func(t Topic) bool { return t.Scope() == scope })
}

// ListByModule returns the topics owned by module sorted by name.
func (m *Manager) ListByModule(module string) []Topic {
	return m.topics.module(module)
}

// ValidateTopicName checks name against the naming rules without registering anything.
func (m *Manager) ValidateTopicName(name string) error {
	return m.validator.ValidateName(name)
}

// Validate checks a topic definition without registering it.
func (m *Manager) Validate(topic Topic) error {
	return m.validator.ValidateDefinition(topic)
}

// Names returns the registered topic names sorted.
func (m *Manager) Names() []string {
	topics := m.List()
	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, t.Name())
	}
	return names
}

// Count returns the number of registered topics.
func (m *Manager) Count() int {
	return m.topics.count()
}

// Reset removes every topic. Tests use it to start clean.
func (m *Manager) Reset() {
	m.topics.clear()
}

var (
	defaultManager     *Manager
	defaultManagerOnce sync.Once
)

// Default returns the process-wide manager used by package-level topic declarations.
func Default() *Manager {
	defaultManagerOnce.Do(func() {
		defaultManager = NewManager()
	})
	return defaultManager
}
