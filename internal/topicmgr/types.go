package topicmgr

import (
	"errors"
	"fmt"
	"maps"
)

// Topic describes one bus topic for registration and discovery.
type Topic interface {
	Name() string
	// Module is the owning module, empty for framework topics.
	Module() string
	Description() string
	Pattern() string
	Example() string
	Metadata() map[string]any
	Scope() TopicScope
}

// TopicScope tells framework topics from module topics.
type TopicScope string

const (
	ScopeFramework TopicScope = "framework" // gateway and server lifecycle
	ScopeModule    TopicScope = "module"    // feature modules such as contact
)

// TopicConfig is the declaration passed to DefineFramework and DefineModule.
type TopicConfig struct {
	Name        string         `json:"name"`
	Module      string         `json:"module"`
	Scope       TopicScope     `json:"scope"`
	Description string         `json:"description"`
	Pattern     string         `json:"pattern"`
	Example     string         `json:"example"`
	Metadata    map[string]any `json:"metadata"`
}

// TypedTopic is the Topic returned by DefineFramework and DefineModule.
type TypedTopic struct {
	cfg TopicConfig
}

var _ Topic = (*TypedTopic)(nil)

func (t *TypedTopic) Name() string        { return t.cfg.Name }
func (t *TypedTopic) Module() string      { return t.cfg.Module }
func (t *TypedTopic) Description() string { return t.cfg.Description }
func (t *TypedTopic) Pattern() string     { return t.cfg.Pattern }
func (t *TypedTopic) Example() string     { return t.cfg.Example }
func (t *TypedTopic) Scope() TopicScope   { return t.cfg.Scope }
func (t *TypedTopic) String() string      { return t.cfg.Name }

// Metadata returns a copy of the topic's metadata.
func (t *TypedTopic) Metadata() map[string]any {
	out := make(map[string]any, len(t.cfg.Metadata))
	maps.Copy(out, t.cfg.Metadata)
	return out
}

// Failure kinds reported through TopicError; match them with errors.Is.
var (
	ErrTopicNotFound  = errors.New("topic not found")
	ErrDuplicateTopic = errors.New("topic already registered")
	ErrInvalidTopic   = errors.New("topic validation failed")
)

// TopicError reports a registration or lookup failure for one topic.
type TopicError struct {
	Topic  string
	Module string
	// Kind is one of the Err* sentinels.
	Kind error
	// Cause is the validation failure behind ErrInvalidTopic.
	Cause error
}

func (e *TopicError) Error() string {
	msg := fmt.Sprintf("%v: %s", e.Kind, e.Topic)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TopicError) Is(target error) bool { return target == e.Kind }

func (e *TopicError) Unwrap() error { return e.Cause }
