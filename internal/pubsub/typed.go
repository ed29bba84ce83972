package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/nfrund/eventdesk/internal/topicmgr"
)

// Topic[T] binds a topic name to its payload type so publishers and
// subscribers agree on the encoding at compile time.
type Topic[T any] struct {
	topicmgr.Topic
}

// NewTopic defines a typed topic and registers it with m. The payload field
// names of T are recorded in the topic metadata for discovery.
// It panics when the definition is invalid, as topics are declared at package level.
func NewTopic[T any](m *topicmgr.Manager, config topicmgr.TopicConfig) Topic[T] {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	fields := make([]string, 0)
	typeName := ""
	if t != nil {
		typeName = t.Name()
		if t.Kind() == reflect.Struct {
			for i := 0; i < t.NumField(); i++ {
				name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
				if name != "" && name != "-" {
					fields = append(fields, name)
				}
			}
		}
	}

	if config.Pattern == "" {
		config.Pattern = config.Name
	}
	if config.Metadata == nil {
		config.Metadata = make(map[string]any)
	}
	config.Metadata["payload_fields"] = fields
	config.Metadata["type_name"] = typeName

	var topic topicmgr.Topic
	if config.Module == "" {
		topic = topicmgr.DefineFramework(config)
	} else {
		topic = topicmgr.DefineModule(config)
	}
	if err := m.EnsureRegistered(topic); err != nil {
		panic(fmt.Sprintf("failed to register topic %s: %v", config.Name, err))
	}

	return Topic[T]{Topic: topic}
}

// Publish sends a typed payload. The compiler ensures payload matches T.
func Publish[T any](ctx context.Context, p Publisher, topic Topic[T], payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic.Name(), err)
	}

	return p.Publish(ctx, Message{
		Topic:   topic.Name(),
		Payload: data,
	})
}

// Subscribe decodes each message on topic into T before calling fn.
// Messages that fail to decode are reported as handler errors and skipped.
func Subscribe[T any](ctx context.Context, s Subscriber, topic Topic[T], fn func(context.Context, T) error) error {
	return s.Subscribe(ctx, topic.Name(), func(ctx context.Context, msg Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", topic.Name(), err)
		}
		return fn(ctx, payload)
	})
}
