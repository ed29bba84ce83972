// Package pubsub is the in-process message bus. Messages carry a topic name
// and a JSON payload; typed helpers bind topics to Go payload types.
package pubsub

import (
	"context"
	"io"
)

// Message is one event on the bus.
type Message struct {
	Topic string
	// Payload is JSON-encoded by Publish.
	Payload []byte
	// Metadata travels with the message and reaches every subscriber.
	Metadata map[string]string
}

// Handler processes one delivered message. A returned error is logged and
// the message is not redelivered.
type Handler func(ctx context.Context, msg Message) error

// Publisher sends messages on the bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Subscriber delivers the messages of a topic to handler on a background
// goroutine until ctx is cancelled or the bus closes. Subscribe returns once
// the subscription is active, so messages published afterwards are seen.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) error
}

// PubSub is a bus owned by the application and closed on shutdown.
type PubSub interface {
	Publisher
	Subscriber
	io.Closer
}

var _ PubSub = (*WatermillBridge)(nil)
