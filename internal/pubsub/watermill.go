package pubsub

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nfrund/eventdesk/internal/topicmgr"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ErrClosed is returned when publishing or subscribing on a closed bridge.
var ErrClosed = errors.New("pubsub: bridge closed")

// WatermillBridge implements Publisher and Subscriber on watermill's GoChannel.
// GoChannel is not persistent: messages published while a topic has no
// subscribers are dropped, and nothing is replayed to late subscribers.
type WatermillBridge struct {
	pub    message.Publisher
	sub    message.Subscriber
	logger watermill.LoggerAdapter
	tracer trace.Tracer
	topics *topicmgr.Manager
	buffer int64

	mu     sync.RWMutex
	closed bool
}

// metaKeyTopic carries Message.Topic through watermill metadata.
const metaKeyTopic = "topic"

// Option configures a WatermillBridge.
type Option func(*WatermillBridge)

// WithTracer traces publish and process operations with the given tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(wb *WatermillBridge) {
		if tracer != nil {
			wb.tracer = tracer
		}
	}
}

// WithTopicManager rejects publishes on topics the manager does not know.
func WithTopicManager(m *topicmgr.Manager) Option {
	return func(wb *WatermillBridge) {
		wb.topics = m
	}
}

// WithOutputBuffer sets the capacity of each subscription's delivery channel.
// Zero keeps GoChannel's unbuffered delivery.
func WithOutputBuffer(n int64) Option {
	return func(wb *WatermillBridge) {
		if n > 0 {
			wb.buffer = n
		}
	}
}

// NewWatermillBridge builds the in-process transport.
func NewWatermillBridge(opts ...Option) *WatermillBridge {
	wb := &WatermillBridge{
		logger: watermill.NewStdLogger(false, false),
		tracer: noop.NewTracerProvider().Tracer("eventdesk-pubsub"),
	}
	for _, opt := range opts {
		opt(wb)
	}

	goChannel := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: wb.buffer}, wb.logger)
	wb.sub = goChannel
	wb.pub = newTracedPublisher(goChannel, wb.tracer)
	return wb
}

// mapToWatermillMessage copies msg into a watermill message bound to ctx.
func mapToWatermillMessage(ctx context.Context, msg Message) *message.Message {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)
	wmMsg.SetContext(ctx)

	for k, v := range msg.Metadata {
		wmMsg.Metadata.Set(k, v)
	}
	wmMsg.Metadata.Set(metaKeyTopic, msg.Topic)

	return wmMsg
}

// mapToPubSubMessage strips transport metadata from a delivered message.
func mapToPubSubMessage(wmMsg *message.Message) Message {
	metadata := make(map[string]string, len(wmMsg.Metadata))
	for k, v := range wmMsg.Metadata {
		if k == metaKeyTopic || slices.Contains(traceCarrier.Fields(), k) {
			continue
		}
		metadata[k] = v
	}

	return Message{
		Topic:    wmMsg.Metadata.Get(metaKeyTopic),
		Payload:  wmMsg.Payload,
		Metadata: metadata,
	}
}

// Publish implements the Publisher interface.
func (wb *WatermillBridge) Publish(ctx context.Context, msg Message) error {
	wb.mu.RLock()
	defer wb.mu.RUnlock()
	if wb.closed {
		return ErrClosed
	}

	if wb.topics != nil {
		if err := wb.topics.CheckTopicExists(msg.Topic); err != nil {
			return err
		}
	}

	return wb.pub.Publish(msg.Topic, mapToWatermillMessage(ctx, msg))
}

// Subscribe implements the Subscriber interface.
func (wb *WatermillBridge) Subscribe(ctx context.Context, topic string, handler Handler) error {
	wb.mu.RLock()
	defer wb.mu.RUnlock()
	if wb.closed {
		return ErrClosed
	}

	messages, err := wb.sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	process := traceProcessing(wb.tracer)(func(wmMsg *message.Message) ([]*message.Message, error) {
		return nil, handler(wmMsg.Context(), mapToPubSubMessage(wmMsg))
	})

	go func() {
		for wmMsg := range messages {
			if _, err := process(wmMsg); err != nil {
				slog.Error("Failed to handle message", "topic", topic, "msg_id", wmMsg.UUID, "error", err)
			}
			// Always ack: a nack makes GoChannel redeliver, and delivery here is at-most-once.
			wmMsg.Ack()
		}
		slog.Debug("Subscription message loop ended", "topic", topic)
	}()

	return nil
}

// Close shuts down the bridge. Subscription loops end once their channels drain.
func (wb *WatermillBridge) Close() error {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	if wb.closed {
		return nil
	}
	wb.closed = true
	return wb.sub.Close()
}
