package notify

import (
	"context"
	"log/slog"

	"github.com/nfrund/eventdesk/internal/pubsub"
)

// Bus is the in-process publish point for contact notifications. It keeps
// no history: an event published while nobody is subscribed is dropped.
type Bus struct {
	pub    pubsub.Publisher
	sub    pubsub.Subscriber
	logger *slog.Logger
}

// NewBus creates a bus on top of a pub/sub transport.
func NewBus(pub pubsub.Publisher, sub pubsub.Subscriber) *Bus {
	return &Bus{
		pub:    pub,
		sub:    sub,
		logger: slog.Default().With("service", "notify"),
	}
}

// Publish fans evt out to every current subscriber. It never fails: transport
// errors are logged and the event is dropped.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	if err := pubsub.Publish(ctx, b.pub, MessageCreated, evt); err != nil {
		b.logger.WarnContext(ctx, "Dropping notification event",
			"event", evt.Name, "message_id", evt.Message.ID, "error", err)
		return
	}
	b.logger.DebugContext(ctx, "Notification event published",
		"event", evt.Name, "message_id", evt.Message.ID)
}

// Subscribe registers fn for every event published after this call returns.
// The subscription ends when ctx is cancelled or the transport closes.
func (b *Bus) Subscribe(ctx context.Context, fn func(context.Context, Event)) error {
	return pubsub.Subscribe(ctx, b.sub, MessageCreated, func(ctx context.Context, evt Event) error {
		fn(ctx, evt)
		return nil
	})
}
