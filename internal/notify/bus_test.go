package notify

import (
	"context"
	"testing"
	"time"

	"github.com/nfrund/eventdesk/internal/domain"
	"github.com/nfrund/eventdesk/internal/pubsub"
	"github.com/nfrund/eventdesk/internal/topicmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bridge := pubsub.NewWatermillBridge(pubsub.WithTopicManager(topicmgr.Default()))
	t.Cleanup(func() { _ = bridge.Close() })
	return NewBus(bridge, bridge)
}

func persisted() *domain.ContactMessage {
	return &domain.ContactMessage{
		ID:        "msg-1",
		Name:      "Socket Test",
		Email:     "test@socket.com",
		Subject:   "Socket Routing",
		Message:   "Checking the link payload",
		IPAddress: "127.0.0.1",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewMessageEvent_CopiesMessage(t *testing.T) {
	msg := persisted()
	evt := NewMessageEvent(msg)
	msg.Subject = "changed"

	assert.Equal(t, EventNewMessage, evt.Name)
	assert.Equal(t, "Socket Routing", evt.Message.Subject)
	assert.Equal(t, "msg-1", evt.Message.ID)
}

func TestMessageCreatedTopicIsRegistered(t *testing.T) {
	topic, ok := topicmgr.Default().Get("contact.message.created")
	require.True(t, ok)
	assert.Equal(t, "contact", topic.Module())
}

func TestBus_FansOutToEverySubscriber(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Event, 3)
	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Subscribe(ctx, func(_ context.Context, evt Event) { got <- evt }))
	}

	bus.Publish(ctx, NewMessageEvent(persisted()))

	for i := 0; i < 3; i++ {
		select {
		case evt := <-got:
			assert.Equal(t, EventNewMessage, evt.Name)
			assert.Equal(t, "msg-1", evt.Message.ID)
			assert.True(t, evt.Message.CreatedAt.Equal(persisted().CreatedAt))
		case <-time.After(2 * time.Second):
			t.Fatalf("subscriber %d did not receive the event", i)
		}
	}
}

func TestBus_NoSubscribersDropsSilently(t *testing.T) {
	bus := newTestBus(t)
	ctx := context.Background()

	assert.NotPanics(t, func() { bus.Publish(ctx, NewMessageEvent(persisted())) })

	got := make(chan Event, 1)
	require.NoError(t, bus.Subscribe(ctx, func(_ context.Context, evt Event) { got <- evt }))

	select {
	case evt := <-got:
		t.Fatalf("late subscriber received a replayed event: %+v", evt)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_PublishAfterCloseDoesNotFail(t *testing.T) {
	bridge := pubsub.NewWatermillBridge()
	bus := NewBus(bridge, bridge)
	require.NoError(t, bridge.Close())

	assert.NotPanics(t, func() { bus.Publish(context.Background(), NewMessageEvent(persisted())) })
}
