package pubsub

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nfrund/eventdesk/internal/topicmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type greeting struct {
	Text string `json:"text"`
	From string `json:"from,omitempty"`
}

func newTestTopic(t *testing.T, m *topicmgr.Manager) Topic[greeting] {
	t.Helper()
	return NewTopic[greeting](m, topicmgr.TopicConfig{
		Name:        "contact.greeting.sent",
		Module:      "contact",
		Description: "test greeting",
	})
}

func TestWatermillBridge_DeliversToEverySubscriber(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 2)
	for i := 0; i < 2; i++ {
		require.NoError(t, bridge.Subscribe(ctx, "test.topic", func(_ context.Context, msg Message) error {
			received <- msg
			return nil
		}))
	}

	err := bridge.Publish(ctx, Message{
		Topic:    "test.topic",
		Payload:  []byte(`{"hello":"world"}`),
		Metadata: map[string]string{"request_id": "req-123"},
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		select {
		case msg := <-received:
			assert.Equal(t, "test.topic", msg.Topic)
			assert.JSONEq(t, `{"hello":"world"}`, string(msg.Payload))
			assert.Equal(t, "req-123", msg.Metadata["request_id"])
			assert.NotContains(t, msg.Metadata, metaKeyTopic)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}
}

func TestWatermillBridge_DropsWithoutSubscribers(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()
	ctx := context.Background()

	require.NoError(t, bridge.Publish(ctx, Message{Topic: "test.topic", Payload: []byte("early")}))

	received := make(chan Message, 1)
	require.NoError(t, bridge.Subscribe(ctx, "test.topic", func(_ context.Context, msg Message) error {
		received <- msg
		return nil
	}))

	select {
	case msg := <-received:
		t.Fatalf("message published before subscribing was replayed: %s", msg.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatermillBridge_HandlerErrorDoesNotRedeliver(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()
	ctx := context.Background()

	var calls atomic.Int32
	require.NoError(t, bridge.Subscribe(ctx, "test.topic", func(context.Context, Message) error {
		calls.Add(1)
		return errors.New("handler failed")
	}))

	require.NoError(t, bridge.Publish(ctx, Message{Topic: "test.topic", Payload: []byte("x")}))

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatermillBridge_RejectsUnknownTopics(t *testing.T) {
	m := topicmgr.NewManager()
	topic := newTestTopic(t, m)
	bridge := NewWatermillBridge(WithTopicManager(m))
	defer bridge.Close()
	ctx := context.Background()

	assert.NoError(t, bridge.Publish(ctx, Message{Topic: topic.Name()}))

	err := bridge.Publish(ctx, Message{Topic: "contact.unknown"})
	assert.ErrorIs(t, err, topicmgr.ErrTopicNotFound)
}

func TestWatermillBridge_Close(t *testing.T) {
	bridge := NewWatermillBridge()
	require.NoError(t, bridge.Close())
	require.NoError(t, bridge.Close())

	assert.ErrorIs(t, bridge.Publish(context.Background(), Message{Topic: "t"}), ErrClosed)
	assert.ErrorIs(t, bridge.Subscribe(context.Background(), "t", nil), ErrClosed)
}

func TestTypedTopic_RoundTrip(t *testing.T) {
	m := topicmgr.NewManager()
	topic := newTestTopic(t, m)

	registered, ok := m.Get("contact.greeting.sent")
	require.True(t, ok)
	assert.Equal(t, []string{"text", "from"}, registered.Metadata()["payload_fields"])
	assert.Equal(t, "greeting", registered.Metadata()["type_name"])

	// Declaring the same topic twice is tolerated.
	assert.NotPanics(t, func() { newTestTopic(t, m) })

	bridge := NewWatermillBridge(WithTopicManager(m))
	defer bridge.Close()
	ctx := context.Background()

	got := make(chan greeting, 1)
	require.NoError(t, Subscribe(ctx, bridge, topic, func(_ context.Context, g greeting) error {
		got <- g
		return nil
	}))
	require.NoError(t, Publish(ctx, bridge, topic, greeting{Text: "hi", From: "desk"}))

	select {
	case g := <-got:
		assert.Equal(t, greeting{Text: "hi", From: "desk"}, g)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for typed delivery")
	}
}

func TestSetupOTel(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled tracing", func(t *testing.T) {
		tracer, cleanup, err := SetupOTel(ctx, TracingConfig{Enabled: false})
		require.NoError(t, err)
		require.NotNil(t, tracer)
		_, span := tracer.Start(ctx, "test")
		span.End()
		cleanup()
	})

	t.Run("enabled tracing traces bus traffic", func(t *testing.T) {
		tracer, cleanup, err := SetupOTel(ctx, TracingConfig{
			Enabled:     true,
			ServiceName: "test-service",
			ZipkinURL:   "http://127.0.0.1:1/api/v2/spans",
		})
		require.NoError(t, err)
		defer cleanup()

		bridge := NewWatermillBridge(WithTracer(tracer))
		defer bridge.Close()

		done := make(chan struct{})
		require.NoError(t, bridge.Subscribe(ctx, "test.topic", func(context.Context, Message) error {
			close(done)
			return nil
		}))
		require.NoError(t, bridge.Publish(ctx, Message{Topic: "test.topic", Payload: []byte("traced")}))

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for traced delivery")
		}
	})
}

func TestWatermillBridge_ProcessSpanFollowsPublishSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	bridge := NewWatermillBridge(WithTracer(tp.Tracer("test")))
	defer bridge.Close()
	ctx := context.Background()

	got := make(chan Message, 1)
	require.NoError(t, bridge.Subscribe(ctx, "test.topic", func(_ context.Context, msg Message) error {
		got <- msg
		return nil
	}))
	require.NoError(t, bridge.Publish(ctx, Message{Topic: "test.topic", Payload: []byte("x")}))

	select {
	case msg := <-got:
		assert.NotContains(t, msg.Metadata, "traceparent", "trace headers stay inside the bus")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	require.Eventually(t, func() bool { return len(recorder.Ended()) == 2 }, 2*time.Second, 10*time.Millisecond)
	spans := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range recorder.Ended() {
		spans[s.Name()] = s
	}
	publish, process := spans["pubsub.publish.test.topic"], spans["pubsub.process.test.topic"]
	require.NotNil(t, publish)
	require.NotNil(t, process)
	assert.Equal(t, publish.SpanContext().TraceID(), process.SpanContext().TraceID())
	assert.Equal(t, publish.SpanContext().SpanID(), process.Parent().SpanID())
}

type tracingSettings struct {
	enabled bool
	service string
	zipkin  string
}

func (s tracingSettings) GetTracingEnabled() bool       { return s.enabled }
func (s tracingSettings) GetTracingServiceName() string { return s.service }
func (s tracingSettings) GetTracingZipkinURL() string   { return s.zipkin }

func TestTracingConfigFrom(t *testing.T) {
	cfg := TracingConfigFrom(tracingSettings{enabled: true, service: "desk", zipkin: "http://zipkin:9411/api/v2/spans"})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "desk", cfg.ServiceName)
	assert.Equal(t, "http://zipkin:9411/api/v2/spans", cfg.ZipkinURL)

	blank := TracingConfigFrom(tracingSettings{enabled: true})
	assert.Equal(t, DefaultTracingConfig().ServiceName, blank.ServiceName)
	assert.Equal(t, DefaultTracingConfig().ZipkinURL, blank.ZipkinURL)

	assert.Equal(t, DefaultTracingConfig(), TracingConfigFrom(nil))
}

func TestPayloadPreview(t *testing.T) {
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, payloadPreview(long), 103)
	assert.Equal(t, "short", payloadPreview([]byte("short")))
}
