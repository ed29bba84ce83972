package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Trace context rides in message metadata because GoChannel hands each
// subscriber a copy without the publisher's context.
var traceCarrier = propagation.TraceContext{}

const payloadPreviewLimit = 100

func startBusSpan(ctx context.Context, tracer trace.Tracer, op string, kind trace.SpanKind, msg *message.Message) (context.Context, trace.Span) {
	topic := msg.Metadata.Get(metaKeyTopic)
	return tracer.Start(ctx, "pubsub."+op+"."+topic,
		trace.WithSpanKind(kind),
		trace.WithAttributes(
			attribute.String("messaging.system", "watermill"),
			attribute.String("messaging.operation", op),
			attribute.String("messaging.destination", topic),
			attribute.String("messaging.message_id", msg.UUID),
			attribute.Int("messaging.message_payload_size_bytes", len(msg.Payload)),
			attribute.String("messaging.message_payload_preview", payloadPreview(msg.Payload)),
		),
	)
}

func endBusSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// traceProcessing wraps a watermill handler in a consumer span whose parent
// is the publish span recorded in the message metadata.
func traceProcessing(tracer trace.Tracer) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			ctx := traceCarrier.Extract(msg.Context(), propagation.MapCarrier(msg.Metadata))
			ctx, span := startBusSpan(ctx, tracer, "process", trace.SpanKindConsumer, msg)
			msg.SetContext(ctx)

			produced, err := h(msg)
			endBusSpan(span, err)
			return produced, err
		}
	}
}

// tracedPublisher starts a producer span per message and injects its
// context into the message metadata.
type tracedPublisher struct {
	message.Publisher
	tracer trace.Tracer
}

func newTracedPublisher(pub message.Publisher, tracer trace.Tracer) *tracedPublisher {
	return &tracedPublisher{Publisher: pub, tracer: tracer}
}

func (p *tracedPublisher) Publish(topic string, messages ...*message.Message) error {
	spans := make([]trace.Span, 0, len(messages))
	for _, msg := range messages {
		ctx, span := startBusSpan(msg.Context(), p.tracer, "publish", trace.SpanKindProducer, msg)
		traceCarrier.Inject(ctx, propagation.MapCarrier(msg.Metadata))
		msg.SetContext(ctx)
		spans = append(spans, span)
	}

	err := p.Publisher.Publish(topic, messages...)
	for _, span := range spans {
		endBusSpan(span, err)
	}
	return err
}

func payloadPreview(payload []byte) string {
	if len(payload) > payloadPreviewLimit {
		return string(payload[:payloadPreviewLimit]) + "..."
	}
	return string(payload)
}
