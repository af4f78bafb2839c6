package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	metaKeySubject = "subject"
	metaKeyTopic   = "topic"
)

// Bus implements Publisher and Subscriber on top of watermill's in-memory GoChannel.
type Bus struct {
	channel *gochannel.GoChannel
	tracer  trace.Tracer
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithTracer records a span for every publish and every handled message.
func WithTracer(tracer trace.Tracer) BusOption {
	return func(b *Bus) {
		if tracer != nil {
			b.tracer = tracer
		}
	}
}

// NewBus creates an in-process bus. Published messages are dropped when no
// subscriber is listening on their topic.
func NewBus(opts ...BusOption) *Bus {
	logger := watermill.NewStdLogger(false, false)
	b := &Bus{
		channel: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger),
		tracer:  noop.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func toWatermill(msg Message) *message.Message {
	wm := message.NewMessage(watermill.NewUUID(), msg.Payload)
	for k, v := range msg.Metadata {
		wm.Metadata.Set(k, v)
	}
	wm.Metadata.Set(metaKeySubject, msg.Subject)
	wm.Metadata.Set(metaKeyTopic, msg.Topic)
	return wm
}

func fromWatermill(wm *message.Message) Message {
	metadata := make(map[string]string, len(wm.Metadata))
	for k, v := range wm.Metadata {
		if k == metaKeySubject || k == metaKeyTopic {
			continue
		}
		metadata[k] = v
	}
	return Message{
		Topic:    wm.Metadata.Get(metaKeyTopic),
		Subject:  wm.Metadata.Get(metaKeySubject),
		Payload:  wm.Payload,
		Metadata: metadata,
	}
}

// Publish implements Publisher.
func (b *Bus) Publish(ctx context.Context, msg Message) error {
	wm := toWatermill(msg)
	ctx, span := b.tracer.Start(ctx, "pubsub.publish."+msg.Topic, messageAttributes("publish", msg, wm.UUID))
	wm.SetContext(ctx)
	err := b.channel.Publish(msg.Topic, wm)
	endSpan(span, err)
	return err
}

// Subscribe implements Subscriber. Handler errors are logged and the message is
// still acked, since GoChannel redelivers nacked messages immediately.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := b.channel.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for wm := range messages {
			msg := fromWatermill(wm)
			spanCtx, span := b.tracer.Start(ctx, "pubsub.process."+topic, messageAttributes("process", msg, wm.UUID))
			err := handler(spanCtx, msg)
			if err != nil {
				slog.Error("Failed to handle message", "topic", topic, "msg_id", wm.UUID, "error", err)
			}
			endSpan(span, err)
			wm.Ack()
		}
		slog.Debug("Subscription ended", "topic", topic)
	}()

	return nil
}

// Close shuts down the bus and ends all subscriptions.
func (b *Bus) Close() error {
	return b.channel.Close()
}
