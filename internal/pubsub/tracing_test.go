package pubsub_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nfrund/confirmflow/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestBus_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	bus := pubsub.NewBus(pubsub.WithTracer(tp.Tracer("test")))
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	require.NoError(t, bus.Subscribe(ctx, "auth.state.changed", func(ctx context.Context, msg pubsub.Message) error {
		defer close(done)
		return errors.New("boom")
	}))
	require.NoError(t, bus.Publish(ctx, pubsub.Message{Topic: "auth.state.changed", Subject: "pat@example.com"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called")
	}

	require.Eventually(t, func() bool { return len(recorder.Ended()) == 2 }, 2*time.Second, 10*time.Millisecond)

	names := map[string]sdktrace.ReadOnlySpan{}
	for _, span := range recorder.Ended() {
		names[span.Name()] = span
	}
	require.Contains(t, names, "pubsub.publish.auth.state.changed")
	require.Contains(t, names, "pubsub.process.auth.state.changed")
	assert.Equal(t, codes.Error, names["pubsub.process.auth.state.changed"].Status().Code)
	assert.Equal(t, codes.Unset, names["pubsub.publish.auth.state.changed"].Status().Code)
}

func TestSetupTracing_Disabled(t *testing.T) {
	tracer, shutdown, err := pubsub.SetupTracing(context.Background(), pubsub.TracingConfig{})
	require.NoError(t, err)
	require.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}
