package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/pkg/tracing/tracingtest"
)

func TestHeaderCarrier(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "event_type", Value: []byte("storefront.cart.updated")}}}
	c := headerCarrier{msg: &msg}

	assert.Equal(t, "storefront.cart.updated", c.Get("event_type"))
	assert.Empty(t, c.Get("traceparent"))

	c.Set("traceparent", "first")
	c.Set("traceparent", "second")
	assert.Equal(t, "second", c.Get("traceparent"))
	assert.Equal(t, []string{"event_type", "traceparent"}, c.Keys())
	assert.Len(t, msg.Headers, 2)
}

func TestInjectExtractTrace(t *testing.T) {
	tracingtest.Install(t)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	var msg kafka.Message
	injectTrace(ctx, &msg)
	got := trace.SpanContextFromContext(extractTrace(context.Background(), &msg))

	assert.Equal(t, traceID, got.TraceID())
	assert.Equal(t, spanID, got.SpanID())
	assert.True(t, got.IsRemote())
}

func TestExtractTrace_NoHeaders(t *testing.T) {
	tracingtest.Install(t)
	var msg kafka.Message
	assert.False(t, trace.SpanContextFromContext(extractTrace(context.Background(), &msg)).IsValid())
}
