package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/pkg/tracing"
)

// maxHandlerRetries is how often a handler sees one message before it is
// committed and skipped.
const maxHandlerRetries = 3

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topic   string

	// StartOffset applies when the group has no committed offset.
	// kafka.LastOffset skips history, kafka.FirstOffset replays it.
	StartOffset int64

	MinBytes int
	MaxBytes int
}

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer feeds one topic to a Handler with at-least-once delivery: an
// offset is committed only after the handler succeeded or gave up.
type Consumer struct {
	reader  messageReader
	topic   string
	group   string
	handler Handler
	logger  *slog.Logger
	backoff time.Duration

	closeOnce sync.Once
	closeErr  error
}

func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	if cfg.StartOffset == 0 {
		cfg.StartOffset = kafka.LastOffset
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: cfg.StartOffset,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
	})
	return newConsumer(r, cfg.Topic, cfg.GroupID, handler, logger)
}

func newConsumer(r messageReader, topic, group string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:  r,
		topic:   topic,
		group:   group,
		handler: handler,
		logger:  logger.With(slog.String("topic", topic), slog.String("consumer_group", group)),
		backoff: 100 * time.Millisecond,
	}
}

// Start consumes until ctx is canceled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.logger.Info("consumer stopped")

	for ctx.Err() == nil {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Error("fetch failed", slog.String("error", err.Error()))
			}
			continue
		}
		ConsumerMessagesReceived.WithLabelValues(c.topic, c.group).Inc()

		if !c.process(ctx, msg) && ctx.Err() != nil {
			break
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", slog.Int64("offset", msg.Offset), slog.String("error", err.Error()))
		}
	}
	return c.Close()
}

// process hands msg to the handler, retrying with linear backoff. It reports
// false when the message was dropped as undecodable or after the last retry.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	event, err := DecodeEvent(msg.Value)
	if err != nil {
		ConsumerMessagesFailed.WithLabelValues(c.topic, c.group).Inc()
		c.logger.Error("dropping undecodable message", slog.Int64("offset", msg.Offset), slog.String("error", err.Error()))
		return false
	}

	ctx, span := tracing.Tracer("kafka").Start(extractTrace(ctx, &msg), c.topic+" process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", c.topic),
			attribute.Int64("messaging.kafka.message.offset", msg.Offset),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		ConsumerProcessingDuration.WithLabelValues(c.topic, c.group).Observe(time.Since(start).Seconds())
	}()

	log := c.logger.With(
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
		slog.Int64("offset", msg.Offset),
	)
	for attempt := 1; ; attempt++ {
		err = c.handler(ctx, event)
		if err == nil {
			ConsumerMessagesProcessed.WithLabelValues(c.topic, c.group).Inc()
			return true
		}
		if attempt == maxHandlerRetries {
			break
		}
		log.WarnContext(ctx, "handler failed, retrying", slog.Int("attempt", attempt), slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	ConsumerMessagesFailed.WithLabelValues(c.topic, c.group).Inc()
	log.ErrorContext(ctx, "skipping message after retries", slog.String("error", err.Error()))
	return false
}

// Close closes the reader once; later calls return the first result.
func (c *Consumer) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.reader.Close()
	})
	return c.closeErr
}
