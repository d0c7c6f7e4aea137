package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// TopicPrefix is the prefix for every storefront topic.
const TopicPrefix = "storefront"

// Topic builds a topic name such as "storefront.cart.updated".
func Topic(domain, action string) string {
	return TopicPrefix + "." + domain + "." + action
}

// Publisher is the producer surface the service layer depends on.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
}

type ProducerConfig struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
	Async        bool
}

// DefaultProducerConfig suits small, latency-sensitive collection events:
// a short batch window and synchronous writes.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// Producer publishes events through a kafka-go writer. Messages are keyed by
// aggregate, so every change to one shopper's collection lands on the same
// partition in order.
type Producer struct {
	writer  *kafka.Writer
	brokers []string
	logger  *slog.Logger
}

func NewProducer(cfg ProducerConfig, logger *slog.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Balancer:               &kafka.Hash{},
			BatchSize:              cfg.BatchSize,
			BatchTimeout:           cfg.BatchTimeout,
			Async:                  cfg.Async,
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		brokers: cfg.Brokers,
		logger:  logger,
	}
}

// newMessage builds the wire message for event, carrying the event type,
// source, correlation id and trace context as headers.
func newMessage(ctx context.Context, topic string, event *Event) (kafka.Message, error) {
	value, err := event.Encode()
	if err != nil {
		return kafka.Message{}, err
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(event.AggregateID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "source", Value: []byte(event.Source)},
		},
	}
	if event.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "correlation_id", Value: []byte(event.CorrelationID)})
	}
	injectTrace(ctx, &msg)
	return msg, nil
}

func (p *Producer) Publish(ctx context.Context, topic string, event *Event) error {
	msg, err := newMessage(ctx, topic, event)
	if err != nil {
		return err
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, msg)
	ProducerPublishDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	if err != nil {
		ProducerPublishErrors.WithLabelValues(topic).Inc()
		p.logger.ErrorContext(ctx, "publish failed",
			slog.String("topic", topic),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	ProducerMessagesPublished.WithLabelValues(topic).Inc()
	p.logger.DebugContext(ctx, "event published",
		slog.String("topic", topic),
		slog.String("aggregate_id", event.AggregateID),
		slog.Int64("version", event.Version),
	)
	return nil
}

// Ping succeeds when any configured broker answers a metadata request.
func (p *Producer) Ping(ctx context.Context) error {
	return pingBrokers(ctx, p.brokers)
}

var errNoBrokers = errors.New("kafka: no brokers configured")

func pingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return errNoBrokers
	}
	var errs []error
	for _, addr := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err == nil {
			_, err = conn.Brokers()
			_ = conn.Close()
		}
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", addr, err))
	}
	return fmt.Errorf("kafka unreachable: %w", errors.Join(errs...))
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
