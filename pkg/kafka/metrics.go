package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConsumerMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "kafka_consumer_messages_received_total",
			Help:      "Total number of Kafka messages fetched from the broker",
		},
		[]string{"topic", "consumer_group"},
	)

	ConsumerMessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "kafka_consumer_messages_processed_total",
			Help:      "Total number of successfully processed Kafka messages",
		},
		[]string{"topic", "consumer_group"},
	)

	ConsumerMessagesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "kafka_consumer_messages_failed_total",
			Help:      "Total number of Kafka messages dropped after exhausting retries",
		},
		[]string{"topic", "consumer_group"},
	)

	ConsumerProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "kafka_consumer_processing_duration_seconds",
			Help:      "Duration of Kafka message processing in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"topic", "consumer_group"},
	)

	ProducerMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "kafka_producer_messages_published_total",
			Help:      "Total number of Kafka messages published",
		},
		[]string{"topic"},
	)

	ProducerPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "kafka_producer_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		},
		[]string{"topic"},
	)

	ProducerPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "kafka_producer_publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"topic"},
	)
)
