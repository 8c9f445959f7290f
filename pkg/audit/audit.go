// Package audit publishes booking decision events to Kafka so that
// downstream systems can reconstruct why a reservation was accepted,
// rejected or refunded. Publishing is best effort: a broker outage
// must never fail the request that triggered the event.
package audit

import (
	"context"
	"time"

	"innkeep/pkg/kafka"
	kafka_config "innkeep/pkg/kafka/config"
	kafka_middleware "innkeep/pkg/kafka/middleware"
	"innkeep/pkg/logger"
)

// Event types emitted by the reservations service
const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationRejected  = "reservation.rejected"
	EventRefundCalculated     = "refund.calculated"
)

const schemaVersion = "1"

// Event is the envelope written to the audit topic
type Event struct {
	EventType  string                 `json:"event_type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Subject    string                 `json:"subject"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// Publisher records booking decisions. Implementations must not block
// request handling on broker availability beyond the context deadline.
type Publisher interface {
	Record(ctx context.Context, event Event)
	Close() error
}

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer producer
	source   string
	log      *logger.Logger
}

// Config for the audit publisher
type Config struct {
	Brokers  []string
	Topic    string
	DLQTopic string
	Source   string
}

// NewPublisher creates a Kafka-backed publisher, or a no-op publisher
// when no brokers are configured.
func NewPublisher(cfg Config, log *logger.Logger) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		log.Info("Audit publishing disabled, no brokers configured")
		return NewNoopPublisher(), nil
	}

	kafkaCfg := &kafka_config.Config{
		Brokers:              cfg.Brokers,
		ProducerMaxAttempts:  kafka_config.DefaultProducerMaxAttempts,
		ProducerBatchTimeout: kafka_config.DefaultProducerBatchTimeout,
		ProducerRequireAcks:  kafka_config.DefaultProducerRequireAcks,
		ProducerCompression:  kafka_config.DefaultProducerCompression,
		EnableMiddleware:     kafka_config.DefaultEnableMiddleware,
	}
	if err := kafkaCfg.Validate(); err != nil {
		return nil, err
	}

	prod, err := kafka.NewProducer(kafkaCfg, cfg.Topic, cfg.DLQTopic)
	if err != nil {
		return nil, err
	}

	if kafkaCfg.EnableMiddleware {
		prod.Use(kafka_middleware.MetricsProducerMiddleware())
		prod.Use(kafka_middleware.LoggingProducerMiddleware())
	}

	log.Info("Audit publishing enabled", "topic", cfg.Topic, "brokers", cfg.Brokers)

	return &kafkaPublisher{
		producer: prod,
		source:   cfg.Source,
		log:      log,
	}, nil
}

// Record publishes an audit event. Failures are logged, not returned.
func (p *kafkaPublisher) Record(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	msg := kafka.NewMessage().
		WithKey(event.Subject).
		WithValue(event).
		WithEventType(event.EventType).
		WithSchemaVersion(schemaVersion).
		WithSource(p.source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish audit event",
			"event_type", event.EventType,
			"subject", event.Subject,
			"error", err,
		)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that discards all events.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Record(ctx context.Context, event Event) {}

func (noopPublisher) Close() error { return nil }
