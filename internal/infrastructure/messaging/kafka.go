// Package messaging delivers outbox entries to the message broker.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/posledger/backend/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Message headers carried by every relayed event
const (
	HeaderEventID       = "event_id"
	HeaderEventType     = "event_type"
	HeaderTenantID      = "tenant_id"
	HeaderAggregateType = "aggregate_type"
)

// MessageWriter is the subset of *kafka.Writer the relay needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaRelayConfig configures the producer
type KafkaRelayConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// KafkaRelay publishes outbox entries to a Kafka topic. Messages are keyed by
// aggregate ID so events of one sale or customer stay ordered in a partition.
type KafkaRelay struct {
	writer MessageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaRelay creates a relay backed by a kafka.Writer
func NewKafkaRelay(cfg KafkaRelayConfig, logger *zap.Logger) *KafkaRelay {
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: writeTimeout,
		ReadTimeout:  writeTimeout,
	}
	return NewKafkaRelayWithWriter(writer, cfg.Topic, logger)
}

// NewKafkaRelayWithWriter wraps an existing writer
func NewKafkaRelayWithWriter(writer MessageWriter, topic string, logger *zap.Logger) *KafkaRelay {
	return &KafkaRelay{writer: writer, topic: topic, logger: logger}
}

// Relay writes one entry. Failures are returned so the processor can back off.
func (r *KafkaRelay) Relay(ctx context.Context, entry *shared.OutboxEntry) error {
	msg := kafka.Message{
		Key:   []byte(entry.AggregateID.String()),
		Value: entry.Payload,
		Time:  entry.CreatedAt,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(entry.EventID.String())},
			{Key: HeaderEventType, Value: []byte(entry.EventType)},
			{Key: HeaderTenantID, Value: []byte(entry.TenantID.String())},
			{Key: HeaderAggregateType, Value: []byte(entry.AggregateType)},
		},
	}
	if err := r.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	r.logger.Debug("published event",
		zap.String("topic", r.topic),
		zap.String("event_type", entry.EventType),
		zap.String("event_id", entry.EventID.String()),
	)
	return nil
}

// Close closes the producer
func (r *KafkaRelay) Close() error {
	return r.writer.Close()
}

var _ shared.OutboxRelay = (*KafkaRelay)(nil)
