package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paywallet-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

const eventTypeHeader = "event-type"

// TransactionEventProducer writes transaction events synchronously so that the
// outbox relay only marks a message published once the broker acknowledged it.
type TransactionEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewTransactionEventProducer ensures the event topic exists and returns a
// producer writing to it.
func NewTransactionEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*TransactionEventProducer, error) {
	if cfg.TransactionTopic == "" {
		return nil, fmt.Errorf("kafka transaction topic is not configured")
	}

	writer, err := newTopicWriter(ctx, logger, cfg, cfg.TransactionTopic, &kafka.Hash{})
	if err != nil {
		return nil, err
	}

	return newTransactionEventProducer(logger, writer, cfg.TransactionTopic), nil
}

func newTransactionEventProducer(logger *slog.Logger, writer KafkaWriter, topic string) *TransactionEventProducer {
	return &TransactionEventProducer{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// PublishEvent writes payload keyed by key. Messages with the same key land
// on the same partition.
func (p *TransactionEventProducer) PublishEvent(ctx context.Context, key, eventType string, payload []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(eventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			"topic", p.topic,
			"key", key,
			"event_type", eventType,
			"error", err,
		)
		return fmt.Errorf("failed to publish event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published event",
		"topic", p.topic,
		"key", key,
		"event_type", eventType,
	)
	return nil
}

func (p *TransactionEventProducer) Close() error {
	p.logger.Info("Closing transaction event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

var _ EventPublisher = (*TransactionEventProducer)(nil)
