package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paywallet-ledger/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

const (
	dlqReasonHeader      = "dlq-reason"
	dlqSourceTopicHeader = "dlq-source-topic"
)

// ErrDLQDisabled is returned when publishing through a producer that was
// never initialized because no DLQ topic is configured.
var ErrDLQDisabled = errors.New("dlq producer not initialized")

var deadLetters = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "paywallet",
		Name:      "dead_letters_total",
		Help:      "Messages parked on the dead letter topic",
	},
	[]string{"outcome"},
)

// DeadLetter is the envelope written to the DLQ topic. The original value is
// kept as text so that undecodable payloads survive for inspection.
type DeadLetter struct {
	SourceTopic   string `json:"source_topic,omitempty"`
	OriginalKey   string `json:"original_key"`
	OriginalValue string `json:"original_value"`
	Reason        string `json:"dlq_reason"`
	FailedAt      string `json:"failed_at"`
}

type DLQProducer struct {
	logger      *slog.Logger
	writer      KafkaWriter
	dlqTopic    string
	sourceTopic string
	now         func() time.Time
}

// NewDLQProducer returns a nil producer when cfg.DLQTopic is empty.
func NewDLQProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("DLQ topic is not configured, dead letters will only be logged")
		return nil, nil
	}

	writer, err := newTopicWriter(ctx, logger, cfg, cfg.DLQTopic, &kafka.LeastBytes{})
	if err != nil {
		return nil, err
	}

	return &DLQProducer{
		logger:      logger.With("topic", cfg.DLQTopic),
		writer:      writer,
		dlqTopic:    cfg.DLQTopic,
		sourceTopic: cfg.TransactionTopic,
		now:         time.Now,
	}, nil
}

// PublishToDLQ parks a message the consumer could not process.
func (p *DLQProducer) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	if p == nil || p.writer == nil {
		return ErrDLQDisabled
	}

	failedAt := time.Now()
	if p.now != nil {
		failedAt = p.now()
	}
	value, err := json.Marshal(DeadLetter{
		SourceTopic:   p.sourceTopic,
		OriginalKey:   key,
		OriginalValue: string(originalMessageValue),
		Reason:        reason,
		FailedAt:      failedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal dead letter: %w", err)
	}

	headers := []kafka.Header{{Key: dlqReasonHeader, Value: []byte(reason)}}
	if p.sourceTopic != "" {
		headers = append(headers, kafka.Header{Key: dlqSourceTopicHeader, Value: []byte(p.sourceTopic)})
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value, Headers: headers})
	if err != nil {
		deadLetters.WithLabelValues("failed").Inc()
		p.logger.Error("Failed to publish message to DLQ", "key", key, "error", err)
		return fmt.Errorf("failed to publish message to DLQ %s: %w", p.dlqTopic, err)
	}

	deadLetters.WithLabelValues("published").Inc()
	p.logger.Warn("Published message to DLQ", "key", key, "reason", reason)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close dlq kafka writer for topic %s: %w", p.dlqTopic, err)
	}
	return nil
}

var _ DeadLetterPublisher = (*DLQProducer)(nil)
