package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/paywallet-ledger/internal/ledger_auditor/service"
	"github.com/paywallet-ledger/internal/platform/messaging/producers"
)

// RecordedEventHandler handles transaction.recorded messages from Kafka
type RecordedEventHandler struct {
	archiveService service.ArchiveService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewRecordedEventHandler creates a new handler. producer may be nil, in
// which case unreadable messages are retried instead of dead-lettered.
func NewRecordedEventHandler(
	logger *slog.Logger,
	archiveService service.ArchiveService,
	producer producers.DeadLetterPublisher,
) *RecordedEventHandler {
	return &RecordedEventHandler{
		archiveService: archiveService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage archives one Kafka message. A nil return commits the offset.
func (h *RecordedEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event transaction.RecordedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return h.deadLetter(ctx, key, value, "Failed to unmarshal transaction event", err)
	}

	if event.EventType != transaction.EventTypeRecorded {
		h.logger.Info("Skipping unsupported event type",
			"event_type", event.EventType,
			"message_key", string(key),
		)
		return nil
	}

	if event.TransactionID <= 0 {
		return h.deadLetter(ctx, key, value, "Transaction event without transaction ID", nil)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received transaction event",
		"transaction_id", event.TransactionID,
		"type", event.Type,
		"amount", event.Amount.StringFixed(2),
	)

	if err := h.archiveService.Archive(ctx, &event); err != nil {
		logger.Error("Failed to archive transaction event",
			"transaction_id", event.TransactionID,
			"error", err,
		)
		return fmt.Errorf("archiving transaction %d failed: %w", event.TransactionID, err)
	}

	return nil
}

// deadLetter parks an unprocessable message on the DLQ. It returns nil when
// the message is safely parked so the consumer moves past it.
func (h *RecordedEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string, cause error) error {
	if cause != nil {
		reason = fmt.Sprintf("%s: %s", reason, cause.Error())
	}
	h.logger.Error("Unprocessable transaction event", "reason", reason, "message_key", string(key))

	if h.producer == nil {
		return fmt.Errorf("unprocessable message: %s", reason)
	}

	if err := h.producer.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", err,
			"message_key", string(key),
		)
		return fmt.Errorf("unprocessable message: %s: %w", reason, err)
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
	return nil
}
