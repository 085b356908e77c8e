package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/paywallet-ledger/internal/domain/outbox"
	"github.com/paywallet-ledger/internal/platform/messaging/producers"
)

// EventRelay publishes one outbox message and records the outcome
type EventRelay interface {
	Relay(ctx context.Context, message *outbox.Message) error
}

// KafkaEventRelay implements EventRelay on top of an EventPublisher
type KafkaEventRelay struct {
	outboxRepo outbox.Repository
	publisher  producers.EventPublisher
	logger     *slog.Logger
}

func NewKafkaEventRelay(
	outboxRepo outbox.Repository,
	publisher producers.EventPublisher,
	logger *slog.Logger,
) EventRelay {
	return &KafkaEventRelay{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// Relay publishes the payload keyed by transaction ID, so that every event
// for one transaction lands on the same partition, then marks the message
// PROCESSED. A payload that no longer decodes is marked FAILED_TO_PUBLISH
// straight away since retrying cannot fix it.
func (r *KafkaEventRelay) Relay(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		r.logger.Error("Failed to decode outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := r.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailedToPublish); updateErr != nil {
			r.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after decode error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	logger := r.logger
	if event.CorrelationID != "" {
		logger = r.logger.With("correlation_id", event.CorrelationID)
	}

	key := strconv.FormatInt(message.TransactionID, 10)
	if err := r.publisher.PublishEvent(ctx, key, message.EventType, message.Payload); err != nil {
		return fmt.Errorf("failed to publish outbox %d: %w", message.ID, err)
	}

	if err := r.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("event for transaction %d published, but failed to mark outbox %d as PROCESSED: %w", message.TransactionID, message.ID, err)
	}

	logger.Info("Outbox message published and marked as PROCESSED", "outbox_id", message.ID, "transaction_id", message.TransactionID)
	return nil
}
