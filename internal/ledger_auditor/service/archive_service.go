package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paywallet-ledger/internal/domain/audit"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsArchivedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "paywallet",
		Name:      "audit_events_archived_total",
		Help:      "Recorded ledger events handled by the auditor, by outcome",
	},
	[]string{"outcome"},
)

// archiveService implements ArchiveService on top of an audit repository
type archiveService struct {
	repo   audit.Repository
	now    func() time.Time
	logger *slog.Logger
}

// NewArchiveService creates an ArchiveService writing to repo
func NewArchiveService(logger *slog.Logger, repo audit.Repository) ArchiveService {
	return &archiveService{
		repo:   repo,
		now:    time.Now,
		logger: logger,
	}
}

// Archive stores event. Redelivered events are already archived and count
// as success, so the consumer can commit them.
func (s *archiveService) Archive(ctx context.Context, event *transaction.RecordedEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	record := audit.NewRecord(event, s.now().UTC())
	err := s.repo.Create(ctx, record)
	switch {
	case err == nil:
		eventsArchivedTotal.WithLabelValues("archived").Inc()
		logger.Info("Archived transaction event",
			"transaction_id", event.TransactionID,
			"event_id", event.EventID.String(),
			"type", event.Type,
		)
		return nil
	case errors.Is(err, audit.ErrDuplicateRecord{}):
		eventsArchivedTotal.WithLabelValues("duplicate").Inc()
		logger.Info("Transaction event already archived", "transaction_id", event.TransactionID)
		return nil
	default:
		eventsArchivedTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to archive transaction %d: %w", event.TransactionID, err)
	}
}
