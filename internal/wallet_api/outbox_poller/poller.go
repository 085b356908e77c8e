// Package outbox_poller relays transaction events written to the outbox in
// the same unit of work as a ledger movement out to Kafka.
package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paywallet-ledger/internal/config"
	"github.com/paywallet-ledger/internal/domain/outbox"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// maxDrainBatches caps how many full batches one tick may relay back to back.
const maxDrainBatches = 10

var relayOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "paywallet",
		Name:      "outbox_messages_total",
		Help:      "Outbox messages handled by the relay, by outcome",
	},
	[]string{"outcome"},
)

// Poller moves pending outbox messages to an EventRelay, retrying failed
// ones on later ticks until they run out of attempts.
type Poller struct {
	outboxRepo       outbox.Repository
	relay            EventRelay
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	relay EventRelay,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		relay:            relay,
		logger:           logger.With("component", "outbox_poller"),
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start drains the outbox once, then on every tick, until ctx is canceled.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Outbox poller running",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		if err := p.drain(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error("Outbox relay pass failed", "error", err)
		}

		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopped")
			return
		case <-ticker.C:
		}
	}
}

// drain keeps fetching while batches come back full, so a backlog is not
// relayed at one batch per interval.
func (p *Poller) drain(ctx context.Context) error {
	for i := 0; i < maxDrainBatches; i++ {
		fetched, err := p.processPendingMessages(ctx)
		if err != nil {
			return err
		}
		if fetched < p.batchSize {
			return nil
		}
	}
	p.logger.Warn("Outbox backlog remains after drain limit", "batches", maxDrainBatches)
	return nil
}

// processPendingMessages relays one batch and reports how many messages it
// fetched. Relay failures are recorded on the message, not returned.
func (p *Poller) processPendingMessages(ctx context.Context) (int, error) {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	p.logger.Debug("Fetched pending outbox messages", "count", len(messages))

	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return len(messages), err
		}

		if err := p.relay.Relay(ctx, msg); err != nil {
			p.recordFailure(ctx, msg, err)
			continue
		}
		relayOutcomes.WithLabelValues("relayed").Inc()
	}
	return len(messages), nil
}

// recordFailure spends one attempt and gives the message up once the
// attempts are exhausted.
func (p *Poller) recordFailure(ctx context.Context, msg *outbox.Message, relayErr error) {
	attempts := msg.Attempts + 1
	logger := p.logger.With("outbox_id", msg.ID, "transaction_id", msg.TransactionID, "attempt", attempts)
	logger.Error("Failed to relay outbox message", "error", relayErr)

	if err := p.outboxRepo.IncrementAttempts(ctx, msg.ID); err != nil {
		logger.Error("Failed to record relay attempt", "error", err)
		return
	}

	if attempts < p.maxRetryAttempts {
		relayOutcomes.WithLabelValues("retried").Inc()
		return
	}

	relayOutcomes.WithLabelValues("failed").Inc()
	logger.Warn("Relay attempts exhausted, marking outbox message FAILED_TO_PUBLISH")
	if err := p.outboxRepo.UpdateStatus(ctx, msg.ID, outbox.StatusFailedToPublish); err != nil {
		logger.Error("Failed to mark outbox message FAILED_TO_PUBLISH", "error", err)
	}
}
