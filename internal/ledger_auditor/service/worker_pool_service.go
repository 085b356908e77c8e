package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolArchiveService implements the ArchiveService interface by
// running the base service on a bounded pool of goroutines
type WorkerPoolArchiveService struct {
	baseService ArchiveService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolArchiveService(
	baseService ArchiveService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolArchiveService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &WorkerPoolArchiveService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Archive submits the event to the worker pool and waits for its result.
// If ctx ends first the worker still finishes in the background.
func (s *WorkerPoolArchiveService) Archive(ctx context.Context, event *transaction.RecordedEvent) error {
	// Buffered so a worker never blocks after the caller gave up
	resultChan := make(chan error, 1)

	// Copy the event to avoid data races with the caller
	eventCopy := *event

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.Archive(ctx, &eventCopy)
	})
	if err != nil {
		s.logger.Error("Failed to submit event to worker pool",
			"transaction_id", event.TransactionID,
			"error", err,
		)
		return fmt.Errorf("failed to submit archive task: %w", err)
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolArchiveService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolArchiveService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolArchiveService) Capacity() int {
	return s.pool.Cap()
}
