package service

import (
	"context"

	"github.com/paywallet-ledger/internal/domain/transaction"
)

// ArchiveService stores recorded ledger events for later audit
type ArchiveService interface {
	Archive(ctx context.Context, event *transaction.RecordedEvent) error
}
