// Package store defines the unit of work the ledger engine runs in.
package store

import (
	"context"

	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/paywallet-ledger/internal/domain/outbox"
	"github.com/paywallet-ledger/internal/domain/transaction"
)

// Tx exposes repositories bound to one unit of work.
type Tx interface {
	Accounts() account.Repository
	Transactions() transaction.Repository
	Outbox() outbox.Repository
}

// TxRunner runs fn atomically. When fn returns an error or panics, every
// write made through tx is discarded and no other reader observes it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Store is a complete storage backend.
type Store interface {
	TxRunner
	Accounts() account.Repository
	Transactions() transaction.Repository
	Outbox() outbox.Repository
}
