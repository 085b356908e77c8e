package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/paywallet-ledger/internal/domain/outbox"
	"github.com/paywallet-ledger/internal/domain/store"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/paywallet-ledger/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

// Store implements store.Store on a pgx pool. A unit of work is one
// database transaction; row locks come from LockForUpdate.
type Store struct {
	pool         persistence.Pool
	accounts     *AccountRepository
	transactions *TransactionRepository
	outbox       *OutboxRepository
}

func NewStore(logger *slog.Logger, pool persistence.Pool, startingBalance decimal.Decimal) *Store {
	return &Store{
		pool:         pool,
		accounts:     NewAccountRepository(logger, pool, startingBalance),
		transactions: NewTransactionRepository(logger, pool),
		outbox:       NewOutboxRepository(logger, pool),
	}
}

func (s *Store) Accounts() account.Repository {
	return s.accounts
}

func (s *Store) Transactions() transaction.Repository {
	return s.transactions
}

func (s *Store) Outbox() outbox.Repository {
	return s.outbox
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return persistence.ExecuteTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTx{
			accounts:     s.accounts.WithTx(tx),
			transactions: s.transactions.WithTx(tx),
			outbox:       s.outbox.WithTx(tx),
		})
	})
}

type pgTx struct {
	accounts     *AccountRepository
	transactions *TransactionRepository
	outbox       *OutboxRepository
}

func (t *pgTx) Accounts() account.Repository         { return t.accounts }
func (t *pgTx) Transactions() transaction.Repository { return t.transactions }
func (t *pgTx) Outbox() outbox.Repository            { return t.outbox }

var (
	_ store.Store = (*Store)(nil)
	_ store.Tx    = (*pgTx)(nil)
)
