// Package memory is the in-process storage backend. All state lives behind a
// single RWMutex; units of work hold the write lock and keep an undo log.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/paywallet-ledger/internal/domain/outbox"
	"github.com/paywallet-ledger/internal/domain/store"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Store implements store.Store in memory.
type Store struct {
	mu              sync.RWMutex
	clock           func() time.Time
	startingBalance decimal.Decimal

	accounts      map[int64]*account.Account
	accountOrder  []int64
	emails        map[string]int64
	lastAccountID int64

	// transactions[i] has ID i+1
	transactions  []*transaction.Transaction
	lastTimestamp time.Time

	// outbox[i] has ID i+1
	outbox []*outbox.Message
}

type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithStartingBalance sets the balance new accounts are created with.
func WithStartingBalance(balance decimal.Decimal) Option {
	return func(s *Store) {
		s.startingBalance = balance
	}
}

// DefaultStartingBalance is credited to every new account.
var DefaultStartingBalance = decimal.NewFromInt(1000)

func NewStore(opts ...Option) *Store {
	s := &Store{
		clock:           time.Now,
		startingBalance: DefaultStartingBalance,
		accounts:        make(map[int64]*account.Account),
		emails:          make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Accounts() account.Repository {
	return &accountRepository{s: s}
}

func (s *Store) Transactions() transaction.Repository {
	return &transactionRepository{s: s}
}

func (s *Store) Outbox() outbox.Repository {
	return &outboxRepository{s: s}
}

// RunInTx holds the store's write lock for the duration of fn, so readers see
// either none or all of its writes. fn must not call RunInTx again.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s}
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// memTx hands out repositories that rely on the lock held by RunInTx.
type memTx struct {
	s    *Store
	undo []func()
}

func (t *memTx) Accounts() account.Repository {
	return &accountRepository{s: t.s, tx: t}
}

func (t *memTx) Transactions() transaction.Repository {
	return &transactionRepository{s: t.s, tx: t}
}

func (t *memTx) Outbox() outbox.Repository {
	return &outboxRepository{s: t.s, tx: t}
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// guard runs fn under the store lock unless a unit of work already holds it.
func guard(s *Store, tx *memTx, write bool, fn func()) {
	if tx == nil {
		if write {
			s.mu.Lock()
			defer s.mu.Unlock()
		} else {
			s.mu.RLock()
			defer s.mu.RUnlock()
		}
	}
	fn()
}

// onRollback registers an undo step when running inside a unit of work.
func onRollback(tx *memTx, fn func()) {
	if tx != nil {
		tx.undo = append(tx.undo, fn)
	}
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Tx    = (*memTx)(nil)
)
