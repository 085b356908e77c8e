package service

import (
	"context"

	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/paywallet-ledger/internal/history"
	"github.com/paywallet-ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

// Ledger is the subset of *ledger.Engine the services depend on
type Ledger interface {
	Transfer(ctx context.Context, req ledger.TransferRequest) (*transaction.Transaction, error)
	Recharge(ctx context.Context, accountID int64, amount decimal.Decimal, note *string) (*transaction.Transaction, error)
	PayBill(ctx context.Context, accountID int64, amount decimal.Decimal, note *string) (*transaction.Transaction, error)
	CorrectBalance(ctx context.Context, accountID int64, balance decimal.Decimal) (*account.Account, error)
	CreateAccount(ctx context.Context, firstName, lastName, email, passwordHash string) (*account.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*account.Account, error)
	FindAccountByID(ctx context.Context, id int64) (*account.Account, error)
	ListTransactionsFor(ctx context.Context, accountID int64) ([]*transaction.Transaction, error)
	ListAccounts(ctx context.Context) ([]*account.Account, error)
}

// AccountService defines the interface for account operations
type AccountService interface {
	// Register hashes the password and creates an account with the starting balance.
	// Returns account.ErrDuplicateEmail if the email is taken
	Register(ctx context.Context, firstName, lastName, email, password string) (*account.Account, error)

	// Authenticate returns the account owning email when password matches.
	// Returns ErrInvalidCredentials otherwise, without saying which part was wrong
	Authenticate(ctx context.Context, email, password string) (*account.Account, error)

	// GetAccount retrieves an account by its ID
	// Returns account.ErrAccountNotFound if the account doesn't exist
	GetAccount(ctx context.Context, id int64) (*account.Account, error)

	// ListAccounts returns every account in creation order
	ListAccounts(ctx context.Context) ([]*account.Account, error)

	// SeedDemoAccount makes sure the demo account exists with the given balance
	SeedDemoAccount(ctx context.Context, email, password string, balance decimal.Decimal) (*account.Account, error)
}

// TransactionService defines the interface for money movements and history
type TransactionService interface {
	Transfer(ctx context.Context, req ledger.TransferRequest) (*transaction.Transaction, error)
	Recharge(ctx context.Context, accountID int64, amount decimal.Decimal, note *string) (*transaction.Transaction, error)
	PayBill(ctx context.Context, accountID int64, amount decimal.Decimal, note *string) (*transaction.Transaction, error)

	// History returns one page of accountID's transactions as that account sees them.
	// A zero PageSize in q falls back to the configured page size
	History(ctx context.Context, accountID int64, q history.Query) (history.Page, error)
}

var _ Ledger = (*ledger.Engine)(nil)
