// Package postgres provides PostgreSQL implementations of the domain repositories.
// Balances and amounts travel as text so that NUMERIC values round-trip
// through decimal.Decimal without float conversion.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/paywallet-ledger/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

const uniqueViolationCode = "23505"

const accountColumns = `id, first_name, last_name, email, password_hash, balance::text, created_at, updated_at`

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier         persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	startingBalance decimal.Decimal
	logger          *slog.Logger
}

// NewAccountRepository creates a repository whose new accounts are credited
// with startingBalance.
func NewAccountRepository(logger *slog.Logger, querier persistence.Querier, startingBalance decimal.Decimal) *AccountRepository {
	return &AccountRepository{
		querier:         querier,
		startingBalance: startingBalance,
		logger:          logger,
	}
}

// WithTx returns a copy of the repository that runs every statement on tx.
func (r *AccountRepository) WithTx(tx pgx.Tx) *AccountRepository {
	return &AccountRepository{
		querier:         tx,
		startingBalance: r.startingBalance,
		logger:          r.logger,
	}
}

// Create inserts a new account. The unique index on lower(email) turns a
// concurrent duplicate into ErrDuplicateEmail.
func (r *AccountRepository) Create(ctx context.Context, firstName, lastName, email, passwordHash string) (*account.Account, error) {
	normalized := account.NormalizeEmail(email)
	query := `
		INSERT INTO accounts (first_name, last_name, email, password_hash, balance)
		VALUES ($1, $2, $3, $4, $5::numeric)
		RETURNING ` + accountColumns

	acc, err := scanAccount(r.querier.QueryRow(ctx, query,
		firstName,
		lastName,
		normalized,
		passwordHash,
		r.startingBalance.String(),
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, account.ErrDuplicateEmail{Email: normalized}
		}
		r.logger.Error("Failed to create account", "error", err)
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return acc, nil
}

// Get retrieves an account by its ID
func (r *AccountRepository) Get(ctx context.Context, id int64) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// GetByEmail retrieves an account by its normalized email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	normalized := account.NormalizeEmail(email)
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE LOWER(email) = $1
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, normalized))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrEmailNotFound{Email: normalized}
		}
		r.logger.Error("Failed to get account by email", "error", err)
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return acc, nil
}

// SetBalance overwrites the stored balance. The table's CHECK constraint
// still rejects negative values.
func (r *AccountRepository) SetBalance(ctx context.Context, id int64, balance decimal.Decimal) (*account.Account, error) {
	query := `
		UPDATE accounts
		SET balance = $1::numeric, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + accountColumns

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, balance.String(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to set account balance", "id", id, "error", err)
		return nil, fmt.Errorf("failed to set account balance: %w", err)
	}

	return acc, nil
}

// ListAll returns every account ordered by ID, which is insertion order.
func (r *AccountRepository) ListAll(ctx context.Context) ([]*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY id ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list accounts", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*account.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			r.logger.Error("Failed to scan account", "error", err)
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over accounts", "error", err)
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}

	return accounts, nil
}

// LockForUpdate obtains a pessimistic lock on the account and returns its current state.
// This should be used within a transaction when strong consistency is required.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to lock account for update", "id", id, "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return acc, nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		acc     account.Account
		balance string
	)
	err := row.Scan(
		&acc.ID,
		&acc.FirstName,
		&acc.LastName,
		&acc.Email,
		&acc.PasswordHash,
		&balance,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	acc.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q: %w", balance, err)
	}
	return &acc, nil
}

var _ account.Repository = (*AccountRepository)(nil)
