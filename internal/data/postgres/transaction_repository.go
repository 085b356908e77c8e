package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/paywallet-ledger/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

// appendLockKey is the advisory lock every append takes so that serial IDs
// and clock_timestamp() are handed out in commit order.
const appendLockKey int64 = 0x7061795f6c656467

const transactionColumns = `id, sender_id, receiver_id, amount::text, note, type, created_at`

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewTransactionRepository(logger *slog.Logger, querier persistence.Querier) *TransactionRepository {
	return &TransactionRepository{
		querier: querier,
		logger:  logger,
	}
}

// WithTx returns a copy of the repository that runs every statement on tx.
func (r *TransactionRepository) WithTx(tx pgx.Tx) *TransactionRepository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append must run inside a transaction: the advisory lock is released at
// commit, after which the next append may take its ID and timestamp.
func (r *TransactionRepository) Append(ctx context.Context, draft transaction.Draft) (*transaction.Transaction, error) {
	if _, err := r.querier.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockKey); err != nil {
		r.logger.Error("Failed to acquire transaction append lock", "error", err)
		return nil, fmt.Errorf("failed to acquire append lock: %w", err)
	}

	query := `
		INSERT INTO transactions (sender_id, receiver_id, amount, note, type, created_at)
		VALUES ($1, $2, $3::numeric, $4, $5, clock_timestamp())
		RETURNING ` + transactionColumns

	tx, err := scanTransaction(r.querier.QueryRow(ctx, query,
		draft.SenderID,
		draft.ReceiverID,
		draft.Amount.String(),
		draft.Note,
		string(draft.Type),
	))
	if err != nil {
		r.logger.Error("Failed to append transaction", "type", string(draft.Type), "error", err)
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	return tx, nil
}

// Get retrieves a transaction by its ID
func (r *TransactionRepository) Get(ctx context.Context, id int64) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`

	tx, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// ListByAccount returns the account's transactions newest first. ID order
// equals timestamp order, so sorting on ID alone is enough.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.querier.Query(ctx, query, accountID)
	if err != nil {
		r.logger.Error("Failed to list transactions", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*transaction.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return transactions, nil
}

func scanTransaction(row pgx.Row) (*transaction.Transaction, error) {
	var (
		tx     transaction.Transaction
		amount string
		txType string
	)
	err := row.Scan(
		&tx.ID,
		&tx.SenderID,
		&tx.ReceiverID,
		&amount,
		&tx.Note,
		&txType,
		&tx.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	tx.Type = transaction.Type(txType)
	return &tx, nil
}

var _ transaction.Repository = (*TransactionRepository)(nil)
