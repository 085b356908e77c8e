package transaction

import (
	"context"
	"strconv"
)

// Repository is the append-only transaction record.
type Repository interface {
	// Append assigns ID and timestamp in one step so that ID order and
	// timestamp order agree.
	Append(ctx context.Context, draft Draft) (*Transaction, error)
	Get(ctx context.Context, id int64) (*Transaction, error)

	// ListByAccount returns every transaction the account took part in,
	// newest first.
	ListByAccount(ctx context.Context, accountID int64) ([]*Transaction, error)
}

// ErrTransactionNotFound indicates missing transaction
type ErrTransactionNotFound struct {
	TransactionID int64
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + strconv.FormatInt(e.TransactionID, 10)
}

// Is matches any ErrTransactionNotFound when the target carries no ID.
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	return t.TransactionID == 0 || t.TransactionID == e.TransactionID
}

// ErrInvalidType indicates an unregistered transaction type tag
type ErrInvalidType struct {
	Type string
}

func (e ErrInvalidType) Error() string {
	return "invalid transaction type: " + e.Type
}

func (e ErrInvalidType) Is(target error) bool {
	t, ok := target.(ErrInvalidType)
	if !ok {
		return false
	}
	return t.Type == "" || t.Type == e.Type
}
