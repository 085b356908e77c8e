package audit

import (
	"context"
	"strconv"
)

// Repository persists archived transaction records.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetByTransactionID(ctx context.Context, transactionID int64) (*Record, error)
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*Record, error)
	CountByAccount(ctx context.Context, accountID int64) (int64, error)
}

// ErrRecordNotFound indicates missing audit record
type ErrRecordNotFound struct {
	TransactionID int64
}

func (e ErrRecordNotFound) Error() string {
	return "audit record not found: " + strconv.FormatInt(e.TransactionID, 10)
}

// Is matches any ErrRecordNotFound when the target carries no ID.
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	return t.TransactionID == 0 || t.TransactionID == e.TransactionID
}

// ErrDuplicateRecord indicates the transaction was already archived
type ErrDuplicateRecord struct {
	TransactionID int64
}

func (e ErrDuplicateRecord) Error() string {
	return "duplicate audit record: " + strconv.FormatInt(e.TransactionID, 10)
}

func (e ErrDuplicateRecord) Is(target error) bool {
	t, ok := target.(ErrDuplicateRecord)
	if !ok {
		return false
	}
	return t.TransactionID == 0 || t.TransactionID == e.TransactionID
}
