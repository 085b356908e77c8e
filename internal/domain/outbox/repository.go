package outbox

import (
	"context"
	"strconv"
)

// Repository manages transactional outbox message persistence
type Repository interface {
	Create(ctx context.Context, message *Message) error
	GetPending(ctx context.Context, limit int) ([]*Message, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	IncrementAttempts(ctx context.Context, id int64) error
	GetByTransactionID(ctx context.Context, transactionID int64) (*Message, error)
}

// ErrMessageNotFound indicates missing outbox message
type ErrMessageNotFound struct {
	ID            int64
	TransactionID int64
}

func (e ErrMessageNotFound) Error() string {
	if e.ID == 0 && e.TransactionID != 0 {
		return "outbox message not found for transaction: " + strconv.FormatInt(e.TransactionID, 10)
	}
	return "outbox message not found: " + strconv.FormatInt(e.ID, 10)
}

// Is matches any ErrMessageNotFound when the target carries no IDs.
func (e ErrMessageNotFound) Is(target error) bool {
	t, ok := target.(ErrMessageNotFound)
	if !ok {
		return false
	}
	if t.ID == 0 && t.TransactionID == 0 {
		return true
	}
	return t == e
}
