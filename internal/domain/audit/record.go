package audit

import (
	"time"

	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Record is the archived copy of a transaction.recorded event.
type Record struct {
	TransactionID int64            `json:"transaction_id"`
	EventID       string           `json:"event_id"`
	SenderID      *int64           `json:"sender_id"`
	ReceiverID    *int64           `json:"receiver_id"`
	Amount        decimal.Decimal  `json:"amount"`
	Note          *string          `json:"note,omitempty"`
	Type          transaction.Type `json:"type"`
	OccurredAt    time.Time        `json:"occurred_at"`
	ArchivedAt    time.Time        `json:"archived_at"`
	CorrelationID string           `json:"correlation_id,omitempty"`
}

// NewRecord builds an archive record from an event received at archivedAt.
func NewRecord(event *transaction.RecordedEvent, archivedAt time.Time) *Record {
	return &Record{
		TransactionID: event.TransactionID,
		EventID:       event.EventID.String(),
		SenderID:      event.SenderID,
		ReceiverID:    event.ReceiverID,
		Amount:        event.Amount,
		Note:          event.Note,
		Type:          event.Type,
		OccurredAt:    event.OccurredAt,
		ArchivedAt:    archivedAt,
		CorrelationID: event.CorrelationID,
	}
}
