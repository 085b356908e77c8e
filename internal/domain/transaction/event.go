package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTypeRecorded is published once for every committed transaction.
const EventTypeRecorded = "transaction.recorded"

// RecordedEvent is the message body relayed to subscribers of the ledger.
type RecordedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	TransactionID int64           `json:"transaction_id"`
	SenderID      *int64          `json:"sender_id"`
	ReceiverID    *int64          `json:"receiver_id"`
	Amount        decimal.Decimal `json:"amount"`
	Note          *string         `json:"note,omitempty"`
	Type          Type            `json:"type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// NewRecordedEvent describes tx as a transaction.recorded event.
func NewRecordedEvent(tx *Transaction, correlationID string) *RecordedEvent {
	return &RecordedEvent{
		EventID:       uuid.New(),
		EventType:     EventTypeRecorded,
		TransactionID: tx.ID,
		SenderID:      tx.SenderID,
		ReceiverID:    tx.ReceiverID,
		Amount:        tx.Amount,
		Note:          tx.Note,
		Type:          tx.Type,
		OccurredAt:    tx.Timestamp,
		CorrelationID: correlationID,
	}
}
