package outbox

import (
	"errors"
	"testing"
	"time"

	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent() *transaction.RecordedEvent {
	sender, receiver := int64(1), int64(2)
	return transaction.NewRecordedEvent(&transaction.Transaction{
		ID:         10,
		SenderID:   &sender,
		ReceiverID: &receiver,
		Amount:     decimal.NewFromInt(300),
		Timestamp:  time.Now().UTC().Truncate(time.Millisecond),
		Type:       transaction.TypeTransfer,
	}, "corr-123")
}

func TestNewMessage(t *testing.T) {
	event := newEvent()

	beforeCreation := time.Now()
	msg, err := NewMessage(event)
	afterCreation := time.Now()

	require.NoError(t, err)
	require.NotNil(t, msg)

	assert.Equal(t, int64(10), msg.TransactionID)
	assert.Equal(t, transaction.EventTypeRecorded, msg.EventType)
	assert.Equal(t, StatusPending, msg.Status)
	assert.Equal(t, 0, msg.Attempts)
	assert.Nil(t, msg.LastAttemptAt)
	assert.WithinDuration(t, beforeCreation, msg.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)

	decoded, err := msg.Event()
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, event.TransactionID, decoded.TransactionID)
	assert.True(t, event.Amount.Equal(decoded.Amount))
	assert.Equal(t, "corr-123", decoded.CorrelationID)
	assert.True(t, event.OccurredAt.Equal(decoded.OccurredAt))
}

func TestMessage_StateTransitions(t *testing.T) {
	t.Run("IncrementAttempts", func(t *testing.T) {
		msg := &Message{Attempts: 1}
		msg.IncrementAttempts()

		assert.Equal(t, 2, msg.Attempts)
		require.NotNil(t, msg.LastAttemptAt)
	})

	t.Run("MarkAsProcessed", func(t *testing.T) {
		initialTime := time.Now().Add(-time.Hour)
		msg := &Message{Status: StatusPending, LastAttemptAt: &initialTime}
		msg.MarkAsProcessed()

		assert.Equal(t, StatusProcessed, msg.Status)
		assert.True(t, msg.LastAttemptAt.After(initialTime))
	})

	t.Run("MarkAsFailed", func(t *testing.T) {
		msg := &Message{Status: StatusPending}
		msg.MarkAsFailed()

		assert.Equal(t, StatusFailedToPublish, msg.Status)
		require.NotNil(t, msg.LastAttemptAt)
	})
}

func TestMessage_EventRejectsGarbage(t *testing.T) {
	msg := &Message{Payload: []byte("not-json")}
	_, err := msg.Event()
	assert.Error(t, err)
}

func TestErrMessageNotFound(t *testing.T) {
	byID := ErrMessageNotFound{ID: 3}
	byTx := ErrMessageNotFound{TransactionID: 9}

	assert.True(t, errors.Is(byID, ErrMessageNotFound{}))
	assert.True(t, errors.Is(byTx, ErrMessageNotFound{TransactionID: 9}))
	assert.False(t, errors.Is(byTx, ErrMessageNotFound{TransactionID: 8}))
	assert.Equal(t, "outbox message not found: 3", byID.Error())
	assert.Equal(t, "outbox message not found for transaction: 9", byTx.Error())
}
