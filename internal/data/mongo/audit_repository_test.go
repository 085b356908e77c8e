package mongo

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/paywallet-ledger/internal/domain/audit"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const auditNamespace = "paywallet_audit." + AuditCollectionName

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func int64Ptr(v int64) *int64 { return &v }

func sampleRecord() *audit.Record {
	note := "dinner"
	return &audit.Record{
		TransactionID: 42,
		EventID:       "8c1f0c1e-52a4-4b5e-9b43-6f7b7e7b0a01",
		SenderID:      int64Ptr(1),
		ReceiverID:    int64Ptr(2),
		Amount:        decimal.RequireFromString("125.50"),
		Note:          &note,
		Type:          transaction.TypeTransfer,
		OccurredAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		ArchivedAt:    time.Date(2024, 3, 1, 10, 0, 1, 0, time.UTC),
		CorrelationID: "corr-1",
	}
}

func recordDoc(r *audit.Record) bson.D {
	amount, _ := primitive.ParseDecimal128(r.Amount.String())
	return bson.D{
		{Key: "transaction_id", Value: r.TransactionID},
		{Key: "event_id", Value: r.EventID},
		{Key: "sender_id", Value: *r.SenderID},
		{Key: "receiver_id", Value: *r.ReceiverID},
		{Key: "account_ids", Value: bson.A{*r.SenderID, *r.ReceiverID}},
		{Key: "amount", Value: amount},
		{Key: "note", Value: *r.Note},
		{Key: "type", Value: string(r.Type)},
		{Key: "occurred_at", Value: r.OccurredAt},
		{Key: "archived_at", Value: r.ArchivedAt},
		{Key: "correlation_id", Value: r.CorrelationID},
	}
}

func TestToDocument(t *testing.T) {
	t.Run("transfer lists both parties", func(t *testing.T) {
		doc, err := toDocument(sampleRecord())
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, doc.AccountIDs)
		assert.Equal(t, "125.50", doc.Amount.String())
		assert.Equal(t, "transfer", doc.Type)
	})

	t.Run("recharge lists only the receiver", func(t *testing.T) {
		rec := sampleRecord()
		rec.SenderID = nil
		rec.Type = transaction.TypeRecharge

		doc, err := toDocument(rec)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, doc.AccountIDs)
	})

	t.Run("round trip keeps the amount exact", func(t *testing.T) {
		doc, err := toDocument(sampleRecord())
		require.NoError(t, err)

		rec, err := doc.record()
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("125.5").Equal(rec.Amount))
		assert.Equal(t, transaction.TypeTransfer, rec.Type)
	})
}

func TestAuditRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := NewAuditRepository(newTestLogger(), mt.DB, "")
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Create(context.Background(), sampleRecord())
		assert.NoError(mt, err)
	})

	mt.Run("duplicate transaction", func(mt *mtest.T) {
		repo := NewAuditRepository(newTestLogger(), mt.DB, "")
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: transaction_audit index: uniq_transaction_id",
		}))

		err := repo.Create(context.Background(), sampleRecord())
		assert.True(mt, errors.Is(err, audit.ErrDuplicateRecord{TransactionID: 42}))
	})

	mt.Run("database error", func(mt *mtest.T) {
		repo := NewAuditRepository(newTestLogger(), mt.DB, "")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		err := repo.Create(context.Background(), sampleRecord())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to create audit record")
		assert.False(mt, errors.Is(err, audit.ErrDuplicateRecord{}))
	})
}

func TestAuditRepository_GetByTransactionID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewAuditRepository(newTestLogger(), mt.DB, "")
		expected := sampleRecord()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, auditNamespace, mtest.FirstBatch, recordDoc(expected)))

		rec, err := repo.GetByTransactionID(context.Background(), 42)
		require.NoError(mt, err)
		assert.Equal(mt, expected.TransactionID, rec.TransactionID)
		assert.Equal(mt, expected.EventID, rec.EventID)
		assert.Equal(mt, int64(1), *rec.SenderID)
		assert.Equal(mt, int64(2), *rec.ReceiverID)
		assert.True(mt, expected.Amount.Equal(rec.Amount))
		assert.Equal(mt, "dinner", *rec.Note)
		assert.True(mt, expected.OccurredAt.Equal(rec.OccurredAt))
		assert.Equal(mt, "corr-1", rec.CorrelationID)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewAuditRepository(newTestLogger(), mt.DB, "")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, auditNamespace, mtest.FirstBatch))

		rec, err := repo.GetByTransactionID(context.Background(), 7)
		assert.Nil(mt, rec)
		assert.True(mt, errors.Is(err, audit.ErrRecordNotFound{TransactionID: 7}))
	})
}

func TestAuditRepository_ListByAccount(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes every record", func(mt *mtest.T) {
		repo := NewAuditRepository(newTestLogger(), mt.DB, "")
		newer := sampleRecord()
		newer.TransactionID = 43
		older := sampleRecord()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, auditNamespace, mtest.FirstBatch, recordDoc(newer), recordDoc(older)))

		records, err := repo.ListByAccount(context.Background(), 1, 10, 0)
		require.NoError(mt, err)
		require.Len(mt, records, 2)
		assert.Equal(mt, int64(43), records[0].TransactionID)
		assert.Equal(mt, int64(42), records[1].TransactionID)
	})

	mt.Run("empty", func(mt *mtest.T) {
		repo := NewAuditRepository(newTestLogger(), mt.DB, "")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, auditNamespace, mtest.FirstBatch))

		records, err := repo.ListByAccount(context.Background(), 1, 10, 0)
		require.NoError(mt, err)
		assert.NotNil(mt, records)
		assert.Empty(mt, records)
	})
}

func TestAuditRepository_CountByAccount(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := NewAuditRepository(newTestLogger(), mt.DB, "")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, auditNamespace, mtest.FirstBatch, bson.D{{Key: "n", Value: int64(3)}}))

		count, err := repo.CountByAccount(context.Background(), 1)
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), count)
	})
}

func TestAuditRepository_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := NewAuditRepository(newTestLogger(), mt.DB, "")
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.EnsureIndexes(context.Background()))
	})
}

func TestAuditIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, AuditIndexes(newTestLogger(), "")(context.Background(), mt.DB))
	})

	mt.Run("surfaces failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "index already exists with different options",
		}))

		err := AuditIndexes(newTestLogger(), "")(context.Background(), mt.DB)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to create audit indexes")
	})
}
