// Package mongo archives recorded transactions into MongoDB for the auditor.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paywallet-ledger/internal/domain/audit"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// AuditCollectionName is the default name of the audit collection
	AuditCollectionName = "transaction_audit"
)

// auditDocument is the stored shape of an audit.Record. Amounts are kept as
// Decimal128 so that range queries compare numerically.
type auditDocument struct {
	TransactionID int64                `bson:"transaction_id"`
	EventID       string               `bson:"event_id"`
	SenderID      *int64               `bson:"sender_id"`
	ReceiverID    *int64               `bson:"receiver_id"`
	AccountIDs    []int64              `bson:"account_ids"`
	Amount        primitive.Decimal128 `bson:"amount"`
	Note          *string              `bson:"note,omitempty"`
	Type          string               `bson:"type"`
	OccurredAt    time.Time            `bson:"occurred_at"`
	ArchivedAt    time.Time            `bson:"archived_at"`
	CorrelationID string               `bson:"correlation_id,omitempty"`
}

func toDocument(r *audit.Record) (*auditDocument, error) {
	amount, err := primitive.ParseDecimal128(r.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("invalid amount %s: %w", r.Amount, err)
	}

	accountIDs := make([]int64, 0, 2)
	if r.SenderID != nil {
		accountIDs = append(accountIDs, *r.SenderID)
	}
	if r.ReceiverID != nil {
		accountIDs = append(accountIDs, *r.ReceiverID)
	}

	return &auditDocument{
		TransactionID: r.TransactionID,
		EventID:       r.EventID,
		SenderID:      r.SenderID,
		ReceiverID:    r.ReceiverID,
		AccountIDs:    accountIDs,
		Amount:        amount,
		Note:          r.Note,
		Type:          string(r.Type),
		OccurredAt:    r.OccurredAt,
		ArchivedAt:    r.ArchivedAt,
		CorrelationID: r.CorrelationID,
	}, nil
}

func (d *auditDocument) record() (*audit.Record, error) {
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %s: %w", d.Amount, err)
	}
	return &audit.Record{
		TransactionID: d.TransactionID,
		EventID:       d.EventID,
		SenderID:      d.SenderID,
		ReceiverID:    d.ReceiverID,
		Amount:        amount,
		Note:          d.Note,
		Type:          transaction.Type(d.Type),
		OccurredAt:    d.OccurredAt,
		ArchivedAt:    d.ArchivedAt,
		CorrelationID: d.CorrelationID,
	}, nil
}

// AuditRepository implements the audit.Repository interface for MongoDB
type AuditRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewAuditRepository creates a repository over the named collection, or
// AuditCollectionName when name is empty.
func NewAuditRepository(logger *slog.Logger, db *mongo.Database, name string) *AuditRepository {
	if name == "" {
		name = AuditCollectionName
	}
	return &AuditRepository{
		collection: db.Collection(name),
		logger:     logger,
	}
}

// AuditIndexes returns a connect-time setup step that ensures the audit
// indexes on the named collection.
func AuditIndexes(logger *slog.Logger, name string) func(ctx context.Context, db *mongo.Database) error {
	return func(ctx context.Context, db *mongo.Database) error {
		return NewAuditRepository(logger, db, name).EnsureIndexes(ctx)
	}
}

// EnsureIndexes creates the unique transaction_id index that makes Create
// idempotent, plus the per-account listing index.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_transaction_id"),
		},
		{
			Keys:    bson.D{{Key: "account_ids", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("idx_account_occurred_at"),
		},
	})
	if err != nil {
		r.logger.Error("Failed to create audit indexes", "error", err)
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}
	return nil
}

// Create archives record. A second record for the same transaction is
// rejected by the unique index with ErrDuplicateRecord.
func (r *AuditRepository) Create(ctx context.Context, record *audit.Record) error {
	doc, err := toDocument(record)
	if err != nil {
		return err
	}

	_, err = r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return audit.ErrDuplicateRecord{TransactionID: record.TransactionID}
		}
		r.logger.Error("Failed to create audit record",
			"transaction_id", record.TransactionID,
			"error", err)
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves the archived record of a transaction.
// Returns ErrRecordNotFound if the transaction was never archived.
func (r *AuditRepository) GetByTransactionID(ctx context.Context, transactionID int64) (*audit.Record, error) {
	filter := bson.M{"transaction_id": transactionID}

	var doc auditDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, audit.ErrRecordNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get audit record",
			"transaction_id", transactionID,
			"error", err)
		return nil, fmt.Errorf("failed to get audit record: %w", err)
	}

	return doc.record()
}

// ListByAccount retrieves paginated records the account took part in,
// newest first.
func (r *AuditRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*audit.Record, error) {
	filter := bson.M{"account_ids": accountID}
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}, {Key: "transaction_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list audit records",
			"account_id", accountID,
			"error", err)
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []auditDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode audit records",
			"account_id", accountID,
			"error", err)
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}

	records := make([]*audit.Record, 0, len(docs))
	for i := range docs {
		rec, err := docs[i].record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// CountByAccount counts the records the account took part in
func (r *AuditRepository) CountByAccount(ctx context.Context, accountID int64) (int64, error) {
	filter := bson.M{"account_ids": accountID}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count audit records",
			"account_id", accountID,
			"error", err)
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}

	return count, nil
}

var _ audit.Repository = (*AuditRepository)(nil)
