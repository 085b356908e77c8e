package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paywallet-ledger/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// MongoSetup prepares the database before the auditor starts consuming,
// typically by creating the indexes its archive relies on.
type MongoSetup func(ctx context.Context, db *mongo.Database) error

// MongoDB holds the client and the database the auditor archives into.
type MongoDB struct {
	logger   *slog.Logger
	client   *mongo.Client
	database *mongo.Database
	timeout  time.Duration
}

// NewMongoDB connects, pings the primary and runs every setup step in order.
// Writes wait for a majority acknowledgement, so an archived record
// survives a primary failover before its Kafka offset is committed.
func NewMongoDB(ctx context.Context, logger *slog.Logger, cfg *config.MongoDBConfig, setup ...MongoSetup) (*MongoDB, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.Timeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetRetryWrites(true).
		SetWriteConcern(writeconcern.Majority())

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	m := &MongoDB{
		logger:   logger.With("database", cfg.Database),
		client:   client,
		database: client.Database(cfg.Database),
		timeout:  cfg.Timeout,
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	if err := m.bootstrap(ctx, setup); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	m.logger.Info("Connected to MongoDB", "setup_steps", len(setup))
	return m, nil
}

// bootstrap runs steps in order, each bounded by the configured timeout,
// and stops at the first failure.
func (m *MongoDB) bootstrap(ctx context.Context, steps []MongoSetup) error {
	for i, step := range steps {
		if err := m.runStep(ctx, step); err != nil {
			return fmt.Errorf("mongo setup step %d failed: %w", i+1, err)
		}
	}
	return nil
}

func (m *MongoDB) runStep(ctx context.Context, step MongoSetup) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	return step(ctx, m.database)
}

func (m *MongoDB) Database() *mongo.Database {
	return m.database
}

func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

func (m *MongoDB) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	m.logger.Info("Closed MongoDB connection")
	return nil
}
