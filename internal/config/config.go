// Package config provides configuration structures and validation for the wallet services.
// It covers the HTTP server, storage backends, sessions, messaging and the
// operational knobs of the outbox relay and the ledger auditor.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"

	SessionDriverMemory = "memory"
	SessionDriverRedis  = "redis"
)

// Config holds the complete application configuration. Both binaries load the
// same structure and use the sections they need.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Storage     StorageConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Session     SessionConfig
	Redis       RedisConfig
	History     HistoryConfig
	RateLimit   RateLimitConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration // grace period for in-flight requests
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// StorageConfig selects the account/transaction backend.
type StorageConfig struct {
	Driver           string // memory or postgres
	StartingBalance  decimal.Decimal
	SeedDemoAccount  bool
	DemoBalance      decimal.Decimal
	DemoUserEmail    string
	DemoUserPassword string
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string // applied on startup by golang-migrate
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	AuditCollection string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	TransactionTopic  string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string
}

// OutboxConfig contains outbox relay configuration. When Enabled is false the
// ledger records no events and no Kafka connection is opened.
type OutboxConfig struct {
	Enabled          bool
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int
}

// SessionConfig contains session store configuration
type SessionConfig struct {
	Driver string
	TTL    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// HistoryConfig controls the transaction history view.
type HistoryConfig struct {
	PageSize int
}

// RateLimitConfig throttles the sign-up and sign-in endpoints per client IP.
type RateLimitConfig struct {
	AuthRPS   float64
	AuthBurst int
}

// problems collects configuration violations so that they are reported together.
type problems []string

func (p *problems) positive(ok bool, key string) {
	if !ok {
		*p = append(*p, key+" must be greater than 0")
	}
}

func (p *problems) required(value, key string) {
	if value == "" {
		*p = append(*p, key+" is required")
	}
}

func (p *problems) add(msg string) {
	*p = append(*p, msg)
}

func (s ServerConfig) check(p *problems) {
	p.positive(s.Port > 0, "SERVER_PORT")
	p.positive(s.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT")
	p.positive(s.ReadTimeout > 0, "SERVER_READ_TIMEOUT")
	p.positive(s.WriteTimeout > 0, "SERVER_WRITE_TIMEOUT")
	p.positive(s.IdleTimeout > 0, "SERVER_IDLE_TIMEOUT")
}

func (s StorageConfig) check(p *problems) {
	if s.Driver != StorageDriverMemory && s.Driver != StorageDriverPostgres {
		p.add("STORAGE_DRIVER must be one of memory, postgres")
	}
	if s.StartingBalance.IsNegative() {
		p.add("STORAGE_STARTING_BALANCE must not be negative")
	}
	if !transaction.WithinAmountLimits(s.StartingBalance) {
		p.add("STORAGE_STARTING_BALANCE exceeds the maximum storable amount")
	}
	if !s.SeedDemoAccount {
		return
	}
	if s.DemoUserEmail == "" {
		p.add("STORAGE_DEMO_USER_EMAIL is required when STORAGE_SEED_DEMO_ACCOUNT is set")
	}
	if len(s.DemoUserPassword) < 6 {
		p.add("STORAGE_DEMO_USER_PASSWORD must be at least 6 characters")
	}
	if s.DemoBalance.IsNegative() {
		p.add("STORAGE_DEMO_BALANCE must not be negative")
	}
	if !transaction.WithinAmountLimits(s.DemoBalance) {
		p.add("STORAGE_DEMO_BALANCE exceeds the maximum storable amount")
	}
}

func (c PostgresConfig) check(p *problems) {
	p.required(c.URL, "POSTGRES_URL")
	p.positive(c.MaxConns > 0, "POSTGRES_MAX_CONNS")
	p.positive(c.MinConns > 0, "POSTGRES_MIN_CONNS")
	if c.MinConns > c.MaxConns {
		p.add("POSTGRES_MIN_CONNS must not exceed POSTGRES_MAX_CONNS")
	}
	p.positive(c.ConnMaxLifetime > 0, "POSTGRES_MAX_CONN_LIFETIME")
	p.positive(c.ConnMaxIdleTime > 0, "POSTGRES_MAX_CONN_IDLE_TIME")
}

func (c MongoDBConfig) check(p *problems) {
	p.required(c.URI, "MONGO_URI")
	p.required(c.Database, "MONGO_DATABASE")
	p.required(c.AuditCollection, "MONGO_AUDIT_COLLECTION")
	p.positive(c.Timeout > 0, "MONGO_TIMEOUT")
	p.positive(c.MaxPoolSize > 0, "MONGO_MAX_POOL_SIZE")
}

func (c KafkaConfig) check(p *problems) {
	p.required(c.Brokers, "KAFKA_BROKERS")
	p.required(c.TransactionTopic, "KAFKA_TRANSACTION_TOPIC")
	p.required(c.ConsumerGroup, "KAFKA_CONSUMER_GROUP")
	p.positive(c.MinBytes > 0, "KAFKA_CONSUMER_MIN_BYTES")
	p.positive(c.MaxBytes > 0, "KAFKA_CONSUMER_MAX_BYTES")
	p.positive(c.MaxWait > 0, "KAFKA_CONSUMER_MAX_WAIT")
}

func (c OutboxConfig) check(p *problems) {
	p.positive(c.PollingInterval > 0, "OUTBOX_POLLING_INTERVAL")
	p.positive(c.BatchSize > 0, "OUTBOX_BATCH_SIZE")
	p.positive(c.MaxRetryAttempts > 0, "OUTBOX_MAX_RETRY_ATTEMPTS")
}

func (c SessionConfig) check(p *problems, redis RedisConfig) {
	switch c.Driver {
	case SessionDriverMemory:
	case SessionDriverRedis:
		if redis.Addr == "" {
			p.add("REDIS_ADDR is required when SESSION_DRIVER is redis")
		}
	default:
		p.add("SESSION_DRIVER must be one of memory, redis")
	}
	p.positive(c.TTL > 0, "SESSION_TTL")
}

// validate checks every section and reports all violations at once. Postgres
// settings are only checked when the postgres storage driver is selected.
func (c *Config) validate() error {
	var p problems

	c.Server.check(&p)
	c.Storage.check(&p)
	if c.Storage.Driver == StorageDriverPostgres {
		c.Postgres.check(&p)
	}
	c.MongoDB.check(&p)
	c.Kafka.check(&p)
	c.Outbox.check(&p)
	p.positive(c.WorkerPool.Size > 0, "WORKER_POOL_SIZE")
	c.Session.check(&p, c.Redis)
	p.positive(c.History.PageSize > 0, "HISTORY_PAGE_SIZE")
	p.positive(c.RateLimit.AuthRPS > 0, "RATE_LIMIT_AUTH_RPS")
	p.positive(c.RateLimit.AuthBurst > 0, "RATE_LIMIT_AUTH_BURST")

	if len(p) > 0 {
		return errors.New(strings.Join(p, ", "))
	}
	return nil
}
