package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/paywallet-ledger/internal/config"
	"github.com/paywallet-ledger/internal/data/memory"
	"github.com/paywallet-ledger/internal/data/postgres"
	"github.com/paywallet-ledger/internal/domain/store"
	"github.com/paywallet-ledger/internal/ledger"
	"github.com/paywallet-ledger/internal/logger"
	"github.com/paywallet-ledger/internal/platform/messaging/producers"
	"github.com/paywallet-ledger/internal/platform/persistence"
	"github.com/paywallet-ledger/internal/platform/session"
	"github.com/paywallet-ledger/internal/wallet_api"
	"github.com/paywallet-ledger/internal/wallet_api/outbox_poller"
	"github.com/paywallet-ledger/internal/wallet_api/service"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("wallet_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Wallet API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"storage", cfg.Storage.Driver,
		"sessions", cfg.Session.Driver,
	)

	// Initialize storage backend
	var (
		ledgerStore store.Store
		postgresDB  *persistence.PostgresDB
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		postgresDB, err = persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
		if err != nil {
			log.Error("Failed to initialize PostgreSQL", "error", err)
			os.Exit(1)
		}
		ledgerStore = postgres.NewStore(log, postgresDB.Pool(), cfg.Storage.StartingBalance)
	default:
		ledgerStore = memory.NewStore(memory.WithStartingBalance(cfg.Storage.StartingBalance))
	}

	// Initialize session store
	var (
		sessions    session.Store
		redisClient *redis.Client
	)
	switch cfg.Session.Driver {
	case config.SessionDriverRedis:
		redisClient, err = session.NewRedisClient(appCtx, &cfg.Redis)
		if err != nil {
			log.Error("Failed to initialize Redis", "error", err)
			os.Exit(1)
		}
		sessions = session.NewRedisStore(redisClient, cfg.Session.TTL)
	default:
		sessions = session.NewMemoryStore(cfg.Session.TTL)
	}

	// Initialize ledger and services
	engine := ledger.NewEngine(ledgerStore, ledger.WithEventPublishing(cfg.Outbox.Enabled))
	accountService := service.NewAccountService(log, engine, bcrypt.DefaultCost)
	transactionService := service.NewTransactionService(log, engine, cfg.History.PageSize)

	if cfg.Storage.SeedDemoAccount {
		if _, err := accountService.SeedDemoAccount(appCtx,
			cfg.Storage.DemoUserEmail,
			cfg.Storage.DemoUserPassword,
			cfg.Storage.DemoBalance,
		); err != nil {
			log.Error("Failed to seed demo account", "error", err)
			os.Exit(1)
		}
	}

	// Initialize REST server
	server, err := wallet_api.NewServer(log, cfg, accountService, transactionService, sessions)
	if err != nil {
		log.Error("Failed to initialize HTTP server", "error", err)
		os.Exit(1)
	}
	log.Info("REST server initialized")

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start the outbox relay when events are enabled
	var eventProducer *producers.TransactionEventProducer
	if cfg.Outbox.Enabled {
		eventProducer, err = producers.NewTransactionEventProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize Kafka event producer", "error", err)
			os.Exit(1)
		}

		relay := outbox_poller.NewKafkaEventRelay(ledgerStore.Outbox(), eventProducer, log)
		poller := outbox_poller.NewPoller(&cfg.Outbox, ledgerStore.Outbox(), relay, log)

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("Starting Outbox Poller",
				"interval", cfg.Outbox.PollingInterval.String(),
				"batch_size", cfg.Outbox.BatchSize,
			)
			poller.Start(appCtx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		server.PruneRateLimiter(appCtx)
	}()

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Stop accepting requests before the background workers go away
	if err = server.Stop(context.Background(), cfg.Server.ShutdownTimeout); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Cancel the application context
	cancelAppCtx()
	wg.Wait()

	closeResources(log, eventProducer, redisClient, postgresDB)

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}

func closeResources(
	log *slog.Logger,
	eventProducer *producers.TransactionEventProducer,
	redisClient *redis.Client,
	postgresDB *persistence.PostgresDB,
) {
	if eventProducer != nil {
		if err := eventProducer.Close(); err != nil {
			log.Error("Error closing Kafka event producer", "error", err)
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", "error", err)
		}
	}

	// Shutdown postgres connection pool
	if postgresDB != nil {
		postgresDB.Close()
	}
}
