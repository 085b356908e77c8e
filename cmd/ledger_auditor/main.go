package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paywallet-ledger/internal/config"
	"github.com/paywallet-ledger/internal/data/mongo"
	"github.com/paywallet-ledger/internal/ledger_auditor/consumer"
	"github.com/paywallet-ledger/internal/ledger_auditor/service"
	"github.com/paywallet-ledger/internal/logger"
	"github.com/paywallet-ledger/internal/platform/messaging/consumers"
	"github.com/paywallet-ledger/internal/platform/messaging/producers"
	"github.com/paywallet-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("ledger_auditor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Ledger Auditor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Indexes are in place before the first event is consumed.
	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB,
		mongo.AuditIndexes(log, cfg.MongoDB.AuditCollection),
	)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database(), cfg.MongoDB.AuditCollection)

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)

	// Initialize Kafka DLQ producer; nil when no DLQ topic is configured
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	// Archive through a bounded worker pool
	archiveService, err := service.NewWorkerPoolArchiveService(
		service.NewArchiveService(log, auditRepo),
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	eventHandler := consumer.NewRecordedEventHandler(log, archiveService, deadLetters)

	log.Info("Starting Kafka consumer",
		"topic", cfg.Kafka.TransactionTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := kafkaConsumer.Subscribe(appCtx, eventHandler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to Kafka topic", "error", err)
		os.Exit(1)
	}

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	<-quit
	log.Info("Shutdown signal received")

	// Cancel the application context; an in-flight archive is abandoned
	// without committing its offset and will be redelivered.
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Close the consumer first so no new work reaches the pool
	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	archiveService.Shutdown()

	if dlqProducer != nil {
		if err := dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	log.Info("Ledger Auditor shutdown completed successfully")
}
