package wallet_api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paywallet-ledger/internal/config"
	"github.com/paywallet-ledger/internal/platform/session"
	"github.com/paywallet-ledger/internal/wallet_api/handler"
	"github.com/paywallet-ledger/internal/wallet_api/middleware"
	"github.com/paywallet-ledger/internal/wallet_api/service"
)

const (
	limiterPruneInterval = time.Minute
	limiterMaxIdle       = 10 * time.Minute
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger      *slog.Logger            // For structured logging
	httpServer  *http.Server            // Underlying HTTP server
	httpRouter  *gin.Engine             // Gin router instance
	authLimiter *middleware.IPRateLimiter // Per-IP budget for sign-up and sign-in
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	accountService service.AccountService,
	transactionService service.TransactionService,
	sessions session.Store,
) (*Server, error) {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := handler.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register request validators: %w", err)
	}

	httpRouter := gin.New()
	authLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)

	authHandler := handler.NewAuthHandler(log, accountService, sessions)
	accountHandler := handler.NewAccountHandler(log, accountService)
	transactionHandler := handler.NewTransactionHandler(log, transactionService)

	setupRouter(log, httpRouter, sessions, authLimiter, authHandler, accountHandler, transactionHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:      log,
		httpServer:  httpServer,
		httpRouter:  httpRouter,
		authLimiter: authLimiter,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// PruneRateLimiter drops idle per-IP buckets until ctx is canceled
func (s *Server) PruneRateLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.authLimiter.Prune(limiterMaxIdle); removed > 0 {
				s.logger.Debug("Pruned idle rate limiter buckets", "removed", removed)
			}
		}
	}
}

// Stop gracefully shuts down the HTTP server, bounded by timeout
func (s *Server) Stop(ctx context.Context, timeout time.Duration) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
