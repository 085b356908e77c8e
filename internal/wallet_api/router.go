package wallet_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paywallet-ledger/internal/platform/session"
	"github.com/paywallet-ledger/internal/wallet_api/handler"
	"github.com/paywallet-ledger/internal/wallet_api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	sessions session.Store,
	authLimiter *middleware.IPRateLimiter,
	authHandler *handler.AuthHandler,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Metrics())

	requireSession := middleware.RequireSession(sessions, logger)

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", middleware.RateLimit(authLimiter), authHandler.SignUp)
			auth.POST("/signin", middleware.RateLimit(authLimiter), authHandler.SignIn)
			auth.POST("/signout", requireSession, authHandler.SignOut)
			auth.GET("/me", requireSession, authHandler.Me)
		}

		accounts := v1.Group("/accounts", requireSession)
		{
			accounts.GET("", accountHandler.List)
		}

		transactions := v1.Group("/transactions", requireSession)
		{
			transactions.POST("", transactionHandler.Create)
			transactions.POST("/recharge", transactionHandler.Recharge)
			transactions.POST("/bill", transactionHandler.PayBill)
			transactions.GET("", transactionHandler.List)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
