package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paywallet-ledger/internal/domain/shared"
	"github.com/paywallet-ledger/internal/platform/session"
)

const (
	CallerIDKey     = "caller_id"
	SessionTokenKey = "session_token"

	bearerPrefix = "Bearer "
)

// RequireSession resolves the bearer token into the caller's account ID.
// Handlers downstream read it with GetCallerID and never look at the token.
func RequireSession(sessions session.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			return
		}

		accountID, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session expired or invalid")
				return
			}
			logger.Error("Failed to resolve session", "error", err, "correlation_id", GetCorrelationID(c))
			abortWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
			return
		}

		c.Set(CallerIDKey, accountID)
		c.Set(SessionTokenKey, token)
		c.Request = c.Request.WithContext(shared.WithCallerID(c.Request.Context(), accountID))

		c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// GetCallerID returns the authenticated account ID set by RequireSession.
func GetCallerID(c *gin.Context) (int64, bool) {
	if v, exists := c.Get(CallerIDKey); exists {
		id, ok := v.(int64)
		return id, ok
	}
	return 0, false
}

func GetSessionToken(c *gin.Context) string {
	return c.GetString(SessionTokenKey)
}
