package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paywallet-ledger/internal/platform/session"
	"github.com/paywallet-ledger/internal/wallet_api/middleware"
	"github.com/paywallet-ledger/internal/wallet_api/service"
)

// AuthHandler handles registration and the session lifecycle
type AuthHandler struct {
	accountService service.AccountService
	sessions       session.Store
	logger         *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *slog.Logger, accountService service.AccountService, sessions session.Store) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		sessions:       sessions,
		logger:         logger,
	}
}

// SignUp registers an account and signs it in
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		code, message := bindingError(err)
		h.logger.Info("Invalid sign-up request", "error", err)
		RespondWithError(c, http.StatusBadRequest, code, message)
		return
	}

	acc, err := h.accountService.Register(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), acc.ID)
	if err != nil {
		h.logger.Error("Failed to create session", "account_id", acc.ID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapSessionToResponse(acc, sess))
}

// SignIn checks credentials and opens a session
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		code, message := bindingError(err)
		RespondWithError(c, http.StatusBadRequest, code, message)
		return
	}

	acc, err := h.accountService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), acc.ID)
	if err != nil {
		h.logger.Error("Failed to create session", "account_id", acc.ID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapSessionToResponse(acc, sess))
}

// SignOut revokes the session the request was authenticated with
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.sessions.Revoke(c.Request.Context(), middleware.GetSessionToken(c)); err != nil {
		h.logger.Error("Failed to revoke session", "error", err)
		RespondInternalError(c)
		return
	}
	RespondOK(c, gin.H{"message": "Signed out"})
}

// Me returns the caller's own account with its current balance
func (h *AuthHandler) Me(c *gin.Context) {
	callerID, ok := middleware.GetCallerID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	acc, err := h.accountService.GetAccount(c.Request.Context(), callerID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}
