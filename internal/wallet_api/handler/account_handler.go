package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/paywallet-ledger/internal/wallet_api/service"
)

// AccountHandler handles HTTP requests for the account roster
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// List returns every account without credentials or balances
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	roster := make([]RosterEntry, 0, len(accounts))
	for _, acc := range accounts {
		roster = append(roster, mapAccountToRosterEntry(acc))
	}
	RespondOK(c, roster)
}
