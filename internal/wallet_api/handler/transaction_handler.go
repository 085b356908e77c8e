package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/paywallet-ledger/internal/ledger"
	"github.com/paywallet-ledger/internal/wallet_api/middleware"
	"github.com/paywallet-ledger/internal/wallet_api/service"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles HTTP requests for money movements and history
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Create transfers money from the caller to receiver_id
func (h *TransactionHandler) Create(c *gin.Context) {
	callerID, ok := middleware.GetCallerID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		code, message := bindingError(err)
		h.logger.Info("Invalid transfer request", "error", err)
		RespondWithError(c, http.StatusBadRequest, code, message)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	tx, err := h.transactionService.Transfer(c.Request.Context(), ledger.TransferRequest{
		SenderID:   callerID,
		ReceiverID: req.ReceiverID,
		Amount:     amount,
		Note:       optionalNote(req.Note),
		Type:       transaction.Type(req.Type),
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(tx))
}

// Recharge credits the caller's account from an external source
func (h *TransactionHandler) Recharge(c *gin.Context) {
	h.movement(c, h.transactionService.Recharge)
}

// PayBill debits the caller's account towards an external biller
func (h *TransactionHandler) PayBill(c *gin.Context) {
	h.movement(c, h.transactionService.PayBill)
}

type movementFunc func(ctx context.Context, accountID int64, amount decimal.Decimal, note *string) (*transaction.Transaction, error)

func (h *TransactionHandler) movement(c *gin.Context, run movementFunc) {
	callerID, ok := middleware.GetCallerID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		code, message := bindingError(err)
		RespondWithError(c, http.StatusBadRequest, code, message)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	tx, err := run(c.Request.Context(), callerID, amount, optionalNote(req.Note))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(tx))
}

// List returns one page of the caller's history, filtered and sorted by the
// query string
func (h *TransactionHandler) List(c *gin.Context) {
	callerID, ok := middleware.GetCallerID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	q, err := parseHistoryQuery(c)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	page, err := h.transactionService.History(c.Request.Context(), callerID, q)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	items := make([]HistoryEntryResponse, 0, len(page.Items))
	for _, entry := range page.Items {
		items = append(items, mapHistoryEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, items, page.Page, page.PageSize, page.TotalItems)
}
