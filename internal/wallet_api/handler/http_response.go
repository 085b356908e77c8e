package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/paywallet-ledger/internal/history"
	"github.com/paywallet-ledger/internal/ledger"
	"github.com/paywallet-ledger/internal/wallet_api/middleware"
	"github.com/paywallet-ledger/internal/wallet_api/service"
)

// Response is the envelope every endpoint returns. Exactly one of Data and
// Error is set; Meta accompanies paged lists.
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MetaInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// NewPaginatedResponse wraps one page of items with its paging metadata.
func NewPaginatedResponse(data interface{}, page, pageSize, totalItems int) *Response {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}
	return &Response{
		Data: data,
		Meta: &MetaInfo{Page: page, PageSize: pageSize, TotalPages: totalPages, TotalItems: totalItems},
	}
}

func respond(c *gin.Context, statusCode int, response *Response) {
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	respond(c, statusCode, &Response{Error: &ErrorInfo{Code: code, Message: message}})
}

func RespondWithPaginatedData(c *gin.Context, statusCode int, data interface{}, page, pageSize, totalItems int) {
	respond(c, statusCode, NewPaginatedResponse(data, page, pageSize, totalItems))
}

func RespondOK(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, &Response{Data: data})
}

func RespondCreated(c *gin.Context, data interface{}) {
	respond(c, http.StatusCreated, &Response{Data: data})
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// RespondUnauthorized uses a generic message when none is given.
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}

// RespondError translates a service error into its HTTP status and error
// code. Anything unrecognised is logged and reported as a 500.
func RespondError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		notFound     ledger.ErrAccountNotFound
		invalidQuery history.ErrInvalidQuery
	)

	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		RespondWithError(c, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive with at most two decimal places")
	case errors.Is(err, transaction.ErrInvalidType{}):
		RespondWithError(c, http.StatusBadRequest, "INVALID_TYPE", err.Error())
	case errors.Is(err, ledger.ErrSameAccount):
		RespondWithError(c, http.StatusBadRequest, "SAME_ACCOUNT", "Cannot transfer to your own account")
	case errors.As(err, &notFound):
		message := "Account not found"
		if notFound.Party == ledger.PartyReceiver {
			message = "Receiver account not found"
		}
		RespondWithError(c, http.StatusNotFound, "ACCOUNT_NOT_FOUND", message)
	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondWithError(c, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found")
	case errors.Is(err, ledger.ErrInsufficientBalance{}):
		RespondWithError(c, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", "Insufficient balance")
	case errors.Is(err, ledger.ErrBalanceLimit):
		RespondWithError(c, http.StatusUnprocessableEntity, "BALANCE_LIMIT", "Balance would exceed the maximum allowed amount")
	case errors.Is(err, account.ErrDuplicateEmail{}):
		RespondWithError(c, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists")
	case errors.Is(err, service.ErrPasswordTooLong):
		RespondWithError(c, http.StatusBadRequest, "INVALID_PASSWORD", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		RespondUnauthorized(c, "Invalid email or password")
	case errors.As(err, &invalidQuery):
		RespondBadRequest(c, invalidQuery.Error())
	default:
		logger.Error("Unhandled error", "error", err, "path", c.FullPath(), "correlation_id", middleware.GetCorrelationID(c))
		RespondInternalError(c)
	}
}
