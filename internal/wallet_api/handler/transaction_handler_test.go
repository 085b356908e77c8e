package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/paywallet-ledger/internal/history"
	"github.com/paywallet-ledger/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// PaginatedResponse is a generic version of Response for testing paginated data
type PaginatedResponse[T any] struct {
	Data          []T        `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

func int64Ptr(v int64) *int64 { return &v }

func testTransaction(id int64, sender, receiver *int64, amount string, txType transaction.Type) *transaction.Transaction {
	return &transaction.Transaction{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Amount:     decimal.RequireFromString(amount),
		Timestamp:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Type:       txType,
	}
}

func newTransactionRouter(mockService *MockTransactionService) *gin.Engine {
	handler := NewTransactionHandler(newTestLogger(), mockService)
	router := gin.New()
	router.Use(asCaller(1))
	router.POST("/transactions", handler.Create)
	router.POST("/transactions/recharge", handler.Recharge)
	router.POST("/transactions/bill", handler.PayBill)
	router.GET("/transactions", handler.List)
	return router
}

func TestTransactionHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		mockService.On("Transfer", mock.Anything, mock.MatchedBy(func(req ledger.TransferRequest) bool {
			return req.SenderID == 1 &&
				req.ReceiverID == 2 &&
				req.Amount.Equal(decimal.RequireFromString("250.5")) &&
				req.Note != nil && *req.Note == "rent" &&
				req.Type == transaction.TypeTransfer
		})).Return(testTransaction(7, int64Ptr(1), int64Ptr(2), "250.50", transaction.TypeTransfer), nil).Once()

		rr := postJSON(newTransactionRouter(mockService), "/transactions",
			`{"receiver_id":2,"amount":250.5,"note":" rent ","type":"transfer"}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		data := decodeBody(t, rr)["data"].(map[string]interface{})
		assert.Equal(t, float64(7), data["id"])
		assert.Equal(t, "250.50", data["amount"])
		assert.Equal(t, "transfer", data["type"])
		mockService.AssertExpectations(t)
	})

	t.Run("AmountAsStringAndBlankNote", func(t *testing.T) {
		mockService := new(MockTransactionService)
		mockService.On("Transfer", mock.Anything, mock.MatchedBy(func(req ledger.TransferRequest) bool {
			return req.Amount.Equal(decimal.RequireFromString("12.50")) && req.Note == nil && req.Type == ""
		})).Return(testTransaction(8, int64Ptr(1), int64Ptr(2), "12.50", transaction.TypeTransfer), nil).Once()

		rr := postJSON(newTransactionRouter(mockService), "/transactions", `{"receiver_id":2,"amount":"12.50","note":"   "}`)
		assert.Equal(t, http.StatusCreated, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("RejectedBeforeTheLedger", func(t *testing.T) {
		tests := []struct {
			name     string
			body     string
			wantCode string
		}{
			{name: "missing receiver", body: `{"amount":10}`, wantCode: "BAD_REQUEST"},
			{name: "negative receiver", body: `{"receiver_id":-3,"amount":10}`, wantCode: "BAD_REQUEST"},
			{name: "unknown type", body: `{"receiver_id":2,"amount":10,"type":"gift"}`, wantCode: "INVALID_TYPE"},
			{name: "missing amount", body: `{"receiver_id":2}`, wantCode: "INVALID_AMOUNT"},
			{name: "null amount", body: `{"receiver_id":2,"amount":null}`, wantCode: "INVALID_AMOUNT"},
			{name: "zero amount", body: `{"receiver_id":2,"amount":0}`, wantCode: "INVALID_AMOUNT"},
			{name: "negative amount", body: `{"receiver_id":2,"amount":-5}`, wantCode: "INVALID_AMOUNT"},
			{name: "non numeric amount", body: `{"receiver_id":2,"amount":"lots"}`, wantCode: "INVALID_AMOUNT"},
			{name: "sub cent amount", body: `{"receiver_id":2,"amount":0.001}`, wantCode: "INVALID_AMOUNT"},
			{name: "boolean amount", body: `{"receiver_id":2,"amount":true}`, wantCode: "INVALID_AMOUNT"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockService := new(MockTransactionService)
				rr := postJSON(newTransactionRouter(mockService), "/transactions", tt.body)

				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.Equal(t, tt.wantCode, errorCode(t, rr))
				assert.Empty(t, mockService.Calls)
			})
		}
	})

	t.Run("LedgerRejections", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{name: "same account", err: ledger.ErrSameAccount, wantStatus: http.StatusBadRequest, wantCode: "SAME_ACCOUNT"},
			{name: "receiver missing", err: ledger.ErrAccountNotFound{AccountID: 2, Party: ledger.PartyReceiver}, wantStatus: http.StatusNotFound, wantCode: "ACCOUNT_NOT_FOUND"},
			{name: "insufficient balance", err: ledger.ErrInsufficientBalance{AccountID: 1}, wantStatus: http.StatusUnprocessableEntity, wantCode: "INSUFFICIENT_BALANCE"},
			{name: "infrastructure", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_SERVER_ERROR"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockService := new(MockTransactionService)
				mockService.On("Transfer", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

				rr := postJSON(newTransactionRouter(mockService), "/transactions", `{"receiver_id":2,"amount":10}`)
				assert.Equal(t, tt.wantStatus, rr.Code)
				assert.Equal(t, tt.wantCode, errorCode(t, rr))
				mockService.AssertExpectations(t)
			})
		}
	})
}

func TestTransactionHandler_RechargeAndPayBill(t *testing.T) {
	t.Run("Recharge", func(t *testing.T) {
		mockService := new(MockTransactionService)
		mockService.On("Recharge", mock.Anything, int64(1), mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(100)) }), (*string)(nil)).
			Return(testTransaction(3, nil, int64Ptr(1), "100", transaction.TypeRecharge), nil).Once()

		rr := postJSON(newTransactionRouter(mockService), "/transactions/recharge", `{"amount":"100"}`)
		assert.Equal(t, http.StatusCreated, rr.Code)
		data := decodeBody(t, rr)["data"].(map[string]interface{})
		assert.Nil(t, data["sender_id"])
		assert.Equal(t, "recharge", data["type"])
		mockService.AssertExpectations(t)
	})

	t.Run("PayBillInsufficient", func(t *testing.T) {
		mockService := new(MockTransactionService)
		mockService.On("PayBill", mock.Anything, int64(1), mock.Anything, mock.Anything).
			Return(nil, ledger.ErrInsufficientBalance{AccountID: 1}).Once()

		rr := postJSON(newTransactionRouter(mockService), "/transactions/bill", `{"amount":5000,"note":"electricity"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		mockService := new(MockTransactionService)
		rr := postJSON(newTransactionRouter(mockService), "/transactions/bill", `{"amount":"-1"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "INVALID_AMOUNT", errorCode(t, rr))
		assert.Empty(t, mockService.Calls)
	})
}

func TestTransactionHandler_List(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		page := history.Page{
			Items: []history.Entry{{
				ID:               9,
				SenderID:         int64Ptr(2),
				ReceiverID:       int64Ptr(1),
				Amount:           decimal.NewFromInt(600),
				Timestamp:        time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
				Type:             transaction.TypeTransfer,
				SenderName:       "Bob Builder",
				ReceiverName:     "Jane Doe",
				CounterpartyID:   int64Ptr(2),
				CounterpartyName: "Bob Builder",
				IsIncoming:       true,
			}},
			Page:       2,
			PageSize:   6,
			TotalItems: 7,
			TotalPages: 2,
		}
		mockService.On("History", mock.Anything, int64(1), mock.MatchedBy(func(q history.Query) bool {
			return q.Direction == history.DirectionReceived &&
				len(q.Types) == 1 && q.Types[0] == transaction.TypeTransfer &&
				q.MinAmount != nil && q.MinAmount.Equal(decimal.NewFromInt(550)) &&
				q.MaxAmount != nil && q.MaxAmount.Equal(decimal.NewFromInt(2000)) &&
				q.From != nil && q.To == nil &&
				q.Sort == history.SortAmountDesc &&
				q.Page == 2 && q.PageSize == 0
		})).Return(page, nil).Once()

		req, _ := http.NewRequest(http.MethodGet,
			"/transactions?direction=received&type=transfer&amountRange=500-2000&minAmount=550&from=2024-03-01&sort=amount-high&page=2", nil)
		rr := httptest.NewRecorder()
		newTransactionRouter(mockService).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var resp PaginatedResponse[HistoryEntryResponse]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "600.00", resp.Data[0].Amount)
		assert.Equal(t, "Bob Builder", resp.Data[0].CounterpartyName)
		assert.True(t, resp.Data[0].IsIncoming)
		assert.Equal(t, &MetaInfo{Page: 2, PageSize: 6, TotalPages: 2, TotalItems: 7}, resp.Meta)
		mockService.AssertExpectations(t)
	})

	t.Run("EmptyHistory", func(t *testing.T) {
		mockService := new(MockTransactionService)
		mockService.On("History", mock.Anything, int64(1), history.Query{Direction: history.DirectionAll, Sort: history.SortNewest}).
			Return(history.Page{Items: []history.Entry{}, Page: 1, PageSize: 6}, nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/transactions", nil)
		rr := httptest.NewRecorder()
		newTransactionRouter(mockService).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":[],"meta":{"page":1,"page_size":6,"total_pages":0,"total_items":0}}`, rr.Body.String())
	})

	t.Run("InvalidQuery", func(t *testing.T) {
		queries := []string{
			"direction=sideways",
			"type=gift",
			"from=yesterday",
			"amountRange=lots",
			"minAmount=-1",
			"sort=random",
			"page=0",
			"page=two",
			"pageSize=1000",
		}
		for _, query := range queries {
			t.Run(query, func(t *testing.T) {
				mockService := new(MockTransactionService)
				req, _ := http.NewRequest(http.MethodGet, "/transactions?"+query, nil)
				rr := httptest.NewRecorder()
				newTransactionRouter(mockService).ServeHTTP(rr, req)

				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.Equal(t, "BAD_REQUEST", errorCode(t, rr))
				assert.Empty(t, mockService.Calls)
			})
		}
	})
}
