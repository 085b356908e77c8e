package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountHandler_List(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAccountService)
		bob := testAccount(2)
		bob.FirstName, bob.LastName, bob.Email = "Bob", "builder", "bob@example.com"
		mockService.On("ListAccounts", mock.Anything).Return([]*account.Account{testAccount(1), bob}, nil).Once()

		router := gin.New()
		router.GET("/accounts", NewAccountHandler(logger, mockService).List)
		req, _ := http.NewRequest(http.MethodGet, "/accounts", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		data, ok := decodeBody(t, rr)["data"].([]interface{})
		require.True(t, ok)
		require.Len(t, data, 2)

		second := data[1].(map[string]interface{})
		assert.Equal(t, float64(2), second["id"])
		assert.Equal(t, "BB", second["initials"])
		assert.Equal(t, "Bob builder", second["full_name"])
		assert.NotContains(t, second, "balance")
		assert.NotContains(t, second, "password_hash")
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockAccountService)
		mockService.On("ListAccounts", mock.Anything).Return(nil, errors.New("database error")).Once()

		router := gin.New()
		router.GET("/accounts", NewAccountHandler(logger, mockService).List)
		req, _ := http.NewRequest(http.MethodGet, "/accounts", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", errorCode(t, rr))
	})
}
