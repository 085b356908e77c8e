package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/paywallet-ledger/internal/platform/session"
	"github.com/paywallet-ledger/internal/wallet_api/middleware"
	"github.com/paywallet-ledger/internal/wallet_api/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type brokenSessions struct{ session.Store }

func (brokenSessions) Create(context.Context, int64) (*session.Session, error) {
	return nil, errors.New("redis down")
}

func testAccount(id int64) *account.Account {
	return &account.Account{
		ID:        id,
		FirstName: "jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Balance:   decimal.NewFromInt(1000),
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	errField, ok := decodeBody(t, rr)["error"].(map[string]interface{})
	require.True(t, ok, "response should carry an error object: %s", rr.Body.String())
	return errField["code"].(string)
}

func TestAuthHandler_SignUp(t *testing.T) {
	logger := newTestLogger()
	validBody := `{"first_name":"jane","last_name":"Doe","email":"jane@example.com","password":"secret123"}`

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAccountService)
		sessions := session.NewMemoryStore(time.Hour)
		handler := NewAuthHandler(logger, mockService, sessions)
		mockService.On("Register", mock.Anything, "jane", "Doe", "jane@example.com", "secret123").Return(testAccount(1), nil).Once()

		router := gin.New()
		router.POST("/auth/signup", handler.SignUp)
		rr := postJSON(router, "/auth/signup", validBody)

		assert.Equal(t, http.StatusCreated, rr.Code)
		data := decodeBody(t, rr)["data"].(map[string]interface{})
		acc := data["account"].(map[string]interface{})
		assert.Equal(t, "1000.00", acc["balance"])
		assert.Equal(t, "JD", acc["initials"])
		assert.NotContains(t, acc, "password_hash")

		accountID, err := sessions.Resolve(context.Background(), data["token"].(string))
		require.NoError(t, err)
		assert.Equal(t, int64(1), accountID)
		mockService.AssertExpectations(t)
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{name: "malformed json", body: `{"first_name"`},
			{name: "missing email", body: `{"first_name":"a","last_name":"b","password":"secret123"}`},
			{name: "invalid email", body: `{"first_name":"a","last_name":"b","email":"nope","password":"secret123"}`},
			{name: "short password", body: `{"first_name":"a","last_name":"b","email":"a@b.co","password":"123"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockService := new(MockAccountService)
				router := gin.New()
				router.POST("/auth/signup", NewAuthHandler(logger, mockService, session.NewMemoryStore(time.Hour)).SignUp)

				rr := postJSON(router, "/auth/signup", tt.body)
				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.Equal(t, "BAD_REQUEST", errorCode(t, rr))
				assert.Empty(t, mockService.Calls)
			})
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockService := new(MockAccountService)
		mockService.On("Register", mock.Anything, "jane", "Doe", "jane@example.com", "secret123").
			Return(nil, account.ErrDuplicateEmail{Email: "jane@example.com"}).Once()
		router := gin.New()
		router.POST("/auth/signup", NewAuthHandler(logger, mockService, session.NewMemoryStore(time.Hour)).SignUp)

		rr := postJSON(router, "/auth/signup", validBody)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "DUPLICATE_EMAIL", errorCode(t, rr))
	})

	t.Run("SessionStoreFailure", func(t *testing.T) {
		mockService := new(MockAccountService)
		mockService.On("Register", mock.Anything, "jane", "Doe", "jane@example.com", "secret123").Return(testAccount(1), nil).Once()
		router := gin.New()
		router.POST("/auth/signup", NewAuthHandler(logger, mockService, brokenSessions{}).SignUp)

		rr := postJSON(router, "/auth/signup", validBody)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", errorCode(t, rr))
	})
}

func TestAuthHandler_SignIn(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAccountService)
		mockService.On("Authenticate", mock.Anything, "jane@example.com", "secret123").Return(testAccount(3), nil).Once()
		router := gin.New()
		router.POST("/auth/signin", NewAuthHandler(logger, mockService, session.NewMemoryStore(time.Hour)).SignIn)

		rr := postJSON(router, "/auth/signin", `{"email":"jane@example.com","password":"secret123"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
		data := decodeBody(t, rr)["data"].(map[string]interface{})
		assert.NotEmpty(t, data["token"])
		assert.NotEmpty(t, data["expires_at"])
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		mockService := new(MockAccountService)
		mockService.On("Authenticate", mock.Anything, "jane@example.com", "wrong").Return(nil, service.ErrInvalidCredentials).Once()
		router := gin.New()
		router.POST("/auth/signin", NewAuthHandler(logger, mockService, session.NewMemoryStore(time.Hour)).SignIn)

		rr := postJSON(router, "/auth/signin", `{"email":"jane@example.com","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, rr))
	})

	t.Run("MissingPassword", func(t *testing.T) {
		mockService := new(MockAccountService)
		router := gin.New()
		router.POST("/auth/signin", NewAuthHandler(logger, mockService, session.NewMemoryStore(time.Hour)).SignIn)

		rr := postJSON(router, "/auth/signin", `{"email":"jane@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "password is required")
	})
}

func TestAuthHandler_SignOutAndMe(t *testing.T) {
	logger := newTestLogger()
	ctx := context.Background()

	sessions := session.NewMemoryStore(time.Hour)
	sess, err := sessions.Create(ctx, 3)
	require.NoError(t, err)

	mockService := new(MockAccountService)
	handler := NewAuthHandler(logger, mockService, sessions)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.CallerIDKey, int64(3))
		c.Set(middleware.SessionTokenKey, sess.Token)
	})
	router.GET("/auth/me", handler.Me)
	router.POST("/auth/signout", handler.SignOut)

	t.Run("Me", func(t *testing.T) {
		mockService.On("GetAccount", mock.Anything, int64(3)).Return(testAccount(3), nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		data := decodeBody(t, rr)["data"].(map[string]interface{})
		assert.Equal(t, float64(3), data["id"])
		assert.Equal(t, "jane Doe", data["full_name"])
	})

	t.Run("MeWithoutCaller", func(t *testing.T) {
		bare := gin.New()
		bare.GET("/auth/me", handler.Me)
		req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
		rr := httptest.NewRecorder()
		bare.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("SignOut", func(t *testing.T) {
		rr := postJSON(router, "/auth/signout", "")
		assert.Equal(t, http.StatusOK, rr.Code)

		_, err := sessions.Resolve(ctx, sess.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}
