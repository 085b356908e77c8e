package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paywallet-ledger/internal/domain/shared"
	"github.com/paywallet-ledger/internal/platform/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSessions struct{ session.Store }

func (failingSessions) Resolve(context.Context, string) (int64, error) {
	return 0, errors.New("redis down")
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	sessions := session.NewMemoryStore(time.Hour)
	sess, err := sessions.Create(context.Background(), 5)
	require.NoError(t, err)

	newRouter := func(store session.Store) *gin.Engine {
		router := gin.New()
		router.Use(RequireSession(store, logger))
		router.GET("/me", func(c *gin.Context) {
			id, ok := GetCallerID(c)
			ctxID, _ := shared.CallerIDFromContext(c.Request.Context())
			c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok, "ctx_id": ctxID, "token": GetSessionToken(c)})
		})
		return router
	}

	tests := []struct {
		name       string
		header     string
		store      session.Store
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + sess.Token, store: sessions, wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + sess.Token, store: sessions, wantStatus: http.StatusOK},
		{name: "missing header", header: "", store: sessions, wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", store: sessions, wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", store: sessions, wantStatus: http.StatusUnauthorized},
		{name: "store failure", header: "Bearer " + sess.Token, store: failingSessions{}, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			newRouter(tt.store).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, float64(5), body["id"])
			assert.Equal(t, true, body["ok"])
			assert.Equal(t, float64(5), body["ctx_id"])
			assert.Equal(t, sess.Token, body["token"])
		})
	}
}

func TestGetCallerID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetCallerID(c)
	assert.False(t, ok)

	c.Set(CallerIDKey, "not-an-id")
	_, ok = GetCallerID(c)
	assert.False(t, ok)
}
