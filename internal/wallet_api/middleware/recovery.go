package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var panicsRecovered = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "paywallet",
		Name:      "http_panics_recovered_total",
		Help:      "Handler panics turned into 500 responses",
	},
	[]string{"path"},
)

// Recovery turns a handler panic into a 500 envelope and counts it per route.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			path := c.FullPath()
			if path == "" {
				path = "unmatched"
			}
			panicsRecovered.WithLabelValues(path).Inc()

			attrs := []any{
				"error", fmt.Sprint(r),
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"correlation_id", GetCorrelationID(c),
			}
			if callerID, ok := GetCallerID(c); ok {
				attrs = append(attrs, "caller_id", callerID)
			}
			logger.Error("Panic recovered", attrs...)

			abortWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
		}()

		c.Next()
	}
}
