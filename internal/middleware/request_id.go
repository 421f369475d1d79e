package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDKey        = "request_id"
	requestIDHeaderName = "X-Request-ID"
	maxRequestIDLen     = 128
)

// RequestIDFromContext returns the request ID or "" when the middleware did not run.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// RequestIDMiddleware reuses the caller's X-Request-ID or generates one,
// echoes it back and logs the finished request.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeaderName))
		if len(requestID) > maxRequestIDLen {
			requestID = requestID[:maxRequestIDLen]
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeaderName, requestID)

		c.Next()

		log.Printf(
			"request_id=%s method=%s path=%s status=%d latency_ms=%.2f",
			requestID,
			c.Request.Method,
			c.FullPath(),
			c.Writer.Status(),
			float64(time.Since(startedAt).Microseconds())/1000.0,
		)
	}
}
