// Package middleware provides the Gin middleware of the web front end.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arampall/finance-tracker/internal/logger"
)

// RequestIDKey is the Gin context key holding the request ID.
const RequestIDKey = "requestID"

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestLogging returns a Gin middleware that logs each request with a
// request ID, method, path, status code, latency and client IP. An incoming
// X-Request-ID is kept; otherwise a new one is generated.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		c.Next()

		logger.Named("web").Infow("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// RequestID returns the request ID set by RequestLogging.
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
