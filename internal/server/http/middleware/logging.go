package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/metrics"
)

const (
	// RequestIDContextKey is a gin context key for the request identifier.
	RequestIDContextKey = "requestID"
	requestIDHeader     = "X-Request-ID"
)

// RequestLogger tags each request with an id, logs it and counts it.
func RequestLogger(logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDContextKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= 500:
			logger.Error("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
		if m != nil {
			m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		}
	}
}
