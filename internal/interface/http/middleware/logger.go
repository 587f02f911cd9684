package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"

	slowRequestThreshold = 3 * time.Second
)

// RequestLogger 请求日志
// 1. 生成请求ID（上游已带X-Request-ID时沿用）
// 2. 请求结束后记录方法、路径、状态码、耗时、客户端IP
// 3. 超过3秒的请求额外记录一条慢请求告警
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ctxRequestID, requestID)
		c.Header(headerRequestID, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency,
			"client_ip", c.ClientIP(),
		}
		if staff := GetStaffID(c); staff != "" {
			attrs = append(attrs, "staff_id", staff)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		logger.InfoContext(c.Request.Context(), "http request", attrs...)
		if latency > slowRequestThreshold {
			logger.WarnContext(c.Request.Context(), "slow request",
				"request_id", requestID, "method", c.Request.Method, "path", c.Request.URL.Path, "latency", latency)
		}
	}
}

// GetRequestID 当前请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}
