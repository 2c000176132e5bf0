package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/corplearn/corplearn-backend/pkg/logger"
)

// RequestLogger logs every request with structured fields.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()[:8]
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := logger.Get().Info()
		if status >= 500 {
			event = logger.Get().Error()
		} else if status >= 400 {
			event = logger.Get().Warn()
		}

		actor := GetActor(c)
		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Uint64("user_id", actor.ID).
			Int("body_size", c.Writer.Size()).
			Msg("request")
	}
}
