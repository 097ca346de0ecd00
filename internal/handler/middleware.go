package handler

import (
	"time"

	"padelchat/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request through the structured logger
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		if c.Writer.Status() >= 500 {
			log.Warn("request failed", fields)
			return
		}
		log.Debug("request", fields)
	}
}
