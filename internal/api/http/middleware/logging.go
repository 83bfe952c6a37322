package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/humanoid-ai/humanoid-server/internal/logger"
)

// Logging logs method, path, status and duration for each request.
func Logging(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)

		logger.Info("HTTP request completed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", duration.Milliseconds())

		for _, err := range c.Errors {
			logger.Error("HTTP request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", err.Error())
		}
	}
}
