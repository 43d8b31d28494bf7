package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"quantum-energy-scheduler/internal/logger"
)

// RequestLogger logs one line per request with method, path, status and
// latency.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
