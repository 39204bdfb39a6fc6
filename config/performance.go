package config

import (
	"time"

	"github.com/gin-gonic/gin"

	"salonpro-retention/logger"
)

const slowRequestThreshold = 200 * time.Millisecond

func PerformanceLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency,
		)

		if latency > slowRequestThreshold {
			log.Warn("slow request",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"latency", latency,
			)
		}
	}
}
