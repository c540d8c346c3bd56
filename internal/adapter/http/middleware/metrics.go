package middleware

import (
	"time"

	"newsletter/internal/adapter/telemetry"

	"github.com/gin-gonic/gin"
)

func Metrics(metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveRequests()
		defer metrics.DecrementActiveRequests()

		c.Next()

		path := c.FullPath()

		if path == "" {
			path = "unmatched"
		}

		metrics.RecordRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
