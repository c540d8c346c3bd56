package middleware

import (
	"time"

	"newsletter/internal/adapter/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Logging(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		ctx := c.Request.Context()

		fields := []zap.Field{
			zap.String("request_id", RequestIDFromContext(ctx)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= 500 {
			logger.Ctx(ctx).Error("HTTP Request", fields...)
			return
		}

		logger.Ctx(ctx).Info("HTTP Request", fields...)
	}
}
