package web

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/takeaship/slack-remind-command-constructor/internal/logger"
)

func RequestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := logger.NewRequestID()
		c.Header("X-Request-ID", requestID)

		ctx := logger.WithRequestID(c.Request.Context(), base, requestID)
		c.Request = c.Request.WithContext(ctx)

		log := logger.FromContext(ctx)

		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		logLevel := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			logLevel = slog.LevelError
		} else if c.Writer.Status() >= 400 {
			logLevel = slog.LevelWarn
		}

		log.Log(c.Request.Context(), logLevel, "HTTP request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.Int("size", c.Writer.Size()),
			slog.String("ip", c.ClientIP()),
		)

		for _, err := range c.Errors {
			log.Error("Request error occurred",
				slog.String("error", err.Error()),
				slog.String("type", strconv.FormatUint(uint64(err.Type), 10)),
			)
		}
	}
}

func RateLimit(rl *rateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := rl.Allow(c.ClientIP()); err != nil {
			logger.FromContext(c.Request.Context()).Warn("Rate limited", slog.String("ip", c.ClientIP()))
			TooManyRequests(c, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
