package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logging logs every request with the session identity when present.
// It logs the route, status, participant name, and duration.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start).Milliseconds()
		status := c.Writer.Status()

		var participant string
		if claims := SessionClaims(c); claims != nil {
			participant = claims.DisplayName
		}

		switch {
		case status >= 500:
			slog.Error("request failed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"participant", participant,
				"duration_ms", duration,
				"errors", c.Errors.String(),
			)
		case status >= 400:
			slog.Warn("request rejected",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"participant", participant,
				"duration_ms", duration,
			)
		default:
			slog.Info("request ok",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"participant", participant,
				"duration_ms", duration,
			)
		}
	}
}
