package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/murdhanno/backend/internal/infrastructure/telemetry"
)

// Profiling adds Pyroscope route and method labels to every request so CPU
// profiles can be sliced per endpoint. Health checks are skipped.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" || route == "/api/v1/health" {
			c.Next()
			return
		}

		labels := telemetry.HTTPRequestLabels(route, c.Request.Method)
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
