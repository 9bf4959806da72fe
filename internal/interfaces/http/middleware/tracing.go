// Package middleware provides HTTP middleware for the order service.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

func DefaultTracingConfig() TracingConfig {
	return TracingConfig{ServiceName: "murdhanno-backend", Enabled: true}
}

// TracingWithConfig starts a server span per request via otelgin, named after
// the matched route. Disabled tracing installs a pass-through handler.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanErrorMarker sets an error status on the request span for 4xx and 5xx
// responses. It must sit after TracingWithConfig.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		span := trace.SpanFromContext(c.Request.Context())
		if status < http.StatusBadRequest || !span.IsRecording() {
			return
		}
		span.SetStatus(codes.Error, http.StatusText(status))
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

// TracingAttributeInjector tags the request span with the request id and the
// authenticated caller. It must sit after the JWT middleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			var attrs []attribute.KeyValue
			for key, value := range map[string]string{
				"request_id": getRequestID(c),
				"user_id":    GetJWTUserID(c),
				"user_role":  GetJWTRole(c),
			} {
				if value != "" {
					attrs = append(attrs, attribute.String(key, value))
				}
			}
			span.SetAttributes(attrs...)
		}
		c.Next()
	}
}
