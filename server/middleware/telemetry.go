package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/scoutkit/observability"
)

// Telemetry returns a Gin middleware that opens a span per request and
// records request metrics. A nil metrics disables metric recording but
// keeps tracing.
func Telemetry(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ctx, span := observability.StartSpan(c.Request.Context(), "server "+route)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		if id := c.GetString("request_id"); id != "" {
			span.SetAttributes(attribute.String(observability.AttrRequestID, id))
		}

		start := time.Now()
		if metrics != nil {
			metrics.RecordRequestStart(ctx)
		}
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.Int(observability.AttrStatus, status),
			attribute.Int64(observability.AttrDurationMs, time.Since(start).Milliseconds()),
		)
		if metrics != nil {
			metrics.RecordRequestEnd(ctx, route, strconv.Itoa(status), time.Since(start))
		}
	}
}
