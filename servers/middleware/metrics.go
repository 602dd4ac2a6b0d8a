package middleware

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gofiber/fiber/v3"
)

// MetricsMiddleware counts requests and latencies per route pattern.
// The registered route path is used instead of the raw URL so
// /profile/:userId stays one series.
func MetricsMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		start := time.Now()
		defer func() {
			path := ctx.Route().Path
			status := ctx.Response().StatusCode()
			metrics.GetOrCreateCounter(fmt.Sprintf(
				`http_requests_total{path=%q, method=%q, status="%d"}`,
				path, ctx.Method(), status,
			)).Inc()
			metrics.GetOrCreateHistogram(fmt.Sprintf(
				`http_requests_latency{path=%q, method=%q, status="%d"}`,
				path, ctx.Method(), status,
			)).UpdateDuration(start)
		}()
		return ctx.Next()
	}
}
