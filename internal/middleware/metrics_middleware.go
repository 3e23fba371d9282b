package middleware

import (
	"strconv"
	"time"

	"tink_backend/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware records request counts and latency per route.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		route := c.Route().Path
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Method(),
			route,
			strconv.Itoa(c.Response().StatusCode()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Method(), route).
			Observe(time.Since(start).Seconds())

		return err
	}
}
