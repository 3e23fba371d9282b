package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tink_http_requests_total",
		Help: "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tink_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ApplicationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tink_application_decisions_total",
		Help: "Application decisions by outcome.",
	}, []string{"decision"})

	TransitionsBlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tink_transitions_blocked_total",
		Help: "Lifecycle actions denied by the transition gate.",
	}, []string{"action"})

	MoveOutsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tink_moveouts_processed_total",
		Help: "Processed lease move-outs.",
	})
)

// Handler exposes the prometheus registry on a Fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
