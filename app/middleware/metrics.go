package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight HTTP requests
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Admin login attempts by outcome (success, invalid_credentials, error)
	adminLoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_logins_total",
			Help: "Admin login attempts partitioned by outcome",
		},
		[]string{"outcome"},
	)

	// Requests rejected by the authenticator, by reason code
	adminAuthRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_auth_rejections_total",
			Help: "Requests rejected during admin authentication, by reason",
		},
		[]string{"reason"},
	)

	// Permission checks that failed for an authenticated admin
	adminPermissionDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_permission_denials_total",
			Help: "Permission checks denied for authenticated admins, by route",
		},
		[]string{"route"},
	)
)

// RecordLoginOutcome counts a login attempt. Outcome should be one of
// "success", "invalid_credentials", or "error".
func RecordLoginOutcome(outcome string) {
	adminLoginsTotal.WithLabelValues(outcome).Inc()
}

func recordAuthRejection(reason string) {
	adminAuthRejectionsTotal.WithLabelValues(reason).Inc()
}

func recordPermissionDenial(route string) {
	adminPermissionDenialsTotal.WithLabelValues(route).Inc()
}

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path // Use route template to avoid high cardinality
		}

		labels := prometheus.Labels{
			"method": method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}
