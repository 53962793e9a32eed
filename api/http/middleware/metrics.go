package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copsboot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	usersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copsboot_users_created_total",
			Help: "Total users created",
		},
	)
)

// Prometheus records request duration per route pattern.
func Prometheus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		httpRequestDuration.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(statusOf(c, err))).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// MetricsHandler serves the Prometheus exposition format.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// RecordUserCreated counts a created user.
func RecordUserCreated() { usersCreated.Inc() }

func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
