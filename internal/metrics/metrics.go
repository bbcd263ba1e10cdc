package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "flightdesk",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flightdesk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flightdesk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path"},
	)

	flightOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flightdesk",
			Subsystem: "flights",
			Name:      "operations_total",
			Help:      "Flight service operations by outcome.",
		},
		[]string{"operation", "result"},
	)

	rowsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flightdesk",
			Subsystem: "store",
			Name:      "rows_skipped_total",
			Help:      "Stored rows omitted from list results because they could not be decoded.",
		},
		[]string{"table"},
	)

	storeLockWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "flightdesk",
			Subsystem: "store",
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for the store lock.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		flightOperations,
		rowsSkipped,
		storeLockWait,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordFlightOperation counts one flight service call; result is "ok" or an error kind.
func RecordFlightOperation(operation, result string) {
	flightOperations.WithLabelValues(operation, result).Inc()
}

// RecordSkippedRow counts a row dropped from a list result.
func RecordSkippedRow(table string) {
	rowsSkipped.WithLabelValues(table).Inc()
}

// ObserveLockWait records how long a caller waited for the store lock.
func ObserveLockWait(d time.Duration) {
	storeLockWait.Observe(d.Seconds())
}
