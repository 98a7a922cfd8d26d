package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaiafact_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gaiafact_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// InvoiceNumbersIssued counts issued invoice numbers per prefix.
	InvoiceNumbersIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaiafact_invoice_numbers_issued_total",
			Help: "Total number of invoice numbers issued",
		},
		[]string{"prefix"},
	)

	// ChangeRequestsResolved counts change request resolutions by outcome.
	ChangeRequestsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaiafact_change_requests_resolved_total",
			Help: "Total number of change requests resolved",
		},
		[]string{"status"},
	)
)

// Metrics middleware records request count and duration per route. The
// route template (c.FullPath) is used instead of the raw URL so the label
// cardinality stays bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
