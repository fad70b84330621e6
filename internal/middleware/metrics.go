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
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of currently active HTTP requests",
		},
	)

	togglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_toggles_total",
			Help: "Total number of engagement toggle requests",
		},
		[]string{"target_type", "engagement_type"},
	)

	moderationTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_transitions_total",
			Help: "Total number of moderation state transitions",
		},
		[]string{"operation"},
	)

	orphanedVersionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orphaned_versions_total",
			Help: "Orphaned content versions detected by the integrity scan",
		},
	)
)

// Metrics returns a gin middleware that collects Prometheus metrics
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip metrics endpoint itself
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		activeRequests.Inc()

		c.Next()

		activeRequests.Dec()
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		// Use the route template to avoid high-cardinality labels
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

// CountToggle records an engagement toggle (call from the handler)
func CountToggle(targetType, engagementType string) {
	togglesTotal.WithLabelValues(targetType, engagementType).Inc()
}

// CountTransition records a moderation state transition
func CountTransition(operation string) {
	moderationTransitionsTotal.WithLabelValues(operation).Inc()
}

// CountOrphanedVersions records integrity-scan findings
func CountOrphanedVersions(n int) {
	orphanedVersionsTotal.Add(float64(n))
}
