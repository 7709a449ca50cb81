package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics contains all metrics for HTTP request monitoring
type HTTPMetrics struct {
	// HTTP request duration histogram
	requestDuration *prometheus.HistogramVec

	// HTTP request count counter
	requestsTotal *prometheus.CounterVec

	// HTTP response size histogram
	responseSize *prometheus.HistogramVec

	// HTTP requests currently in flight
	inFlightRequests *prometheus.GaugeVec

	// Business logic metrics
	businessOperations *prometheus.CounterVec
	businessDuration   *prometheus.HistogramVec
}

// NewHTTPMetrics creates a new instance of HTTP metrics
func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ez_stablecoin_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "path", "status"},
		),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ez_stablecoin_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		responseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ez_stablecoin_http_response_size_bytes",
				Help:    "Size of HTTP responses in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 2, 8), // 100B to 12KB
			},
			[]string{"method", "path", "status"},
		),

		inFlightRequests: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ez_stablecoin_http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
			[]string{"method", "path"},
		),

		businessOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ez_stablecoin_business_operations_total",
				Help: "Total number of business operations",
			},
			[]string{"operation_type", "category", "status"},
		),

		businessDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ez_stablecoin_business_operation_duration_seconds",
				Help:    "Duration of business operations in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"operation_type", "category", "status"},
		),
	}
}

// MustRegister registers all HTTP metrics with the provided registry
func (m *HTTPMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.requestDuration,
		m.requestsTotal,
		m.responseSize,
		m.inFlightRequests,
		m.businessOperations,
		m.businessDuration,
	)
}

// RecordBusinessMetric records a business operation metric
func (m *HTTPMetrics) RecordBusinessMetric(operationType, category, status string, duration float64) {
	m.businessOperations.WithLabelValues(operationType, category, status).Inc()
	if duration > 0 {
		m.businessDuration.WithLabelValues(operationType, category, status).Observe(duration)
	}
}

// HTTPMetricsMiddleware creates a Gin middleware for HTTP metrics collection
func HTTPMetricsMiddleware(metrics *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		method := c.Request.Method

		// Handle cases where FullPath might be empty (404s, etc.)
		if path == "" {
			path = c.Request.URL.Path
		}

		// Increment in-flight requests
		metrics.inFlightRequests.WithLabelValues(method, path).Inc()

		// Process request
		c.Next()

		// Calculate response metrics
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		responseSize := float64(c.Writer.Size())

		// Record metrics
		metrics.requestDuration.WithLabelValues(method, path, status).Observe(duration)
		metrics.requestsTotal.WithLabelValues(method, path, status).Inc()
		if responseSize > 0 {
			metrics.responseSize.WithLabelValues(method, path, status).Observe(responseSize)
		}

		// Decrement in-flight requests
		metrics.inFlightRequests.WithLabelValues(method, path).Dec()
	}
}

// BusinessMetricsRecorder provides methods to record business logic metrics
type BusinessMetricsRecorder struct {
	metrics *HTTPMetrics
}

// NewBusinessMetricsRecorder creates a new business metrics recorder
func NewBusinessMetricsRecorder(metrics *HTTPMetrics) *BusinessMetricsRecorder {
	return &BusinessMetricsRecorder{
		metrics: metrics,
	}
}

// RecordStatusRead records a workflow status read
func (r *BusinessMetricsRecorder) RecordStatusRead(status string, duration float64) {
	r.metrics.RecordBusinessMetric("status_read", "workflow", status, duration)
}

// RecordStatusMerge records a workflow status merge write
func (r *BusinessMetricsRecorder) RecordStatusMerge(status string, duration float64) {
	r.metrics.RecordBusinessMetric("status_merge", "workflow", status, duration)
}

// RecordStatusReset records a workflow status reset
func (r *BusinessMetricsRecorder) RecordStatusReset(status string, duration float64) {
	r.metrics.RecordBusinessMetric("status_reset", "workflow", status, duration)
}

// RecordDatabaseOperation records a database operation
func (r *BusinessMetricsRecorder) RecordDatabaseOperation(operationType, status string, duration float64) {
	r.metrics.RecordBusinessMetric("database_operation", operationType, status, duration)
}
