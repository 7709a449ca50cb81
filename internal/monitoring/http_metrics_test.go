package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(metrics *HTTPMetrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(HTTPMetricsMiddleware(metrics))
	router.GET("/api/v1/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"gbp": 1000.0})
	})
	return router
}

func TestHTTPMetricsMiddleware_RecordsRequests(t *testing.T) {
	metrics := NewHTTPMetrics()
	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	router := newTestRouter(metrics)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	count := testutil.ToFloat64(metrics.requestsTotal.WithLabelValues(http.MethodGet, "/api/v1/status", "200"))
	assert.Equal(t, 3.0, count)

	inFlight := testutil.ToFloat64(metrics.inFlightRequests.WithLabelValues(http.MethodGet, "/api/v1/status"))
	assert.Equal(t, 0.0, inFlight)
}

func TestHTTPMetricsMiddleware_LabelsUnmatchedPaths(t *testing.T) {
	metrics := NewHTTPMetrics()
	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	router := newTestRouter(metrics)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/no/such/route", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	count := testutil.ToFloat64(metrics.requestsTotal.WithLabelValues(http.MethodGet, "/no/such/route", "404"))
	assert.Equal(t, 1.0, count)
}

func TestBusinessMetricsRecorder(t *testing.T) {
	metrics := NewHTTPMetrics()
	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	recorder := NewBusinessMetricsRecorder(metrics)
	recorder.RecordStatusMerge("success", 0.012)
	recorder.RecordStatusMerge("success", 0.008)
	recorder.RecordStatusReset("error", 0.001)

	merges := testutil.ToFloat64(metrics.businessOperations.WithLabelValues("status_merge", "workflow", "success"))
	assert.Equal(t, 2.0, merges)

	resets := testutil.ToFloat64(metrics.businessOperations.WithLabelValues("status_reset", "workflow", "error"))
	assert.Equal(t, 1.0, resets)
}
