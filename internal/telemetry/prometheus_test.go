package telemetry

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheusMetrics_UsesProvidedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewPrometheusMetrics(registry)
	m.ObserveCacheHit()
	m.ObserveCacheMiss()
	m.ObserveCacheEviction()
	m.ObserveCacheWriteFailure()
	m.ObserveFetch("tool", 120*time.Millisecond, nil)
	m.ObserveFetch("tool", time.Second, errors.New("boom"))
	m.ObservePageView("/tools", "en")
	m.ObserveRequest(http.MethodGet, http.StatusNotFound, 5*time.Millisecond)

	metrics, err := registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.GetName())
	}

	assert.Contains(t, names, "aitolife_cache_lookups_total")
	assert.Contains(t, names, "aitolife_cache_evictions_total")
	assert.Contains(t, names, "aitolife_cache_write_failures_total")
	assert.Contains(t, names, "aitolife_content_fetch_duration_seconds")
	assert.Contains(t, names, "aitolife_page_views_total")
	assert.Contains(t, names, "aitolife_http_request_duration_seconds")
}

func TestPrometheusMetricsHandler(t *testing.T) {
	m := NewPrometheusMetrics(nil)
	m.ObservePageView("/", "zh")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `aitolife_page_views_total{language="zh",route="/"} 1`)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(200))
	assert.Equal(t, "3xx", statusClass(303))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(502))
}
