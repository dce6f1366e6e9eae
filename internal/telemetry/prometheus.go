// Package telemetry exposes site metrics in the Prometheus format.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aitolife/internal/cache"
	"aitolife/internal/content"
)

type PrometheusMetrics struct {
	gatherer       prometheus.Gatherer
	cacheLookups   *prometheus.CounterVec
	cacheEvictions prometheus.Counter
	cacheFailures  prometheus.Counter
	fetchDuration  *prometheus.HistogramVec
	pageViews      *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the site collectors on registry. A nil
// registry uses a fresh one.
func NewPrometheusMetrics(registry *prometheus.Registry) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &PrometheusMetrics{
		gatherer: registry,
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aitolife_cache_lookups_total",
				Help: "Cache lookups by result",
			},
			[]string{"result"},
		),
		cacheEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "aitolife_cache_evictions_total",
			Help: "Expired cache entries removed on read",
		}),
		cacheFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "aitolife_cache_write_failures_total",
			Help: "Cache writes that were dropped",
		}),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aitolife_content_fetch_duration_seconds",
				Help:    "Duration of CMS requests in seconds",
				Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 15},
			},
			[]string{"content_type", "status"},
		),
		pageViews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aitolife_page_views_total",
				Help: "Rendered pages by route and language",
			},
			[]string{"route", "language"},
		),
		requestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aitolife_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
	}
}

func (p *PrometheusMetrics) ObserveCacheHit() {
	p.cacheLookups.WithLabelValues("hit").Inc()
}

func (p *PrometheusMetrics) ObserveCacheMiss() {
	p.cacheLookups.WithLabelValues("miss").Inc()
}

func (p *PrometheusMetrics) ObserveCacheEviction() {
	p.cacheEvictions.Inc()
}

func (p *PrometheusMetrics) ObserveCacheWriteFailure() {
	p.cacheFailures.Inc()
}

func (p *PrometheusMetrics) ObserveFetch(contentType string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.fetchDuration.WithLabelValues(contentType, status).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObservePageView(route, language string) {
	p.pageViews.WithLabelValues(route, language).Inc()
}

func (p *PrometheusMetrics) ObserveRequest(method string, status int, duration time.Duration) {
	p.requestLatency.WithLabelValues(method, statusClass(status)).Observe(duration.Seconds())
}

// Handler serves the registry in the text exposition format.
func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

var (
	_ cache.Metrics        = (*PrometheusMetrics)(nil)
	_ content.FetchMetrics = (*PrometheusMetrics)(nil)
)
