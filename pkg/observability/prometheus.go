package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusHooks records stage, cache and HTTP events as Prometheus
// metrics on its own registry.
type PrometheusHooks struct {
	StageDuration *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec
	Warnings      *prometheus.CounterVec

	CacheRequests *prometheus.CounterVec
	CacheBytes    prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge

	registry *prometheus.Registry
}

// NewPrometheusHooks creates the metrics on reg, or on a fresh registry
// when reg is nil.
func NewPrometheusHooks(reg *prometheus.Registry) *PrometheusHooks {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &PrometheusHooks{
		registry: reg,
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sldlayout_stage_duration_seconds",
				Help:    "Layout stage duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"stage"},
		),
		StageErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sldlayout_stage_errors_total",
				Help: "Total number of failed layout stages",
			},
			[]string{"stage"},
		),
		Warnings: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sldlayout_warnings_total",
				Help: "Total number of recovered layout anomalies",
			},
			[]string{"stage", "kind"},
		),
		CacheRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sldlayout_cache_requests_total",
				Help: "Total number of cache lookups and writes",
			},
			[]string{"key_type", "result"},
		),
		CacheBytes: f.NewCounter(
			prometheus.CounterOpts{
				Name: "sldlayout_cache_written_bytes_total",
				Help: "Total number of bytes written to the cache",
			},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sldlayout_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sldlayout_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "sldlayout_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
	}
}

// Registry returns the underlying Prometheus registry.
func (h *PrometheusHooks) Registry() *prometheus.Registry { return h.registry }

// Handler serves the registry in the Prometheus exposition format.
func (h *PrometheusHooks) Handler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})
}

func (h *PrometheusHooks) OnStageStart(context.Context, string) {}

func (h *PrometheusHooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	h.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		h.StageErrors.WithLabelValues(stage).Inc()
	}
}

func (h *PrometheusHooks) OnWarning(_ context.Context, stage, kind string) {
	h.Warnings.WithLabelValues(stage, kind).Inc()
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.CacheRequests.WithLabelValues(keyType, "set").Inc()
	h.CacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {
	h.HTTPInFlight.Inc()
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.HTTPInFlight.Dec()
	h.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
