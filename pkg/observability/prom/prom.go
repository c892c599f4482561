// Package prom implements the observability hooks with Prometheus
// collectors.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/langpack/pkg/observability"
)

// Hooks records resolver, cache and HTTP events as Prometheus metrics.
type Hooks struct {
	ResolveTotal    *prometheus.CounterVec
	ResolveDuration *prometheus.HistogramVec
	CooldownsTotal  *prometheus.CounterVec
	CooldownWait    *prometheus.HistogramVec

	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheWritesTotal *prometheus.CounterVec
	CacheWriteBytes  *prometheus.HistogramVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrorsTotal     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Hooks {
	h := &Hooks{
		ResolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langpack_resolve_total",
				Help: "Total number of repository resolutions by outcome",
			},
			[]string{"provider", "outcome"},
		),
		ResolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "langpack_resolve_duration_seconds",
				Help:    "Repository resolution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		CooldownsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langpack_cooldowns_total",
				Help: "Total number of provider failures recorded in the error cache",
			},
			[]string{"provider", "status"},
		),
		CooldownWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "langpack_cooldown_wait_minutes",
				Help:    "Cooldown windows applied after provider failures",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 360},
			},
			[]string{"provider"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langpack_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"kind"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langpack_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"kind"},
		),
		CacheWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langpack_cache_writes_total",
				Help: "Total number of cache writes",
			},
			[]string{"kind"},
		),
		CacheWriteBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "langpack_cache_write_bytes",
				Help:    "Size of cache entries written",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			},
			[]string{"kind"},
		),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langpack_http_requests_total",
				Help: "Total number of provider API requests by status",
			},
			[]string{"host", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "langpack_http_request_duration_seconds",
				Help:    "Provider API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		HTTPErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langpack_http_errors_total",
				Help: "Total number of provider API transport failures",
			},
			[]string{"host"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			h.ResolveTotal, h.ResolveDuration, h.CooldownsTotal, h.CooldownWait,
			h.CacheHitsTotal, h.CacheMissesTotal, h.CacheWritesTotal, h.CacheWriteBytes,
			h.HTTPRequestsTotal, h.HTTPRequestDuration, h.HTTPErrorsTotal,
		)
	}
	return h
}

// Install registers h as the global resolve, cache and HTTP hooks.
func (h *Hooks) Install() {
	observability.SetResolveHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *Hooks) OnResolveStart(context.Context, string, string) {}

func (h *Hooks) OnResolveComplete(_ context.Context, provider, _ string, outcome string, _ int, duration time.Duration, _ error) {
	h.ResolveTotal.WithLabelValues(provider, outcome).Inc()
	h.ResolveDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (h *Hooks) OnCooldown(_ context.Context, provider, _ string, statusCode int, wait time.Duration) {
	h.CooldownsTotal.WithLabelValues(provider, strconv.Itoa(statusCode)).Inc()
	h.CooldownWait.WithLabelValues(provider).Observe(wait.Minutes())
}

func (h *Hooks) OnCacheHit(_ context.Context, kind string) {
	h.CacheHitsTotal.WithLabelValues(kind).Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, kind string) {
	h.CacheMissesTotal.WithLabelValues(kind).Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.CacheWritesTotal.WithLabelValues(kind).Inc()
	h.CacheWriteBytes.WithLabelValues(kind).Observe(float64(size))
}

func (h *Hooks) OnRequest(context.Context, string, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, _ string, host, _ string, statusCode int, duration time.Duration) {
	h.HTTPRequestsTotal.WithLabelValues(host, strconv.Itoa(statusCode)).Inc()
	h.HTTPRequestDuration.WithLabelValues(host).Observe(duration.Seconds())
}

func (h *Hooks) OnError(_ context.Context, _ string, host, _ string, _ error) {
	h.HTTPErrorsTotal.WithLabelValues(host).Inc()
}

var (
	_ observability.ResolveHooks = (*Hooks)(nil)
	_ observability.CacheHooks   = (*Hooks)(nil)
	_ observability.HTTPHooks    = (*Hooks)(nil)
)
