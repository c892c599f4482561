package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/langpack/pkg/observability"
)

func TestHooksRecordMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	h := New(reg)

	h.OnResolveComplete(ctx, "github", "widgets", observability.OutcomeFetched, 2, time.Second, nil)
	h.OnResolveComplete(ctx, "github", "widgets", observability.OutcomeCached, 2, time.Millisecond, nil)
	h.OnCooldown(ctx, "gitlab", "gadgets", 429, 30*time.Minute)
	h.OnCacheHit(ctx, "result")
	h.OnCacheMiss(ctx, "result")
	h.OnCacheSet(ctx, "failure", 100)
	h.OnResponse(ctx, "GET", "api.github.com", "/repos", 200, time.Second)
	h.OnError(ctx, "GET", "gitlab.com", "/api", errors.New("timeout"))

	if got := testutil.ToFloat64(h.ResolveTotal.WithLabelValues("github", observability.OutcomeFetched)); got != 1 {
		t.Errorf("fetched resolves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.CooldownsTotal.WithLabelValues("gitlab", "429")); got != 1 {
		t.Errorf("cooldowns = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.CacheHitsTotal.WithLabelValues("result")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.HTTPRequestsTotal.WithLabelValues("api.github.com", "200")); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.HTTPErrorsTotal.WithLabelValues("gitlab.com")); got != 1 {
		t.Errorf("http errors = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	if len(families) == 0 {
		t.Error("registry should expose metric families")
	}
}

func TestInstall(t *testing.T) {
	defer observability.Reset()

	h := New(nil)
	h.Install()

	if observability.Resolve() != observability.ResolveHooks(h) {
		t.Error("Install should register resolve hooks")
	}
	if observability.HTTP() != observability.HTTPHooks(h) {
		t.Error("Install should register HTTP hooks")
	}
}
