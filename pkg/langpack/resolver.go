package langpack

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/langpack/pkg/cache"
	errs "github.com/matzehuels/langpack/pkg/errors"
	"github.com/matzehuels/langpack/pkg/httputil"
	"github.com/matzehuels/langpack/pkg/integrations"
	"github.com/matzehuels/langpack/pkg/integrations/bitbucket"
	"github.com/matzehuels/langpack/pkg/integrations/gitea"
	"github.com/matzehuels/langpack/pkg/integrations/github"
	"github.com/matzehuels/langpack/pkg/integrations/gitlab"
	"github.com/matzehuels/langpack/pkg/observability"
	"github.com/matzehuels/langpack/pkg/provider"
	"github.com/matzehuels/langpack/pkg/repouri"
)

// Result TTL bounds: every stored result lives ResultTTL plus a random
// share of ResultTTLJitter.
const (
	ResultTTL       = 6 * time.Hour
	ResultTTLJitter = 12 * time.Hour
)

// DefaultConcurrency is the number of repositories ResolveAll works on at
// once.
const DefaultConcurrency = 4

// Client fetches manifests and builds package URLs. [integrations.Client]
// implements it.
type Client interface {
	FetchManifest(ctx context.Context, ep provider.Endpoints, uri *repouri.URI) (*integrations.ManifestResponse, error)
	PackageURL(ep provider.Endpoints, uri *repouri.URI, entry integrations.ManifestEntry) (string, error)
}

// DefaultRegistry returns a registry holding the GitHub, Bitbucket, GitLab
// and Gitea adapters.
func DefaultRegistry() *integrations.Registry {
	return integrations.NewRegistry(github.New(), bitbucket.New(), gitlab.New(), gitea.New())
}

// NewClient builds an [integrations.Client] over the default registry.
func NewClient(f integrations.Fetcher, tokens map[provider.Provider]string) *integrations.Client {
	if f == nil {
		f = httputil.NewFetcher()
	}
	return integrations.NewClient(f, DefaultRegistry(), tokens, nil)
}

// Resolver resolves repository configurations into locale packages.
//
// Now and Jitter may be replaced before first use; tests pin them.
// A Resolver is safe for concurrent use and makes at most one request per
// repository at a time.
type Resolver struct {
	Client      Client
	Logger      *log.Logger
	Now         func() time.Time
	Jitter      func(max time.Duration) time.Duration
	Concurrency int

	store *Store
	diag  *Diagnostics
	group singleflight.Group
}

// NewResolver creates a resolver. A nil cache disables caching, a nil
// keyer uses the default one and a nil logger uses log.Default().
func NewResolver(c cache.Cache, keyer cache.Keyer, client Client, logger *log.Logger) *Resolver {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Resolver{
		Client:      client,
		Logger:      logger,
		Concurrency: DefaultConcurrency,
		diag:        NewDiagnostics(),
	}
	r.store = NewStore(c, keyer, r.now)
	return r
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Resolver) resultTTL() time.Duration {
	if r.Jitter != nil {
		return ResultTTL + r.Jitter(ResultTTLJitter)
	}
	return ResultTTL + time.Duration(rand.Int64N(int64(ResultTTLJitter)+1))
}

// Store returns the resolver's entry store.
func (r *Resolver) Store() *Store { return r.store }

// Resolve returns the locale packages of cfg's repository and attaches
// them to cfg.LanguagePacks.
//
// A cached result is returned without contacting the provider. A cached
// failure yields [errs.CooldownError] without contacting the provider.
func (r *Resolver) Resolve(ctx context.Context, cfg *RepositoryConfig) (*Result, error) {
	res, _, err := r.resolve(ctx, cfg)
	return res, err
}

// Outcome is the result of resolving one repository in [Resolver.ResolveAll].
type Outcome struct {
	Config *RepositoryConfig
	Result *Result
	Status string // one of the observability.Outcome* values
	Err    error
}

// ResolveAll resolves cfgs concurrently. Failures are reported per
// repository and never stop the others. Once ctx is done no further
// repositories are started.
func (r *Resolver) ResolveAll(ctx context.Context, cfgs []*RepositoryConfig) []Outcome {
	out := make([]Outcome, len(cfgs))

	var g errgroup.Group
	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g.SetLimit(limit)

	for i, cfg := range cfgs {
		if err := ctx.Err(); err != nil {
			out[i] = Outcome{Config: cfg, Status: observability.OutcomeError, Err: err}
			continue
		}
		g.Go(func() error {
			res, status, err := r.resolve(ctx, cfg)
			out[i] = Outcome{Config: cfg, Result: res, Status: status, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ForceCheck drops every cached result and failure and clears the
// diagnostics, so the next resolution of each repository hits its provider.
func (r *Resolver) ForceCheck(ctx context.Context) (int, error) {
	n, err := r.store.Clear(ctx)
	if err != nil {
		return n, err
	}
	r.diag.Reset()
	r.Logger.Info("cleared language pack cache", "entries", n)
	return n, nil
}

// Forget drops the cached entry and diagnostic of one repository.
func (r *Resolver) Forget(ctx context.Context, slug string) error {
	r.diag.Clear(slug)
	return r.store.Delete(ctx, slug)
}

// Diagnostics returns the recent failures, sorted by slug.
func (r *Resolver) Diagnostics() []Diagnostic {
	return r.diag.Snapshot()
}

type flight struct {
	res    *Result
	status string
}

func (r *Resolver) resolve(ctx context.Context, cfg *RepositoryConfig) (*Result, string, error) {
	start := time.Now()
	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, string(cfg.Provider), cfg.Slug)

	res, status, err := r.lookupOrFetch(ctx, cfg)

	locales := 0
	if res != nil {
		locales = len(res.Packs)
		cfg.LanguagePacks = clonePacks(res.Packs)
	}
	hooks.OnResolveComplete(ctx, string(cfg.Provider), cfg.Slug, status, locales, time.Since(start), err)
	return res, status, err
}

func (r *Resolver) lookupOrFetch(ctx context.Context, cfg *RepositoryConfig) (*Result, string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, observability.OutcomeError, err
	}
	uri, err := repouri.Parse(cfg.LanguagesURI)
	if err != nil {
		return nil, observability.OutcomeError, err
	}

	if entry := r.cached(ctx, cfg.Slug); entry != nil {
		return r.serve(cfg, entry)
	}

	v, err, _ := r.group.Do(cfg.Slug, func() (any, error) {
		// A concurrent flight may have stored an entry since the first lookup.
		if entry := r.cached(ctx, cfg.Slug); entry != nil {
			res, status, err := r.serve(cfg, entry)
			return flight{res, status}, err
		}
		res, status, err := r.fetch(ctx, cfg, uri)
		return flight{res, status}, err
	})
	f, _ := v.(flight)
	if err != nil && f.status == "" {
		f.status = observability.OutcomeError
	}
	return f.res, f.status, err
}

// cached returns the live entry for slug, or nil. Backend errors are
// logged and treated as a miss.
func (r *Resolver) cached(ctx context.Context, slug string) *Entry {
	entry, ok, err := r.store.Get(ctx, slug)
	if err != nil {
		r.Logger.Warn("cache read failed", "slug", slug, "err", err)
		return nil
	}
	if !ok {
		return nil
	}
	return entry
}

func (r *Resolver) serve(cfg *RepositoryConfig, entry *Entry) (*Result, string, error) {
	if f := entry.Failure; f != nil {
		return nil, observability.OutcomeCooldown, &errs.CooldownError{
			Slug:       cfg.Slug,
			Provider:   string(f.Provider),
			StatusCode: f.StatusCode,
			Until:      f.Until(),
		}
	}
	r.Logger.Debug("language packs served from cache", "slug", cfg.Slug, "locales", len(entry.Result.Packs))
	return entry.Result, observability.OutcomeCached, nil
}

func (r *Resolver) fetch(ctx context.Context, cfg *RepositoryConfig, uri *repouri.URI) (*Result, string, error) {
	if r.Client == nil {
		return nil, observability.OutcomeError, errs.New(errs.ErrCodeInternal, "resolver has no client")
	}
	ep, err := provider.Resolve(cfg.Provider, cfg.Branch, cfg.EnterpriseBaseURL)
	if err != nil {
		r.note(cfg, 0, 0, err)
		return nil, observability.OutcomeError, err
	}

	r.Logger.Debug("fetching manifest", "slug", cfg.Slug, "provider", cfg.Provider, "repo", uri.String())
	resp, err := r.Client.FetchManifest(ctx, ep, uri)
	if err != nil {
		switch {
		case resp == nil:
			r.Logger.Warn("manifest request failed", "slug", cfg.Slug, "provider", cfg.Provider, "err", err)
			r.note(cfg, 0, 0, err)
			return nil, observability.OutcomeError, err
		case errs.Is(err, errs.ErrCodeProvider):
			r.coolDown(ctx, cfg, resp, err)
			return nil, observability.OutcomeError, err
		case errs.Is(err, errs.ErrCodeNoManifest):
			r.Logger.Info("no usable manifest", "slug", cfg.Slug, "provider", cfg.Provider, "err", err)
			r.note(cfg, resp.StatusCode, 0, err)
			return nil, observability.OutcomeNoManifest, err
		default:
			r.Logger.Warn("manifest could not be decoded", "slug", cfg.Slug, "provider", cfg.Provider, "err", err)
			r.note(cfg, resp.StatusCode, 0, err)
			return nil, observability.OutcomeError, err
		}
	}

	packs := make(map[string]LocalePackage, len(resp.Manifest))
	for _, locale := range resp.Manifest.Locales() {
		entry := resp.Manifest[locale]
		u, err := r.Client.PackageURL(ep, uri, entry)
		if err != nil {
			r.Logger.Debug("skipping locale", "slug", cfg.Slug, "locale", locale, "err", err)
			continue
		}
		packs[locale] = LocalePackage{
			Locale:  locale,
			Package: u,
			Type:    cfg.Type,
			Version: cfg.LocalVersion,
			Updated: entry.Updated,
		}
	}
	if len(packs) == 0 {
		err := errs.Wrap(errs.ErrCodeNoManifest, integrations.ErrInvalidResponse, "%s: no locale has a valid package path", cfg.Slug)
		r.note(cfg, resp.StatusCode, 0, err)
		return nil, observability.OutcomeNoManifest, err
	}

	res := &Result{
		Slug:      cfg.Slug,
		Provider:  cfg.Provider,
		Packs:     packs,
		FetchedAt: r.now().UTC(),
	}
	ttl := r.resultTTL()
	if err := r.store.PutResult(ctx, res, ttl); err != nil {
		r.Logger.Warn("cache write failed", "slug", cfg.Slug, "err", err)
	}
	r.diag.Clear(cfg.Slug)
	r.Logger.Info("resolved language packs", "slug", cfg.Slug, "provider", cfg.Provider, "locales", len(packs), "ttl", ttl.Round(time.Minute))
	return res, observability.OutcomeFetched, nil
}

// coolDown caches a failure for the provider's reset window.
func (r *Resolver) coolDown(ctx context.Context, cfg *RepositoryConfig, resp *integrations.ManifestResponse, cause error) {
	now := r.now()
	f := &Failure{
		StatusCode:  resp.StatusCode,
		WaitMinutes: Cooldown(resp.Header, now),
		RecordedAt:  now.UTC(),
		Provider:    cfg.Provider,
		Message:     statusMessage(cause),
	}
	if err := r.store.PutFailure(ctx, cfg.Slug, f, f.Wait()); err != nil {
		r.Logger.Warn("cache write failed", "slug", cfg.Slug, "err", err)
	}
	r.note(cfg, f.StatusCode, f.Wait(), cause)
	observability.Resolve().OnCooldown(ctx, string(cfg.Provider), cfg.Slug, f.StatusCode, f.Wait())
	r.Logger.Warn("provider error, cooling down",
		"slug", cfg.Slug,
		"provider", cfg.Provider,
		"status", f.StatusCode,
		"wait", f.Wait())
}

func (r *Resolver) note(cfg *RepositoryConfig, status int, wait time.Duration, err error) {
	r.diag.Record(Diagnostic{
		Slug:       cfg.Slug,
		Provider:   cfg.Provider,
		StatusCode: status,
		Wait:       wait,
		RecordedAt: r.now().UTC(),
		Message:    errs.Detail(err),
	})
}

func statusMessage(err error) string {
	var se *integrations.StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return errs.Detail(err)
}

func clonePacks(in map[string]LocalePackage) map[string]LocalePackage {
	out := make(map[string]LocalePackage, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
