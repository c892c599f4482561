package cli

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/langpack/pkg/buildinfo"
	"github.com/matzehuels/langpack/pkg/config"
	errs "github.com/matzehuels/langpack/pkg/errors"
	"github.com/matzehuels/langpack/pkg/langpack"
)

// shutdownTimeout bounds how long in-flight requests may run after an
// interrupt.
const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagnostics, metrics and language packs over HTTP",
		Long: `Start an HTTP server exposing:

  GET  /healthz                        liveness
  GET  /metrics                        Prometheus metrics
  GET  /diagnostics                    recent provider failures
  GET  /repositories                   configured repositories
  GET  /repositories/{slug}/languages  resolve one repository
  GET  /translations                   offered translation updates
  POST /force-check                    drop cached results and cooldowns

Slugs containing "/" must be path-escaped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Serve.Addr
			}

			reg := c.instrument()
			r, store, err := c.newResolver(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer store.Close()

			router := chi.NewRouter()
			router.Use(middleware.RequestID, middleware.Recoverer)
			newHandlers(r, cfg, reg, c.Logger).RegisterRoutes(router)

			return c.serve(ctx, addr, router)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

// serve runs an HTTP server until ctx is done, then shuts it down.
func (c *CLI) serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	c.Logger.Info("listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			c.Logger.Warn("shutdown incomplete", "err", err)
		}
		c.Logger.Info("server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// =============================================================================
// Handlers
// =============================================================================

// handlers serves the HTTP API over a resolver.
type handlers struct {
	resolver *langpack.Resolver
	cfg      *config.Config
	gatherer prometheus.Gatherer
	logger   *log.Logger
}

func newHandlers(r *langpack.Resolver, cfg *config.Config, g prometheus.Gatherer, logger *log.Logger) *handlers {
	return &handlers{resolver: r, cfg: cfg, gatherer: g, logger: logger}
}

// RegisterRoutes mounts the API on router.
func (h *handlers) RegisterRoutes(router chi.Router) {
	router.Get("/healthz", h.Health)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	router.Get("/diagnostics", h.Diagnostics)
	router.Get("/repositories", h.ListRepositories)
	router.Get("/repositories/{slug}/languages", h.GetLanguages)
	router.Get("/translations", h.ListTranslations)
	router.Post("/force-check", h.ForceCheck)
}

// Health handles GET /healthz
func (h *handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// Diagnostics handles GET /diagnostics
func (h *handlers) Diagnostics(w http.ResponseWriter, r *http.Request) {
	diags := h.resolver.Diagnostics()
	if diags == nil {
		diags = []langpack.Diagnostic{}
	}
	respondJSON(w, http.StatusOK, diags)
}

// ListRepositories handles GET /repositories
func (h *handlers) ListRepositories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cfg.RepositoryConfigs())
}

// GetLanguages handles GET /repositories/{slug}/languages
func (h *handlers) GetLanguages(w http.ResponseWriter, r *http.Request) {
	slug, err := url.PathUnescape(chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "bad slug"))
		return
	}
	rc, ok := h.cfg.Repository(slug)
	if !ok {
		respondJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Error: "unknown repository " + slug})
		return
	}
	res, err := h.resolver.Resolve(r.Context(), rc)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// ListTranslations handles GET /translations
func (h *handlers) ListTranslations(w http.ResponseWriter, r *http.Request) {
	var repos []*langpack.RepositoryConfig
	for _, o := range h.resolver.ResolveAll(r.Context(), h.cfg.RepositoryConfigs()) {
		if o.Err != nil {
			continue
		}
		repos = append(repos, o.Config)
	}
	updates := langpack.SelectUpdates(repos, h.cfg.InstalledTranslations(), h.cfg.Site.Locales)
	if updates == nil {
		updates = []langpack.Translation{}
	}
	respondJSON(w, http.StatusOK, updates)
}

// ForceCheck handles POST /force-check
func (h *handlers) ForceCheck(w http.ResponseWriter, r *http.Request) {
	logger, runID := withRunID(h.logger)
	n, err := h.resolver.ForceCheck(r.Context())
	if err != nil {
		logger.Error("force check failed", "err", err)
		respondError(w, err)
		return
	}
	logger.Info("force check", "cleared", n)
	respondJSON(w, http.StatusOK, map[string]any{"cleared": n, "run": runID})
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = writeJSON(w, v)
}

// respondError maps a coded error to an HTTP status. Cooldowns carry a
// Retry-After header.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errs.GetCode(err) {
	case errs.ErrCodeRateLimited:
		status = http.StatusServiceUnavailable
		var cd *errs.CooldownError
		if errors.As(err, &cd) && !cd.Until.IsZero() {
			secs := int(time.Until(cd.Until).Seconds())
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
	case errs.ErrCodeNoManifest:
		status = http.StatusNotFound
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidURI, errs.ErrCodeInvalidLocale, errs.ErrCodeConfig:
		status = http.StatusUnprocessableEntity
	case errs.ErrCodeNetwork, errs.ErrCodeProvider, errs.ErrCodeDecode:
		status = http.StatusBadGateway
	}
	respondJSON(w, status, errorBody{Code: string(errs.GetCode(err)), Error: errs.Detail(err)})
}
