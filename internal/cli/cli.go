package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/langpack/pkg/buildinfo"
	"github.com/matzehuels/langpack/pkg/cache"
	"github.com/matzehuels/langpack/pkg/config"
	"github.com/matzehuels/langpack/pkg/httputil"
	"github.com/matzehuels/langpack/pkg/langpack"
	"github.com/matzehuels/langpack/pkg/observability/prom"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "langpack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	registry   *prometheus.Registry
	metrics    *prom.Hooks
}

// New creates a new CLI instance with a default logger.
//
// The logger also becomes the package-level default so library debug lines
// follow the --verbose flag.
func New(w io.Writer, level log.Level) *CLI {
	logger := newLogger(w, level)
	log.SetDefault(logger)
	return &CLI{Logger: logger}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "langpack resolves translation packs published in git repositories",
		Long:         `langpack reads language-pack.json manifests from GitHub, Bitbucket, GitLab and Gitea repositories, caches them and reports which translation updates a site should install.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/langpack/config.toml)")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.pollCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Resolver Factory
// =============================================================================

func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path, "repositories", len(cfg.Repositories))
	} else {
		c.Logger.Debug("no config file, using defaults")
	}
	return cfg, nil
}

// instrument installs Prometheus hooks once per process.
func (c *CLI) instrument() *prometheus.Registry {
	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
		c.metrics = prom.New(c.registry)
		c.metrics.Install()
	}
	return c.registry
}

// newResolver opens the configured cache and builds a resolver. The
// returned cache must be closed by the caller.
func (c *CLI) newResolver(ctx context.Context, cfg *config.Config, noCache bool) (*langpack.Resolver, cache.Cache, error) {
	opts := cfg.CacheOptions()
	if noCache {
		opts.Backend = cache.BackendNone
	}
	store, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	fetcher := httputil.NewFetcher(httputil.WithTimeout(cfg.HTTP.Timeout.Duration))
	client := langpack.NewClient(fetcher, cfg.ProviderTokens())

	r := langpack.NewResolver(store, cfg.Keyer(), client, c.Logger)
	r.Concurrency = cfg.Resolver.Concurrency
	c.Logger.Debug("resolver ready", "cache", opts.Backend, "tokens", cfg.TokenProviders())
	return r, store, nil
}

// selectRepositories returns the configured repositories, limited to slugs
// when any are given.
func selectRepositories(cfg *config.Config, slugs []string) ([]*langpack.RepositoryConfig, error) {
	all := cfg.RepositoryConfigs()
	if len(slugs) == 0 {
		return all, nil
	}
	out := make([]*langpack.RepositoryConfig, 0, len(slugs))
	for _, slug := range slugs {
		rc, ok := cfg.Repository(slug)
		if !ok {
			return nil, errUnknownSlug(slug)
		}
		out = append(out, rc)
	}
	return out, nil
}
