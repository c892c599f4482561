// Package config loads the langpack configuration file.
//
// The file is TOML. It lists the repositories to resolve, the provider
// tokens, the installed translations used to decide which updates to offer,
// and the settings of the cache, HTTP client, poller and server.
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[tokens]
//	github = "ghp_..."
//
//	[[repository]]
//	provider = "github"
//	type = "plugin"
//	slug = "my-plugin/my-plugin.php"
//	version = "1.4.0"
//	languages_uri = "https://github.com/acme/my-plugin-translations"
//
//	[installed."my-plugin/my-plugin.php"]
//	de_DE = "2024-02-01 10:00+0000"
//
// Tokens may also come from GITHUB_TOKEN, BITBUCKET_TOKEN, GITLAB_TOKEN and
// GITEA_TOKEN, which take precedence over the file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"

	"github.com/matzehuels/langpack/pkg/cache"
	errs "github.com/matzehuels/langpack/pkg/errors"
	"github.com/matzehuels/langpack/pkg/httputil"
	"github.com/matzehuels/langpack/pkg/langpack"
	"github.com/matzehuels/langpack/pkg/provider"
)

const appName = "langpack"

// Defaults for optional settings.
const (
	DefaultSchedule   = "@every 6h"
	DefaultServeAddr  = "127.0.0.1:8089"
	DefaultMongoDB    = "langpack"
	defaultConfigFile = "config.toml"
)

// Config is the decoded configuration file.
type Config struct {
	Cache        CacheConfig                  `toml:"cache"`
	HTTP         HTTPConfig                   `toml:"http"`
	Resolver     ResolverConfig               `toml:"resolver"`
	Poll         PollConfig                   `toml:"poll"`
	Serve        ServeConfig                  `toml:"serve"`
	Site         SiteConfig                   `toml:"site"`
	Tokens       map[string]string            `toml:"tokens"`
	Repositories []Repository                 `toml:"repository"`
	Installed    map[string]map[string]string `toml:"installed"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	MemoryEntries   int    `toml:"memory_entries"`
	RedisURL        string `toml:"redis_url"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	// Scope namespaces keys so several sites can share one backend.
	Scope string `toml:"scope"`
}

// HTTPConfig tunes the provider HTTP client.
type HTTPConfig struct {
	Timeout Duration `toml:"timeout"`
}

// ResolverConfig tunes resolution.
type ResolverConfig struct {
	Concurrency int `toml:"concurrency"`
}

// PollConfig configures "langpack poll".
type PollConfig struct {
	Schedule string `toml:"schedule"`
}

// ServeConfig configures "langpack serve".
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// SiteConfig describes the host site.
type SiteConfig struct {
	// Locales installed on the site. Empty means en_US.
	Locales []string `toml:"locales"`
}

// Repository is one [[repository]] table.
type Repository struct {
	Provider          string `toml:"provider"`
	Type              string `toml:"type"`
	Slug              string `toml:"slug"`
	Version           string `toml:"version"`
	LanguagesURI      string `toml:"languages_uri"`
	Branch            string `toml:"branch"`
	EnterpriseBaseURL string `toml:"enterprise_base_url"`
}

// Duration is a time.Duration decoded from a string such as "15s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// tokenEnv maps providers to the environment variables that override
// their tokens.
var tokenEnv = map[provider.Provider]string{
	provider.GitHub:    "GITHUB_TOKEN",
	provider.Bitbucket: "BITBUCKET_TOKEN",
	provider.GitLab:    "GITLAB_TOKEN",
	provider.Gitea:     "GITEA_TOKEN",
}

// Default returns a configuration with every default applied and no
// repositories.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the file at path. An empty path means [DefaultPath]; a
// missing default file yields [Default]. Environment token overrides are
// applied in both cases.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeConfig, err, "locate config file")
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		c := Default()
		c.applyEnv(os.Getenv)
		return c, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfig, err, "read config")
	}

	c, err := parse(string(data), os.Getenv)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfig, err, "%s", path)
	}
	c.Path = path
	return c, nil
}

// Parse decodes a configuration document without consulting the
// environment.
func Parse(data string) (*Config, error) {
	return parse(data, func(string) string { return "" })
}

func parse(data string, getenv func(string) string) (*Config, error) {
	var c Config
	md, err := toml.Decode(data, &c)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	c.applyDefaults()
	c.applyEnv(getenv)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendFile
	}
	if c.Cache.Backend == cache.BackendFile && c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.Cache.MongoDatabase == "" {
		c.Cache.MongoDatabase = DefaultMongoDB
	}
	if c.HTTP.Timeout.Duration <= 0 {
		c.HTTP.Timeout.Duration = httputil.DefaultTimeout
	}
	if c.Resolver.Concurrency <= 0 {
		c.Resolver.Concurrency = langpack.DefaultConcurrency
	}
	if c.Poll.Schedule == "" {
		c.Poll.Schedule = DefaultSchedule
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultServeAddr
	}
	if c.Tokens == nil {
		c.Tokens = make(map[string]string)
	}
	for i := range c.Repositories {
		r := &c.Repositories[i]
		if r.Type == "" {
			r.Type = string(langpack.TypePlugin)
		}
		if r.Branch == "" {
			r.Branch = provider.DefaultBranch
		}
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	if c.Tokens == nil {
		c.Tokens = make(map[string]string)
	}
	for p, name := range tokenEnv {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			c.Tokens[string(p)] = v
		}
	}
}

// Validate checks repository declarations, token names, the cache backend
// and the poll schedule. Provider-specific requirements such as Gitea's
// base URL are checked when a repository is resolved, so one bad entry
// does not disable the others.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendMemory, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return errs.New(errs.ErrCodeConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	for name := range c.Tokens {
		if _, err := provider.Parse(name); err != nil {
			return errs.Wrap(errs.ErrCodeConfig, err, "[tokens]")
		}
	}

	if _, err := cron.ParseStandard(c.Poll.Schedule); err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "poll schedule %q", c.Poll.Schedule)
	}

	seen := make(map[string]bool, len(c.Repositories))
	for i, r := range c.Repositories {
		if err := errs.ValidateSlug(r.Slug); err != nil {
			return errs.Wrap(errs.ErrCodeConfig, err, "repository %d", i+1)
		}
		if seen[r.Slug] {
			return errs.New(errs.ErrCodeConfig, "repository %q declared twice", r.Slug)
		}
		seen[r.Slug] = true

		if _, err := provider.Parse(r.Provider); err != nil {
			return errs.Wrap(errs.ErrCodeConfig, err, "repository %q", r.Slug)
		}
		if !langpack.ArtifactType(r.Type).Valid() {
			return errs.New(errs.ErrCodeConfig, "repository %q: type must be plugin or theme", r.Slug)
		}
		if strings.TrimSpace(r.LanguagesURI) == "" {
			return errs.New(errs.ErrCodeConfig, "repository %q: languages_uri is required", r.Slug)
		}
	}
	return nil
}

// RepositoryConfigs converts the [[repository]] tables. Each call returns
// fresh values.
func (c *Config) RepositoryConfigs() []*langpack.RepositoryConfig {
	out := make([]*langpack.RepositoryConfig, 0, len(c.Repositories))
	for _, r := range c.Repositories {
		p, _ := provider.Parse(r.Provider)
		out = append(out, &langpack.RepositoryConfig{
			Provider:          p,
			Type:              langpack.ArtifactType(r.Type),
			Slug:              r.Slug,
			LocalVersion:      r.Version,
			LanguagesURI:      strings.TrimSpace(r.LanguagesURI),
			Branch:            r.Branch,
			EnterpriseBaseURL: r.EnterpriseBaseURL,
		})
	}
	return out
}

// Repository returns the repository with the given slug.
func (c *Config) Repository(slug string) (*langpack.RepositoryConfig, bool) {
	for _, rc := range c.RepositoryConfigs() {
		if rc.Slug == slug {
			return rc, true
		}
	}
	return nil, false
}

// ProviderTokens returns the tokens keyed by provider.
func (c *Config) ProviderTokens() map[provider.Provider]string {
	out := make(map[provider.Provider]string, len(c.Tokens))
	for name, tok := range c.Tokens {
		if p, err := provider.Parse(name); err == nil && tok != "" {
			out[p] = tok
		}
	}
	return out
}

// TokenProviders returns the providers that have a token, sorted.
func (c *Config) TokenProviders() []provider.Provider {
	tokens := c.ProviderTokens()
	out := make([]provider.Provider, 0, len(tokens))
	for p := range tokens {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InstalledTranslations returns the [installed] tables.
func (c *Config) InstalledTranslations() langpack.Installed {
	return langpack.Installed(c.Installed)
}

// CacheOptions converts the [cache] table.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:         c.Cache.Backend,
		Dir:             c.Cache.Dir,
		MemoryEntries:   c.Cache.MemoryEntries,
		RedisURL:        c.Cache.RedisURL,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}
}

// Keyer returns the cache keyer, scoped when [cache].scope is set.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Scope+":")
}

// DefaultPath returns $XDG_CONFIG_HOME/langpack/config.toml, falling back
// to ~/.config/langpack/config.toml.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, defaultConfigFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, defaultConfigFile), nil
}

// CacheDir returns the file cache directory using the XDG standard
// (~/.cache/langpack/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
