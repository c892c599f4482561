package langpack

import (
	"time"

	errs "github.com/matzehuels/langpack/pkg/errors"
	"github.com/matzehuels/langpack/pkg/provider"
)

// ArtifactType is the kind of artifact a repository translates.
type ArtifactType string

// Artifact types.
const (
	TypePlugin ArtifactType = "plugin"
	TypeTheme  ArtifactType = "theme"
)

// Valid reports whether t is a known artifact type.
func (t ArtifactType) Valid() bool {
	return t == TypePlugin || t == TypeTheme
}

// RepositoryConfig describes one translated artifact and where its
// translations live. LanguagePacks is written by the [Resolver] only.
type RepositoryConfig struct {
	Provider          provider.Provider        `json:"provider"`
	Type              ArtifactType             `json:"type"`
	Slug              string                   `json:"slug"`
	LocalVersion      string                   `json:"version"`
	LanguagesURI      string                   `json:"languages_uri"`
	Branch            string                   `json:"branch,omitempty"`
	EnterpriseBaseURL string                   `json:"enterprise_base_url,omitempty"`
	LanguagePacks     map[string]LocalePackage `json:"language_packs,omitempty"`
}

// Validate checks the fields the resolver depends on.
func (c *RepositoryConfig) Validate() error {
	if err := errs.ValidateSlug(c.Slug); err != nil {
		return err
	}
	if !c.Provider.Valid() {
		return errs.New(errs.ErrCodeConfig, "%s: unknown provider %q", c.Slug, string(c.Provider))
	}
	if !c.Type.Valid() {
		return errs.New(errs.ErrCodeConfig, "%s: type must be plugin or theme, got %q", c.Slug, string(c.Type))
	}
	if c.LanguagesURI == "" {
		return errs.New(errs.ErrCodeConfig, "%s: languages_uri is required", c.Slug)
	}
	return nil
}

// LocalePackage is one locale's downloadable translation package.
type LocalePackage struct {
	Locale  string       `json:"language"`
	Package string       `json:"package"`
	Type    ArtifactType `json:"type"`
	Version string       `json:"version"`
	Updated string       `json:"updated"`
}

// Result holds every locale package resolved for a repository. A new
// result replaces the previous one wholesale.
type Result struct {
	Slug      string                   `json:"slug"`
	Provider  provider.Provider        `json:"provider"`
	Packs     map[string]LocalePackage `json:"packs"`
	FetchedAt time.Time                `json:"fetched_at"`
}

// Failure records a provider error answer. While it is cached the
// repository is not contacted again.
type Failure struct {
	StatusCode  int               `json:"status_code"`
	WaitMinutes int               `json:"wait_minutes"`
	RecordedAt  time.Time         `json:"recorded_at"`
	Provider    provider.Provider `json:"provider"`
	Message     string            `json:"message,omitempty"`
}

// Until returns the end of the cooldown.
func (f *Failure) Until() time.Time {
	return f.RecordedAt.Add(time.Duration(f.WaitMinutes) * time.Minute)
}

// Wait returns the cooldown length.
func (f *Failure) Wait() time.Duration {
	return time.Duration(f.WaitMinutes) * time.Minute
}
