// Package provider describes the git hosting services langpack can read
// language-pack manifests from, and resolves their API and download
// endpoints.
//
// The set of providers is closed: [GitHub], [Bitbucket], [GitLab] and
// [Gitea]. Endpoint resolution is a pure function of the provider, the
// branch and an optional self-hosted base URL.
package provider

import (
	"strings"

	errs "github.com/matzehuels/langpack/pkg/errors"
)

// Provider identifies a git hosting service.
type Provider string

// Supported providers.
const (
	GitHub    Provider = "github"
	Bitbucket Provider = "bitbucket"
	GitLab    Provider = "gitlab"
	Gitea     Provider = "gitea"
)

// DefaultBranch is used when a repository does not declare one.
const DefaultBranch = "master"

// All returns every supported provider in a stable order.
func All() []Provider {
	return []Provider{GitHub, Bitbucket, GitLab, Gitea}
}

// String returns the provider key.
func (p Provider) String() string { return string(p) }

// Title returns the display name ("GitHub", "GitLab", ...).
func (p Provider) Title() string {
	switch p {
	case GitHub:
		return "GitHub"
	case Bitbucket:
		return "Bitbucket"
	case GitLab:
		return "GitLab"
	case Gitea:
		return "Gitea"
	}
	return string(p)
}

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	_, ok := table[p]
	return ok
}

// Parse maps a provider name to a [Provider]. Matching is case-insensitive,
// so the header-style names ("GitHub", "GitLab") are accepted.
func Parse(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if !p.Valid() {
		return "", errs.New(errs.ErrCodeConfig, "unknown provider %q", name)
	}
	return p, nil
}

// RefStyle is how a provider's API selects a branch.
type RefStyle int

const (
	// RefQuery passes the branch as a ref= query parameter.
	RefQuery RefStyle = iota
	// RefPath embeds the branch as a path segment.
	RefPath
)

func (s RefStyle) String() string {
	if s == RefPath {
		return "path"
	}
	return "query"
}
