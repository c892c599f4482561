package provider

import (
	"strings"

	errs "github.com/matzehuels/langpack/pkg/errors"
)

// ErrMissingBaseURL is returned when a provider that only exists self-hosted
// is resolved without a base URL.
var ErrMissingBaseURL = errs.New(errs.ErrCodeConfig, "provider requires an enterprise base URL")

// Endpoints are the resolved URLs for one repository's provider.
type Endpoints struct {
	Provider        Provider
	APIBaseURL      string
	DownloadBaseURL string
	Branch          string
	RefStyle        RefStyle
}

type entry struct {
	api      string
	download string
	ref      RefStyle
	// apiSuffix is appended to a self-hosted base URL.
	apiSuffix string
	// selfHosted providers accept an enterprise base URL.
	selfHosted bool
	// requiresBase providers have no public default.
	requiresBase bool
}

var table = map[Provider]entry{
	GitHub: {
		api:      "https://api.github.com",
		download: "https://github.com",
		ref:      RefQuery,
	},
	Bitbucket: {
		api:      "https://bitbucket.org/api",
		download: "https://bitbucket.org",
		ref:      RefPath,
	},
	GitLab: {
		api:        "https://gitlab.com/api/v4",
		download:   "https://gitlab.com",
		ref:        RefQuery,
		apiSuffix:  "/api/v4",
		selfHosted: true,
	},
	Gitea: {
		ref:          RefPath,
		apiSuffix:    "/api/v1",
		selfHosted:   true,
		requiresBase: true,
	},
}

// Resolve returns the endpoints for provider p.
//
// An empty branch resolves to [DefaultBranch]. Gitea requires
// enterpriseBaseURL and fails with [ErrMissingBaseURL] without it. GitLab
// uses enterpriseBaseURL when set (self-managed instances); GitHub and
// Bitbucket ignore it.
func Resolve(p Provider, branch, enterpriseBaseURL string) (Endpoints, error) {
	e, ok := table[p]
	if !ok {
		return Endpoints{}, errs.New(errs.ErrCodeConfig, "unknown provider %q", string(p))
	}

	branch = strings.TrimSpace(branch)
	if branch == "" {
		branch = DefaultBranch
	}

	ep := Endpoints{
		Provider:        p,
		APIBaseURL:      e.api,
		DownloadBaseURL: e.download,
		Branch:          branch,
		RefStyle:        e.ref,
	}

	base := strings.TrimRight(strings.TrimSpace(enterpriseBaseURL), "/")
	switch {
	case e.selfHosted && base != "":
		if err := errs.ValidateURL(base); err != nil {
			return Endpoints{}, errs.Wrap(errs.ErrCodeConfig, err, "%s enterprise base URL", p)
		}
		ep.APIBaseURL = base + e.apiSuffix
		ep.DownloadBaseURL = base
	case e.requiresBase:
		return Endpoints{}, errs.Wrap(errs.ErrCodeConfig, ErrMissingBaseURL, "resolve %s", p)
	}
	return ep, nil
}
