// Package gitlab implements the language pack adapter for GitLab, both
// gitlab.com and self-managed instances.
//
// The repository files API addresses a project by its URL-encoded path, so
// nested groups ("group/subgroup/project") work unchanged. The file comes
// back in a base64 envelope.
package gitlab

import (
	"net/url"

	"github.com/matzehuels/langpack/pkg/httputil"
	"github.com/matzehuels/langpack/pkg/integrations"
	"github.com/matzehuels/langpack/pkg/provider"
	"github.com/matzehuels/langpack/pkg/repouri"
)

// TokenHeader carries personal, project and group access tokens.
const TokenHeader = "PRIVATE-TOKEN"

// Adapter implements [integrations.Adapter] for GitLab.
type Adapter struct{}

// New returns the GitLab adapter.
func New() *Adapter { return &Adapter{} }

// Provider returns [provider.GitLab].
func (*Adapter) Provider() provider.Provider { return provider.GitLab }

// ManifestURL returns the repository files API URL of the manifest.
func (*Adapter) ManifestURL(ep provider.Endpoints, uri *repouri.URI) string {
	return ep.APIBaseURL + "/projects/" + url.PathEscape(uri.OwnerRepo) +
		"/repository/files/" + integrations.ManifestFile + "?ref=" + url.QueryEscape(ep.Branch)
}

// Authorize sets the PRIVATE-TOKEN header.
func (*Adapter) Authorize(opts *httputil.FetchOptions, token string) {
	if token == "" {
		return
	}
	if opts.Headers == nil {
		opts.Headers = make(map[string]string, 1)
	}
	opts.Headers[TokenHeader] = token
}

// DecodeManifest unwraps the files API envelope.
func (*Adapter) DecodeManifest(body []byte) (integrations.Manifest, error) {
	return integrations.DecodeContentEnvelope(body)
}

// PackageURL returns {base}/raw/{branch}{package}.
func (*Adapter) PackageURL(ep provider.Endpoints, uri *repouri.URI, entry integrations.ManifestEntry) (string, error) {
	return integrations.RawPackageURL(ep, uri, entry)
}

var _ integrations.Adapter = (*Adapter)(nil)
