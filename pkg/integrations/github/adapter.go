package github

import (
	"net/url"

	"golang.org/x/oauth2"

	"github.com/matzehuels/langpack/pkg/httputil"
	"github.com/matzehuels/langpack/pkg/integrations"
	"github.com/matzehuels/langpack/pkg/provider"
	"github.com/matzehuels/langpack/pkg/repouri"
)

// Adapter implements [integrations.Adapter] for GitHub.
type Adapter struct{}

// New returns the GitHub adapter.
func New() *Adapter { return &Adapter{} }

// Provider returns [provider.GitHub].
func (*Adapter) Provider() provider.Provider { return provider.GitHub }

// ManifestURL returns the contents API URL of the manifest at the
// configured branch.
func (*Adapter) ManifestURL(ep provider.Endpoints, uri *repouri.URI) string {
	return ep.APIBaseURL + "/repos/" + integrations.EscapePath(uri.OwnerRepo) +
		"/contents/" + integrations.ManifestFile + "?ref=" + url.QueryEscape(ep.Branch)
}

// Authorize sets a bearer token.
func (*Adapter) Authorize(opts *httputil.FetchOptions, token string) {
	if token == "" {
		return
	}
	opts.Token = &oauth2.Token{AccessToken: token}
}

// DecodeManifest unwraps the contents API envelope.
func (*Adapter) DecodeManifest(body []byte) (integrations.Manifest, error) {
	return integrations.DecodeContentEnvelope(body)
}

// PackageURL returns {base}/blob/{branch}{package}?raw=true.
func (*Adapter) PackageURL(ep provider.Endpoints, uri *repouri.URI, entry integrations.ManifestEntry) (string, error) {
	u, err := integrations.BlobPackageURL(ep, uri, entry)
	if err != nil {
		return "", err
	}
	return u + "?raw=true", nil
}

var _ integrations.Adapter = (*Adapter)(nil)
