// Package bitbucket implements the language pack adapter for Bitbucket
// Cloud. The manifest is served raw by the 2.0 src endpoint.
package bitbucket

import (
	"golang.org/x/oauth2"

	"github.com/matzehuels/langpack/pkg/httputil"
	"github.com/matzehuels/langpack/pkg/integrations"
	"github.com/matzehuels/langpack/pkg/provider"
	"github.com/matzehuels/langpack/pkg/repouri"
)

// Adapter implements [integrations.Adapter] for Bitbucket.
type Adapter struct{}

// New returns the Bitbucket adapter.
func New() *Adapter { return &Adapter{} }

// Provider returns [provider.Bitbucket].
func (*Adapter) Provider() provider.Provider { return provider.Bitbucket }

// ManifestURL returns {api}/2.0/repositories/{owner}/{repo}/src/{branch}/language-pack.json.
func (*Adapter) ManifestURL(ep provider.Endpoints, uri *repouri.URI) string {
	return ep.APIBaseURL + "/2.0/repositories/" + integrations.EscapePath(uri.OwnerRepo) +
		"/src/" + integrations.EscapePath(ep.Branch) + "/" + integrations.ManifestFile
}

// Authorize sets a bearer token (repository or workspace access token).
func (*Adapter) Authorize(opts *httputil.FetchOptions, token string) {
	if token == "" {
		return
	}
	opts.Token = &oauth2.Token{AccessToken: token}
}

// DecodeManifest parses the raw file body.
func (*Adapter) DecodeManifest(body []byte) (integrations.Manifest, error) {
	return integrations.ParseManifest(body)
}

// PackageURL returns {base}/raw/{branch}{package}.
func (*Adapter) PackageURL(ep provider.Endpoints, uri *repouri.URI, entry integrations.ManifestEntry) (string, error) {
	return integrations.RawPackageURL(ep, uri, entry)
}

var _ integrations.Adapter = (*Adapter)(nil)
