// Package gitea implements the language pack adapter for self-hosted Gitea
// (and Forgejo) instances.
//
// Gitea has no public default host; endpoints always derive from the
// configured enterprise base URL. The raw endpoint returns the file as is,
// while some proxies and older versions answer with the contents API
// envelope. Both are accepted.
package gitea

import (
	"golang.org/x/oauth2"

	"github.com/matzehuels/langpack/pkg/httputil"
	"github.com/matzehuels/langpack/pkg/integrations"
	"github.com/matzehuels/langpack/pkg/provider"
	"github.com/matzehuels/langpack/pkg/repouri"
)

// tokenType makes oauth2 emit "Authorization: token <t>".
const tokenType = "token"

// Adapter implements [integrations.Adapter] for Gitea.
type Adapter struct{}

// New returns the Gitea adapter.
func New() *Adapter { return &Adapter{} }

// Provider returns [provider.Gitea].
func (*Adapter) Provider() provider.Provider { return provider.Gitea }

// ManifestURL returns {api}/repos/{owner}/{repo}/raw/{branch}/language-pack.json.
func (*Adapter) ManifestURL(ep provider.Endpoints, uri *repouri.URI) string {
	return ep.APIBaseURL + "/repos/" + integrations.EscapePath(uri.OwnerRepo) +
		"/raw/" + integrations.EscapePath(ep.Branch) + "/" + integrations.ManifestFile
}

// Authorize sets "Authorization: token".
func (*Adapter) Authorize(opts *httputil.FetchOptions, token string) {
	if token == "" {
		return
	}
	opts.Token = &oauth2.Token{AccessToken: token, TokenType: tokenType}
}

// DecodeManifest accepts a contents envelope or the raw file.
func (*Adapter) DecodeManifest(body []byte) (integrations.Manifest, error) {
	if integrations.HasContentField(body) {
		return integrations.DecodeContentEnvelope(body)
	}
	return integrations.ParseManifest(body)
}

// PackageURL returns {base}/raw/{branch}{package}.
func (*Adapter) PackageURL(ep provider.Endpoints, uri *repouri.URI, entry integrations.ManifestEntry) (string, error) {
	return integrations.RawPackageURL(ep, uri, entry)
}

var _ integrations.Adapter = (*Adapter)(nil)
