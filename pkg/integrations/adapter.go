package integrations

import (
	"sort"

	"github.com/matzehuels/langpack/pkg/httputil"
	"github.com/matzehuels/langpack/pkg/provider"
	"github.com/matzehuels/langpack/pkg/repouri"
)

// ManifestFile is the file every translation repository publishes.
const ManifestFile = "language-pack.json"

// ManifestEntry is one locale's package declaration.
type ManifestEntry struct {
	Language string `json:"language,omitempty"` // Locale code, defaults to the manifest key
	Package  string `json:"package"`            // Path relative to the repository root
	Updated  string `json:"updated"`            // Last update timestamp
}

// Manifest maps locale codes to their entries.
type Manifest map[string]ManifestEntry

// Locales returns the manifest's locale codes in sorted order.
func (m Manifest) Locales() []string {
	locales := make([]string, 0, len(m))
	for l := range m {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	return locales
}

// Adapter encapsulates one provider's manifest conventions.
type Adapter interface {
	// Provider returns the provider this adapter serves.
	Provider() provider.Provider

	// ManifestURL returns the API URL of the repository's manifest.
	ManifestURL(ep provider.Endpoints, uri *repouri.URI) string

	// Authorize applies token to the request options. An empty token leaves
	// the request unauthenticated.
	Authorize(opts *httputil.FetchOptions, token string)

	// DecodeManifest unwraps and parses a successful API response.
	DecodeManifest(body []byte) (Manifest, error)

	// PackageURL returns the absolute download URL for entry.
	PackageURL(ep provider.Endpoints, uri *repouri.URI, entry ManifestEntry) (string, error)
}

// Registry maps providers to adapters.
type Registry struct {
	adapters map[provider.Provider]Adapter
}

// NewRegistry creates a registry holding adapters. A later adapter for the
// same provider replaces an earlier one.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[provider.Provider]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for a.Provider().
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Provider()] = a
}

// Lookup returns the adapter for p.
func (r *Registry) Lookup(p provider.Provider) (Adapter, bool) {
	a, ok := r.adapters[p]
	return a, ok
}

// Providers returns the registered providers in sorted order.
func (r *Registry) Providers() []provider.Provider {
	out := make([]provider.Provider, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
