package integrations

import (
	"context"
	"fmt"
	"net/http"

	errs "github.com/matzehuels/langpack/pkg/errors"
	"github.com/matzehuels/langpack/pkg/httputil"
	"github.com/matzehuels/langpack/pkg/provider"
	"github.com/matzehuels/langpack/pkg/repouri"
)

// Fetcher performs a single HTTP GET. [httputil.Fetcher] implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts httputil.FetchOptions) (*httputil.Response, error)
}

// Client provides shared manifest retrieval for all provider adapters.
// It applies per-provider tokens and default headers, issues exactly one
// request per call and classifies the result.
type Client struct {
	fetcher  Fetcher
	registry *Registry
	tokens   map[provider.Provider]string
	headers  map[string]string
}

// NewClient creates a Client. Tokens are looked up by provider; a missing
// token means unauthenticated requests. Headers are applied to every
// request and may be nil.
func NewClient(f Fetcher, reg *Registry, tokens map[provider.Provider]string, headers map[string]string) *Client {
	return &Client{
		fetcher:  f,
		registry: reg,
		tokens:   tokens,
		headers:  headers,
	}
}

// ManifestResponse is the outcome of a manifest request. StatusCode and
// Header are set whenever the provider answered, including on error.
type ManifestResponse struct {
	URL        string
	StatusCode int
	Header     http.Header
	Manifest   Manifest
}

// StatusError records a non-2xx provider answer.
type StatusError struct {
	Provider   provider.Provider
	StatusCode int
	Header     http.Header
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Adapter returns the adapter registered for p.
func (c *Client) Adapter(p provider.Provider) (Adapter, error) {
	a, ok := c.registry.Lookup(p)
	if !ok {
		return nil, errs.New(errs.ErrCodeConfig, "no adapter registered for provider %q", p)
	}
	return a, nil
}

// FetchManifest requests and decodes the manifest of the repository at uri.
//
// Errors are coded: NETWORK_ERROR for transport failures (nil response),
// PROVIDER_ERROR wrapping a [*StatusError] for non-2xx answers,
// NO_MANIFEST wrapping [ErrInvalidResponse], DECODE_ERROR for malformed
// content.
func (c *Client) FetchManifest(ctx context.Context, ep provider.Endpoints, uri *repouri.URI) (*ManifestResponse, error) {
	a, err := c.Adapter(ep.Provider)
	if err != nil {
		return nil, err
	}

	url := a.ManifestURL(ep, uri)
	opts := httputil.FetchOptions{Headers: make(map[string]string, len(c.headers)+1)}
	for k, v := range c.headers {
		opts.Headers[k] = v
	}
	a.Authorize(&opts, c.tokens[ep.Provider])

	resp, err := c.fetcher.Fetch(ctx, url, opts)
	if err != nil {
		return nil, err
	}

	out := &ManifestResponse{
		URL:        url,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}
	if err := checkStatus(ep.Provider, resp); err != nil {
		return out, err
	}

	m, err := a.DecodeManifest(resp.Body)
	if err != nil {
		return out, err
	}
	out.Manifest = m
	return out, nil
}

// PackageURL builds the download URL for entry with p's adapter.
func (c *Client) PackageURL(ep provider.Endpoints, uri *repouri.URI, entry ManifestEntry) (string, error) {
	a, err := c.Adapter(ep.Provider)
	if err != nil {
		return "", err
	}
	return a.PackageURL(ep, uri, entry)
}

func checkStatus(p provider.Provider, resp *httputil.Response) error {
	if resp.OK() {
		return nil
	}
	se := &StatusError{
		Provider:   p,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Message:    ErrorMessage(resp.Body),
	}
	return errs.Wrap(errs.ErrCodeProvider, se, "%s answered %d", p, resp.StatusCode)
}
