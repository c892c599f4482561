package httputil

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/matzehuels/langpack/pkg/buildinfo"
	errs "github.com/matzehuels/langpack/pkg/errors"
	"github.com/matzehuels/langpack/pkg/observability"
)

const (
	// DefaultTimeout bounds a single provider request.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize int64 = 5 << 20
)

// FetchOptions decorates a single request.
type FetchOptions struct {
	// Headers are added to the request. They override the defaults.
	Headers map[string]string

	// Token, when non-nil, is applied as the Authorization header.
	// TokenType selects the scheme: "Bearer" (default) or "token".
	Token *oauth2.Token
}

// Response is the raw outcome of a request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Fetcher performs provider API requests.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// Option configures a [Fetcher].
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client.
// The caller is responsible for its TLS configuration.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize overrides [DefaultMaxBodySize].
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// NewFetcher creates a Fetcher with certificate verification enforced.
func NewFetcher(opts ...Option) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: false,
	}

	f := &Fetcher{
		client:    &http.Client{Timeout: DefaultTimeout, Transport: transport},
		userAgent: buildinfo.UserAgent(),
		maxBody:   DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a single GET request against url.
func (f *Fetcher) Fetch(ctx context.Context, url string, opts FetchOptions) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "create request")
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")
	if opts.Token != nil && opts.Token.AccessToken != "" {
		opts.Token.SetAuthHeader(req)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		// The client's error repeats the full URL, query included.
		if inner := errors.Unwrap(err); inner != nil {
			err = inner
		}
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "GET %s", redact(req))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "read response from %s", redact(req))
	}
	if int64(len(body)) > f.maxBody {
		err := errs.New(errs.ErrCodeNetwork, "response from %s exceeds %d bytes", redact(req), f.maxBody)
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}

	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// redact returns the request URL without query or user info.
func redact(req *http.Request) string {
	u := *req.URL
	u.User = nil
	u.RawQuery = ""
	return u.String()
}
