// Package httputil provides the HTTP fetcher used to talk to git hosting
// provider APIs.
//
// # Overview
//
// [Fetcher] issues exactly one GET per call. It never retries: a failing
// provider is handled by the resolver's error cache, so retries happen on
// the next scheduled resolution instead of inside a request.
//
// Every request carries the langpack User-Agent (see
// [buildinfo.UserAgent]) and is sent over a transport that always verifies
// TLS certificates. An optional [oauth2.Token] is applied as the
// Authorization header; requests without a token are sent unauthenticated.
//
// # Responses
//
// [Fetcher.Fetch] returns the status, headers and body for any HTTP status.
// Interpreting the status is the caller's job. Only transport failures
// (DNS, TLS, timeouts, oversized bodies) are returned as errors, coded
// NETWORK_ERROR.
//
// Usage:
//
//	f := httputil.NewFetcher(httputil.WithTimeout(10 * time.Second))
//	resp, err := f.Fetch(ctx, url, httputil.FetchOptions{
//	    Token: &oauth2.Token{AccessToken: token},
//	})
//
// [buildinfo.UserAgent]: github.com/matzehuels/langpack/pkg/buildinfo.UserAgent
package httputil
