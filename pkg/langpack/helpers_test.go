package langpack

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/langpack/pkg/cache"
	errs "github.com/matzehuels/langpack/pkg/errors"
	"github.com/matzehuels/langpack/pkg/integrations"
	"github.com/matzehuels/langpack/pkg/provider"
	"github.com/matzehuels/langpack/pkg/repouri"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeClient answers every manifest request with the configured response.
type fakeClient struct {
	mu    sync.Mutex
	calls int
	resp  *integrations.ManifestResponse
	err   error
	block chan struct{}
}

func (f *fakeClient) FetchManifest(ctx context.Context, ep provider.Endpoints, uri *repouri.URI) (*integrations.ManifestResponse, error) {
	f.mu.Lock()
	f.calls++
	resp, err, block := f.resp, f.err, f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return resp, err
}

func (f *fakeClient) PackageURL(ep provider.Endpoints, uri *repouri.URI, entry integrations.ManifestEntry) (string, error) {
	return integrations.RawPackageURL(ep, uri, entry)
}

func (f *fakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeClient) set(resp *integrations.ManifestResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resp, f.err = resp, err
}

func okResponse() *integrations.ManifestResponse {
	return &integrations.ManifestResponse{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Manifest: integrations.Manifest{
			"de_DE": {Language: "de_DE", Package: "/languages/de_DE.zip", Updated: "2024-05-01 10:00:00"},
			"fr_FR": {Language: "fr_FR", Package: "languages/fr_FR.zip", Updated: "2024-04-01 10:00:00"},
		},
	}
}

func statusResponse(code int, header http.Header) (*integrations.ManifestResponse, error) {
	se := &integrations.StatusError{Provider: provider.GitLab, StatusCode: code, Header: header, Message: "rate limit exceeded"}
	return &integrations.ManifestResponse{StatusCode: code, Header: header},
		errs.Wrap(errs.ErrCodeProvider, se, "gitlab answered %d", code)
}

func testConfig(slug string) *RepositoryConfig {
	return &RepositoryConfig{
		Provider:     provider.GitLab,
		Type:         TypePlugin,
		Slug:         slug,
		LocalVersion: "1.2.3",
		LanguagesURI: "https://gitlab.com/acme/" + slug + "-translations",
	}
}

func newTestResolver(client Client, clock *testClock) *Resolver {
	r := NewResolver(cache.NewMemoryCache(0), nil, client, log.New(io.Discard))
	r.Now = clock.Now
	r.Jitter = func(time.Duration) time.Duration { return 0 }
	return r
}
