package integrations_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	errs "github.com/matzehuels/langpack/pkg/errors"
	"github.com/matzehuels/langpack/pkg/httputil"
	"github.com/matzehuels/langpack/pkg/integrations"
	"github.com/matzehuels/langpack/pkg/integrations/bitbucket"
	"github.com/matzehuels/langpack/pkg/integrations/gitea"
	"github.com/matzehuels/langpack/pkg/integrations/github"
	"github.com/matzehuels/langpack/pkg/integrations/gitlab"
	"github.com/matzehuels/langpack/pkg/provider"
	"github.com/matzehuels/langpack/pkg/repouri"
)

const manifestJSON = `{"de_DE":{"package":"/languages/de_DE.zip","updated":"2024-03-01 10:00:00"}}`

func envelope(s string) string {
	return `{"name":"language-pack.json","content":"` + base64.StdEncoding.EncodeToString([]byte(s)) + `","encoding":"base64"}`
}

func newClient(tokens map[provider.Provider]string) *integrations.Client {
	reg := integrations.NewRegistry(github.New(), bitbucket.New(), gitlab.New(), gitea.New())
	return integrations.NewClient(httputil.NewFetcher(), reg, tokens, map[string]string{"X-Test": "1"})
}

func mustParse(t *testing.T, raw string) *repouri.URI {
	t.Helper()
	u, err := repouri.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	return u
}

func TestFetchManifestPerProvider(t *testing.T) {
	tests := []struct {
		provider  provider.Provider
		path      string
		ref       string
		body      string
		token     string
		authKey   string
		authValue string
	}{
		{provider.GitHub, "/repos/acme/translations/contents/language-pack.json", "dev", envelope(manifestJSON), "ghp", "Authorization", "Bearer ghp"},
		{provider.Bitbucket, "/2.0/repositories/acme/translations/src/dev/language-pack.json", "", manifestJSON, "bb", "Authorization", "Bearer bb"},
		{provider.GitLab, "/projects/acme%2Ftranslations/repository/files/language-pack.json", "dev", envelope(manifestJSON), "glpat", "PRIVATE-TOKEN", "glpat"},
		{provider.Gitea, "/repos/acme/translations/raw/dev/language-pack.json", "", manifestJSON, "gt", "Authorization", "token gt"},
		{provider.Gitea, "/repos/acme/translations/raw/dev/language-pack.json", "", envelope(manifestJSON), "", "Authorization", ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				if r.URL.EscapedPath() != tt.path {
					t.Errorf("path = %q, want %q", r.URL.EscapedPath(), tt.path)
				}
				if tt.ref != "" && r.URL.Query().Get("ref") != tt.ref {
					t.Errorf("ref = %q, want %q", r.URL.Query().Get("ref"), tt.ref)
				}
				if got := r.Header.Get(tt.authKey); got != tt.authValue {
					t.Errorf("%s = %q, want %q", tt.authKey, got, tt.authValue)
				}
				if r.Header.Get("X-Test") != "1" {
					t.Error("default header missing")
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			ep := provider.Endpoints{Provider: tt.provider, APIBaseURL: server.URL, DownloadBaseURL: "https://example.com", Branch: "dev"}
			c := newClient(map[provider.Provider]string{tt.provider: tt.token})

			resp, err := c.FetchManifest(context.Background(), ep, mustParse(t, "acme/translations"))
			if err != nil {
				t.Fatalf("FetchManifest error: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Errorf("StatusCode = %d", resp.StatusCode)
			}
			if resp.Manifest["de_DE"].Package != "/languages/de_DE.zip" {
				t.Errorf("manifest = %+v", resp.Manifest)
			}
			if hits.Load() != 1 {
				t.Errorf("requests = %d, want 1", hits.Load())
			}
		})
	}
}

func TestFetchManifestStatusError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	}))
	defer server.Close()

	ep := provider.Endpoints{Provider: provider.GitHub, APIBaseURL: server.URL, Branch: "master"}
	resp, err := newClient(nil).FetchManifest(context.Background(), ep, mustParse(t, "acme/translations"))
	if !errs.Is(err, errs.ErrCodeProvider) {
		t.Fatalf("expected PROVIDER_ERROR, got %v", err)
	}
	var se *integrations.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %T", err)
	}
	if se.StatusCode != http.StatusForbidden || se.Message != "API rate limit exceeded" {
		t.Errorf("StatusError = %+v", se)
	}
	if resp == nil || resp.Header.Get("X-RateLimit-Reset") != "1700000000" {
		t.Errorf("response headers not returned: %+v", resp)
	}
	if hits.Load() != 1 {
		t.Errorf("requests = %d, want exactly 1", hits.Load())
	}
}

func TestFetchManifestInvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	ep := provider.Endpoints{Provider: provider.Bitbucket, APIBaseURL: server.URL, Branch: "master"}
	resp, err := newClient(nil).FetchManifest(context.Background(), ep, mustParse(t, "acme/translations"))
	if !errors.Is(err, integrations.ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if resp == nil || resp.StatusCode != http.StatusOK {
		t.Errorf("resp = %+v", resp)
	}
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string, httputil.FetchOptions) (*httputil.Response, error) {
	return nil, errs.New(errs.ErrCodeNetwork, "connection refused")
}

func TestFetchManifestNetworkError(t *testing.T) {
	c := integrations.NewClient(failingFetcher{}, integrations.NewRegistry(github.New()), nil, nil)
	ep := provider.Endpoints{Provider: provider.GitHub, APIBaseURL: "https://api.github.com", Branch: "master"}
	resp, err := c.FetchManifest(context.Background(), ep, mustParse(t, "acme/translations"))
	if !errs.Is(err, errs.ErrCodeNetwork) {
		t.Fatalf("expected NETWORK_ERROR, got %v", err)
	}
	if resp != nil {
		t.Errorf("resp = %+v, want nil", resp)
	}
}

func TestFetchManifestUnknownProvider(t *testing.T) {
	c := integrations.NewClient(failingFetcher{}, integrations.NewRegistry(), nil, nil)
	ep := provider.Endpoints{Provider: provider.GitHub}
	_, err := c.FetchManifest(context.Background(), ep, mustParse(t, "acme/translations"))
	if !errs.Is(err, errs.ErrCodeConfig) {
		t.Fatalf("expected CONFIG, got %v", err)
	}
}

func TestClientPackageURL(t *testing.T) {
	c := newClient(nil)
	entry := integrations.ManifestEntry{Package: "languages/de_DE.zip"}

	tests := []struct {
		provider provider.Provider
		uri      string
		want     string
	}{
		{provider.GitHub, "https://github.com/acme/translations", "https://github.com/acme/translations/blob/master/languages/de_DE.zip?raw=true"},
		{provider.Bitbucket, "acme/translations", "https://bitbucket.org/acme/translations/raw/master/languages/de_DE.zip"},
		{provider.GitLab, "https://gitlab.com/acme/translations.git", "https://gitlab.com/acme/translations/raw/master/languages/de_DE.zip"},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			ep, err := provider.Resolve(tt.provider, "", "")
			if err != nil {
				t.Fatal(err)
			}
			got, err := c.PackageURL(ep, mustParse(t, tt.uri), entry)
			if err != nil {
				t.Fatalf("PackageURL error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegistryProviders(t *testing.T) {
	reg := integrations.NewRegistry(gitlab.New(), github.New())
	got := reg.Providers()
	if len(got) != 2 || got[0] != provider.GitHub || got[1] != provider.GitLab {
		t.Errorf("Providers() = %v", got)
	}
	if _, ok := reg.Lookup(provider.Gitea); ok {
		t.Error("unexpected gitea adapter")
	}
}
