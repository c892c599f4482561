package provider

import (
	"errors"
	"testing"

	errs "github.com/matzehuels/langpack/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Provider
		wantErr bool
	}{
		{"github", GitHub, false},
		{"GitHub", GitHub, false},
		{" gitlab ", GitLab, false},
		{"Bitbucket", Bitbucket, false},
		{"GITEA", Gitea, false},
		{"sourceforge", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errs.Is(err, errs.ErrCodeConfig) {
				t.Errorf("Parse(%q) code = %v, want CONFIG", tt.input, errs.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		provider     Provider
		branch       string
		base         string
		wantAPI      string
		wantDownload string
		wantBranch   string
		wantRef      RefStyle
	}{
		{"github", GitHub, "main", "", "https://api.github.com", "https://github.com", "main", RefQuery},
		{"github ignores base", GitHub, "", "https://ghe.example.com", "https://api.github.com", "https://github.com", "master", RefQuery},
		{"bitbucket", Bitbucket, "", "", "https://bitbucket.org/api", "https://bitbucket.org", "master", RefPath},
		{"gitlab", GitLab, "develop", "", "https://gitlab.com/api/v4", "https://gitlab.com", "develop", RefQuery},
		{"gitlab self-managed", GitLab, "", "https://gitlab.example.com/", "https://gitlab.example.com/api/v4", "https://gitlab.example.com", "master", RefQuery},
		{"gitea", Gitea, "main", "https://git.example.com", "https://git.example.com/api/v1", "https://git.example.com", "main", RefPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, err := Resolve(tt.provider, tt.branch, tt.base)
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}
			if ep.Provider != tt.provider {
				t.Errorf("Provider = %q, want %q", ep.Provider, tt.provider)
			}
			if ep.APIBaseURL != tt.wantAPI {
				t.Errorf("APIBaseURL = %q, want %q", ep.APIBaseURL, tt.wantAPI)
			}
			if ep.DownloadBaseURL != tt.wantDownload {
				t.Errorf("DownloadBaseURL = %q, want %q", ep.DownloadBaseURL, tt.wantDownload)
			}
			if ep.Branch != tt.wantBranch {
				t.Errorf("Branch = %q, want %q", ep.Branch, tt.wantBranch)
			}
			if ep.RefStyle != tt.wantRef {
				t.Errorf("RefStyle = %v, want %v", ep.RefStyle, tt.wantRef)
			}
		})
	}
}

func TestResolveGiteaWithoutBase(t *testing.T) {
	_, err := Resolve(Gitea, "main", "")
	if err == nil {
		t.Fatal("Resolve(gitea) without base URL should fail")
	}
	if !errors.Is(err, ErrMissingBaseURL) {
		t.Errorf("error = %v, want ErrMissingBaseURL", err)
	}
	if !errs.Is(err, errs.ErrCodeConfig) {
		t.Errorf("code = %v, want CONFIG", errs.GetCode(err))
	}
}

func TestResolveInvalid(t *testing.T) {
	if _, err := Resolve("svn", "", ""); !errs.Is(err, errs.ErrCodeConfig) {
		t.Errorf("unknown provider error = %v, want CONFIG", err)
	}
	if _, err := Resolve(Gitea, "", "git.example.com"); !errs.Is(err, errs.ErrCodeConfig) {
		t.Errorf("schemeless base error = %v, want CONFIG", err)
	}
}

func TestTitle(t *testing.T) {
	for _, p := range All() {
		if p.Title() == "" || p.Title() == string(p) {
			t.Errorf("Title(%q) = %q", p, p.Title())
		}
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if RefPath.String() != "path" || RefQuery.String() != "query" {
		t.Error("unexpected RefStyle strings")
	}
}
