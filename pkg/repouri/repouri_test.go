package repouri

import (
	"errors"
	"testing"

	errs "github.com/matzehuels/langpack/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantOwner     string
		wantRepo      string
		wantCanonical string
		wantBase      string
	}{
		{
			name:          "github with .git",
			input:         "https://github.com/acme/widgets.git",
			wantOwner:     "acme",
			wantRepo:      "widgets",
			wantCanonical: "https://github.com/acme/widgets",
			wantBase:      "https://github.com",
		},
		{
			name:          "trailing slash",
			input:         "https://bitbucket.org/acme/widgets/",
			wantOwner:     "acme",
			wantRepo:      "widgets",
			wantCanonical: "https://bitbucket.org/acme/widgets",
			wantBase:      "https://bitbucket.org",
		},
		{
			name:          "gitlab subgroup",
			input:         "https://gitlab.com/group/sub/project",
			wantOwner:     "group/sub",
			wantRepo:      "project",
			wantCanonical: "https://gitlab.com/group/sub/project",
			wantBase:      "https://gitlab.com",
		},
		{
			name:          "self-hosted with port",
			input:         "https://git.example.com:3000/team/lang-packs",
			wantOwner:     "team",
			wantRepo:      "lang-packs",
			wantCanonical: "https://git.example.com:3000/team/lang-packs",
			wantBase:      "https://git.example.com:3000",
		},
		{
			name:          "ssh form",
			input:         "git@github.com:acme/widgets.git",
			wantOwner:     "acme",
			wantRepo:      "widgets",
			wantCanonical: "https://github.com/acme/widgets",
			wantBase:      "https://github.com",
		},
		{
			name:          "surrounding whitespace",
			input:         "  https://github.com/acme/widgets  ",
			wantOwner:     "acme",
			wantRepo:      "widgets",
			wantCanonical: "https://github.com/acme/widgets",
			wantBase:      "https://github.com",
		},
		{
			name:          ".git only stripped as suffix",
			input:         "https://github.com/acme/my.gitlab-tools",
			wantOwner:     "acme",
			wantRepo:      "my.gitlab-tools",
			wantCanonical: "https://github.com/acme/my.gitlab-tools",
			wantBase:      "https://github.com",
		},
		{
			name:      "bare reference",
			input:     "acme/widgets",
			wantOwner: "acme",
			wantRepo:  "widgets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if u.Owner != tt.wantOwner {
				t.Errorf("Owner = %q, want %q", u.Owner, tt.wantOwner)
			}
			if u.Repo != tt.wantRepo {
				t.Errorf("Repo = %q, want %q", u.Repo, tt.wantRepo)
			}
			if u.OwnerRepo != tt.wantOwner+"/"+tt.wantRepo {
				t.Errorf("OwnerRepo = %q", u.OwnerRepo)
			}
			if u.CanonicalURI != tt.wantCanonical {
				t.Errorf("CanonicalURI = %q, want %q", u.CanonicalURI, tt.wantCanonical)
			}
			if u.BaseURI != tt.wantBase {
				t.Errorf("BaseURI = %q, want %q", u.BaseURI, tt.wantBase)
			}
			if u.IsBare() != (tt.wantCanonical == "") {
				t.Errorf("IsBare() = %v", u.IsBare())
			}
		})
	}
}

func TestParseMissingOwnerOrRepo(t *testing.T) {
	inputs := []string{
		"https://github.com/acme",
		"https://github.com/acme/",
		"https://github.com/",
		"https://github.com/acme/.git",
		"widgets",
		"",
		"   ",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			if err == nil {
				t.Fatalf("Parse(%q) should fail", input)
			}
			if !errors.Is(err, ErrMissingOwnerOrRepo) {
				t.Errorf("Parse(%q) error = %v, want ErrMissingOwnerOrRepo", input, err)
			}
			if !errs.Is(err, errs.ErrCodeInvalidURI) {
				t.Errorf("Parse(%q) code = %v, want INVALID_URI", input, errs.GetCode(err))
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, input := range []string{"https://git hub.com/a/b", "http://[::1/a/b"} {
		if _, err := Parse(input); !errs.Is(err, errs.ErrCodeInvalidURI) {
			t.Errorf("Parse(%q) error = %v, want INVALID_URI", input, err)
		}
	}
}

func TestParseSanitizes(t *testing.T) {
	u, err := Parse("https://github.com/ac<me>/wid\"gets")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if u.Owner != "acme" || u.Repo != "widgets" {
		t.Errorf("got owner=%q repo=%q, want sanitized acme/widgets", u.Owner, u.Repo)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  widgets ", "widgets"},
		{"wid\x00gets", "widgets"},
		{"a b\tc", "abc"},
		{"a<b>c|d", "abcd"},
		{"https://github.com/acme/widgets", "https://github.com/acme/widgets"},
		{"`{x}`^\\", "x"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	u, _ := Parse("https://github.com/acme/widgets")
	if u.String() != "https://github.com/acme/widgets" {
		t.Errorf("String() = %q", u.String())
	}
	bare, _ := Parse("acme/widgets")
	if bare.String() != "acme/widgets" {
		t.Errorf("String() = %q", bare.String())
	}
}
