// Package repouri parses the "languages" URI a plugin or theme declares for
// its translation repository.
//
// A URI such as https://github.com/acme/widgets.git decomposes into a host,
// an owner ("acme") and a repository name ("widgets"). The owner is the full
// directory part of the path, so GitLab subgroups
// (https://gitlab.com/group/sub/project) keep "group/sub" as the owner.
//
// Bare references without a scheme ("acme/widgets") parse too. They carry no
// [URI.CanonicalURI]; callers must supply a provider download base when
// building package URLs for them.
//
// Every field is passed through [Sanitize] so parsed values can be embedded
// in cache keys and file names. Sanitizing is not validation.
package repouri

import (
	"net/url"
	"strings"
	"unicode"

	errs "github.com/matzehuels/langpack/pkg/errors"
)

// ErrMissingOwnerOrRepo is returned when the URI path has fewer than two
// non-empty segments.
var ErrMissingOwnerOrRepo = errs.New(errs.ErrCodeInvalidURI, "missing owner or repository")

// URI is a parsed repository URI.
type URI struct {
	Scheme       string // "https", or empty for bare references
	Host         string // "github.com", or empty for bare references
	Owner        string // Directory part of the path
	Repo         string // Leaf of the path without ".git"
	OwnerRepo    string // Owner + "/" + Repo
	BaseURI      string // Scheme://Host, empty for bare references
	CanonicalURI string // Scheme://Host/Owner/Repo, empty for bare references
}

// IsBare reports whether the URI is a bare owner/repo reference.
func (u *URI) IsBare() bool {
	return u.CanonicalURI == ""
}

// String returns the canonical URI, or the owner/repo path for bare
// references.
func (u *URI) String() string {
	if u.IsBare() {
		return u.OwnerRepo
	}
	return u.CanonicalURI
}

var gitURLReplacer = strings.NewReplacer(
	"git://", "https://",
	"ssh://git@", "https://",
)

// normalize converts git@, git:// and git+ forms to an HTTPS URL.
func normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	if rest, ok := strings.CutPrefix(s, "git@"); ok {
		if host, path, found := strings.Cut(rest, ":"); found {
			s = "https://" + host + "/" + path
		}
	}
	return gitURLReplacer.Replace(s)
}

// Parse decomposes raw into a [URI].
//
// The path is trimmed of surrounding slashes and its last segment loses an
// exact ".git" suffix. Errors carry the INVALID_URI code; a path with fewer
// than two segments wraps [ErrMissingOwnerOrRepo].
func Parse(raw string) (*URI, error) {
	s := normalize(raw)
	if s == "" {
		return nil, errs.Wrap(errs.ErrCodeInvalidURI, ErrMissingOwnerOrRepo, "empty repository URI")
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidURI, err, "parse %q", raw)
	}
	if u.Scheme != "" && u.Host == "" {
		// "host:owner/repo" style input parses as an opaque URI.
		return nil, errs.New(errs.ErrCodeInvalidURI, "parse %q: missing host", raw)
	}

	var segments []string
	for _, seg := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) < 2 {
		return nil, errs.Wrap(errs.ErrCodeInvalidURI, ErrMissingOwnerOrRepo, "parse %q", raw)
	}

	repo := Sanitize(strings.TrimSuffix(segments[len(segments)-1], ".git"))
	owner := Sanitize(strings.Join(segments[:len(segments)-1], "/"))
	if repo == "" || owner == "" {
		return nil, errs.Wrap(errs.ErrCodeInvalidURI, ErrMissingOwnerOrRepo, "parse %q", raw)
	}

	p := &URI{
		Scheme:    Sanitize(strings.ToLower(u.Scheme)),
		Host:      Sanitize(strings.ToLower(u.Host)),
		Owner:     owner,
		Repo:      repo,
		OwnerRepo: owner + "/" + repo,
	}
	if p.Scheme != "" {
		p.BaseURI = p.Scheme + "://" + p.Host
		p.CanonicalURI = p.BaseURI + "/" + p.OwnerRepo
	}
	return p, nil
}

// unsafeChars are dropped by Sanitize.
const unsafeChars = "<>\"'`{}|\\^"

// Sanitize trims whitespace and removes control characters, whitespace and
// characters that are unsafe in file names or cache keys.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.IsSpace(r) || strings.ContainsRune(unsafeChars, r) {
			return -1
		}
		return r
	}, s)
}
