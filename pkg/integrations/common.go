package integrations

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/langpack/pkg/errors"
	"github.com/matzehuels/langpack/pkg/provider"
	"github.com/matzehuels/langpack/pkg/repouri"
)

// ErrInvalidResponse is returned when a provider answered successfully but
// the body holds no usable manifest: it is empty, carries an error envelope,
// or declares no locales.
var ErrInvalidResponse = errs.New(errs.ErrCodeNoManifest, "no usable language pack manifest")

func invalid(format string, args ...any) error {
	return errs.Wrap(errs.ErrCodeNoManifest, ErrInvalidResponse, format, args...)
}

// CheckBody rejects empty bodies and the error envelopes providers return
// with a 2xx status: a top-level "message" field ("Not Found", "Bad
// credentials") or Bitbucket's {"type": "error"}.
func CheckBody(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return invalid("empty response")
	}
	if trimmed[0] != '{' {
		return nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil
	}
	if _, ok := probe["message"]; ok {
		return invalid("provider error: %s", ErrorMessage(trimmed))
	}
	if t, ok := probe["type"]; ok && bytes.Equal(bytes.TrimSpace(t), []byte(`"error"`)) {
		return invalid("provider error: %s", ErrorMessage(trimmed))
	}
	return nil
}

// ErrorMessage extracts a human-readable message from a provider error
// body. It understands the {"message": ...} envelope and Bitbucket's
// {"type": "error", "error": {"message": ...}}.
func ErrorMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return truncate(env.Message)
		}
		if env.Error.Message != "" {
			return truncate(env.Error.Message)
		}
	}
	return truncate(strings.TrimSpace(string(body)))
}

// truncate cuts s to at most maxMessage bytes on a rune boundary.
func truncate(s string) string {
	const maxMessage = 200
	if len(s) <= maxMessage {
		return s
	}
	cut := maxMessage
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// contentEnvelope is the JSON wrapper GitHub, GitLab and Gitea put around
// file contents.
type contentEnvelope struct {
	Content  *string `json:"content"`
	Encoding string  `json:"encoding"`
}

// DecodeContentEnvelope unwraps a base64 "content" envelope and parses the
// manifest inside it.
func DecodeContentEnvelope(body []byte) (Manifest, error) {
	if err := CheckBody(body); err != nil {
		return nil, err
	}

	var env contentEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errs.Wrap(errs.ErrCodeDecode, err, "decode content envelope")
	}
	if env.Content == nil {
		return nil, invalid("response has no content field")
	}

	data, err := DecodeBase64(*env.Content, env.Encoding)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// DecodeBase64 decodes API file content. Line breaks inserted by the
// provider are ignored. An empty encoding is treated as base64.
func DecodeBase64(content, encoding string) ([]byte, error) {
	if encoding != "" && !strings.EqualFold(encoding, "base64") {
		return nil, errs.New(errs.ErrCodeDecode, "unsupported content encoding %q", encoding)
	}
	clean := strings.NewReplacer("\n", "", "\r", "").Replace(content)
	data, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDecode, err, "decode base64 content")
	}
	return data, nil
}

// HasContentField reports whether body is a JSON object with a "content"
// key.
func HasContentField(body []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	_, ok := probe["content"]
	return ok
}

// ParseManifest parses a raw language-pack.json document.
//
// Entries whose value is not an object, whose locale code is invalid, or
// which name no package are skipped. A manifest left with no entries is
// rejected with [ErrInvalidResponse].
func ParseManifest(data []byte) (Manifest, error) {
	if err := CheckBody(data); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.ErrCodeDecode, err, "parse %s", ManifestFile)
	}

	m := make(Manifest, len(raw))
	for key, value := range raw {
		var entry ManifestEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			log.Debug("skipping manifest entry", "key", key, "reason", "not an object")
			continue
		}
		locale := strings.TrimSpace(entry.Language)
		if locale == "" {
			locale = strings.TrimSpace(key)
		}
		if err := errs.ValidateLocale(locale); err != nil {
			log.Debug("skipping manifest entry", "key", key, "reason", errs.Detail(err))
			continue
		}
		if strings.TrimSpace(entry.Package) == "" {
			log.Debug("skipping manifest entry", "key", key, "reason", "no package")
			continue
		}
		entry.Language = locale
		entry.Package = strings.TrimSpace(entry.Package)
		entry.Updated = strings.TrimSpace(entry.Updated)
		m[locale] = entry
	}

	if len(m) == 0 {
		return nil, invalid("%s declares no locales", ManifestFile)
	}
	return m, nil
}

// PackageBase returns the repository's web URL: the canonical URI when the
// repository was declared with a full URL, otherwise the provider's
// download base joined with owner/repo.
func PackageBase(ep provider.Endpoints, uri *repouri.URI) string {
	if uri.CanonicalURI != "" {
		return uri.CanonicalURI
	}
	return strings.TrimRight(ep.DownloadBaseURL, "/") + "/" + uri.OwnerRepo
}

// PackagePath validates a manifest package path, ensures it starts with a
// slash and escapes each segment.
func PackagePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if err := errs.ValidatePackagePath(p); err != nil {
		return "", err
	}
	return "/" + escapeSegments(strings.TrimLeft(p, "/")), nil
}

// RawPackageURL builds {base}/raw/{branch}{package}, the raw file
// convention shared by Bitbucket, GitLab and Gitea.
func RawPackageURL(ep provider.Endpoints, uri *repouri.URI, entry ManifestEntry) (string, error) {
	return webPackageURL("raw", ep, uri, entry)
}

// BlobPackageURL builds {base}/blob/{branch}{package}, GitHub's web view of
// a file. Callers add the query that selects the raw variant.
func BlobPackageURL(ep provider.Endpoints, uri *repouri.URI, entry ManifestEntry) (string, error) {
	return webPackageURL("blob", ep, uri, entry)
}

func webPackageURL(view string, ep provider.Endpoints, uri *repouri.URI, entry ManifestEntry) (string, error) {
	path, err := PackagePath(entry.Package)
	if err != nil {
		return "", err
	}
	return PackageBase(ep, uri) + "/" + view + "/" + escapeSegments(ep.Branch) + path, nil
}

// EscapePath escapes each segment of an owner/repo style path.
func EscapePath(p string) string {
	return escapeSegments(p)
}

func escapeSegments(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
