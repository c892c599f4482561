package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateSlug validates a repository slug for safety.
// Slugs end up in cache keys and log lines, so they are held to the same
// conservative rules as file names:
//   - No empty slugs
//   - No control characters or null bytes
//   - No path traversal sequences (.., //) or backslashes
//   - Maximum length of 256 characters
//
// Plugin slugs of the form "my-plugin/my-plugin.php" are accepted.
func ValidateSlug(slug string) error {
	if slug == "" {
		return New(ErrCodeInvalidInput, "slug cannot be empty")
	}

	if len(slug) > 256 {
		return New(ErrCodeInvalidInput, "slug too long (max 256 characters)")
	}

	for _, r := range slug {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "slug contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",
		"//",
		"\x00",
		"\\",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(slug, pattern) {
			return New(ErrCodeInvalidInput, "slug contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// localeRegex matches locale codes such as "de", "de_DE", "pt_BR_ao90",
// "de_DE_formal" or "es_419".
var localeRegex = regexp.MustCompile(`^[a-z]{2,3}(_[A-Z]{2}|_[0-9]{3})?(_[a-z0-9]+)?$`)

// ValidateLocale validates a locale code as used in language-pack manifests
// and installed translation registries.
func ValidateLocale(locale string) error {
	if locale == "" {
		return New(ErrCodeInvalidLocale, "locale cannot be empty")
	}
	if !localeRegex.MatchString(locale) {
		return New(ErrCodeInvalidLocale, "invalid locale code: %q", locale)
	}
	return nil
}

// ValidatePackagePath validates a manifest-declared package path.
// The path is appended to a provider download URL, so it must stay inside
// the repository.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes
func ValidatePackagePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "package path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "package path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "package path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "package path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidInput, "package path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
