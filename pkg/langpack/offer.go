package langpack

import (
	"sort"
	"strings"
	"time"
)

// FallbackLocale is offered when the host reports no installed locales.
const FallbackLocale = "en_US"

// Translation is a translation update offered to the host, in the shape
// of its update feed.
type Translation struct {
	Type       ArtifactType `json:"type"`
	Slug       string       `json:"slug"`
	Language   string       `json:"language"`
	Version    string       `json:"version"`
	Updated    string       `json:"updated"`
	Package    string       `json:"package"`
	Autoupdate bool         `json:"autoupdate"`
}

// Installed maps slug to locale to the installed translation's revision
// date (the PO-Revision-Date header of the installed catalog).
type Installed map[string]map[string]string

// timeLayouts are tried in order by ParseTimestamp.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04-0700",
	"2006-01-02 15:04:05-0700",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a manifest "updated" value or a PO revision date.
// Values without a zone are UTC. Unparseable values yield the zero time,
// which is older than anything.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SelectUpdates returns the translations to offer: for every resolved
// repository and every locale in locales, the pack whose updated time is
// strictly newer than the installed revision. A repository without
// installed translations gets every available pack. An empty locales list
// means [FallbackLocale].
//
// The output is deduplicated and sorted by slug, then language.
func SelectUpdates(cfgs []*RepositoryConfig, installed Installed, locales []string) []Translation {
	if len(locales) == 0 {
		locales = []string{FallbackLocale}
	}

	seen := make(map[Translation]bool)
	var out []Translation
	for _, cfg := range cfgs {
		if cfg == nil || cfg.LanguagePacks == nil {
			continue
		}
		for _, locale := range locales {
			pack, ok := cfg.LanguagePacks[locale]
			if !ok {
				continue
			}
			packTime := ParseTimestamp(pack.Updated)
			installedTime := ParseTimestamp(installed[cfg.Slug][locale])
			if !packTime.After(installedTime) {
				continue
			}

			t := Translation{
				Type:       pack.Type,
				Slug:       cfg.Slug,
				Language:   pack.Locale,
				Version:    pack.Version,
				Updated:    pack.Updated,
				Package:    pack.Package,
				Autoupdate: true,
			}
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Slug != out[j].Slug {
			return out[i].Slug < out[j].Slug
		}
		return out[i].Language < out[j].Language
	})
	return out
}
