package langpack

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultCooldown applies when a failed response carries no usable reset
// header.
const DefaultCooldown = 60 * time.Minute

// MaxCooldown bounds the wait a reset header can impose.
const MaxCooldown = 24 * time.Hour

const maxCooldownSeconds = int64(MaxCooldown / time.Second)

// resetHeaders are checked in order. The first two carry epoch seconds
// (GitHub and Gitea, then GitLab); Retry-After carries seconds or an HTTP
// date (Bitbucket and most proxies).
var resetHeaders = []string{"X-RateLimit-Reset", "RateLimit-Reset", "Retry-After"}

// Cooldown returns how many minutes a failed repository should be left
// alone, between one and [MaxCooldown]. It honors the provider's reset
// headers when they point to the future and falls back to [DefaultCooldown].
func Cooldown(header http.Header, now time.Time) int {
	for _, name := range resetHeaders {
		v := strings.TrimSpace(header.Get(name))
		if v == "" {
			continue
		}
		secs, ok := resetDelay(name, v, now)
		if !ok {
			continue
		}
		return waitMinutes(secs)
	}
	return int(DefaultCooldown / time.Minute)
}

// resetDelay returns the seconds until the reset named by v, clamped to
// [0, maxCooldownSeconds].
func resetDelay(name, v string, now time.Time) (int64, bool) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		if name == "Retry-After" {
			return clampSeconds(n), true
		}
		// GitLab sends RateLimit-Reset as epoch seconds, but the IETF draft
		// uses delta seconds. Values too small to be a timestamp are deltas.
		if n < 1_000_000_000 {
			return clampSeconds(n), true
		}
		return clampSeconds(n - now.Unix()), true
	}
	if name == "Retry-After" {
		if t, err := http.ParseTime(v); err == nil {
			return clampSeconds(t.Unix() - now.Unix()), true
		}
	}
	return 0, false
}

func clampSeconds(n int64) int64 {
	switch {
	case n < 0:
		return 0
	case n > maxCooldownSeconds:
		return maxCooldownSeconds
	}
	return n
}

func waitMinutes(secs int64) int {
	m := int((secs + 59) / 60)
	if m < 1 {
		return 1
	}
	return m
}
