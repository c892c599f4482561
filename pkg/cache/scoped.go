package cache

// ScopedKeyer wraps a Keyer with a prefix so several sites can share one
// backend without seeing each other's entries.
//
// Example usage:
//
//	// Per-site keys on a shared Redis instance
//	siteKeyer := NewScopedKeyer(NewDefaultKeyer(), "site:blog:")
//
// A forced recheck through the scoped keyer only clears that site.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RepoKey generates a prefixed repository key.
func (k *ScopedKeyer) RepoKey(slug string) string {
	return k.prefix + k.inner.RepoKey(slug)
}

// Prefix returns the scope prefix followed by the inner keyer's prefix.
func (k *ScopedKeyer) Prefix() string {
	return k.prefix + k.inner.Prefix()
}
