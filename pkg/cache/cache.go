// Package cache provides the key/value store behind langpack's resolver.
//
// A [Cache] stores opaque byte payloads with a per-entry time-to-live. An
// entry past its expiry is never returned: every backend reports it as a
// miss. Backends are safe for concurrent use.
//
// Available backends:
//
//   - [FileCache]: JSON envelopes under a directory, for CLI usage
//   - [MemoryCache]: in-process expirable LRU
//   - [RedisCache]: shared Redis instance
//   - [MongoCache]: MongoDB collection with a TTL index
//   - [NullCache]: stores nothing
//
// Keys are produced by a [Keyer]. All keys written by one keyer share its
// [Keyer.Prefix], which is what [Cache.DeletePrefix] uses for a forced
// recheck.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the payload stored under key. The boolean is false on a
	// miss, including when the entry has expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key starting with prefix and reports how
	// many entries were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Close releases backend resources.
	Close() error
}

// ErrEmptyKey is returned when a backend is asked to store an empty key.
var ErrEmptyKey = errors.New("cache: empty key")

// expired reports whether an entry with the given expiry is stale at now.
// A zero expiry never expires.
func expired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}
