package langpack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/langpack/pkg/cache"
	"github.com/matzehuels/langpack/pkg/observability"
)

// Entry kinds, also used as the key type reported to cache hooks.
const (
	kindResult  = "result"
	kindFailure = "failure"
)

// Entry is the cached state of one repository: exactly one of Result and
// Failure is set. An entry whose ExpiresAt has passed is treated as absent,
// whatever the backend's own expiry did.
type Entry struct {
	Result    *Result
	Failure   *Failure
	ExpiresAt time.Time
}

type storedEntry struct {
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
	Result    *Result   `json:"result,omitempty"`
	Failure   *Failure  `json:"failure,omitempty"`
}

// Store persists [Entry] values in a [cache.Cache], one key per slug.
type Store struct {
	cache cache.Cache
	keyer cache.Keyer
	now   func() time.Time
}

// NewStore creates a store. A nil keyer uses the default keyer and a nil
// clock uses time.Now.
func NewStore(c cache.Cache, keyer cache.Keyer, now func() time.Time) *Store {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if now == nil {
		now = time.Now
	}
	return &Store{cache: c, keyer: keyer, now: now}
}

// Get returns the live entry for slug. Undecodable and expired entries
// are removed and reported as a miss.
func (s *Store) Get(ctx context.Context, slug string) (*Entry, bool, error) {
	key := s.keyer.RepoKey(slug)
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry for %s: %w", slug, err)
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, "entry")
		return nil, false, nil
	}

	var se storedEntry
	if err := json.Unmarshal(data, &se); err != nil || !se.valid() {
		_ = s.cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, "entry")
		return nil, false, nil
	}
	if !s.now().Before(se.ExpiresAt) {
		_ = s.cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, "entry")
		return nil, false, nil
	}

	observability.Cache().OnCacheHit(ctx, se.Kind)
	return &Entry{Result: se.Result, Failure: se.Failure, ExpiresAt: se.ExpiresAt}, true, nil
}

func (se *storedEntry) valid() bool {
	switch se.Kind {
	case kindResult:
		return se.Result != nil && se.Failure == nil
	case kindFailure:
		return se.Failure != nil && se.Result == nil
	}
	return false
}

// PutResult stores r under its slug for ttl.
func (s *Store) PutResult(ctx context.Context, r *Result, ttl time.Duration) error {
	return s.put(ctx, r.Slug, storedEntry{Kind: kindResult, Result: r}, ttl)
}

// PutFailure stores f under slug for ttl.
func (s *Store) PutFailure(ctx context.Context, slug string, f *Failure, ttl time.Duration) error {
	return s.put(ctx, slug, storedEntry{Kind: kindFailure, Failure: f}, ttl)
}

func (s *Store) put(ctx context.Context, slug string, se storedEntry, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("store %s: ttl must be positive", slug)
	}
	se.ExpiresAt = s.now().Add(ttl).UTC()
	data, err := json.Marshal(se)
	if err != nil {
		return fmt.Errorf("encode %s entry: %w", se.Kind, err)
	}
	if err := s.cache.Set(ctx, s.keyer.RepoKey(slug), data, ttl); err != nil {
		return fmt.Errorf("write cache entry for %s: %w", slug, err)
	}
	observability.Cache().OnCacheSet(ctx, se.Kind, len(data))
	return nil
}

// Delete removes the entry for slug.
func (s *Store) Delete(ctx context.Context, slug string) error {
	return s.cache.Delete(ctx, s.keyer.RepoKey(slug))
}

// Clear removes every entry under the keyer's prefix and returns how many
// were removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	return s.cache.DeletePrefix(ctx, s.keyer.Prefix())
}
