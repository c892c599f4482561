package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// testClock is a manually advanced clock.
type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// exerciseCache runs the behaviour every backend must share.
// advance moves the backend's notion of time forward.
func exerciseCache(t *testing.T, c Cache, advance func(time.Duration)) {
	t.Helper()
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		data, hit, err := c.Get(ctx, "langpack:missing")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if hit || data != nil {
			t.Errorf("Get() = %q, %v, want miss", data, hit)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		if err := c.Set(ctx, "langpack:a", []byte("alpha"), time.Hour); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		data, hit, err := c.Get(ctx, "langpack:a")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if !hit || !bytes.Equal(data, []byte("alpha")) {
			t.Errorf("Get() = %q, %v, want alpha, true", data, hit)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		_ = c.Set(ctx, "langpack:b", []byte("one"), time.Hour)
		_ = c.Set(ctx, "langpack:b", []byte("two"), time.Hour)
		data, _, _ := c.Get(ctx, "langpack:b")
		if string(data) != "two" {
			t.Errorf("Get() = %q, want two", data)
		}
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		if err := c.Set(ctx, "langpack:short", []byte("x"), time.Minute); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		advance(2 * time.Minute)
		if _, hit, _ := c.Get(ctx, "langpack:short"); hit {
			t.Error("expired entry should be a miss")
		}
	})

	t.Run("empty key", func(t *testing.T) {
		if err := c.Set(ctx, "", []byte("x"), time.Hour); err == nil {
			t.Error("Set with empty key should fail")
		}
	})

	t.Run("delete", func(t *testing.T) {
		_ = c.Set(ctx, "langpack:del", []byte("x"), time.Hour)
		if err := c.Delete(ctx, "langpack:del"); err != nil {
			t.Fatalf("Delete error: %v", err)
		}
		if _, hit, _ := c.Get(ctx, "langpack:del"); hit {
			t.Error("deleted entry should be a miss")
		}
		if err := c.Delete(ctx, "langpack:never-set"); err != nil {
			t.Errorf("Delete of missing key error: %v", err)
		}
	})

	t.Run("delete prefix", func(t *testing.T) {
		_ = c.Set(ctx, "langpack:repo:1", []byte("1"), time.Hour)
		_ = c.Set(ctx, "langpack:repo:2", []byte("2"), time.Hour)
		_ = c.Set(ctx, "other:repo:3", []byte("3"), time.Hour)

		n, err := c.DeletePrefix(ctx, "langpack:repo:")
		if err != nil {
			t.Fatalf("DeletePrefix error: %v", err)
		}
		if n != 2 {
			t.Errorf("DeletePrefix removed %d, want 2", n)
		}
		if _, hit, _ := c.Get(ctx, "langpack:repo:1"); hit {
			t.Error("prefixed key should be gone")
		}
		if _, hit, _ := c.Get(ctx, "other:repo:3"); !hit {
			t.Error("key outside prefix should survive")
		}
	})
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if n, err := c.DeletePrefix(ctx, ""); n != 0 || err != nil {
		t.Errorf("DeletePrefix() = %d, %v, want 0, nil", n, err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	clock := &testClock{t: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	c.now = clock.now

	exerciseCache(t, c, clock.advance)
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	path := c.path("langpack:corrupt")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "langpack:corrupt"); hit || err != nil {
		t.Errorf("Get() hit=%v err=%v, want clean miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheLayout(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}

	path := c.path("langpack:repo:x")
	rel, _ := filepath.Rel(dir, path)
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 || len(parts[0]) != 2 || !strings.HasSuffix(parts[1], ".json") {
		t.Errorf("unexpected cache path layout: %s", rel)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	clock := &testClock{t: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	c.now = clock.now

	exerciseCache(t, c, clock.advance)
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	_ = c.Set(ctx, "a", []byte("1"), time.Hour)
	_ = c.Set(ctx, "b", []byte("2"), time.Hour)
	_ = c.Set(ctx, "c", []byte("3"), time.Hour)

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("oldest entry should be evicted")
	}
}

func TestMemoryCacheCopiesData(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	src := []byte("abc")
	_ = c.Set(ctx, "k", src, time.Hour)
	src[0] = 'z'

	data, _, _ := c.Get(ctx, "k")
	if string(data) != "abc" {
		t.Errorf("Get() = %q, stored data should not alias caller slice", data)
	}
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client)
	defer c.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping error: %v", err)
	}

	exerciseCache(t, c, mr.FastForward)
}

func TestRedisCacheTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer c.Close()

	if err := c.Set(context.Background(), "langpack:ttl", []byte("x"), 90*time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if ttl := mr.TTL("langpack:ttl"); ttl != 90*time.Minute {
		t.Errorf("TTL = %v, want 90m", ttl)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not-a-url"); err == nil {
		t.Error("NewRedisCache should reject an invalid URL")
	}
}

func TestEscapeGlob(t *testing.T) {
	if got := escapeGlob("a*b?[c]"); got != `a\*b\?\[c\]` {
		t.Errorf("escapeGlob() = %q", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"default is file", Options{Dir: t.TempDir()}, false},
		{"file", Options{Backend: "file", Dir: t.TempDir()}, false},
		{"file without dir", Options{Backend: "file"}, true},
		{"memory", Options{Backend: "Memory"}, false},
		{"none", Options{Backend: "none"}, false},
		{"redis without url", Options{Backend: "redis"}, true},
		{"mongo without uri", Options{Backend: "mongo"}, true},
		{"unknown", Options{Backend: "etcd"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if c != nil {
				_ = c.Close()
			}
		})
	}
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Open(context.Background(), Options{Backend: BackendRedis, RedisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer c.Close()
	if _, ok := c.(*RedisCache); !ok {
		t.Errorf("Open() = %T, want *RedisCache", c)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	key := k.RepoKey("widgets")
	if !strings.HasPrefix(key, k.Prefix()) {
		t.Errorf("RepoKey %q should start with %q", key, k.Prefix())
	}
	if key != k.RepoKey("widgets") {
		t.Error("RepoKey should be deterministic")
	}
	if key == k.RepoKey("gadgets") {
		t.Error("different slugs should produce different keys")
	}
	if strings.Contains(k.RepoKey("widgets/widgets.php"), "/") {
		t.Error("RepoKey should not embed raw slug characters")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "site:blog:")

	if got, want := scoped.RepoKey("widgets"), "site:blog:"+inner.RepoKey("widgets"); got != want {
		t.Errorf("RepoKey() = %q, want %q", got, want)
	}
	if got := scoped.Prefix(); got != "site:blog:"+DefaultPrefix {
		t.Errorf("Prefix() = %q", got)
	}
	if !strings.HasPrefix(scoped.RepoKey("x"), scoped.Prefix()) {
		t.Error("scoped keys should share the scoped prefix")
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if got := scoped.RepoKey("k"); got != "prefix:"+NewDefaultKeyer().RepoKey("k") {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}
