package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend         string // file, memory, redis, mongo or none
	Dir             string // file backend directory
	MemoryEntries   int    // memory backend capacity
	RedisURL        string // redis backend URL
	MongoURI        string // mongo backend connection string
	MongoDatabase   string // mongo backend database
	MongoCollection string // mongo backend collection
}

// Open builds the backend named in opts. An empty backend name means file.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: directory is required")
		}
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMemory:
		return NewMemoryCache(opts.MemoryEntries), nil
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis cache: redis_url is required")
		}
		c, err := NewRedisCache(ctx, opts.RedisURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, fmt.Errorf("mongo cache: mongo_uri is required")
		}
		c, err := NewMongoCache(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
