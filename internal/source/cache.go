package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"chat-insights/internal/models"
	"chat-insights/internal/observability"
)

// Cache stores a whole RawTables value under one key.
type Cache interface {
	Get(ctx context.Context, key string) (models.RawTables, bool, error)
	Set(ctx context.Context, key string, tables models.RawTables, ttl time.Duration) error
}

// MemoryCache keeps a single entry. A Set with a new key replaces the old one.
type MemoryCache struct {
	mu      sync.Mutex
	key     string
	tables  models.RawTables
	expires time.Time
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (models.RawTables, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key == "" || c.key != key {
		return models.RawTables{}, false, nil
	}
	if !c.expires.IsZero() && c.now().After(c.expires) {
		return models.RawTables{}, false, nil
	}
	return c.tables, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, tables models.RawTables, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
	c.tables = tables
	c.expires = time.Time{}
	if ttl > 0 {
		c.expires = c.now().Add(ttl)
	}
	return nil
}

// RedisCache shares raw snapshots between instances as JSON values.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) (models.RawTables, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.RawTables{}, false, nil
	}
	if err != nil {
		return models.RawTables{}, false, fmt.Errorf("redis get: %w", err)
	}
	var tables models.RawTables
	if err := json.Unmarshal(data, &tables); err != nil {
		return models.RawTables{}, false, fmt.Errorf("decode cached tables: %w", err)
	}
	return tables, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, tables models.RawTables, ttl time.Duration) error {
	data, err := json.Marshal(tables)
	if err != nil {
		return fmt.Errorf("encode tables: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Cached memoizes a source. Entries are keyed by the source version when the
// source reports one; otherwise a single entry expires after ttl. Concurrent
// misses for the same key share one fetch.
type Cached struct {
	src    Source
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

func NewCached(src Source, cache Cache, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{src: src, cache: cache, ttl: ttl, logger: logger.Named("source-cache")}
}

func (c *Cached) Version(ctx context.Context) (string, error) {
	if v, ok := c.src.(Versioner); ok {
		return v.Version(ctx)
	}
	return "", nil
}

func (c *Cached) Fetch(ctx context.Context) (models.RawTables, error) {
	version, err := c.Version(ctx)
	if err != nil {
		return models.RawTables{}, err
	}
	key := "raw:unversioned"
	if version != "" {
		key = "raw:" + version
	}

	tables, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		observability.IncSourceCache("error")
		c.logger.Warn("cache read failed, fetching from source", zap.String("key", key), zap.Error(err))
	case ok:
		observability.IncSourceCache("hit")
		return tables, nil
	default:
		observability.IncSourceCache("miss")
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		tables, err := c.src.Fetch(ctx)
		if err != nil {
			return models.RawTables{}, err
		}
		if tables.Version == "" {
			tables.Version = version
		}
		if err := c.cache.Set(ctx, key, tables, c.ttl); err != nil {
			c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
		return tables, nil
	})
	if err != nil {
		return models.RawTables{}, err
	}
	return v.(models.RawTables), nil
}
