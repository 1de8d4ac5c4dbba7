package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"portfolio/internal/observability"

	"github.com/redis/go-redis/v9"
)

// PageCache stores rendered JSON for public pages under page:<path> keys.
// A nil client makes every call a miss and every write a no-op.
type PageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPageCache returns a PageCache; ttl <= 0 selects DefaultPageTTL.
func NewPageCache(rdb *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{rdb: rdb, ttl: ttl}
}

// Client exposes the underlying client, which may be nil.
func (p *PageCache) Client() *redis.Client {
	return p.rdb
}

// GetJSON reports whether key was found and decoded into dest.
func (p *PageCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if p.rdb == nil {
		return false, nil
	}
	raw, err := p.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores v under key with the cache TTL.
func (p *PageCache) SetJSON(ctx context.Context, key string, v any) error {
	if p.rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.rdb.Set(ctx, key, b, p.ttl).Err()
}

// Aside serves path from the cache, or calls fetch to fill dest and stores the result.
// Cache errors never fail the request.
func (p *PageCache) Aside(ctx context.Context, path string, dest any, fetch func() error) error {
	key := PageKey(path)
	found, err := p.GetJSON(ctx, key, dest)
	if err == nil && found {
		observability.LogCacheEvent(ctx, "hit", key)
		return nil
	}
	observability.LogCacheEvent(ctx, "miss", key)

	if err := fetch(); err != nil {
		return err
	}
	_ = p.SetJSON(ctx, key, dest)
	return nil
}

// Invalidate deletes the cached entries of paths.
func (p *PageCache) Invalidate(ctx context.Context, paths ...string) error {
	if p.rdb == nil || len(paths) == 0 {
		return nil
	}
	keys := make([]string, 0, len(paths))
	for _, path := range paths {
		keys = append(keys, PageKey(path))
	}
	if err := p.rdb.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	for _, k := range keys {
		observability.LogCacheEvent(ctx, "invalidate", k)
	}
	return nil
}
