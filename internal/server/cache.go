package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/indexforge/webindex/internal/codec"
	"github.com/indexforge/webindex/pkg/config"
	pkgredis "github.com/indexforge/webindex/pkg/redis"
)

const cacheKeyPrefix = "term:"

// TermCache is a Redis read-through cache for decompressed posting lists.
// Concurrent lookups of the same term are collapsed through singleflight so
// a cold popular term hits the store once.
type TermCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewTermCache creates a TermCache backed by the given Redis client.
func NewTermCache(client *pkgredis.Client, cfg config.RedisConfig) *TermCache {
	return &TermCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "term-cache"),
	}
}

// Get returns the cached posting list for (term, kind), if present.
func (c *TermCache) Get(ctx context.Context, term string, kind codec.Kind) ([]int64, bool) {
	key := cacheKey(term, kind)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var postings []int64
	if err := json.Unmarshal([]byte(data), &postings); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return postings, true
}

// Set stores a posting list with the configured TTL.
func (c *TermCache) Set(ctx context.Context, term string, kind codec.Kind, postings []int64) {
	key := cacheKey(term, kind)
	data, err := json.Marshal(postings)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached posting list or computes, caches, and
// returns it. The boolean reports whether the value came from the cache.
func (c *TermCache) GetOrCompute(
	ctx context.Context,
	term string,
	kind codec.Kind,
	computeFn func() ([]int64, error),
) ([]int64, bool, error) {
	if postings, ok := c.Get(ctx, term, kind); ok {
		return postings, true, nil
	}
	key := cacheKey(term, kind)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if postings, ok := c.Get(ctx, term, kind); ok {
			return postings, nil
		}
		postings, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, term, kind, postings)
		return postings, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]int64), false, nil
}

// Invalidate drops the cache entries for the given terms under one codec.
func (c *TermCache) Invalidate(ctx context.Context, kind codec.Kind, terms []string) error {
	if len(terms) == 0 {
		return nil
	}
	keys := make([]string, len(terms))
	for i, term := range terms {
		keys[i] = cacheKey(term, kind)
	}
	if err := c.client.Del(ctx, keys...); err != nil {
		return fmt.Errorf("invalidating %d term keys: %w", len(keys), err)
	}
	c.logger.Debug("term cache invalidated", "codec", kind, "terms", len(terms))
	return nil
}

// InvalidateAll drops every cached term entry.
func (c *TermCache) InvalidateAll(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, cacheKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating term cache: %w", err)
	}
	c.logger.Info("term cache flushed", "keys_deleted", deleted)
	return nil
}

// Stats returns cumulative hit and miss counts.
func (c *TermCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func cacheKey(term string, kind codec.Kind) string {
	return fmt.Sprintf("%s%s:%s", cacheKeyPrefix, kind, term)
}
