// Package cache stores serialized comparison results keyed by the hash of
// their inputs.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/xerrors"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, expiration).Err(); err != nil {
		return xerrors.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// MemoryCache is a bounded in-process LRU. Expirations are ignored; entries
// leave the cache only by eviction.
type MemoryCache struct {
	entries *lru.Cache
}

func NewMemoryCache(size int) (*MemoryCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, xerrors.Errorf("failed to allocate cache: %w", err)
	}
	return &MemoryCache{entries: c}, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	_ = c.entries.Add(key, append([]byte(nil), value...))
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.entries.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return v.([]byte), nil
}

// Tiered consults Near before Far and fills Near on a Far hit. Writes go to
// both; a failing Far write is reported after Near was updated.
type Tiered struct {
	Near Cache
	Far  Cache
}

func (c *Tiered) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := c.Near.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	return c.Far.Set(ctx, key, value, expiration)
}

func (c *Tiered) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.Near.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrMiss) {
		return nil, err
	}

	value, err = c.Far.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = c.Near.Set(ctx, key, value, 0)
	return value, nil
}
