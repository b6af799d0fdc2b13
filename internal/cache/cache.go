// Package cache provides version-keyed read-through caching on Redis.
//
// Every namespace (e.g. "workshops", "bookings:42") has a version counter
// stored under ver:<namespace>. Read keys embed the current version, so a
// write invalidates all cached reads of its namespace with a single INCR
// instead of tracking individual keys. A nil Cache or an unreachable Redis
// degrades to a pass-through: every lookup is a miss and writers do nothing.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"workslot/internal/logger"
	"workslot/internal/metrics"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr string, ttl time.Duration) *Cache {
	return &Cache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
	}
}

// NewWithClient wraps an existing client, used by tests with redismock.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: client, ttl: ttl}
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *Cache) versionedKey(ctx context.Context, namespace, key string) (string, error) {
	ver, err := c.rdb.Get(ctx, "ver:"+namespace).Result()
	if err == redis.Nil {
		ver = "0"
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%s:%s", namespace, ver, key), nil
}

// GetJSON loads a cached value into dest and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, namespace, key string, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}

	vkey, err := c.versionedKey(ctx, namespace, key)
	if err != nil {
		metrics.RecordCacheLookup(namespace, "bypass")
		return false
	}

	data, err := c.rdb.Get(ctx, vkey).Bytes()
	if err != nil {
		metrics.RecordCacheLookup(namespace, "miss")
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		logger.Warn("Failed to decode cached value", "key", vkey, "error", err)
		metrics.RecordCacheLookup(namespace, "miss")
		return false
	}

	metrics.RecordCacheLookup(namespace, "hit")
	return true
}

// SetJSON stores a value under the namespace's current version.
func (c *Cache) SetJSON(ctx context.Context, namespace, key string, value interface{}) {
	if c == nil || c.rdb == nil {
		return
	}

	vkey, err := c.versionedKey(ctx, namespace, key)
	if err != nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Failed to encode value for cache", "key", vkey, "error", err)
		return
	}

	if err := c.rdb.Set(ctx, vkey, data, c.ttl).Err(); err != nil {
		logger.Debug("Cache set failed", "key", vkey, "error", err)
	}
}

// Invalidate bumps the namespace version, orphaning all reads cached under
// the previous version. Orphaned entries expire via their TTL.
func (c *Cache) Invalidate(ctx context.Context, namespace string) {
	if c == nil || c.rdb == nil {
		return
	}

	if err := c.rdb.Incr(ctx, "ver:"+namespace).Err(); err != nil {
		logger.Debug("Cache invalidation failed", "namespace", namespace, "error", err)
	}
}
