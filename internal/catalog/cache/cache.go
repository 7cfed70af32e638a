// Package cache provides the Redis-backed resolve cache. Keys embed the
// snapshot version so a new administrative revision invalidates every
// prior entry implicitly.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"coverscope/internal/catalog/models"
	"coverscope/pkg/domain"
)

// RedisCache caches resolve results with a TTL. Failures degrade to
// cache misses; the cache never makes a resolve call fail.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func key(version, normalized string, insurer domain.Insurer) string {
	return fmt.Sprintf("resolve:%s:%s:%s", version, insurer.String(), normalized)
}

// Get returns a cached resolve result, if present.
func (c *RedisCache) Get(ctx context.Context, version, normalized string, insurer domain.Insurer) (*models.ResolveResult, bool) {
	raw, err := c.client.Get(ctx, key(version, normalized, insurer)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "resolve cache read failed", "error", err)
		}
		return nil, false
	}
	var result models.ResolveResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.WarnContext(ctx, "resolve cache entry corrupt", "error", err)
		return nil, false
	}
	return &result, true
}

// Set stores a resolve result. Best effort.
func (c *RedisCache) Set(ctx context.Context, version, normalized string, insurer domain.Insurer, result *models.ResolveResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(version, normalized, insurer), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "resolve cache write failed", "error", err)
	}
}
