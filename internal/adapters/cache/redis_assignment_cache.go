package cache

import (
	"commute-route-service/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultAssignmentCacheKey = "commute:route_assignments"

// RedisAssignmentCache keeps the last saved assignment list in Redis as JSON.
// Entries expire after TTL; a zero TTL keeps them until the next invalidation.
type RedisAssignmentCache struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisAssignmentCache(rdb *redis.Client, ttl time.Duration) *RedisAssignmentCache {
	return &RedisAssignmentCache{rdb: rdb, key: DefaultAssignmentCacheKey, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

func (c *RedisAssignmentCache) Get(ctx context.Context) ([]domain.RouteAssignmentView, bool, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("assignment cache get: %w", err)
	}

	var views []domain.RouteAssignmentView
	if err := json.Unmarshal(data, &views); err != nil {
		return nil, false, fmt.Errorf("assignment cache get: decode: %w", err)
	}
	return views, true, nil
}

func (c *RedisAssignmentCache) Set(ctx context.Context, views []domain.RouteAssignmentView) error {
	if views == nil {
		views = []domain.RouteAssignmentView{}
	}

	data, err := json.Marshal(views)
	if err != nil {
		return fmt.Errorf("assignment cache set: encode: %w", err)
	}

	if err := c.rdb.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("assignment cache set: %w", err)
	}
	return nil
}

func (c *RedisAssignmentCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("assignment cache invalidate: %w", err)
	}
	return nil
}
