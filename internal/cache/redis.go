package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ipsqr-service/internal/ipsqr"
	"ipsqr-service/internal/status"
)

var _ Cache = (*RedisCache)(nil)

// RedisCache keeps results as JSON strings with a TTL.
type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisCache(redisClient *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: redisClient, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*ipsqr.Result, error) {
	data, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, status.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis cache: get: %w", err)
	}

	var res ipsqr.Result
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, fmt.Errorf("redis cache: decode %s: %w", key, err)
	}
	if res.Record == nil {
		res.Record = ipsqr.NewRecord()
	}

	// entries written under an older grammar are decoded again
	for _, e := range res.Record.All() {
		if !ipsqr.Validate(e.Field, e.Value) {
			return nil, fmt.Errorf("redis cache: %s %s fails its grammar: %w", key, e.Name, status.ErrCacheMiss)
		}
	}
	return &res, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, res *ipsqr.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("redis cache: encode: %w", err)
	}
	if err := c.redis.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis cache: set: %w", err)
	}
	return nil
}
