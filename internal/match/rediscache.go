package match

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "match:analysis:"

// RedisCache stores semantic analyses in Redis as JSON values with a TTL,
// sharing the cache between runs and processes. Redis failures degrade to
// cache misses so an unreachable backend never blocks matching.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*SemanticAnalysis, bool) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("redis cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var analysis SemanticAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		c.logger.Debug("redis cache entry malformed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return &analysis, true
}

func (c *RedisCache) Set(ctx context.Context, key string, analysis *SemanticAnalysis) {
	if analysis == nil {
		return
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		c.logger.Debug("redis cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, redisKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		c.logger.Debug("redis cache write failed", zap.String("key", key), zap.Error(err))
	}
}
