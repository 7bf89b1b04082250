package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedis creates a cache on an existing Redis client. Keys are prefixed so
// the cache can share a database with the stock alert queue.
func NewRedis(client *redis.Client, prefix string, logger *zap.Logger) Cache {
	return &redisCache{client: client, prefix: prefix, logger: logger}
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return b, true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *redisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		r.logger.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
