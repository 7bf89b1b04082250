// Package cache provides byte caches shared by read-heavy repositories.
package cache

import (
	"context"
	"time"
)

// Cache is a best-effort key/value store. Misses and backend failures both
// report ok == false; the caller falls through to the source of truth.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}
