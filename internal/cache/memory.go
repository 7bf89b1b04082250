package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryCache struct {
	c *gocache.Cache
}

// NewMemory creates an in-process cache
func NewMemory(defaultTTL time.Duration) Cache {
	return &memoryCache{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		m.c.Delete(k)
	}
}
