package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "a", []byte("1"), 0)
	c.Set(ctx, "b", []byte("2"), 0)

	v, ok := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	c.Delete(ctx, "a", "b")
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "b")
	assert.False(t, ok)
}

func TestMemoryCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	c.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCache_UnreachableIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedis(client, "test:", zap.NewNop())
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	c.Delete(ctx, "k")
}
