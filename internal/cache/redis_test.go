package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis creates a test Redis server using miniredis.
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := newRedisCache(client, "", zerolog.Nop())
	t.Cleanup(func() { c.Close() })
	return mr, c
}

func TestRedisCacheSetGet(t *testing.T) {
	ctx := context.Background()
	mr, c := setupMiniRedis(t)

	c.Set(ctx, "report:1", []byte(`{"rows":3}`), time.Minute)
	assert.True(t, mr.Exists("goeda:report:1"))

	got, ok := c.Get(ctx, "report:1")
	require.True(t, ok)
	assert.Equal(t, `{"rows":3}`, string(got))

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	mr, c := setupMiniRedis(t)

	c.Set(ctx, "k", []byte("v"), time.Minute)
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCacheDelete(t *testing.T) {
	ctx := context.Background()
	mr, c := setupMiniRedis(t)

	c.Set(ctx, "k", []byte("v"), 0)
	c.Delete(ctx, "k")
	assert.False(t, mr.Exists("goeda:k"))
}

func TestNewRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	c, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr}, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.HealthCheck(context.Background()))

	mr.Close()
	_, err = NewRedisCache(context.Background(), RedisConfig{Addr: addr}, zerolog.Nop())
	assert.Error(t, err)
}
