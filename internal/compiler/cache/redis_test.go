package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheWithClient(client, DefaultConfig())
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache_SetAndGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Minute))

	got, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
	assert.True(t, mr.Exists("derivekit:key"), "keys are stored under the prefix")
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := setupTestRedis(t)

	_, err := c.Get(context.Background(), "missing")
	assert.True(t, IsCacheMiss(err))
}

func TestRedisCache_TTL(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, c.Set(ctx, "default", []byte("v"), 0))
	require.NoError(t, c.Set(ctx, "forever", []byte("v"), -1))

	assert.Equal(t, time.Minute, mr.TTL("derivekit:short"))
	assert.Equal(t, 24*time.Hour, mr.TTL("derivekit:default"))
	assert.Equal(t, time.Duration(0), mr.TTL("derivekit:forever"))

	mr.FastForward(2 * time.Minute)
	_, err := c.Get(ctx, "short")
	assert.True(t, IsCacheMiss(err))
}

func TestRedisCache_ClearOnlyTouchesPrefix(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, mr.Set("other:key", "keep"))

	require.NoError(t, c.Clear(ctx))

	exists, err := c.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisCache_Delete(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Delete(ctx, "a"))

	_, err := c.Get(ctx, "a")
	assert.True(t, IsCacheMiss(err))
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := Open(context.Background(), Settings{
		Backend:  BackendRedis,
		RedisURL: "redis://" + mr.Addr() + "/0",
		Config:   DefaultConfig(),
	}, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &RedisCache{}, c)
}

func TestOpenRedis_BadURL(t *testing.T) {
	_, err := Open(context.Background(), Settings{
		Backend:  BackendRedis,
		RedisURL: "not-a-url",
	}, zap.NewNop())
	assert.Error(t, err)
}
