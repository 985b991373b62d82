package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisAdapter) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisAdapter(client)
}

func TestRedisAdapter_SetGet(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupTestRedis(t)

	require.NoError(t, cache.Set(ctx, "records:user-1", []byte(`[{"id":"r1"}]`), time.Minute))

	got, err := cache.Get(ctx, "records:user-1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"r1"}]`, string(got))
	assert.Equal(t, time.Minute, mr.TTL("records:user-1"))
}

func TestRedisAdapter_Miss(t *testing.T) {
	_, cache := setupTestRedis(t)

	_, err := cache.Get(context.Background(), "tags:nobody")

	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestRedisAdapter_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupTestRedis(t)
	require.NoError(t, cache.Set(ctx, "tags:user-1", []byte("[]"), time.Second))

	mr.FastForward(2 * time.Second)

	_, err := cache.Get(ctx, "tags:user-1")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestRedisAdapter_Delete(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupTestRedis(t)
	require.NoError(t, cache.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, cache.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, cache.Delete(ctx, "a", "b", "missing"))
	require.NoError(t, cache.Delete(ctx))

	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))
}

func TestRedisAdapter_ServerDown(t *testing.T) {
	mr, cache := setupTestRedis(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "a")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrCacheMiss)
}
