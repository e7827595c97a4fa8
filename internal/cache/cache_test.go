package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/listingshield/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedis starts an in-process Redis and returns a connected RedisCache.
func setupRedis(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	rc, err := cache.NewRedisCache("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := cache.NewRedisCache("not a url")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	rc, _ := setupRedis(t)
	assert.NoError(t, rc.Ping(context.Background()))
}

func TestPing_ServerDown(t *testing.T) {
	rc, mr := setupRedis(t)
	mr.Close()
	assert.Error(t, rc.Ping(context.Background()))
}

func TestIncrWithExpiry(t *testing.T) {
	rc, mr := setupRedis(t)
	ctx := context.Background()
	key := cache.RateLimitKey(uuid.New())

	for want := int64(1); want <= 3; want++ {
		val, err := rc.IncrWithExpiry(ctx, key, 10*time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, val)
	}
	assert.Equal(t, 10*time.Second, mr.TTL(key))
}

func TestIncrWithExpiry_Expires(t *testing.T) {
	rc, mr := setupRedis(t)
	ctx := context.Background()
	key := cache.RateLimitKey(uuid.New())

	_, err := rc.IncrWithExpiry(ctx, key, time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	val, err := rc.IncrWithExpiry(ctx, key, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)
}

func TestRateLimitKey(t *testing.T) {
	userID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	assert.Equal(t, "ratelimit:11111111-1111-1111-1111-111111111111", cache.RateLimitKey(userID))
}
