package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockRedisServer(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return s
}

func TestRedisRateLimiter(t *testing.T) {
	ctx := context.Background()
	s := mockRedisServer(t)

	client, err := ConnectRedis(ctx, "redis://"+s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedisRateLimiter(client, 2, time.Minute)

	assert.True(t, limiter.Allow(ctx, "10.0.0.1"))
	assert.True(t, limiter.Allow(ctx, "10.0.0.1"))
	assert.False(t, limiter.Allow(ctx, "10.0.0.1"), "third request in the window should be rejected")
	assert.True(t, limiter.Allow(ctx, "10.0.0.2"), "other clients keep their own budget")

	ttl := s.TTL(redisKeyPrefix + ":10.0.0.1")
	assert.Equal(t, time.Minute, ttl)

	s.FastForward(time.Minute)
	assert.True(t, limiter.Allow(ctx, "10.0.0.1"), "a new window should reset the budget")
}

func TestRedisRateLimiterFailsOpen(t *testing.T) {
	ctx := context.Background()
	s := mockRedisServer(t)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedisRateLimiter(client, 1, time.Minute)
	s.Close()

	assert.True(t, limiter.Allow(ctx, "10.0.0.1"))
}

func TestConnectRedisErrors(t *testing.T) {
	ctx := context.Background()

	_, err := ConnectRedis(ctx, "http://not-redis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")

	s := mockRedisServer(t)
	addr := s.Addr()
	s.Close()

	_, err = ConnectRedis(ctx, "redis://"+addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestRedisRateLimiterRepairsKeyWithoutTTL(t *testing.T) {
	ctx := context.Background()
	s := mockRedisServer(t)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bucket := redisKeyPrefix + ":10.0.0.9"
	require.NoError(t, s.Set(bucket, "5"))
	require.Zero(t, s.TTL(bucket))

	limiter := NewRedisRateLimiter(client, 3, 30*time.Second)
	assert.False(t, limiter.Allow(ctx, "10.0.0.9"))
	assert.Equal(t, 30*time.Second, s.TTL(bucket), "a stuck counter should get the window ttl")

	s.FastForward(30 * time.Second)
	assert.True(t, limiter.Allow(ctx, "10.0.0.9"))
}
