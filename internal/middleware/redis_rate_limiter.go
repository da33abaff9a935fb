package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/filmorate/backend/internal/logging"
)

const redisKeyPrefix = "filmorate:ratelimit"

// incrWindow bumps the counter and starts the window in one round trip. A key
// left without a TTL gets one on its next hit.
var incrWindow = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisRateLimiter enforces a fixed-window limit per key in Redis so that
// every instance sharing the server also shares the budget.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisRateLimiter allows up to limit requests per key in each window.
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &RedisRateLimiter{client: client, limit: int64(limit), window: window}
}

// Allow increments the key's counter for the current window. Redis failures
// let the request through.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" {
		key = "unknown"
	}
	bucket := fmt.Sprintf("%s:%s", redisKeyPrefix, key)

	count, err := incrWindow.Run(ctx, l.client, []string{bucket}, l.window.Milliseconds()).Int64()
	if err != nil {
		logging.FromContext(ctx).Warn("rate limit counter unavailable", "error", err)
		return true
	}

	return count <= l.limit
}

// ConnectRedis opens a client for the given redis:// URL and verifies it
// responds to PING.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
