package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "ratelimit:liff-submit:"

// slidingWindow trims the log, and records the hit only if the key is
// under its limit. Returns {allowed, count, retryAfterMs}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  return {0, count, tonumber(oldest[2]) + window - now}
end
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`)

// RedisLimiter shares the log between replicas, one sorted set per key.
type RedisLimiter struct {
	client    redis.Scripter
	limit     int
	window    time.Duration
	keyPrefix string
	now       func() time.Time
}

func NewRedis(client redis.Scripter, limit int, window time.Duration, clock func() time.Time) *RedisLimiter {
	if clock == nil {
		clock = time.Now
	}
	return &RedisLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: defaultKeyPrefix,
		now:       clock,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	nowMs := l.now().UnixMilli()
	member := fmt.Sprintf("%d-%s", nowMs, uuid.NewString())

	res, err := slidingWindow.Run(ctx, l.client,
		[]string{l.keyPrefix + key},
		nowMs, l.window.Milliseconds(), l.limit, member,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	if res[0] == 0 {
		return Decision{Allowed: false, RetryAfter: time.Duration(res[2]) * time.Millisecond}, nil
	}
	return Decision{Allowed: true, Remaining: l.limit - int(res[1])}, nil
}
