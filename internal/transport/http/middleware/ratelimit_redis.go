package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and takes one token atomically. It returns 1 when
// the request is allowed and 0 otherwise.
var tokenBucketScript = redis.NewScript(`
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_per_ms = tonumber(ARGV[3])
if refill_per_ms <= 0 then
  refill_per_ms = 0.000001
end

local stored = redis.call("HMGET", KEYS[1], "tokens", "last_ms")
local tokens = capacity
local last_ms = now_ms
if stored[1] then
  tokens = tonumber(stored[1])
end
if stored[2] then
  last_ms = tonumber(stored[2])
end
if now_ms < last_ms then
  last_ms = now_ms
end

tokens = math.min(capacity, tokens + ((now_ms - last_ms) * refill_per_ms))
local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "last_ms", tostring(now_ms))
redis.call("PEXPIRE", KEYS[1], math.ceil(capacity / refill_per_ms))
return allowed
`)

// RedisLimiter is a token bucket shared by every instance behind the same Redis.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	rps    float64
	burst  int
	now    func() time.Time
}

func NewRedisLimiter(client redis.UniversalClient, prefix string, rps float64, burst int) *RedisLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisLimiter{client: client, prefix: prefix, rps: rps, burst: burst, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		key = "unknown"
	}
	raw, err := tokenBucketScript.Run(ctx, l.client,
		[]string{l.prefix + ":" + key},
		l.now().UnixMilli(),
		l.burst,
		l.rps/1000.0,
	).Result()
	if err != nil {
		return false, err
	}
	allowed, err := parseRedisInt64(raw)
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

func parseRedisInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("redis response overflows int64")
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected redis response type %T", v)
	}
}
