package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// The bucket state lives in Redis so every instance shares one budget. Time
// comes from the Redis server to keep refill math consistent across nodes.
const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
  ts = now
else
  local delta = now - ts
  if delta < 0 then
    delta = 0
  end
  local refill = (delta / 1000) * rate
  tokens = math.min(burst, tokens + refill)
  ts = now
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HMSET", KEYS[1], "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", KEYS[1], ttl)

return {allowed, tostring(tokens), ts}
`

type TokenBucket struct {
	client *redis.Client
	script *redis.Script
}

type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{
		client: client,
		script: redis.NewScript(tokenBucketScript),
	}
}

// Allow consumes one token from the bucket at key, refilling at rate tokens
// per second up to burst.
func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (*Result, error) {
	if t == nil || t.client == nil {
		return nil, errors.New("rate limiter not configured")
	}
	if key == "" {
		return nil, errors.New("rate limiter key is empty")
	}
	if rate <= 0 || burst <= 0 {
		return nil, errors.New("rate limiter rate and burst must be positive")
	}

	ttl := bucketTTL(rate, burst)
	res, err := t.script.Run(ctx, t.client, []string{key},
		rate, burst, int64(ttl/time.Millisecond),
	).Slice()
	if err != nil {
		return nil, err
	}
	if len(res) < 3 {
		return nil, errors.New("invalid rate limit script response")
	}

	allowed := castToInt(res[0]) == 1
	remaining := castToFloat(res[1])

	result := &Result{
		Allowed:   allowed,
		Remaining: int(math.Floor(remaining)),
	}
	if !allowed {
		needed := 1.0 - remaining
		if needed < 0 {
			needed = 0
		}
		result.RetryAfter = time.Duration(needed / rate * float64(time.Second))
	}
	return result, nil
}

// bucketTTL keeps idle buckets around long enough to refill fully, then lets
// them expire.
func bucketTTL(rate float64, burst int) time.Duration {
	refillSeconds := float64(burst) / rate
	ttl := time.Duration(refillSeconds*2) * time.Second
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}

func castToInt(v any) int64 {
	switch value := v.(type) {
	case int64:
		return value
	case string:
		if parsed, ok := parseFloat(value); ok {
			return int64(parsed)
		}
	case float64:
		return int64(value)
	}
	return 0
}

func castToFloat(v any) float64 {
	switch value := v.(type) {
	case int64:
		return float64(value)
	case float64:
		return value
	case string:
		if parsed, ok := parseFloat(value); ok {
			return parsed
		}
	}
	return 0
}

func parseFloat(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
