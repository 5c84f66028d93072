package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// takeTokenScript refills the bucket from redis TIME and takes one token.
// Tokens are returned as a string; redis truncates Lua numbers to integers.
const takeTokenScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local clock = redis.call("TIME")
local now = clock[1] * 1000 + math.floor(clock[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local last = tonumber(state[2]) or now

local elapsed = math.max(0, now - last)
tokens = math.min(burst, tokens + (elapsed / 1000) * rate)

local taken = 0
if tokens >= 1 then
  taken = 1
  tokens = tokens - 1
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("PEXPIRE", KEYS[1], ttl)

return {taken, tostring(tokens)}
`

var (
	errBucketNotConfigured = errors.New("rate limiter not configured")
	errEmptyBucketKey      = errors.New("rate limiter key is empty")
)

// BucketPolicy is a refill rate in tokens per second and a bucket size.
type BucketPolicy struct {
	Rate  float64
	Burst int
}

func (p BucketPolicy) validate() error {
	if p.Rate <= 0 || math.IsInf(p.Rate, 0) || math.IsNaN(p.Rate) {
		return fmt.Errorf("rate limiter rate must be positive, got %v", p.Rate)
	}
	if p.Burst <= 0 {
		return fmt.Errorf("rate limiter burst must be positive, got %d", p.Burst)
	}
	return nil
}

// idleTTL is how long an untouched bucket is kept: twice the time it takes to
// refill from empty, at least one second.
func (p BucketPolicy) idleTTL() time.Duration {
	if p.validate() != nil {
		return time.Second
	}
	seconds := math.Ceil(float64(p.Burst) / p.Rate * 2)
	return time.Duration(math.Max(seconds, 1)) * time.Second
}

// retryAfter is the wait until one whole token is available again.
func (p BucketPolicy) retryAfter(tokens float64) time.Duration {
	missing := 1 - tokens
	if missing <= 0 || p.Rate <= 0 {
		return 0
	}
	return time.Duration(missing / p.Rate * float64(time.Second))
}

// Decision is the outcome of one take from a bucket.
type Decision struct {
	Allowed    bool
	Remaining  float64
	RetryAfter time.Duration
}

// TokenBucket is a redis-backed token bucket shared by all API replicas.
type TokenBucket struct {
	client *redis.Client
	script *redis.Script
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{
		client: client,
		script: redis.NewScript(takeTokenScript),
	}
}

// Take removes one token from the bucket stored under key.
func (t *TokenBucket) Take(ctx context.Context, key string, policy BucketPolicy) (Decision, error) {
	if t == nil || t.client == nil {
		return Decision{}, errBucketNotConfigured
	}
	if key == "" {
		return Decision{}, errEmptyBucketKey
	}
	if err := policy.validate(); err != nil {
		return Decision{}, err
	}

	reply, err := t.script.Run(ctx, t.client, []string{key},
		policy.Rate, policy.Burst, policy.idleTTL().Milliseconds(),
	).Slice()
	if err != nil {
		return Decision{}, err
	}
	return decodeDecision(reply, policy)
}

func decodeDecision(reply []interface{}, policy BucketPolicy) (Decision, error) {
	if len(reply) != 2 {
		return Decision{}, fmt.Errorf("unexpected token bucket reply of %d values", len(reply))
	}
	taken, ok := reply[0].(int64)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected token bucket flag %T", reply[0])
	}
	raw, ok := reply[1].(string)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected token bucket balance %T", reply[1])
	}
	tokens, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Decision{}, fmt.Errorf("parse token bucket balance: %w", err)
	}

	d := Decision{Allowed: taken == 1, Remaining: tokens}
	if !d.Allowed {
		d.RetryAfter = policy.retryAfter(tokens)
	}
	return d, nil
}
