package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/innledger/internal/config"
	"go.uber.org/zap"
)

const keyLoginAttempt = "login:ip:%s"

// LoginLimiter throttles login attempts per client address. A nil limiter
// allows everything.
type LoginLimiter struct {
	bucket *TokenBucket
	policy BucketPolicy
	log    *zap.Logger
}

func NewLoginLimiter(client *redis.Client, cfg config.Config, log *zap.Logger) *LoginLimiter {
	if client == nil {
		return nil
	}
	return &LoginLimiter{
		bucket: NewTokenBucket(client),
		policy: BucketPolicy{Rate: cfg.Redis.LoginRatePerSec, Burst: cfg.Redis.LoginBurst},
		log:    log.Named("ratelimit.login"),
	}
}

// Allow reports whether another attempt from clientIP may proceed. Redis
// failures fail open.
func (l *LoginLimiter) Allow(ctx context.Context, clientIP string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	decision, err := l.bucket.Take(ctx, fmt.Sprintf(keyLoginAttempt, strings.TrimSpace(clientIP)), l.policy)
	if err != nil {
		l.log.Warn("login rate limit check failed", zap.Error(err))
		return true, 0
	}
	return decision.Allowed, decision.RetryAfter
}
