package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/innledger/internal/config"
	invoicedomain "github.com/smallbiznis/innledger/internal/invoice/domain"
	"go.uber.org/zap"
)

// FinalizeGuard serialises invoice state transitions across replicas. The
// database compare-and-swap stays authoritative; the guard only turns a race
// into an early conflict.
type FinalizeGuard struct {
	locker *redislock.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewFinalizeGuard(client *redis.Client, cfg config.Config, log *zap.Logger) *FinalizeGuard {
	if client == nil {
		return nil
	}
	ttl := cfg.Redis.FinalizeLockTTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &FinalizeGuard{
		locker: redislock.New(client),
		ttl:    ttl,
		log:    log.Named("ratelimit.guard"),
	}
}

// Acquire takes key without retrying. A key held elsewhere is reported as
// a concurrent modification; redis failures fail open.
func (g *FinalizeGuard) Acquire(ctx context.Context, key string) (func(), error) {
	if g == nil {
		return func() {}, nil
	}

	lock, err := g.locker.Obtain(ctx, key, g.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, invoicedomain.ErrConcurrentModification
	}
	if err != nil {
		g.log.Warn("transition lock unavailable, continuing without it", zap.String("key", key), zap.Error(err))
		return func() {}, nil
	}

	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			g.log.Warn("transition lock release failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// TransitionGuard adapts the guard to the invoice core. A disabled guard
// becomes a nil interface so the core skips it.
func TransitionGuard(g *FinalizeGuard) invoicedomain.TransitionGuard {
	if g == nil {
		return nil
	}
	return g
}
