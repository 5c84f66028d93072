package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/innledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDisabledComponentsAllowEverything(t *testing.T) {
	cfg := config.Config{}

	limiter := NewLoginLimiter(nil, cfg, zap.NewNop())
	allowed, retry := limiter.Allow(context.Background(), "10.0.0.1")
	assert.True(t, allowed)
	assert.Zero(t, retry)

	guard := NewFinalizeGuard(nil, cfg, zap.NewNop())
	release, err := guard.Acquire(context.Background(), "invoice:1:transition")
	assert.NoError(t, err)
	release()

	assert.Nil(t, TransitionGuard(guard))
}

func TestTokenBucketRejectsBadInput(t *testing.T) {
	var bucket *TokenBucket
	_, err := bucket.Take(context.Background(), "k", BucketPolicy{Rate: 1, Burst: 1})
	assert.ErrorIs(t, err, errBucketNotConfigured)

	assert.Error(t, BucketPolicy{Rate: 0, Burst: 5}.validate())
	assert.Error(t, BucketPolicy{Rate: 1, Burst: 0}.validate())
	assert.NoError(t, BucketPolicy{Rate: 0.2, Burst: 5}.validate())
}

func TestBucketPolicyTimings(t *testing.T) {
	login := BucketPolicy{Rate: 0.2, Burst: 5}
	assert.Equal(t, 50*time.Second, login.idleTTL())
	assert.Equal(t, time.Second, BucketPolicy{Rate: 100, Burst: 1}.idleTTL())
	assert.Equal(t, time.Second, BucketPolicy{}.idleTTL())

	assert.Equal(t, 5*time.Second, login.retryAfter(0))
	assert.Equal(t, 2500*time.Millisecond, login.retryAfter(0.5))
	assert.Zero(t, login.retryAfter(1))
}

func TestDecodeDecision(t *testing.T) {
	policy := BucketPolicy{Rate: 0.2, Burst: 5}

	d, err := decodeDecision([]interface{}{int64(1), "3.75"}, policy)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 3.75, d.Remaining)
	assert.Zero(t, d.RetryAfter)

	d, err = decodeDecision([]interface{}{int64(0), "0.5"}, policy)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 2500*time.Millisecond, d.RetryAfter)

	_, err = decodeDecision([]interface{}{int64(1)}, policy)
	assert.Error(t, err)
	_, err = decodeDecision([]interface{}{"1", "2"}, policy)
	assert.Error(t, err)
	_, err = decodeDecision([]interface{}{int64(1), "many"}, policy)
	assert.Error(t, err)
}
