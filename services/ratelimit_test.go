package services

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) *FixedWindowLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter, err := NewFixedWindowLimiter(client, "test:ratelimit", limit, window)
	require.NoError(t, err)
	return limiter
}

func TestLimiterAllowsWithinQuota(t *testing.T) {
	limiter := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("user-1"), "attempt %d", i+1)
	}
	assert.False(t, limiter.Allow("user-1"))
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	limiter := newTestLimiter(t, 1, time.Minute)

	assert.True(t, limiter.Allow("user-1"))
	assert.False(t, limiter.Allow("user-1"))
	assert.True(t, limiter.Allow("user-2"))
}

func TestLimiterFailsClosedWithoutRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter, err := NewFixedWindowLimiter(client, "", 5, time.Minute)
	require.NoError(t, err)

	mr.Close()
	assert.False(t, limiter.Allow("user-1"))
}

func TestLimiterRejectsBadConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	_, err := NewFixedWindowLimiter(client, "", 0, time.Minute)
	assert.Error(t, err)
	_, err = NewFixedWindowLimiter(nil, "", 5, time.Minute)
	assert.Error(t, err)
}
