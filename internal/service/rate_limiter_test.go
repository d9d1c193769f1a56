package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(rate float64, burst int) (*RateLimiter, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(&RateLimitConfig{Rate: rate, Burst: burst, IdleTTL: time.Minute}, NewNopLogger())
	l.now = func() time.Time { return now }
	return l, &now
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	l, now := newTestLimiter(1, 2)
	defer l.Stop()

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	// 其他客户端独立计数
	assert.True(t, l.Allow("10.0.0.2"))

	*now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))

	stats := l.GetStats("10.0.0.1")
	require.NotNil(t, stats)
	assert.Equal(t, int64(3), stats.AllowedRequests)
	assert.Equal(t, int64(1), stats.RejectedRequests)
}

func TestRateLimiter_EvictIdleAndReset(t *testing.T) {
	l, now := newTestLimiter(1, 1)
	defer l.Stop()

	l.Allow("a")
	l.Allow("b")
	*now = now.Add(30 * time.Second)
	l.Allow("b")
	*now = now.Add(45 * time.Second)

	l.evictIdle()
	assert.Nil(t, l.GetStats("a"))
	assert.NotNil(t, l.GetStats("b"))

	l.Reset("b")
	assert.Nil(t, l.GetStats("b"))
}
