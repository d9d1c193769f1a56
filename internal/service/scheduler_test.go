package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsPeriodically(t *testing.T) {
	s := NewScheduler(NewNopLogger(), time.Second)
	var runs atomic.Int32
	s.Every("tick", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stats := s.GetStats("tick")
	require.NotNil(t, stats)
	assert.GreaterOrEqual(t, stats.Runs, int64(2))
	assert.Zero(t, stats.Failures)
}

func TestScheduler_RunNowRecordsFailure(t *testing.T) {
	s := NewScheduler(NewNopLogger(), 0)
	s.Every("purge", time.Hour, func(context.Context) error { return errors.New("db down") })

	assert.True(t, s.RunNow(context.Background(), "purge"))
	assert.False(t, s.RunNow(context.Background(), "missing"))

	stats := s.GetStats("purge")
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.Failures)
	assert.Equal(t, "db down", stats.LastError)
	assert.Nil(t, s.GetStats("missing"))
}
