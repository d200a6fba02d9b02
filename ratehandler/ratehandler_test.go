// ratehandler/ratehandler_test.go
package ratehandler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	r := NewRateLimiter(5, 0, nil)
	assert.Equal(t, 5.0, r.Limit())
	assert.Equal(t, 1, r.Burst())
}

func TestWait_BurstIsImmediate(t *testing.T) {
	r := NewRateLimiter(1, 3, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWait_PacesAfterBurst(t *testing.T) {
	r := NewRateLimiter(20, 1, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Wait(context.Background()))
	}
	// Two tokens at 20/s take roughly 100ms to refill.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestWait_Cancelled(t *testing.T) {
	r := NewRateLimiter(0.1, 1, nil)
	require.NoError(t, r.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Wait(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWait_DeadlineTooShort(t *testing.T) {
	r := NewRateLimiter(0.1, 1, nil)
	require.NoError(t, r.Wait(context.Background()))

	shortCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Wait(shortCtx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "rate limit wait")
	assert.NoError(t, shortCtx.Err(), "the limiter refuses before the deadline passes")
}
