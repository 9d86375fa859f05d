package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l, err := New("token_bucket", 900, 15*time.Minute)
	require.NoError(t, err)
	assert.IsType(t, &TokenBucket{}, l)

	l, err = New("SLIDING_WINDOW", 10, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &SlidingWindow{}, l)

	l, err = New("", 1, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &TokenBucket{}, l)

	_, err = New("leaky_bucket", 1, time.Second)
	assert.Error(t, err)

	_, err = New("token_bucket", 0, time.Second)
	assert.Error(t, err)
}

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(5, 200*time.Millisecond)

	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow(), "token %d should be available", i+1)
	}
	assert.False(t, tb.Allow(), "bucket should be exhausted")

	time.Sleep(250 * time.Millisecond)
	assert.True(t, tb.Allow(), "bucket should refill after the period")

	tb.tokens = 0
	tb.Reset()
	assert.Equal(t, tb.capacity, tb.tokens)
}

func TestTokenBucketWait(t *testing.T) {
	tb := NewTokenBucket(1, 100*time.Millisecond)
	require.True(t, tb.Allow())

	start := time.Now()
	require.NoError(t, tb.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestSlidingWindow(t *testing.T) {
	sw := NewSlidingWindow(3, 200*time.Millisecond)

	for i := 0; i < 3; i++ {
		assert.True(t, sw.Allow(), "request %d should be allowed", i+1)
	}
	assert.False(t, sw.Allow(), "limit should be reached")

	time.Sleep(250 * time.Millisecond)
	assert.True(t, sw.Allow(), "window should have slid")

	sw.Reset()
	assert.Empty(t, sw.requests)
}

func TestWaitHonoursContext(t *testing.T) {
	limiters := map[string]Limiter{
		"token_bucket":   NewTokenBucket(1, time.Hour),
		"sliding_window": NewSlidingWindow(1, time.Hour),
	}

	for name, l := range limiters {
		t.Run(name, func(t *testing.T) {
			require.True(t, l.Allow())

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			err := l.Wait(ctx)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		})
	}
}

func TestWaitReturnsImmediatelyWithCapacity(t *testing.T) {
	l := NewSlidingWindow(2, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A free slot is taken even on a cancelled context
	assert.NoError(t, l.Wait(ctx))
}
