package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Strategy names accepted by New
const (
	StrategyTokenBucket   = "token_bucket"
	StrategySlidingWindow = "sliding_window"
)

// Limiter paces outbound account lookups
type Limiter interface {
	// Allow takes a slot if one is free right now
	Allow() bool
	// Wait blocks until a slot is free or ctx is done
	Wait(ctx context.Context) error
	// Reset forgets all recorded usage
	Reset()
}

// New builds the limiter named by strategy allowing n calls per window
func New(strategy string, n int, window time.Duration) (Limiter, error) {
	if n <= 0 || window <= 0 {
		return nil, fmt.Errorf("rate limit must allow a positive number of calls per positive window")
	}

	switch strings.ToLower(strategy) {
	case "", StrategyTokenBucket:
		return NewTokenBucket(n, window), nil
	case StrategySlidingWindow:
		return NewSlidingWindow(n, window), nil
	default:
		return nil, fmt.Errorf("unknown rate limit strategy: %s", strategy)
	}
}

// TokenBucket hands out capacity tokens and refills them all once per period,
// matching the fixed windows of the upstream API quota.
type TokenBucket struct {
	capacity     int
	tokens       int
	refillPeriod time.Duration
	lastRefill   time.Time
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

func (tb *TokenBucket) Wait(ctx context.Context) error {
	for !tb.Allow() {
		tb.mu.Lock()
		delay := tb.refillPeriod - time.Since(tb.lastRefill)
		tb.mu.Unlock()

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// refill must be called with mu held
func (tb *TokenBucket) refill() {
	now := time.Now()
	if now.Sub(tb.lastRefill) >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}

// SlidingWindow allows at most maxRequests within any windowSize span
type SlidingWindow struct {
	windowSize  time.Duration
	maxRequests int
	requests    []time.Time
	mu          sync.Mutex
}

// NewSlidingWindow creates a new sliding window rate limiter
func NewSlidingWindow(maxRequests int, windowSize time.Duration) *SlidingWindow {
	return &SlidingWindow{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		requests:    make([]time.Time, 0, maxRequests),
	}
}

func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	sw.cleanOldRequests(now)

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return true
	}

	return false
}

func (sw *SlidingWindow) Wait(ctx context.Context) error {
	for !sw.Allow() {
		sw.mu.Lock()
		var delay time.Duration
		if len(sw.requests) > 0 {
			delay = sw.windowSize - time.Since(sw.requests[0])
		}
		sw.mu.Unlock()

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.requests = sw.requests[:0]
}

// cleanOldRequests drops timestamps that fell out of the window
func (sw *SlidingWindow) cleanOldRequests(now time.Time) {
	cutoff := now.Add(-sw.windowSize)

	i := 0
	for i < len(sw.requests) && sw.requests[i].Before(cutoff) {
		i++
	}

	if i > 0 {
		copy(sw.requests, sw.requests[i:])
		sw.requests = sw.requests[:len(sw.requests)-i]
	}
}

// sleep waits for d, with a short floor to avoid spinning, or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d < 10*time.Millisecond {
		d = 10 * time.Millisecond
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
