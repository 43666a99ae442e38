package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter paces operations so that consecutive calls are at least a
// fixed interval apart. The first call proceeds immediately; later calls
// sleep until their slot instead of polling.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewRateLimiter creates a RateLimiter allowing perMinute operations per
// minute. Values below 1 are treated as 1.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{interval: time.Minute / time.Duration(perMinute)}
}

// Wait blocks until this caller's slot arrives or ctx is cancelled.
// Concurrent callers are assigned consecutive slots in arrival order; a
// cancelled caller's slot is not reclaimed.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	now := time.Now()
	slot := rl.next
	if slot.Before(now) {
		slot = now
	}
	rl.next = slot.Add(rl.interval)
	rl.mu.Unlock()

	d := slot.Sub(now)
	if d <= 0 {
		return nil
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
