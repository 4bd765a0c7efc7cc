package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter paces successive operations against the catalog site.
type Limiter interface {
	Wait(ctx context.Context) error
}

// FixedDelayLimiter enforces a fixed politeness delay between operations.
// The delay is deliberately not adaptive: the crawl is strictly sequential
// and the site expects a steady, modest pace.
type FixedDelayLimiter struct {
	delay      time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewFixedDelay(delay time.Duration) *FixedDelayLimiter {
	return &FixedDelayLimiter{delay: delay}
}

// Wait blocks until the configured delay has passed since the previous call.
// The first call returns immediately.
func (r *FixedDelayLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.lastAction)
	if !r.lastAction.IsZero() && elapsed < r.delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay - elapsed):
		}
	}

	r.lastAction = time.Now()
	return nil
}
