// Package resource bounds the rate and concurrency of generation requests.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds admission limits.
type Config struct {
	// MaxConcurrent is the maximum number of requests served at once.
	// If 0, defaults to 1.
	MaxConcurrent int64

	// RequestsPerSec is the sustained admission rate.
	// If 0, unlimited.
	RequestsPerSec float64

	// Burst is the number of requests admitted at once above the sustained
	// rate. If 0, defaults to MaxConcurrent.
	Burst int
}

// Controller admits requests under a rate limit and a concurrency bound.
// A nil Controller admits everything.
type Controller struct {
	cfg Config

	slots    *semaphore.Weighted
	inFlight atomic.Int64

	limiter *rate.Limiter // nil if unlimited
}

// NewController creates a new admission controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.MaxConcurrent)
	}

	c := &Controller{
		cfg:   cfg,
		slots: semaphore.NewWeighted(cfg.MaxConcurrent),
	}

	if cfg.RequestsPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst)
	}

	return c
}

// Acquire waits for a rate token and a free slot.
// It blocks until both are available or ctx is canceled.
func (c *Controller) Acquire(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return err
	}

	c.inFlight.Add(1)
	return nil
}

// TryAcquire admits a request without blocking.
func (c *Controller) TryAcquire() bool {
	if c == nil {
		return true
	}

	if !c.slots.TryAcquire(1) {
		return false
	}
	if c.limiter != nil && !c.limiter.Allow() {
		c.slots.Release(1)
		return false
	}

	c.inFlight.Add(1)
	return true
}

// Release frees the slot taken by Acquire or TryAcquire.
func (c *Controller) Release() {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	c.slots.Release(1)
}

// InFlight returns the number of admitted requests not yet released.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}
