package workers

import (
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrMemoryLimitExceeded is returned when a reservation does not fit the
	// remaining budget.
	ErrMemoryLimitExceeded = errors.New("workers: memory budget exceeded")

	// ErrRateLimited is returned when admission would exceed the configured
	// rate.
	ErrRateLimited = errors.New("workers: admission rate exceeded")
)

// Limits configures a Controller. Zero fields disable the corresponding
// limit.
type Limits struct {
	// MemoryBytes caps the estimated bytes held by admitted requests.
	MemoryBytes int64

	// Rate is the sustained admissions per second; Burst is the bucket
	// size and defaults to 1.
	Rate  rate.Limit
	Burst int
}

// Controller meters admitted requests. A nil Controller admits everything.
type Controller struct {
	limits Limits

	memSem  *semaphore.Weighted
	memUsed atomic.Int64

	limiter *rate.Limiter
}

// NewController creates a controller for the given limits.
func NewController(l Limits) *Controller {
	c := &Controller{limits: l}
	if l.MemoryBytes > 0 {
		c.memSem = semaphore.NewWeighted(l.MemoryBytes)
	}
	if l.Rate > 0 {
		burst := l.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(l.Rate, burst)
	}
	return c
}

// Admit consumes one admission token. It never blocks.
func (c *Controller) Admit() error {
	if c == nil || c.limiter == nil {
		return nil
	}
	if !c.limiter.AllowN(time.Now(), 1) {
		return ErrRateLimited
	}
	return nil
}

// AcquireMemory reserves bytes without blocking; callers decide whether to
// retry.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}
	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory returns a reservation made by AcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured budget, 0 if unlimited.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.limits.MemoryBytes
}
