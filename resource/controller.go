// Package resource bounds the memory and concurrency pairwise engines may consume.
//
// One Controller can be shared by many engines: triangular caches reserve
// their buffers from the memory budget, matrix assemblies take an assembly
// slot, and snapshot IO is throttled by the IO limiter.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation would exceed the memory limit.
var ErrMemoryLimitExceeded = errors.New("resource: memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed buffers (triangular caches).
	// If 0, reservations are only tracked.
	MemoryLimitBytes int64

	// MaxConcurrentAssemblies bounds matrix assemblies running at once.
	// If 0, defaults to 1.
	MaxConcurrentAssemblies int64

	// IOLimitBytesPerSec throttles snapshot reads and writes.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages memory, assembly slots and IO bandwidth.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	asmSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentAssemblies <= 0 {
		cfg.MaxConcurrentAssemblies = 1
	}

	c := &Controller{
		cfg:    cfg,
		asmSem: semaphore.NewWeighted(cfg.MaxConcurrentAssemblies),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// ReserveMemory reserves bytes without blocking.
// Returns ErrMemoryLimitExceeded if the limit would be exceeded.
func (c *Controller) ReserveMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return fmt.Errorf("%w: requested %d bytes, %d of %d in use",
			ErrMemoryLimitExceeded, bytes, c.memUsed.Load(), c.cfg.MemoryLimitBytes)
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory returns a reservation made with ReserveMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the currently reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireAssembly blocks until an assembly slot is free or ctx is done.
func (c *Controller) AcquireAssembly(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.asmSem.Acquire(ctx, 1)
}

// TryAcquireAssembly takes an assembly slot without blocking.
func (c *Controller) TryAcquireAssembly() bool {
	if c == nil {
		return true
	}
	return c.asmSem.TryAcquire(1)
}

// ReleaseAssembly frees an assembly slot.
func (c *Controller) ReleaseAssembly() {
	if c == nil {
		return
	}
	c.asmSem.Release(1)
}

// AcquireIO waits until the IO limit allows n bytes.
// Requests larger than the burst are split.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := c.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
