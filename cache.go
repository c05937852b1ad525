package pairwise

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pairwise/progress"
	"github.com/hupe1980/pairwise/resource"
)

// CacheState is the lifecycle state of a triangular cache.
type CacheState int32

const (
	CacheUnbuilt CacheState = iota
	CacheBuilding
	CacheBuilt
)

func (s CacheState) String() string {
	switch s {
	case CacheUnbuilt:
		return "unbuilt"
	case CacheBuilding:
		return "building"
	case CacheBuilt:
		return "built"
	default:
		return fmt.Sprintf("CacheState(%d)", int32(s))
	}
}

// triIndex returns the packed lower-triangle offset of (a, b), transposing if a < b.
func triIndex(a, b int) int {
	if a < b {
		a, b = b, a
	}
	return a*(a+1)/2 + b
}

// triangularCache holds Compute(i, j) for all j <= i of a self comparison,
// stored in float32 at offset i*(i+1)/2 + j.
//
// Builds are serialized by mu: the first caller sweeps, concurrent callers
// wait and then read the finished buffer. A cache belongs to one binding
// generation; on rebind the engine retires it and installs a fresh one, so
// in-flight readers of the old binding keep a consistent buffer.
type triangularCache struct {
	rc *resource.Controller

	mu    sync.Mutex
	state atomic.Int32
	data  []float32

	resMu    sync.Mutex
	reserved int64
	retired  bool
}

func newTriangularCache(rc *resource.Controller) *triangularCache {
	return &triangularCache{rc: rc}
}

// State returns the current lifecycle state.
func (c *triangularCache) State() CacheState {
	return CacheState(c.state.Load())
}

func (c *triangularCache) bytes() int64 {
	if c.State() != CacheBuilt {
		return 0
	}
	return int64(len(c.data)) * 4
}

// ensure returns the built buffer, sweeping the triangle first if needed.
func (c *triangularCache) ensure(ctx context.Context, v *view, e *Engine) ([]float32, error) {
	if c.State() == CacheBuilt {
		return c.data, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() == CacheBuilt {
		return c.data, nil
	}

	if !v.self || v.numLHS != v.numRHS {
		panic(&InvariantViolationError{
			Op:     "precompute",
			Detail: fmt.Sprintf("triangular cache needs lhs == rhs, got self=%t with %d and %d vectors", v.self, v.numLHS, v.numRHS),
		})
	}

	c.state.Store(int32(CacheBuilding))
	start := time.Now()
	data, err := c.build(ctx, v, e.opts.progress)
	e.logger.LogCacheBuild(ctx, v.numLHS, time.Since(start), err)
	e.opts.metricsCollector.RecordCacheBuild(v.numLHS, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *triangularCache) build(ctx context.Context, v *view, sink progress.Sink) ([]float32, error) {
	n := v.numLHS
	size := n * (n + 1) / 2

	if err := c.reserve(int64(size) * 4); err != nil {
		c.abort()
		return nil, err
	}

	data := make([]float32, size)
	tracker := progress.NewTracker(sink, int64(n))
	for i := range n {
		if err := ctx.Err(); err != nil {
			c.abort()
			return nil, err
		}
		base := i * (i + 1) / 2
		for j := 0; j <= i; j++ {
			data[base+j] = float32(v.formula.Compute(v.lhs, v.rhs, i, j))
		}
		tracker.Add(1)
	}
	tracker.Finish()

	c.finish(data)
	return data, nil
}

// finish publishes data. A cache retired mid-build gives its reservation back immediately.
func (c *triangularCache) finish(data []float32) {
	c.resMu.Lock()
	defer c.resMu.Unlock()

	c.data = data
	c.state.Store(int32(CacheBuilt))
	if c.retired {
		c.releaseLocked()
	}
}

func (c *triangularCache) abort() {
	c.resMu.Lock()
	defer c.resMu.Unlock()

	c.releaseLocked()
	c.state.Store(int32(CacheUnbuilt))
}

func (c *triangularCache) reserve(bytes int64) error {
	if err := c.rc.ReserveMemory(bytes); err != nil {
		return err
	}
	c.resMu.Lock()
	c.reserved = bytes
	c.resMu.Unlock()
	return nil
}

func (c *triangularCache) releaseLocked() {
	c.rc.ReleaseMemory(c.reserved)
	c.reserved = 0
}

// retire detaches the cache from its engine. The memory reservation is
// returned now, or by the in-flight build when it finishes.
func (c *triangularCache) retire() {
	c.resMu.Lock()
	defer c.resMu.Unlock()

	c.retired = true
	if c.State() != CacheBuilding {
		c.releaseLocked()
	}
}

// EnsureBuilt builds the triangular cache of the current self comparison if
// it does not exist yet. It is a no-op when the cache is already built.
//
// It returns ErrNoFeaturesBound without a binding and ErrPrecomputeDisabled
// when precompute mode is off. Calling it on a binding of two distinct
// collections panics with *InvariantViolationError. Canceling ctx stops the
// sweep and leaves the cache unbuilt.
func (e *Engine) EnsureBuilt(ctx context.Context) error {
	v, err := e.acquireView()
	if err != nil {
		return err
	}
	defer v.release()

	if !v.precompute {
		return ErrPrecomputeDisabled
	}
	if v.cache == nil {
		panic(&InvariantViolationError{
			Op:     "ensure_built",
			Detail: fmt.Sprintf("triangular cache needs lhs == rhs, got %d and %d vectors of distinct collections", v.numLHS, v.numRHS),
		})
	}

	_, err = v.cache.ensure(ctx, v, e)
	return err
}
