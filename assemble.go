package pairwise

import (
	"context"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pairwise/matrix"
	"github.com/hupe1980/pairwise/progress"
)

// cancelCheckInterval is the number of cells a worker evaluates between
// context checks inside a row.
const cancelCheckInterval = 1024

// Assemble evaluates every (lhs, rhs) pair into a num_lhs x num_rhs matrix.
//
// For a self comparison with equal sizes only the upper triangle is
// evaluated and mirrored. Rows are split across the configured workers so
// each receives roughly the same number of evaluated cells.
//
// If ctx is canceled the partially filled matrix is returned together with
// ctx.Err(); filled cells are correct and the rest are zero.
func (e *Engine) Assemble(ctx context.Context) (*matrix.Dense, error) {
	start := time.Now()

	v, err := e.acquireView()
	if err != nil {
		e.opts.metricsCollector.RecordAssemble(0, 0, false, time.Since(start), err)
		return nil, err
	}
	defer v.release()

	m, n := v.numLHS, v.numRHS
	symmetric := v.self && m == n

	out, err := e.assemble(ctx, v, m, n, symmetric, func(ctx context.Context, data []float64) error {
		ranges := partitionRows(m, n, e.opts.workers, symmetric)
		tracker := progress.NewTracker(e.opts.progress, int64(m))
		err := e.fillRows(ctx, ranges, tracker, func(i int) error {
			return fillRow(ctx, v, data, i, i, m, n, symmetric)
		})
		if err == nil {
			tracker.Finish()
		}
		return err
	})
	e.logger.LogAssemble(ctx, m, n, symmetric, e.opts.workers, time.Since(start), err)
	e.opts.metricsCollector.RecordAssemble(m, n, symmetric, time.Since(start), err)
	return out, err
}

// AssembleRows evaluates the lhs vectors selected by rows against every rhs
// vector. Row k of the result holds the k-th smallest selected index.
// Indices must lie in [0, num_lhs).
func (e *Engine) AssembleRows(ctx context.Context, rows *roaring.Bitmap) (*matrix.Dense, error) {
	start := time.Now()

	v, err := e.acquireView()
	if err != nil {
		e.opts.metricsCollector.RecordAssemble(0, 0, false, time.Since(start), err)
		return nil, err
	}
	defer v.release()

	var sel []uint32
	if rows != nil {
		sel = rows.ToArray()
	}
	if len(sel) > 0 && int64(sel[len(sel)-1]) >= int64(v.numLHS) {
		err := &IndexOutOfRangeError{IdxA: int(sel[len(sel)-1]), LimitA: v.numLHS, LimitB: v.numRHS}
		e.opts.metricsCollector.RecordAssemble(0, 0, false, time.Since(start), err)
		return nil, err
	}

	k, n := len(sel), v.numRHS
	out, err := e.assemble(ctx, v, k, n, false, func(ctx context.Context, data []float64) error {
		ranges := partitionRows(k, n, e.opts.workers, false)
		tracker := progress.NewTracker(e.opts.progress, int64(k))
		err := e.fillRows(ctx, ranges, tracker, func(r int) error {
			return fillRow(ctx, v, data, r, int(sel[r]), k, n, false)
		})
		if err == nil {
			tracker.Finish()
		}
		return err
	})
	e.logger.LogAssemble(ctx, k, n, false, e.opts.workers, time.Since(start), err)
	e.opts.metricsCollector.RecordAssemble(k, n, false, time.Since(start), err)
	return out, err
}

// assemble allocates the output, takes an assembly slot, warms the cache and
// runs fill. The output is returned even when fill fails part way.
func (e *Engine) assemble(ctx context.Context, v *view, m, n int, symmetric bool,
	fill func(context.Context, []float64) error,
) (*matrix.Dense, error) {
	out, err := matrix.NewDense(m, n)
	if err != nil {
		return nil, err
	}
	if m == 0 || n == 0 {
		return out, nil
	}

	if err := e.opts.resources.AcquireAssembly(ctx); err != nil {
		return nil, fmt.Errorf("pairwise: acquire assembly slot: %w", err)
	}
	defer e.opts.resources.ReleaseAssembly()

	// Build the cache once before the workers start reading it.
	if err := v.warm(ctx, e); err != nil {
		return nil, err
	}

	e.logger.DebugContext(ctx, "assembling matrix",
		"rows", m,
		"cols", n,
		"symmetric", symmetric,
		"cached", v.tri != nil,
	)
	return out, fill(ctx, out.Data())
}

// fillRows runs fn for every row of every range, one goroutine per range.
func (e *Engine) fillRows(ctx context.Context, ranges []rowRange, tracker *progress.Tracker, fn func(row int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, rr := range ranges {
		g.Go(func() error {
			for i := rr.start; i < rr.end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(i); err != nil {
					return err
				}
				tracker.Add(1)
			}
			return nil
		})
	}
	return g.Wait()
}

// fillRow writes output row r, computed from lhs vector a, into the
// column-major buffer data of m rows. With symmetric set only columns j >= a
// are evaluated and each value is mirrored into (j, a).
func fillRow(ctx context.Context, v *view, data []float64, r, a, m, n int, symmetric bool) error {
	j0 := 0
	if symmetric {
		j0 = a
	}
	for j := j0; j < n; j++ {
		if (j-j0)%cancelCheckInterval == cancelCheckInterval-1 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		val := v.at(a, j)
		data[r+j*m] = val
		if symmetric && j != a {
			data[j+r*m] = val
		}
	}
	return nil
}
