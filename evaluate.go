package pairwise

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// limits returns the exclusive index bounds of each side. A self comparison
// addresses the mirrored range [0, 2n).
func (v *view) limits() (int, int) {
	if v.self {
		return 2 * v.numLHS, 2 * v.numRHS
	}
	return v.numLHS, v.numRHS
}

func (v *view) checkRange(a, b int) error {
	la, lb := v.limits()
	if a < 0 || a >= la || b < 0 || b >= lb {
		return &IndexOutOfRangeError{IdxA: a, IdxB: b, LimitA: la, LimitB: lb}
	}
	return nil
}

// fold maps an index of the mirrored range back onto the collection:
// idx >= n becomes 2n-1-idx. It only applies to self comparisons.
func (v *view) fold(idx int) int {
	if v.self && idx >= v.numLHS {
		return 2*v.numLHS - 1 - idx
	}
	return idx
}

// warm builds the triangular cache if this view should be served from it.
func (v *view) warm(ctx context.Context, e *Engine) error {
	if v.cache == nil || v.tri != nil {
		return nil
	}
	tri, err := v.cache.ensure(ctx, v, e)
	if err != nil {
		return err
	}
	v.tri = tri
	return nil
}

// at returns the value of an in-range, already folded pair.
func (v *view) at(a, b int) float64 {
	if v.tri != nil {
		return float64(v.tri[triIndex(a, b)])
	}
	return v.formula.Compute(v.lhs, v.rhs, a, b)
}

func (v *view) evaluate(ctx context.Context, e *Engine, a, b int) (float64, error) {
	if err := v.checkRange(a, b); err != nil {
		return 0, err
	}
	a, b = v.fold(a), v.fold(b)
	if err := v.warm(ctx, e); err != nil {
		return 0, err
	}
	return v.at(a, b), nil
}

// Evaluate returns the formula value for lhs vector a and rhs vector b.
//
// Indices must lie in [0, num_lhs) and [0, num_rhs). For a self comparison
// (the same handle bound on both sides) each side instead accepts the
// mirrored range [0, 2n), where index idx >= n addresses vector 2n-1-idx.
// With precompute mode on, self comparisons are answered from the
// triangular cache, which is built on first use.
func (e *Engine) Evaluate(a, b int) (float64, error) {
	return e.EvaluateContext(context.Background(), a, b)
}

// EvaluateContext is Evaluate with a context bounding a possible cache build.
func (e *Engine) EvaluateContext(ctx context.Context, a, b int) (float64, error) {
	start := time.Now()

	v, err := e.acquireView()
	if err != nil {
		e.opts.metricsCollector.RecordEvaluate(time.Since(start), err)
		return 0, err
	}
	defer v.release()

	val, err := v.evaluate(ctx, e, a, b)
	e.opts.metricsCollector.RecordEvaluate(time.Since(start), err)
	return val, err
}

// Row returns the values of lhs vector a against every rhs vector.
func (e *Engine) Row(a int) ([]float64, error) {
	v, err := e.acquireView()
	if err != nil {
		return nil, err
	}
	defer v.release()

	if la, lb := v.limits(); a < 0 || a >= la {
		return nil, &IndexOutOfRangeError{IdxA: a, IdxB: 0, LimitA: la, LimitB: lb}
	}
	if err := v.warm(context.Background(), e); err != nil {
		return nil, err
	}

	a = v.fold(a)
	out := make([]float64, v.numRHS)
	for j := range out {
		out[j] = v.at(a, j)
	}
	return out, nil
}

// Column returns the values of every lhs vector against rhs vector b.
func (e *Engine) Column(b int) ([]float64, error) {
	v, err := e.acquireView()
	if err != nil {
		return nil, err
	}
	defer v.release()

	if la, lb := v.limits(); b < 0 || b >= lb {
		return nil, &IndexOutOfRangeError{IdxA: 0, IdxB: b, LimitA: la, LimitB: lb}
	}
	if err := v.warm(context.Background(), e); err != nil {
		return nil, err
	}

	b = v.fold(b)
	out := make([]float64, v.numLHS)
	for i := range out {
		out[i] = v.at(i, b)
	}
	return out, nil
}

// Pair is an (lhs, rhs) index pair.
type Pair struct {
	A, B int
}

const pairChunk = 4096

// EvaluatePairs evaluates many pairs in parallel. All pairs are range-checked
// before any is evaluated; out[k] holds the value of pairs[k].
func (e *Engine) EvaluatePairs(ctx context.Context, pairs []Pair) ([]float64, error) {
	v, err := e.acquireView()
	if err != nil {
		return nil, err
	}
	defer v.release()

	for _, p := range pairs {
		if err := v.checkRange(p.A, p.B); err != nil {
			return nil, err
		}
	}
	if err := v.warm(ctx, e); err != nil {
		return nil, err
	}

	out := make([]float64, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.workers)
	for lo := 0; lo < len(pairs); lo += pairChunk {
		hi := min(lo+pairChunk, len(pairs))
		g.Go(func() error {
			for k := lo; k < hi; k++ {
				if k&1023 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				out[k] = v.at(v.fold(pairs[k].A), v.fold(pairs[k].B))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
