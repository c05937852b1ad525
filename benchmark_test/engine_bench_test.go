package benchmark_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/pairwise"
	"github.com/hupe1980/pairwise/distance"
	"github.com/hupe1980/pairwise/features"
	"github.com/hupe1980/pairwise/kernel"
	"github.com/hupe1980/pairwise/testutil"
)

const benchDim = 64

func sharedDense(b *testing.B, seed int64, n int) *features.Handle {
	b.Helper()
	h := features.Share(testutil.NewRNG(seed).Dense(n, benchDim))
	b.Cleanup(h.Release)
	return h
}

func BenchmarkAssembleSelf(b *testing.B) {
	ctx := context.Background()

	for _, n := range []int{256, 1024} {
		for _, precompute := range []bool{false, true} {
			b.Run(fmt.Sprintf("n=%d/precompute=%v", n, precompute), func(b *testing.B) {
				h := sharedDense(b, 1, n)
				e := pairwise.New(distance.MustNew(distance.MetricL2), pairwise.WithPrecompute(precompute))
				defer e.Close()
				if err := e.Bind(h, h); err != nil {
					b.Fatal(err)
				}
				if precompute {
					if err := e.EnsureBuilt(ctx); err != nil {
						b.Fatal(err)
					}
				}

				b.ReportAllocs()
				iters := 0
				for b.Loop() {
					if _, err := e.Assemble(ctx); err != nil {
						b.Fatal(err)
					}
					iters++
				}
				b.ReportMetric(float64(n*n)*float64(iters)/b.Elapsed().Seconds(), "cells/s")
			})
		}
	}
}

func BenchmarkAssembleCross(b *testing.B) {
	ctx := context.Background()
	lhs := sharedDense(b, 1, 512)
	rhs := sharedDense(b, 2, 768)

	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			e := pairwise.New(distance.MustNew(distance.MetricCosine), pairwise.WithWorkers(workers))
			defer e.Close()
			if err := e.Bind(lhs, rhs); err != nil {
				b.Fatal(err)
			}

			for b.Loop() {
				if _, err := e.Assemble(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCacheBuild(b *testing.B) {
	ctx := context.Background()
	h := sharedDense(b, 3, 1024)
	k, err := kernel.NewGaussian(8)
	if err != nil {
		b.Fatal(err)
	}

	e := pairwise.New(k, pairwise.WithPrecompute(true))
	defer e.Close()

	b.ReportAllocs()
	for b.Loop() {
		// Rebinding discards the cache.
		if err := e.Bind(h, h); err != nil {
			b.Fatal(err)
		}
		if err := e.EnsureBuilt(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluate(b *testing.B) {
	h := sharedDense(b, 4, 1024)

	for _, precompute := range []bool{false, true} {
		b.Run(fmt.Sprintf("precompute=%v", precompute), func(b *testing.B) {
			e := pairwise.New(distance.MustNew(distance.MetricL2), pairwise.WithPrecompute(precompute))
			defer e.Close()
			if err := e.Bind(h, h); err != nil {
				b.Fatal(err)
			}
			if precompute {
				if err := e.EnsureBuilt(context.Background()); err != nil {
					b.Fatal(err)
				}
			}

			rng := testutil.NewRNG(5)
			for b.Loop() {
				if _, err := e.Evaluate(rng.Intn(1024), rng.Intn(1024)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEvaluatePairs(b *testing.B) {
	h := sharedDense(b, 6, 2048)
	e := pairwise.New(distance.MustNew(distance.MetricL1))
	defer e.Close()
	if err := e.Bind(h, h); err != nil {
		b.Fatal(err)
	}

	rng := testutil.NewRNG(7)
	pairs := make([]pairwise.Pair, 10000)
	for i := range pairs {
		pairs[i] = pairwise.Pair{A: rng.Intn(2048), B: rng.Intn(2048)}
	}

	for b.Loop() {
		if _, err := e.EvaluatePairs(context.Background(), pairs); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAssembleRows(b *testing.B) {
	h := sharedDense(b, 8, 4096)
	e := pairwise.New(distance.MustNew(distance.MetricL2))
	defer e.Close()
	if err := e.Bind(h, h); err != nil {
		b.Fatal(err)
	}

	rows := roaring.New()
	for i := uint32(0); i < 4096; i += 64 {
		rows.Add(i)
	}

	for b.Loop() {
		if _, err := e.AssembleRows(context.Background(), rows); err != nil {
			b.Fatal(err)
		}
	}
}
