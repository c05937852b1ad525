package pairwise

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pairwise/features"
	"github.com/hupe1980/pairwise/progress"
	"github.com/hupe1980/pairwise/resource"
	"github.com/hupe1980/pairwise/testutil"
)

func TestAssembleIndexDifference(t *testing.T) {
	e := New(indexDiff)
	h := share(t, fake(3, features.ClassDense))
	require.NoError(t, e.Bind(h, h))

	m, err := e.Assemble(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, m.Rows())
	require.Equal(t, 3, m.Cols())

	want := [][]float64{{0, 1, 2}, {1, 0, 1}, {2, 1, 0}}
	for i := range 3 {
		row, err := m.Row(i)
		require.NoError(t, err)
		assert.Equal(t, want[i], row)
	}
}

func TestAssembleNoFeaturesBound(t *testing.T) {
	e := New(indexDiff)

	_, err := e.Assemble(context.Background())
	assert.ErrorIs(t, err, ErrNoFeaturesBound)
}

func TestAssembleColumnMajor(t *testing.T) {
	e := New(testutil.AbsDiff{})
	l := share(t, testutil.Scalars(1, 2, 3))
	r := share(t, testutil.Scalars(10, 20))
	require.NoError(t, e.Bind(l, r))

	m, err := e.Assemble(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 8, 7, 19, 18, 17}, m.Data())
}

func TestAssembleMatchesEvaluate(t *testing.T) {
	rng := testutil.NewRNG(99)

	for _, workers := range []int{1, 3, 8} {
		for _, precompute := range []bool{false, true} {
			e := New(l2, WithWorkers(workers), WithPrecompute(precompute))

			t.Run("Self", func(t *testing.T) {
				h := share(t, rng.Dense(67, 4))
				require.NoError(t, e.Bind(h, h))

				m, err := e.Assemble(context.Background())
				require.NoError(t, err)
				assert.True(t, m.IsSymmetric(0))

				n := 67
				data := m.Data()
				for i := range n {
					for j := range n {
						require.Equal(t, data[i+j*n], data[j+i*n])
						want, err := e.Evaluate(i, j)
						require.NoError(t, err)
						require.Equal(t, want, data[i+j*n])
					}
				}
			})

			t.Run("Rectangular", func(t *testing.T) {
				l := share(t, rng.Dense(31, 4))
				r := share(t, rng.Dense(45, 4))
				require.NoError(t, e.Bind(l, r))

				m, err := e.Assemble(context.Background())
				require.NoError(t, err)
				for i := range 31 {
					for j := range 45 {
						want, err := e.Evaluate(i, j)
						require.NoError(t, err)
						got, err := m.At(i, j)
						require.NoError(t, err)
						require.Equal(t, want, got)
					}
				}
			})
		}
	}
}

func TestAssembleSymmetricSkipsLowerTriangle(t *testing.T) {
	counting := &testutil.Counting{Next: indexDiff}
	e := New(counting, WithWorkers(4))
	h := share(t, fake(40, features.ClassDense))
	require.NoError(t, e.Bind(h, h))

	_, err := e.Assemble(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(40*41/2), counting.Calls())

	t.Run("EqualSizedCopiesEvaluateEverything", func(t *testing.T) {
		counting.Reset()
		other := share(t, fake(40, features.ClassDense))
		require.NoError(t, e.Bind(h, other))

		_, err := e.Assemble(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(40*40), counting.Calls())
	})
}

func TestAssembleFromCache(t *testing.T) {
	counting := &testutil.Counting{Next: indexDiff}
	e := New(counting, WithWorkers(4), WithPrecompute(true))
	h := share(t, fake(25, features.ClassDense))
	require.NoError(t, e.Bind(h, h))

	m1, err := e.Assemble(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(25*26/2), counting.Calls(), "cache built once, assembly reads it")

	m2, err := e.Assemble(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(25*26/2), counting.Calls())
	assert.Equal(t, m1.Data(), m2.Data())
}

func TestAssembleEmpty(t *testing.T) {
	e := New(indexDiff)
	l := share(t, fake(0, features.ClassDense))
	r := share(t, fake(4, features.ClassDense))
	require.NoError(t, e.Bind(l, r))

	m, err := e.Assemble(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, m.Rows())
	assert.Equal(t, 4, m.Cols())
	assert.Empty(t, m.Data())
}

func TestAssembleCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int64
	slow := FormulaFunc(func(_, _ features.Collection, a, b int) float64 {
		if calls.Add(1) == 500 {
			cancel()
		}
		return 1
	})

	e := New(slow, WithWorkers(2))
	h := share(t, fake(300, features.ClassDense))
	require.NoError(t, e.Bind(h, h))

	m, err := e.Assemble(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, m)

	var filled, zero int
	for _, v := range m.Data() {
		switch v {
		case 1:
			filled++
		case 0:
			zero++
		default:
			t.Fatalf("unexpected value %v", v)
		}
	}
	assert.Positive(t, filled)
	assert.Positive(t, zero)
	assert.Less(t, calls.Load(), int64(300*301/2))
}

func TestAssembleProgress(t *testing.T) {
	var last, total atomic.Int64
	sink := progress.Func(func(completed, tot int64) {
		last.Store(completed)
		total.Store(tot)
	})

	e := New(indexDiff, WithWorkers(3), WithProgress(sink))
	h := share(t, fake(20, features.ClassDense))
	require.NoError(t, e.Bind(h, h))

	_, err := e.Assemble(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(20), total.Load())
	assert.Equal(t, int64(20), last.Load())
}

func TestAssembleResourceSlots(t *testing.T) {
	rc := resource.NewController(resource.Config{MaxConcurrentAssemblies: 1})
	e := New(indexDiff, WithResourceController(rc))
	h := share(t, fake(5, features.ClassDense))
	require.NoError(t, e.Bind(h, h))

	require.True(t, rc.TryAcquireAssembly())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := e.Assemble(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	rc.ReleaseAssembly()
	_, err = e.Assemble(context.Background())
	assert.NoError(t, err)
}

func TestAssembleRecordsMetrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	e := New(indexDiff, WithMetricsCollector(mc))
	_, _ = e.Assemble(context.Background())

	h := share(t, fake(4, features.ClassDense))
	require.NoError(t, e.Bind(h, h))
	_, err := e.Assemble(context.Background())
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.AssembleCount)
	assert.Equal(t, int64(1), stats.AssembleErrors)
	assert.Equal(t, int64(16), stats.AssembleCells)
}

func TestAssembleRows(t *testing.T) {
	e := New(testutil.AbsDiff{}, WithWorkers(2))
	l := share(t, testutil.Scalars(1, 2, 3, 4, 5))
	r := share(t, testutil.Scalars(10, 20))
	require.NoError(t, e.Bind(l, r))

	m, err := e.AssembleRows(context.Background(), roaring.BitmapOf(4, 0, 2))
	require.NoError(t, err)
	require.Equal(t, 3, m.Rows())
	require.Equal(t, 2, m.Cols())

	for k, a := range []int{0, 2, 4} {
		row, err := m.Row(k)
		require.NoError(t, err)
		want, err := e.Row(a)
		require.NoError(t, err)
		assert.Equal(t, want, row)
	}

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := e.AssembleRows(context.Background(), roaring.BitmapOf(1, 5))
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	t.Run("Empty", func(t *testing.T) {
		m, err := e.AssembleRows(context.Background(), roaring.New())
		require.NoError(t, err)
		assert.Equal(t, 0, m.Rows())

		m, err = e.AssembleRows(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Rows())
	})

	t.Run("SelfComparison", func(t *testing.T) {
		e := New(testutil.AbsDiff{}, WithPrecompute(true))
		require.NoError(t, e.Bind(l, l))

		m, err := e.AssembleRows(context.Background(), roaring.BitmapOf(3))
		require.NoError(t, err)
		row, err := m.Row(0)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 2, 1, 0, 1}, row)
	})
}
