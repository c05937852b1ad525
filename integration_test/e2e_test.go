package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/pairwise"
	"github.com/hupe1980/pairwise/config"
	"github.com/hupe1980/pairwise/distance"
	"github.com/hupe1980/pairwise/features"
	"github.com/hupe1980/pairwise/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_Restart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	path := filepath.Join(dir, "pairwise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  precompute: true
  workers: 3
formula:
  metric: l2
  kernel: gaussian
  width: 4
storage:
  backend: local
  path: `+filepath.Join(dir, "data")+`
  compression: zstd
metrics:
  prometheus: true
`), 0o600))

	// 1. Assemble and persist
	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	formula, err := cfg.BuildFormula()
	require.NoError(t, err)
	opts, err := cfg.EngineOptions(prometheus.NewRegistry())
	require.NoError(t, err)

	e := pairwise.New(formula, opts...)
	h := features.Share(testutil.NewRNG(42).Dense(64, 8))
	require.NoError(t, e.Bind(h, h))
	h.Release()

	require.NoError(t, e.EnsureBuilt(ctx))
	m, err := e.Assemble(ctx)
	require.NoError(t, err)
	require.NoError(t, e.Close())

	rc, err := cfg.ResourceController()
	require.NoError(t, err)
	store, err := cfg.MatrixStore(ctx, rc)
	require.NoError(t, err)

	man, err := store.Save(ctx, "rbf", m)
	require.NoError(t, err)
	assert.True(t, man.Symmetric)

	// 2. Reopen from the same config and verify
	cfg, err = config.LoadFromFile(path)
	require.NoError(t, err)
	store, err = cfg.MatrixStore(ctx, rc)
	require.NoError(t, err)

	got, loaded, err := store.Load(ctx, "rbf")
	require.NoError(t, err)
	assert.Equal(t, m.Data(), got.Data())
	assert.Equal(t, man.Checksum, loaded.Checksum)

	for i := range got.Rows() {
		v, err := got.At(i, i)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v, 1e-6, "k(x, x) = 1")
	}
}

func TestE2E_DenseSparseCross(t *testing.T) {
	ctx := context.Background()

	dense, err := features.NewDense([][]float64{
		{1, 0, 0, 2},
		{0, 3, 0, 0},
		{0, 0, 0, 0},
	})
	require.NoError(t, err)
	sparse, err := features.NewSparse(4, []features.SparseVector{
		{Indices: []int{0, 3}, Values: []float64{1, 2}},
		{Indices: []int{1}, Values: []float64{3}},
		{},
	})
	require.NoError(t, err)

	ld, rs := features.Share(dense), features.Share(sparse)
	defer ld.Release()
	defer rs.Release()

	e := pairwise.New(distance.MustNew(distance.MetricL2))
	defer e.Close()
	require.NoError(t, e.Bind(ld, rs))

	cross, err := e.Assemble(ctx)
	require.NoError(t, err)

	require.NoError(t, e.Bind(ld, ld))
	self, err := e.Assemble(ctx)
	require.NoError(t, err)

	assert.InDeltaSlice(t, self.Data(), cross.Data(), 1e-12)
}

func TestE2E_ReplaceKeepsOtherSide(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(3)

	a := features.Share(rng.Dense(10, 4))
	b := features.Share(rng.Dense(6, 4))
	c := features.Share(rng.Dense(3, 4))
	defer a.Release()
	defer b.Release()
	defer c.Release()

	e := pairwise.New(distance.MustNew(distance.MetricL1))
	defer e.Close()
	require.NoError(t, e.Bind(a, b))

	prev, err := e.ReplaceRHS(c)
	require.NoError(t, err)
	assert.Same(t, b, prev)
	prev.Release()

	m, err := e.Assemble(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, m.Rows())
	assert.Equal(t, 3, m.Cols())

	want, err := e.Evaluate(9, 2)
	require.NoError(t, err)
	got, err := m.At(9, 2)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
