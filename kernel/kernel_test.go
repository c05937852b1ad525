package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pairwise/distance"
	"github.com/hupe1980/pairwise/features"
)

func points(t *testing.T) *features.Dense {
	t.Helper()
	d, err := features.NewDense([][]float64{{0, 0}, {3, 4}, {1, 0}})
	require.NoError(t, err)
	return d
}

func TestExponential(t *testing.T) {
	d := points(t)

	k, err := NewExponential(distance.MustNew(distance.MetricL2), 2)
	require.NoError(t, err)

	assert.InDelta(t, math.Exp(-5.0/2), k.Compute(d, d, 0, 1), 1e-12)
	assert.Equal(t, 1.0, k.Compute(d, d, 2, 2))
	assert.Equal(t, 2.0, k.Width())
	assert.Equal(t, "exponential(l2)", k.Name())
	assert.NoError(t, k.Validate(d, d))
}

func TestGaussian(t *testing.T) {
	d := points(t)

	k, err := NewGaussian(10)
	require.NoError(t, err)

	assert.InDelta(t, math.Exp(-25.0/10), k.Compute(d, d, 0, 1), 1e-12)
	assert.Equal(t, k.Compute(d, d, 1, 2), k.Compute(d, d, 2, 1))
	assert.Equal(t, "gaussian", k.Name())
}

func TestInvalidWidth(t *testing.T) {
	for _, w := range []float64{0, -1, math.Inf(1), math.NaN()} {
		_, err := NewGaussian(w)
		assert.ErrorIs(t, err, ErrInvalidWidth)

		_, err = NewExponential(distance.MustNew(distance.MetricL1), w)
		assert.ErrorIs(t, err, ErrInvalidWidth)
	}

	_, err := NewExponential(nil, 1)
	assert.Error(t, err)
}

func TestLinear(t *testing.T) {
	d := points(t)
	k := NewLinear()

	assert.Equal(t, 3.0, k.Compute(d, d, 1, 2))
	assert.Equal(t, "linear", k.Name())

	codes, err := features.NewBinary(8, [][]byte{{1}})
	require.NoError(t, err)
	assert.ErrorIs(t, k.Validate(codes, codes), distance.ErrUnsupportedCollection)
}
