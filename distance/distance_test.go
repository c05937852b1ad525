package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pairwise/features"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 32},
		{"Zero", []float64{0, 0, 0}, []float64{0, 0, 0}, 0},
		{"Mixed", []float64{1, -1, 2}, []float64{1, 1, -2}, -4},
		{"Empty", []float64{}, []float64{}, 0},
		{"Single", []float64{2}, []float64{3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-12)
		})
	}
}

func TestL2(t *testing.T) {
	tests := []struct {
		name      string
		a, b      []float64
		l2, sq    float64
		manhattan float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, math.Sqrt(27), 27, 9},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0, 0, 0},
		{"Mixed", []float64{1, -1}, []float64{-1, 1}, math.Sqrt(8), 8, 4},
		{"Empty", []float64{}, []float64{}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.l2, L2(tt.a, tt.b), 1e-12)
			assert.InDelta(t, tt.sq, SquaredL2(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.manhattan, L1(tt.a, tt.b), 1e-12)
		})
	}
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{2, 0}), 1e-12)
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{0, 3}), 1e-12)
	assert.InDelta(t, 2.0, Cosine([]float64{1, 1}, []float64{-1, -1}), 1e-12)
	assert.Equal(t, 1.0, Cosine([]float64{0, 0}, []float64{1, 1}))
}

func TestHamming(t *testing.T) {
	assert.Equal(t, 0, Hamming([]byte{0xFF}, []byte{0xFF}))
	assert.Equal(t, 8, Hamming([]byte{0x00}, []byte{0xFF}))
	assert.Equal(t, 2, Hamming([]byte{0b1010_0001, 0x01}, []byte{0b1000_0001, 0x00}))
}

func TestMetric(t *testing.T) {
	for m, name := range metricNames {
		parsed, err := ParseMetric(name)
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
		assert.Equal(t, name, m.String())
	}

	m, err := ParseMetric(" Euclidean ")
	require.NoError(t, err)
	assert.Equal(t, MetricL2, m)

	m, err = ParseMetric("manhattan")
	require.NoError(t, err)
	assert.Equal(t, MetricL1, m)

	_, err = ParseMetric("chebyshev")
	assert.ErrorIs(t, err, ErrUnknownMetric)

	assert.Equal(t, "Unknown(42)", Metric(42).String())
	_, err = New(Metric(42))
	assert.ErrorIs(t, err, ErrUnknownMetric)
	assert.Panics(t, func() { MustNew(Metric(42)) })
}

func dense(t *testing.T, vectors ...[]float64) *features.Dense {
	t.Helper()
	d, err := features.NewDense(vectors)
	require.NoError(t, err)
	return d
}

func TestFormula(t *testing.T) {
	d := dense(t, []float64{0, 0}, []float64{3, 4}, []float64{1, 1})

	t.Run("Values", func(t *testing.T) {
		assert.InDelta(t, 5.0, MustNew(MetricL2).Compute(d, d, 0, 1), 1e-12)
		assert.InDelta(t, 25.0, MustNew(MetricSquaredL2).Compute(d, d, 0, 1), 1e-9)
		assert.InDelta(t, 7.0, MustNew(MetricL1).Compute(d, d, 0, 1), 1e-12)
		assert.InDelta(t, 7.0, MustNew(MetricDot).Compute(d, d, 1, 2), 1e-12)
		assert.InDelta(t, 1-7/(5*math.Sqrt2), MustNew(MetricCosine).Compute(d, d, 1, 2), 1e-12)
	})

	t.Run("Symmetric", func(t *testing.T) {
		for m := range metricNames {
			if m == MetricHamming {
				continue
			}
			f := MustNew(m)
			for i := range d.Len() {
				for j := range d.Len() {
					assert.Equal(t, f.Compute(d, d, i, j), f.Compute(d, d, j, i), "%s (%d,%d)", m, i, j)
				}
			}
		}
	})

	t.Run("SparseAgainstDense", func(t *testing.T) {
		s, err := features.NewSparse(2, []features.SparseVector{{Indices: []int{1}, Values: []float64{4}}})
		require.NoError(t, err)

		f := MustNew(MetricCosine)
		require.NoError(t, f.Validate(s, d))
		assert.InDelta(t, 1-4.0/5.0, f.Compute(s, d, 0, 1), 1e-12)
	})

	t.Run("Name", func(t *testing.T) {
		assert.Equal(t, "cosine", MustNew(MetricCosine).Name())
		assert.Equal(t, MetricCosine, MustNew(MetricCosine).Metric())
	})
}

func TestFormulaValidate(t *testing.T) {
	d2 := dense(t, []float64{0, 0})
	d3 := dense(t, []float64{0, 0, 0})
	codes, err := features.NewBinary(16, [][]byte{{0, 1}, {1, 0}})
	require.NoError(t, err)
	short, err := features.NewBinary(8, [][]byte{{0}})
	require.NoError(t, err)

	l2 := MustNew(MetricL2)
	assert.NoError(t, l2.Validate(d2, d2))
	assert.ErrorIs(t, l2.Validate(d2, d3), features.ErrDimensionMismatch)
	assert.ErrorIs(t, l2.Validate(codes, codes), ErrUnsupportedCollection)

	hamming := MustNew(MetricHamming)
	assert.NoError(t, hamming.Validate(codes, codes))
	assert.ErrorIs(t, hamming.Validate(codes, short), features.ErrDimensionMismatch)
	assert.ErrorIs(t, hamming.Validate(d2, d2), ErrUnsupportedCollection)

	assert.Equal(t, 2.0, hamming.Compute(codes, codes, 0, 1))
}
