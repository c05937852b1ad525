package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDense_ColumnMajor(t *testing.T) {
	m, err := NewDense(2, 3)
	require.NoError(t, err)

	require.NoError(t, m.Set(1, 2, 7))
	assert.Equal(t, 7.0, m.Data()[1+2*2])

	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)

	row, err := m.Row(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 7}, row)

	col, err := m.Col(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 7}, col)
}

func TestDense_Errors(t *testing.T) {
	_, err := NewDense(-1, 2)
	assert.ErrorIs(t, err, ErrBadShape)

	_, err = FromColumnMajor(2, 2, []float64{1})
	assert.ErrorIs(t, err, ErrBadShape)

	m, err := NewDense(2, 2)
	require.NoError(t, err)

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, -1, 1), ErrOutOfRange)
	_, err = m.Row(5)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = m.Col(5)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestDense_Symmetry(t *testing.T) {
	m, err := FromColumnMajor(3, 3, []float64{
		0, 1, 2,
		1, 0, 1,
		2, 1, 0,
	})
	require.NoError(t, err)
	assert.True(t, m.IsSymmetric(0))

	require.NoError(t, m.Set(0, 1, 1.5))
	assert.False(t, m.IsSymmetric(0.1))
	assert.True(t, m.IsSymmetric(0.5))

	rect, err := NewDense(2, 3)
	require.NoError(t, err)
	assert.False(t, rect.IsSymmetric(1))
}

func TestDense_Conversions(t *testing.T) {
	m, err := FromColumnMajor(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	assert.Equal(t, []float32{1, 2, 3, 4}, m.Float32())
	assert.Equal(t, "[1 3]\n[2 4]\n", m.String())

	c := m.Clone()
	require.NoError(t, c.Set(0, 0, 9))
	v, _ := m.At(0, 0)
	assert.Equal(t, 1.0, v)
}
