package features

import (
	"errors"
	"fmt"

	"github.com/viterin/vek"
)

// ErrDimensionMismatch is returned when vectors of a collection do not share one dimension.
var ErrDimensionMismatch = errors.New("features: dimension mismatch")

// ErrEmptyVector is returned for zero-dimensional vectors.
var ErrEmptyVector = errors.New("features: zero-dimensional vector")

// Dense is a collection of float64 vectors stored in a single row-major backing array.
type Dense struct {
	dim   int
	data  []float64
	norms []float64
}

// NewDense copies vectors into a Dense collection. All vectors must share one
// non-zero dimension. An empty input yields an empty collection.
func NewDense(vectors [][]float64) (*Dense, error) {
	if len(vectors) == 0 {
		return &Dense{}, nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, ErrEmptyVector
	}

	data := make([]float64, 0, len(vectors)*dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d", ErrDimensionMismatch, i, len(v), dim)
		}
		data = append(data, v...)
	}

	return newDense(dim, data), nil
}

// NewDenseFlat wraps an existing row-major buffer of len(data)/dim vectors.
// The buffer is not copied; it must not be modified afterwards.
func NewDenseFlat(dim int, data []float64) (*Dense, error) {
	if dim <= 0 {
		return nil, ErrEmptyVector
	}
	if len(data)%dim != 0 {
		return nil, fmt.Errorf("%w: buffer of %d values is not a multiple of %d", ErrDimensionMismatch, len(data), dim)
	}
	return newDense(dim, data), nil
}

func newDense(dim int, data []float64) *Dense {
	n := len(data) / dim
	norms := make([]float64, n)
	for i := range n {
		norms[i] = vek.Norm(data[i*dim : (i+1)*dim])
	}
	return &Dense{dim: dim, data: data, norms: norms}
}

// Len implements Collection.
func (d *Dense) Len() int {
	if d.dim == 0 {
		return 0
	}
	return len(d.data) / d.dim
}

// Type implements Collection.
func (d *Dense) Type() Type { return TypeFloat64 }

// Class implements Collection.
func (d *Dense) Class() Class { return ClassDense }

// Dim returns the vector dimension.
func (d *Dense) Dim() int { return d.dim }

// Vector returns a view of the i-th vector.
func (d *Dense) Vector(i int) []float64 {
	return d.data[i*d.dim : (i+1)*d.dim : (i+1)*d.dim]
}

// Norm returns the precomputed L2 norm of the i-th vector.
func (d *Dense) Norm(i int) float64 {
	return d.norms[i]
}
