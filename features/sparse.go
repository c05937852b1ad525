package features

import (
	"fmt"
	"slices"
)

// SparseVector is one vector of a Sparse collection.
// Indices must be unique and smaller than the collection dimension.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Sparse is a collection of float64 vectors stored as index/value pairs.
//
// Sparse declares cross-class compatibility with Dense: both expose
// Float64Source, so formulas written against that interface accept a
// Dense/Sparse pairing.
type Sparse struct {
	dim     int
	vectors []SparseVector
}

// NewSparse validates and copies vectors into a Sparse collection of the given dimension.
func NewSparse(dim int, vectors []SparseVector) (*Sparse, error) {
	if dim <= 0 {
		return nil, ErrEmptyVector
	}

	out := make([]SparseVector, len(vectors))
	for i, v := range vectors {
		if len(v.Indices) != len(v.Values) {
			return nil, fmt.Errorf("%w: vector %d has %d indices and %d values", ErrDimensionMismatch, i, len(v.Indices), len(v.Values))
		}
		seen := make(map[int]struct{}, len(v.Indices))
		for _, idx := range v.Indices {
			if idx < 0 || idx >= dim {
				return nil, fmt.Errorf("%w: vector %d index %d outside [0,%d)", ErrDimensionMismatch, i, idx, dim)
			}
			if _, dup := seen[idx]; dup {
				return nil, fmt.Errorf("features: vector %d repeats index %d", i, idx)
			}
			seen[idx] = struct{}{}
		}
		out[i] = SparseVector{
			Indices: slices.Clone(v.Indices),
			Values:  slices.Clone(v.Values),
		}
	}

	return &Sparse{dim: dim, vectors: out}, nil
}

// Len implements Collection.
func (s *Sparse) Len() int { return len(s.vectors) }

// Type implements Collection.
func (s *Sparse) Type() Type { return TypeFloat64 }

// Class implements Collection.
func (s *Sparse) Class() Class { return ClassSparse }

// Dim returns the vector dimension.
func (s *Sparse) Dim() int { return s.dim }

// SupportsCrossClass implements CrossClassCompatible.
func (s *Sparse) SupportsCrossClass() bool { return true }

// CompatibleWith implements CrossClassCompatible.
func (s *Sparse) CompatibleWith(c Class) bool {
	return c == ClassSparse || c == ClassDense
}

// Vector materializes the i-th vector into a freshly allocated dense slice.
func (s *Sparse) Vector(i int) []float64 {
	out := make([]float64, s.dim)
	v := s.vectors[i]
	for k, idx := range v.Indices {
		out[idx] = v.Values[k]
	}
	return out
}

// NonZeros returns the number of stored entries of the i-th vector.
func (s *Sparse) NonZeros(i int) int {
	return len(s.vectors[i].Indices)
}
