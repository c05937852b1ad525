package pairwise

import "github.com/hupe1980/pairwise/features"

// Formula computes the scalar value (distance or kernel) of one index pair.
//
// a indexes lhs and b indexes rhs. Compute is called concurrently from many
// workers and must not mutate shared state. When lhs and rhs are the same
// collection, Compute(a, b) must equal Compute(b, a): the triangular cache and
// symmetric assembly only evaluate one half.
type Formula interface {
	Compute(lhs, rhs features.Collection, a, b int) float64
}

// FormulaFunc adapts a function to Formula.
type FormulaFunc func(lhs, rhs features.Collection, a, b int) float64

// Compute implements Formula.
func (f FormulaFunc) Compute(lhs, rhs features.Collection, a, b int) float64 {
	return f(lhs, rhs, a, b)
}

// Validator is implemented by formulas that accept only some collections
// (for example a Euclidean distance that needs float64 vectors of equal
// dimension). Validate runs on every bind and replace; a failure rejects the
// binding with ErrIncompatibleFeatures.
type Validator interface {
	Validate(lhs, rhs features.Collection) error
}

// Namer is implemented by formulas that report a name for logs.
type Namer interface {
	Name() string
}

func formulaName(f Formula) string {
	if n, ok := f.(Namer); ok {
		return n.Name()
	}
	return "custom"
}
