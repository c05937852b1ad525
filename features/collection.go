package features

import "fmt"

// Type is the element representation of a collection's vectors.
type Type int

const (
	TypeUnknown Type = iota
	TypeFloat64
	TypeUint8
)

func (t Type) String() string {
	switch t {
	case TypeUnknown:
		return "Unknown"
	case TypeFloat64:
		return "Float64"
	case TypeUint8:
		return "Uint8"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Class is the storage layout of a collection.
type Class int

const (
	ClassUnknown Class = iota
	ClassDense
	ClassSparse
	ClassBinary
)

func (c Class) String() string {
	switch c {
	case ClassUnknown:
		return "Unknown"
	case ClassDense:
		return "Dense"
	case ClassSparse:
		return "Sparse"
	case ClassBinary:
		return "Binary"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Collection is an immutable set of feature vectors.
//
// Implementations must be safe for concurrent reads. Mutating a collection
// while it is bound to an engine is undefined behavior.
type Collection interface {
	// Len returns the number of vectors.
	Len() int
	// Type returns the element representation.
	Type() Type
	// Class returns the storage layout.
	Class() Class
}

// CrossClassCompatible is implemented by collections that know how to
// interoperate with collections of another Class.
type CrossClassCompatible interface {
	// SupportsCrossClass reports whether CompatibleWith should be consulted.
	SupportsCrossClass() bool
	// CompatibleWith reports whether vectors of class c can be compared with this collection.
	CompatibleWith(c Class) bool
}

// Float64Source gives random access to float64 vectors.
//
// Vector returns the i-th vector. Dense collections return a view into their
// storage; others may materialize into a fresh slice. Callers must not modify
// the returned slice.
type Float64Source interface {
	Collection
	Dim() int
	Vector(i int) []float64
}

// CodeSource gives random access to packed binary codes.
type CodeSource interface {
	Collection
	// Bits returns the number of meaningful bits per code.
	Bits() int
	Code(i int) []byte
}

// SupportsCrossClass reports whether c declares cross-class compatibility.
func SupportsCrossClass(c Collection) bool {
	cc, ok := c.(CrossClassCompatible)
	return ok && cc.SupportsCrossClass()
}
