// Package features defines the feature collections a pairwise engine compares.
//
// A Collection is an immutable set of feature vectors with a declared Type
// (element representation) and Class (storage layout). Collections are handed
// to an engine through reference-counted Handles so that the same collection
// can be bound by several engines at once and is released deterministically.
//
// # Built-in collections
//
//   - Dense: row-major float64 vectors (ClassDense)
//   - Sparse: index/value float64 vectors (ClassSparse, cross-class compatible with Dense)
//   - Binary: packed bit codes (ClassBinary)
//
// # Usage
//
//	dense, _ := features.NewDense(vectors)
//	h := features.Share(dense)
//	defer h.Release()
package features
