// Package testutil provides testing utilities for pairwise.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for dense, sparse and binary collections,
// simple reference formulas and a configurable fake collection.
//
// # Random Collections
//
//	rng := testutil.NewRNG(seed)
//	dense := rng.Dense(100, 16)           // uniform [0, 1)
//	codes := rng.Codes(100, 64)           // random binary codes
//
// # Reference Formulas
//
//	e := pairwise.New(testutil.AbsDiff{})
//	e.Bind(h, h)                          // h wraps testutil.Scalars(...)
package testutil
