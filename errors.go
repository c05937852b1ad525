package pairwise

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompatibleFeatures is returned by Bind and Replace* when the two
	// collections differ in type or fail the class compatibility rule.
	ErrIncompatibleFeatures = errors.New("pairwise: incompatible features")

	// ErrIndexOutOfRange is matched by every *IndexOutOfRangeError.
	ErrIndexOutOfRange = errors.New("pairwise: index out of range")

	// ErrNoFeaturesBound is returned when an operation needs a binding and there is none.
	ErrNoFeaturesBound = errors.New("pairwise: no features bound")

	// ErrPrecomputeDisabled is returned by EnsureBuilt when precompute mode is off.
	ErrPrecomputeDisabled = errors.New("pairwise: precompute mode disabled")

	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("pairwise: engine closed")
)

// IndexOutOfRangeError reports a pair of indices outside the valid ranges.
// LimitA and LimitB are exclusive upper bounds.
type IndexOutOfRangeError struct {
	IdxA, IdxB     int
	LimitA, LimitB int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("pairwise: idx_a (%d) must be in [0,%d] and idx_b (%d) must be in [0,%d]",
		e.IdxA, e.LimitA-1, e.IdxB, e.LimitB-1)
}

// Is makes errors.Is(err, ErrIndexOutOfRange) succeed.
func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// InvariantViolationError is the panic value raised when an internal
// precondition is broken, e.g. building a triangular cache for two distinct
// collections. It signals a programming error and is never returned.
type InvariantViolationError struct {
	Op     string
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("pairwise: invariant violated in %s: %s", e.Op, e.Detail)
}
