package features

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Handle is a reference-counted, shared-ownership reference to a Collection.
//
// Share creates a handle holding one reference. Every Retain must be matched
// by a Release; when the last reference is released the collection is closed
// if it implements io.Closer. Two engines binding the same Handle share the
// same underlying collection, and identity comparisons between bound sides are
// made on the Handle.
type Handle struct {
	c        Collection
	refs     atomic.Int64
	released atomic.Bool
	closeErr error
}

// Share wraps c in a new Handle owning one reference.
func Share(c Collection) *Handle {
	h := &Handle{c: c}
	h.refs.Store(1)
	return h
}

// Collection returns the referenced collection.
func (h *Handle) Collection() Collection {
	return h.c
}

// Len is a shorthand for h.Collection().Len().
func (h *Handle) Len() int {
	return h.c.Len()
}

// Retain adds a reference and returns h.
// It panics if the handle has already been fully released.
func (h *Handle) Retain() *Handle {
	if !h.TryRetain() {
		panic("features: retain of released handle")
	}
	return h
}

// TryRetain adds a reference unless the handle has already been fully
// released, and reports whether it did.
func (h *Handle) TryRetain() bool {
	for {
		n := h.refs.Load()
		if n <= 0 {
			return false
		}
		if h.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference. The collection is closed when the count reaches zero.
// Releasing more often than retained panics.
func (h *Handle) Release() {
	n := h.refs.Add(-1)
	switch {
	case n < 0:
		panic(fmt.Sprintf("features: release of handle with %d references", n+1))
	case n == 0:
		// closeErr is published by the store to released.
		if closer, ok := h.c.(io.Closer); ok {
			h.closeErr = closer.Close()
		}
		h.released.Store(true)
	}
}

// Refs returns the current reference count.
func (h *Handle) Refs() int64 {
	return h.refs.Load()
}

// Released reports whether the last reference has been dropped.
func (h *Handle) Released() bool {
	return h.released.Load()
}

// CloseErr returns the error produced when the collection was closed, if any.
// It is nil until Released reports true.
func (h *Handle) CloseErr() error {
	if !h.released.Load() {
		return nil
	}
	return h.closeErr
}
