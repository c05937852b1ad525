package pairwise

import (
	"context"
	"fmt"

	"github.com/hupe1980/pairwise/features"
)

// CheckCompatibility reports whether l and r may be bound together.
//
// Both must be non-nil and share one features.Type. For the class check the
// left side is consulted first: if l supports cross-class compatibility its
// verdict on r's class governs; otherwise, if r supports it, r's verdict on
// l's class governs; otherwise the classes must be equal.
//
// The returned error wraps ErrIncompatibleFeatures.
func CheckCompatibility(l, r features.Collection) error {
	if l == nil {
		return fmt.Errorf("%w: left hand side features must be set", ErrIncompatibleFeatures)
	}
	if r == nil {
		return fmt.Errorf("%w: right hand side features must be set", ErrIncompatibleFeatures)
	}

	if l.Type() != r.Type() {
		return fmt.Errorf("%w: right hand side features (%s) must be of same type as left hand side features (%s)",
			ErrIncompatibleFeatures, r.Type(), l.Type())
	}

	var ok bool
	switch {
	case features.SupportsCrossClass(l):
		ok = l.(features.CrossClassCompatible).CompatibleWith(r.Class())
	case features.SupportsCrossClass(r):
		ok = r.(features.CrossClassCompatible).CompatibleWith(l.Class())
	default:
		ok = l.Class() == r.Class()
	}
	if !ok {
		return fmt.Errorf("%w: right hand side features (%s) must be compatible with left hand side features (%s)",
			ErrIncompatibleFeatures, r.Class(), l.Class())
	}
	return nil
}

// Compatible is the boolean form of CheckCompatibility.
func Compatible(l, r features.Collection) bool {
	return CheckCompatibility(l, r) == nil
}

func handleCollection(h *features.Handle) features.Collection {
	if h == nil {
		return nil
	}
	return h.Collection()
}

func (e *Engine) validate(l, r *features.Handle) error {
	if l != nil && l.Released() {
		return fmt.Errorf("%w: left hand side features have been released", ErrIncompatibleFeatures)
	}
	if r != nil && r.Released() {
		return fmt.Errorf("%w: right hand side features have been released", ErrIncompatibleFeatures)
	}
	lc, rc := handleCollection(l), handleCollection(r)
	if err := CheckCompatibility(lc, rc); err != nil {
		return err
	}
	if v, ok := e.formula.(Validator); ok {
		if err := v.Validate(lc, rc); err != nil {
			return fmt.Errorf("%w: %w", ErrIncompatibleFeatures, err)
		}
	}
	return nil
}

// Bind associates l and r with the engine.
//
// On success the engine holds one reference to each handle, releases the
// previously bound pair and discards any triangular cache. Passing the same
// handle twice binds a self comparison. On failure nothing changes.
func (e *Engine) Bind(l, r *features.Handle) error {
	err := e.bind(l, r)
	e.opts.metricsCollector.RecordBind(err)
	return err
}

func (e *Engine) bind(l, r *features.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if err := e.validate(l, r); err != nil {
		e.logger.LogBind(context.Background(), "bind", 0, 0, false, err)
		return err
	}

	// Retain before releasing: rebinding the current pair must not drop it to zero.
	if !l.TryRetain() {
		return errReleasedBind(e, "bind", "left")
	}
	if !r.TryRetain() {
		l.Release()
		return errReleasedBind(e, "bind", "right")
	}
	e.unbindLocked()

	e.lhs, e.rhs = l, r
	e.numLHS, e.numRHS = l.Len(), r.Len()
	e.resetCacheLocked()

	e.logger.LogBind(context.Background(), "bind", e.numLHS, e.numRHS, l == r, nil)
	return nil
}

// ReplaceLHS swaps in a new left-hand side, checked against the current
// right-hand side. It returns the previous left-hand handle; the engine's
// reference to it is transferred to the caller, who must Release it.
func (e *Engine) ReplaceLHS(l *features.Handle) (*features.Handle, error) {
	prev, err := e.replace(l, true)
	e.opts.metricsCollector.RecordBind(err)
	return prev, err
}

// ReplaceRHS swaps in a new right-hand side, checked against the current
// left-hand side. It returns the previous right-hand handle; the engine's
// reference to it is transferred to the caller, who must Release it.
func (e *Engine) ReplaceRHS(r *features.Handle) (*features.Handle, error) {
	prev, err := e.replace(r, false)
	e.opts.metricsCollector.RecordBind(err)
	return prev, err
}

func (e *Engine) replace(h *features.Handle, left bool) (*features.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	op := "replace_rhs"
	if left {
		op = "replace_lhs"
	}

	if e.closed {
		return nil, ErrClosed
	}

	var err error
	if left {
		err = e.validate(h, e.rhs)
	} else {
		err = e.validate(e.lhs, h)
	}
	if err != nil {
		e.logger.LogBind(context.Background(), op, e.numLHS, e.numRHS, false, err)
		return nil, err
	}

	if !h.TryRetain() {
		side := "right"
		if left {
			side = "left"
		}
		return nil, errReleasedBind(e, op, side)
	}
	var prev *features.Handle
	if left {
		prev = e.lhs
		e.lhs, e.numLHS = h, h.Len()
	} else {
		prev = e.rhs
		e.rhs, e.numRHS = h, h.Len()
	}
	e.resetCacheLocked()

	e.logger.LogBind(context.Background(), op, e.numLHS, e.numRHS, e.lhs == e.rhs, nil)
	return prev, nil
}

// errReleasedBind reports a handle whose last reference was dropped after it
// passed validation.
func errReleasedBind(e *Engine, op, side string) error {
	err := fmt.Errorf("%w: %s hand side features have been released", ErrIncompatibleFeatures, side)
	e.logger.LogBind(context.Background(), op, e.numLHS, e.numRHS, false, err)
	return err
}

// Unbind releases both bound collections unconditionally.
func (e *Engine) Unbind() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.unbindLocked()
}

func (e *Engine) unbindLocked() {
	if e.rhs != nil {
		e.rhs.Release()
		e.rhs = nil
	}
	e.numRHS = 0

	if e.lhs != nil {
		e.lhs.Release()
		e.lhs = nil
	}
	e.numLHS = 0

	e.resetCacheLocked()
}

func (e *Engine) resetCacheLocked() {
	if e.cache != nil {
		e.cache.retire()
		e.cache = nil
	}
	if e.opts.precompute && e.lhs != nil && e.lhs == e.rhs {
		e.cache = newTriangularCache(e.opts.resources)
	}
}
