package pairwise

import (
	"sync"

	"github.com/hupe1980/pairwise/features"
)

// Engine computes pairwise values of a Formula over two bound feature collections.
//
// An Engine is safe for concurrent use. Bind, Replace*, Unbind and
// SetPrecompute serialize against each other; evaluations and assemblies
// work on a snapshot of the binding taken when they start and keep the bound
// collections alive until they return.
type Engine struct {
	formula Formula
	opts    options
	logger  *Logger

	mu     sync.RWMutex
	lhs    *features.Handle
	rhs    *features.Handle
	numLHS int
	numRHS int
	cache  *triangularCache
	closed bool
}

// New creates an unbound Engine evaluating formula.
func New(formula Formula, optFns ...Option) *Engine {
	if formula == nil {
		panic("pairwise: nil formula")
	}
	o := applyOptions(optFns)
	return &Engine{
		formula: formula,
		opts:    o,
		logger:  o.logger.WithFormula(formulaName(formula)),
	}
}

// Formula returns the engine's formula.
func (e *Engine) Formula() Formula {
	return e.formula
}

// Stats is a point-in-time description of an Engine.
type Stats struct {
	Bound      bool
	Self       bool
	NumLHS     int
	NumRHS     int
	Precompute bool
	CacheState CacheState
	CacheBytes int64
	Workers    int
}

// Stats returns a snapshot of the engine state.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Stats{
		Bound:      e.lhs != nil,
		Self:       e.lhs != nil && e.lhs == e.rhs,
		NumLHS:     e.numLHS,
		NumRHS:     e.numRHS,
		Precompute: e.opts.precompute,
		CacheState: CacheUnbuilt,
		Workers:    e.opts.workers,
	}
	if e.cache != nil {
		s.CacheState = e.cache.State()
		if s.CacheState == CacheBuilt {
			s.CacheBytes = e.cache.bytes()
		}
	}
	return s
}

// SetPrecompute switches precompute mode. Any existing cache is discarded.
func (e *Engine) SetPrecompute(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.precompute = enabled
	e.resetCacheLocked()
}

// Close unbinds both collections. Further operations return ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.unbindLocked()
	e.closed = true
	return nil
}

// view is an immutable snapshot of a binding used by evaluations and assemblies.
type view struct {
	formula Formula
	lhs     features.Collection
	rhs     features.Collection
	numLHS  int
	numRHS  int
	self    bool

	precompute bool
	cache      *triangularCache
	tri        []float32

	release func()
}

// acquireView snapshots the current binding and retains both handles.
// The caller must call v.release().
func (e *Engine) acquireView() (*view, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.viewLocked()
}

func (e *Engine) viewLocked() (*view, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if e.lhs == nil || e.rhs == nil {
		return nil, ErrNoFeaturesBound
	}

	lhs, rhs := e.lhs.Retain(), e.rhs.Retain()
	v := &view{
		formula: e.formula,
		lhs:     lhs.Collection(),
		rhs:     rhs.Collection(),
		numLHS:  e.numLHS,
		numRHS:  e.numRHS,
		self:    lhs == rhs,

		precompute: e.opts.precompute,
		release: func() {
			rhs.Release()
			lhs.Release()
		},
	}
	if e.opts.precompute && v.self {
		v.cache = e.cache
	}
	return v, nil
}
