package testutil

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/viterin/vek"

	"github.com/hupe1980/pairwise/features"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num, dimensions int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	vectors := make([][]float64, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float64()
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVectors generates L2-normalized random vectors (on the hypersphere).
func (r *RNG) UnitVectors(num, dimensions int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([][]float64, num)
	for i := range num {
		vec := make([]float64, dimensions)
		for j := range vec {
			vec[j] = r.rand.NormFloat64()
		}
		norm := vek.Norm(vec)
		if norm == 0 {
			norm = 1
		}
		vek.MulNumber_Inplace(vec, 1/norm)
		vectors[i] = vec
	}

	return vectors
}

// SparseVectors generates vectors with roughly density*dimensions non-zero entries each.
func (r *RNG) SparseVectors(num, dimensions int, density float64) []features.SparseVector {
	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([]features.SparseVector, num)
	for i := range num {
		var sv features.SparseVector
		for j := range dimensions {
			if r.rand.Float64() < density {
				sv.Indices = append(sv.Indices, j)
				sv.Values = append(sv.Values, r.rand.NormFloat64())
			}
		}
		vectors[i] = sv
	}

	return vectors
}

// Codes generates num random binary codes of the given bit width.
func (r *RNG) Codes(num, bits int) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	stride := (bits + 7) / 8
	codes := make([][]byte, num)
	for i := range num {
		code := make([]byte, stride)
		r.rand.Read(code)
		if rem := bits % 8; rem != 0 {
			code[stride-1] &= byte(1<<rem - 1)
		}
		codes[i] = code
	}

	return codes
}

// Dense builds a dense collection of uniform vectors. It panics on invalid sizes.
func (r *RNG) Dense(num, dimensions int) *features.Dense {
	d, err := features.NewDense(r.UniformVectors(num, dimensions))
	if err != nil {
		panic(err)
	}
	return d
}

// Scalars is a one-dimensional dense collection holding the given values.
func Scalars(values ...float64) *features.Dense {
	d, err := features.NewDenseFlat(1, append([]float64(nil), values...))
	if err != nil {
		panic(err)
	}
	return d
}

// AbsDiff is a symmetric test formula over one-dimensional float64
// collections: |lhs[a][0] - rhs[b][0]|.
type AbsDiff struct{}

// Compute returns the absolute difference of the first components.
func (AbsDiff) Compute(lhs, rhs features.Collection, a, b int) float64 {
	x := lhs.(features.Float64Source).Vector(a)[0]
	y := rhs.(features.Float64Source).Vector(b)[0]
	return math.Abs(x - y)
}

// Name implements the formula namer.
func (AbsDiff) Name() string { return "abs_diff" }

// Formula mirrors the engine's formula contract so helpers here do not
// import the engine package.
type Formula interface {
	Compute(lhs, rhs features.Collection, a, b int) float64
}

// Counting wraps a formula and counts Compute calls.
type Counting struct {
	Next  Formula
	calls atomic.Int64
}

// Compute delegates to Next and counts the call.
func (c *Counting) Compute(lhs, rhs features.Collection, a, b int) float64 {
	c.calls.Add(1)
	return c.Next.Compute(lhs, rhs, a, b)
}

// Calls returns the number of Compute calls so far.
func (c *Counting) Calls() int64 {
	return c.calls.Load()
}

// Reset zeroes the call counter.
func (c *Counting) Reset() {
	c.calls.Store(0)
}

// Collection is a configurable features.Collection for compatibility tests.
type Collection struct {
	N     int
	T     features.Type
	C     features.Class
	Cross func(features.Class) bool

	closed atomic.Int32
	CloseE error
}

func (c *Collection) Len() int              { return c.N }
func (c *Collection) Type() features.Type   { return c.T }
func (c *Collection) Class() features.Class { return c.C }

// SupportsCrossClass reports whether Cross is set.
func (c *Collection) SupportsCrossClass() bool { return c.Cross != nil }

// CompatibleWith consults Cross.
func (c *Collection) CompatibleWith(other features.Class) bool {
	return c.Cross != nil && c.Cross(other)
}

// Close records the call and returns CloseE.
func (c *Collection) Close() error {
	c.closed.Add(1)
	return c.CloseE
}

// Closed returns how often Close was called.
func (c *Collection) Closed() int {
	return int(c.closed.Load())
}
