// Package distance provides vector distance calculations and the distance
// formulas evaluated by pairwise engines.
// Float64 kernels come from github.com/viterin/vek, which dispatches to
// AVX2 implementations when available.
package distance

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/viterin/vek"

	"github.com/hupe1980/pairwise/features"
)

var (
	// ErrUnsupportedCollection is returned when a formula cannot read a collection.
	ErrUnsupportedCollection = errors.New("distance: unsupported collection")

	// ErrUnknownMetric is returned by ParseMetric and New for unknown metrics.
	ErrUnknownMetric = errors.New("distance: unknown metric")
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return vek.Dot(a, b)
}

// L2 calculates the Euclidean distance between two vectors.
func L2(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return vek.Distance(a, b)
}

// SquaredL2 calculates the squared Euclidean distance between two vectors.
func SquaredL2(a, b []float64) float64 {
	d := L2(a, b)
	return d * d
}

// L1 calculates the Manhattan distance between two vectors.
func L1(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return vek.ManhattanDistance(a, b)
}

// Cosine calculates the cosine distance 1 - a·b/(|a||b|).
// A zero vector is at distance 1 from everything.
func Cosine(a, b []float64) float64 {
	return cosineWithNorms(a, b, norm(a), norm(b))
}

func cosineWithNorms(a, b []float64, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - Dot(a, b)/(na*nb)
}

func norm(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return vek.Norm(v)
}

// Hamming counts the differing bits of two byte slices.
// Assumes slices are the same length.
func Hamming(a, b []byte) int {
	n := 0
	for i := range a {
		n += bits.OnesCount8(a[i] ^ b[i])
	}
	return n
}

// Metric represents the distance metric a Formula evaluates.
type Metric int

const (
	MetricL2 Metric = iota
	MetricSquaredL2
	MetricL1
	MetricCosine
	MetricDot
	MetricHamming
)

var metricNames = map[Metric]string{
	MetricL2:        "L2",
	MetricSquaredL2: "SquaredL2",
	MetricL1:        "L1",
	MetricCosine:    "Cosine",
	MetricDot:       "Dot",
	MetricHamming:   "Hamming",
}

func (m Metric) String() string {
	if s, ok := metricNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Unknown(%d)", int(m))
}

// ParseMetric parses a metric name case-insensitively. "euclidean" and
// "manhattan" are accepted as aliases of L2 and L1.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l2", "euclidean":
		return MetricL2, nil
	case "squaredl2", "squared_l2", "sqeuclidean":
		return MetricSquaredL2, nil
	case "l1", "manhattan":
		return MetricL1, nil
	case "cosine":
		return MetricCosine, nil
	case "dot":
		return MetricDot, nil
	case "hamming":
		return MetricHamming, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

// Formula evaluates a Metric between vectors of two collections. It
// satisfies pairwise.Formula, pairwise.Validator and pairwise.Namer.
//
// Float metrics read features.Float64Source collections; MetricHamming reads
// features.CodeSource collections.
type Formula struct {
	metric Metric
}

// New returns the formula for m.
func New(m Metric) (*Formula, error) {
	if _, ok := metricNames[m]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownMetric, m)
	}
	return &Formula{metric: m}, nil
}

// MustNew is like New but panics on an unknown metric.
func MustNew(m Metric) *Formula {
	f, err := New(m)
	if err != nil {
		panic(err)
	}
	return f
}

// Metric returns the formula's metric.
func (f *Formula) Metric() Metric { return f.metric }

// Name returns the lower-case metric name.
func (f *Formula) Name() string { return strings.ToLower(f.metric.String()) }

// Validate checks that both collections can be read by the metric and share
// one dimension (or code width).
func (f *Formula) Validate(lhs, rhs features.Collection) error {
	if f.metric == MetricHamming {
		l, ok1 := lhs.(features.CodeSource)
		r, ok2 := rhs.(features.CodeSource)
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: %s needs binary codes", ErrUnsupportedCollection, f.metric)
		}
		if l.Bits() != r.Bits() {
			return fmt.Errorf("%w: %d bit codes vs %d bit codes", features.ErrDimensionMismatch, l.Bits(), r.Bits())
		}
		return nil
	}

	l, ok1 := lhs.(features.Float64Source)
	r, ok2 := rhs.(features.Float64Source)
	if !ok1 || !ok2 {
		return fmt.Errorf("%w: %s needs float64 vectors", ErrUnsupportedCollection, f.metric)
	}
	if l.Dim() != r.Dim() {
		return fmt.Errorf("%w: dimension %d vs %d", features.ErrDimensionMismatch, l.Dim(), r.Dim())
	}
	return nil
}

// normer is implemented by collections with precomputed L2 norms.
type normer interface {
	Norm(i int) float64
}

// Compute returns the metric value between lhs vector a and rhs vector b.
func (f *Formula) Compute(lhs, rhs features.Collection, a, b int) float64 {
	if f.metric == MetricHamming {
		return float64(Hamming(lhs.(features.CodeSource).Code(a), rhs.(features.CodeSource).Code(b)))
	}

	x := lhs.(features.Float64Source).Vector(a)
	y := rhs.(features.Float64Source).Vector(b)

	switch f.metric {
	case MetricL2:
		return L2(x, y)
	case MetricSquaredL2:
		return SquaredL2(x, y)
	case MetricL1:
		return L1(x, y)
	case MetricCosine:
		return cosineWithNorms(x, y, vectorNorm(lhs, a, x), vectorNorm(rhs, b, y))
	case MetricDot:
		return Dot(x, y)
	default:
		return math.NaN()
	}
}

func vectorNorm(c features.Collection, i int, v []float64) float64 {
	if n, ok := c.(normer); ok {
		return n.Norm(i)
	}
	return norm(v)
}
