// Package kernel provides kernel formulas built on distances.
//
//	k, _ := kernel.NewGaussian(2.0)
//	e := pairwise.New(k)
package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/pairwise/distance"
	"github.com/hupe1980/pairwise/features"
)

// ErrInvalidWidth is returned for non-positive or non-finite kernel widths.
var ErrInvalidWidth = errors.New("kernel: width must be positive and finite")

// Distance is the formula contract a kernel is built on.
type Distance interface {
	Compute(lhs, rhs features.Collection, a, b int) float64
}

type validator interface {
	Validate(lhs, rhs features.Collection) error
}

type namer interface {
	Name() string
}

// Exponential is the kernel exp(-d(a, b)/width) over a distance d.
type Exponential struct {
	dist  Distance
	width float64
	name  string
}

// NewExponential returns exp(-d/width) for the distance d.
func NewExponential(d Distance, width float64) (*Exponential, error) {
	if d == nil {
		return nil, errors.New("kernel: nil distance")
	}
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	name := "custom"
	if n, ok := d.(namer); ok {
		name = n.Name()
	}
	return &Exponential{dist: d, width: width, name: "exponential(" + name + ")"}, nil
}

// NewGaussian returns the Gaussian (RBF) kernel exp(-|a-b|^2/width).
func NewGaussian(width float64) (*Exponential, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	return &Exponential{
		dist:  distance.MustNew(distance.MetricSquaredL2),
		width: width,
		name:  "gaussian",
	}, nil
}

func checkWidth(width float64) error {
	if width <= 0 || math.IsInf(width, 0) || math.IsNaN(width) {
		return fmt.Errorf("%w: %v", ErrInvalidWidth, width)
	}
	return nil
}

// Width returns the kernel width.
func (k *Exponential) Width() float64 { return k.width }

// Name returns the kernel name.
func (k *Exponential) Name() string { return k.name }

// Compute returns exp(-d(a, b)/width).
func (k *Exponential) Compute(lhs, rhs features.Collection, a, b int) float64 {
	return math.Exp(-k.dist.Compute(lhs, rhs, a, b) / k.width)
}

// Validate delegates to the underlying distance.
func (k *Exponential) Validate(lhs, rhs features.Collection) error {
	if v, ok := k.dist.(validator); ok {
		return v.Validate(lhs, rhs)
	}
	return nil
}

// Linear is the kernel <a, b> over float64 vectors.
type Linear struct {
	dot *distance.Formula
}

// NewLinear returns the linear kernel.
func NewLinear() *Linear {
	return &Linear{dot: distance.MustNew(distance.MetricDot)}
}

// Name returns "linear".
func (*Linear) Name() string { return "linear" }

// Compute returns the dot product of lhs vector a and rhs vector b.
func (k *Linear) Compute(lhs, rhs features.Collection, a, b int) float64 {
	return k.dot.Compute(lhs, rhs, a, b)
}

// Validate requires float64 vectors of one dimension.
func (k *Linear) Validate(lhs, rhs features.Collection) error {
	return k.dot.Validate(lhs, rhs)
}
