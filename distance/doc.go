// Package distance provides vector distance calculations.
//
// # Supported Metrics
//
//   - MetricL2: Euclidean distance (default)
//   - MetricSquaredL2: Squared Euclidean distance
//   - MetricL1: Manhattan distance
//   - MetricCosine: Cosine distance (1 - cosine similarity)
//   - MetricDot: Dot product (inner product)
//   - MetricHamming: Differing bits of binary codes
//
// # Usage
//
//	dist := distance.SquaredL2(a, b)
//	sim := distance.Dot(a, b)
//
//	e := pairwise.New(distance.MustNew(distance.MetricCosine))
package distance
