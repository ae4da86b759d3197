// Package correlation holds similarity evaluation outcomes.
package correlation

import (
	"fmt"
	"math"
)

// MethodOracle is the label of the similarity-oracle measure.
const MethodOracle = "wikisim"

// Result maps a similarity method label to its rank correlation.
// A nil value means the measure was unavailable (no comparable pairs).
type Result map[string]*float64

// Set records a coefficient; NaN is stored as unavailable.
func (r Result) Set(method string, rho float64) {
	if math.IsNaN(rho) {
		r[method] = nil
		return
	}
	v := rho
	r[method] = &v
}

// SetUnavailable records a measure that produced no comparable pairs.
func (r Result) SetUnavailable(method string) {
	r[method] = nil
}

// Alphas returns the eleven blend weights 0.0, 0.1, ..., 1.0.
func Alphas() []float64 {
	out := make([]float64, 11)
	for k := range out {
		out[k] = float64(k) / 10.0
	}
	return out
}

// AlphaLabel formats a blend weight as "alpha=0.3".
func AlphaLabel(alpha float64) string {
	return fmt.Sprintf("alpha=%.1f", alpha)
}

// Point is the correlation at one blend weight.
type Point struct {
	Alpha float64
	Rho   float64
}

// Sweep is the outcome of a convex combination sweep.
type Sweep struct {
	points  []Point
	aligned int
}

// NewSweep creates a sweep over an aligned subset of the given size.
func NewSweep(points []Point, aligned int) Sweep {
	return Sweep{points: points, aligned: aligned}
}

// Points returns per-weight correlations in ascending alpha order.
func (s Sweep) Points() []Point { return s.points }

// Aligned returns the number of pairs that entered the sweep.
func (s Sweep) Aligned() int { return s.aligned }

// IsEmpty reports whether no pair survived alignment.
func (s Sweep) IsEmpty() bool { return len(s.points) == 0 }

// Labeled returns the sweep keyed by alpha label. NaN values map to nil.
func (s Sweep) Labeled() Result {
	out := make(Result, len(s.points))
	for _, p := range s.points {
		out.Set(AlphaLabel(p.Alpha), p.Rho)
	}
	return out
}

// Best returns the point with the highest finite correlation.
// Ties keep the smaller alpha. False when no point is finite.
func (s Sweep) Best() (Point, bool) {
	var best Point
	found := false
	for _, p := range s.points {
		if math.IsNaN(p.Rho) {
			continue
		}
		if !found || p.Rho > best.Rho {
			best = p
			found = true
		}
	}
	return best, found
}
