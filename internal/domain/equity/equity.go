// Package equity models how much an employee values nominal equity
// compensation as the company matures.
package equity

import (
	"fmt"
	"math"
)

// Company stages on the 0 (seed) .. 1 (IPO) scale.
const (
	Seed    = 0.0
	SeriesA = 0.25
	SeriesB = 0.5
	IPO     = 1.0
)

// Multiple returns the value of equity to an employee as a multiple of its
// nominal value at stage t. Early equity is worth several times its nominal
// value; past the IPO it converges to slightly below nominal.
func Multiple(t float64) float64 {
	if t > IPO {
		return 1 - 0.25*math.Exp(-2*(t-1))
	}
	return 5*math.Exp(-5*t) + 2.5*math.Exp(6*(t-1))
}

// Point is one sample of the multiple curve.
type Point struct {
	Stage    float64 `json:"stage"`
	Multiple float64 `json:"multiple"`
}

// MaxSeriesPoints bounds the number of samples Series returns.
const MaxSeriesPoints = 10_000

// Series samples Multiple on [from, to) with the given step.
func Series(from, to, step float64) ([]Point, error) {
	for _, v := range []float64{from, to, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("stage bounds and step must be finite, got [%v, %v) step %v", from, to, step)
		}
	}
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %v", step)
	}
	if to < from {
		return nil, fmt.Errorf("empty stage interval [%v, %v)", from, to)
	}
	count := math.Ceil((to - from) / step)
	if count > MaxSeriesPoints {
		return nil, fmt.Errorf("%v points requested, at most %d allowed", count, MaxSeriesPoints)
	}
	n := int(count)
	out := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		t := from + float64(i)*step
		out = append(out, Point{Stage: t, Multiple: Multiple(t)})
	}
	return out, nil
}
