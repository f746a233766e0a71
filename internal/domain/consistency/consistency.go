// Package consistency computes the raises that make salaries monotonic in
// productivity: nobody is paid less than a colleague who produces less.
package consistency

import (
	"math"

	"github.com/okian/fairpay/internal/domain/model"
)

// Floors returns, for each point in insertion order, the highest salary paid
// to anyone with productivity less than or equal to that point's. Points with
// equal productivity share a floor.
func Floors(d model.Dataset) []float64 {
	floors := make([]float64, d.Len())
	order := d.ByProductivity()

	running := math.Inf(-1)
	for start := 0; start < len(order); {
		x := d.At(order[start]).Productivity

		// fold the whole tie group into the running maximum first
		end := start
		for end < len(order) && d.At(order[end]).Productivity == x {
			running = math.Max(running, d.At(order[end]).Salary)
			end++
		}
		for _, i := range order[start:end] {
			floors[i] = running
		}
		start = end
	}
	return floors
}

// Calibrate returns the non-negative raise each point needs to reach its
// floor, aligned with the dataset's insertion order. After applying the
// raises, productivity_i <= productivity_j implies pay_i <= pay_j.
func Calibrate(d model.Dataset) []float64 {
	floors := Floors(d)
	adj := make([]float64, len(floors))
	for i, f := range floors {
		adj[i] = math.Max(0, f-d.At(i).Salary)
	}
	return adj
}

// Inconsistent returns the indices with a positive adjustment.
func Inconsistent(adjustments []float64) []int {
	var out []int
	for i, a := range adjustments {
		if a > 0 {
			out = append(out, i)
		}
	}
	return out
}

// Total sums adjustments.
func Total(adjustments []float64) float64 {
	var sum float64
	for _, a := range adjustments {
		sum += a
	}
	return sum
}
