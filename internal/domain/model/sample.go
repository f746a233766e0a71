// Package model contains domain models passed between the calibration stages.
package model

import (
	"fmt"
	"math"
	"sort"
)

// SamplePoint is one employee's observation.
type SamplePoint struct {
	Productivity float64 `json:"productivity"`
	Salary       float64 `json:"salary"`
}

// Validate rejects NaN, infinite and negative values.
func (p SamplePoint) Validate() error {
	if !isNonNegative(p.Productivity) {
		return fmt.Errorf("%w: productivity %v", ErrInvalidSample, p.Productivity)
	}
	if !isNonNegative(p.Salary) {
		return fmt.Errorf("%w: salary %v", ErrInvalidSample, p.Salary)
	}
	return nil
}

// ValueSurplus is the value an employee produces beyond what they are paid.
func (p SamplePoint) ValueSurplus() float64 {
	return p.Productivity - p.Salary
}

func isNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Dataset is an immutable, insertion-ordered collection of sample points.
// The zero value is an empty dataset.
type Dataset struct {
	points []SamplePoint
}

// NewDataset validates and copies points into a Dataset.
func NewDataset(points ...SamplePoint) (Dataset, error) {
	cp := make([]SamplePoint, len(points))
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return Dataset{}, fmt.Errorf("point %d: %w", i, err)
		}
		cp[i] = p
	}
	return Dataset{points: cp}, nil
}

// FromPairs builds a Dataset from (productivity, salary) pairs.
func FromPairs(pairs [][2]float64) (Dataset, error) {
	points := make([]SamplePoint, len(pairs))
	for i, pr := range pairs {
		points[i] = SamplePoint{Productivity: pr[0], Salary: pr[1]}
	}
	return NewDataset(points...)
}

// Len returns the number of points.
func (d Dataset) Len() int { return len(d.points) }

// At returns the i-th point in insertion order.
func (d Dataset) At(i int) SamplePoint { return d.points[i] }

// Points returns a copy of the points in insertion order.
func (d Dataset) Points() []SamplePoint {
	cp := make([]SamplePoint, len(d.points))
	copy(cp, d.points)
	return cp
}

// ByProductivity returns point indices ordered by ascending productivity.
// Equal productivities keep insertion order.
func (d Dataset) ByProductivity() []int {
	idx := make([]int, len(d.points))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return d.points[idx[a]].Productivity < d.points[idx[b]].Productivity
	})
	return idx
}
