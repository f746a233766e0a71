// Package hiring evaluates a salary offer to a prospective employee against
// the salaries already paid.
package hiring

import (
	"math"

	"github.com/okian/fairpay/internal/domain/model"
)

// Inconsistency is an existing employee who produces more than the candidate
// but would be paid less.
type Inconsistency struct {
	Index     int     `json:"index"`
	Shortfall float64 `json:"shortfall"`
}

// SalaryRange is the span of offers that keep pay monotonic in productivity.
// A side is unbounded when nobody is on that side of the candidate.
type SalaryRange struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	HasMin     bool    `json:"has_min"`
	HasMax     bool    `json:"has_max"`
	Consistent bool    `json:"consistent"`
}

// Contains reports whether salary lies inside the range.
func (r SalaryRange) Contains(salary float64) bool {
	if r.HasMin && salary < r.Min {
		return false
	}
	if r.HasMax && salary > r.Max {
		return false
	}
	return true
}

// Assessment summarizes the effect of an offer.
type Assessment struct {
	Offer             model.SamplePoint `json:"offer"`
	ValueSurplus      float64           `json:"value_surplus"`
	Inconsistencies   []Inconsistency   `json:"inconsistencies"`
	InconsistencyCost float64           `json:"inconsistency_cost"`
	Range             SalaryRange       `json:"range"`
}

// Assess compares offer with every employee in d.
func Assess(d model.Dataset, offer model.SamplePoint) (Assessment, error) {
	if err := offer.Validate(); err != nil {
		return Assessment{}, err
	}

	a := Assessment{
		Offer:        offer,
		ValueSurplus: offer.ValueSurplus(),
	}
	lowerMax, higherMin := math.Inf(-1), math.Inf(1)
	for i, p := range d.Points() {
		switch {
		case p.Productivity < offer.Productivity:
			lowerMax = math.Max(lowerMax, p.Salary)
		case p.Productivity > offer.Productivity:
			higherMin = math.Min(higherMin, p.Salary)
			if p.Salary < offer.Salary {
				shortfall := offer.Salary - p.Salary
				a.Inconsistencies = append(a.Inconsistencies, Inconsistency{Index: i, Shortfall: shortfall})
				a.InconsistencyCost += shortfall
			}
		}
	}

	if !math.IsInf(lowerMax, -1) {
		a.Range.Min, a.Range.HasMin = lowerMax, true
	}
	if !math.IsInf(higherMin, 1) {
		a.Range.Max, a.Range.HasMax = higherMin, true
	}
	a.Range.Consistent = !a.Range.HasMin || !a.Range.HasMax || a.Range.Min <= a.Range.Max
	return a, nil
}
