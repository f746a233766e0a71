// Package market places salaries relative to a fitted market curve and
// computes the raise needed to reach the market floor.
package market

import (
	"fmt"
	"math"

	"github.com/okian/fairpay/internal/domain/model"
)

const defaultMultiplier = 1.0

// Result is the classification of a single point.
type Result struct {
	Classification model.Classification `json:"classification"`
	Gap            float64              `json:"gap"`
	CurveValue     float64              `json:"curve_value"`
	LowEdge        float64              `json:"low_edge"`
	MidEdge        float64              `json:"mid_edge"`
	HighEdge       float64              `json:"high_edge"`
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithMultiplier scales the curve uniformly before comparison, e.g. 1.1 to
// pay 10% over market. Invalid values are reported by NewClassifier.
func WithMultiplier(m float64) Option {
	return func(c *Classifier) {
		c.multiplier = m
	}
}

// Classifier compares salaries against band edges derived from a curve.
type Classifier struct {
	curve      model.CurveParams
	bounds     model.BandBounds
	multiplier float64
}

// NewClassifier validates bounds and multiplier once for the whole run.
func NewClassifier(curve model.CurveParams, bounds model.BandBounds, opts ...Option) (*Classifier, error) {
	c := &Classifier{curve: curve, bounds: bounds, multiplier: defaultMultiplier}
	for _, opt := range opts {
		opt(c)
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(c.multiplier) || math.IsInf(c.multiplier, 0) || c.multiplier <= 0 {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidMultiplier, c.multiplier)
	}
	return c, nil
}

// Curve returns the market curve after the multiplier is applied.
func (c *Classifier) Curve() model.CurveParams {
	return c.curve.Scale(c.multiplier)
}

// Classify places one point. Rules are checked in increasing salary order;
// the lower market edge is inclusive.
func (c *Classifier) Classify(p model.SamplePoint) Result {
	value := c.Curve().Eval(p.Productivity)
	r := Result{
		CurveValue: value,
		LowEdge:    c.bounds.Lo * value,
		MidEdge:    c.bounds.Hi * value,
		HighEdge:   c.bounds.Hi2 * value,
	}

	switch s := p.Salary; {
	case s < r.LowEdge:
		r.Classification = model.BelowMarket
	case s <= r.MidEdge:
		r.Classification = model.WithinMarket
	case s <= r.HighEdge:
		r.Classification = model.BelowReplacementCost
	case s <= p.Productivity:
		r.Classification = model.AboveReplacementCost
	default:
		r.Classification = model.NegativeValueAdd
	}
	r.Gap = math.Max(0, r.LowEdge-p.Salary)
	return r
}

// ClassifyAll classifies every point in insertion order.
func (c *Classifier) ClassifyAll(d model.Dataset) []Result {
	out := make([]Result, d.Len())
	for i := range out {
		out[i] = c.Classify(d.At(i))
	}
	return out
}

// Classify is the one-shot form: it validates bounds and classifies p
// against the unscaled curve.
func Classify(p model.SamplePoint, curve model.CurveParams, bounds model.BandBounds) (model.Classification, float64, error) {
	c, err := NewClassifier(curve, bounds)
	if err != nil {
		return 0, 0, err
	}
	r := c.Classify(p)
	return r.Classification, r.Gap, nil
}

// Gaps extracts the gap of each result.
func Gaps(results []Result) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.Gap
	}
	return out
}

// Counts tallies results by classification.
func Counts(results []Result) map[model.Classification]int {
	out := make(map[model.Classification]int, len(model.Classifications()))
	for _, r := range results {
		out[r.Classification]++
	}
	return out
}
