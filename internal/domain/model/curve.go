package model

import "math"

// CurveParams are the coefficients of f(x) = Alpha * x^Beta.
type CurveParams struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// Eval returns the curve value at x. A zero Alpha collapses the curve to zero
// everywhere, including x = 0 with a negative Beta.
func (c CurveParams) Eval(x float64) float64 {
	if c.Alpha == 0 {
		return 0
	}
	return c.Alpha * math.Pow(x, c.Beta)
}

// Scale returns the curve multiplied uniformly by m.
func (c CurveParams) Scale(m float64) CurveParams {
	return CurveParams{Alpha: c.Alpha * m, Beta: c.Beta}
}

// SSE is the sum of squared residuals of d against the curve.
func (c CurveParams) SSE(d Dataset) float64 {
	var sum float64
	for _, p := range d.points {
		r := p.Salary - c.Eval(p.Productivity)
		sum += r * r
	}
	return sum
}
