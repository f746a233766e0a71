// Package curve fits the power-law market curve f(x) = alpha * x^beta to a
// dataset by nonlinear least squares.
package curve

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/fairpay/internal/domain/model"
)

// Result is a fitted curve and solver bookkeeping.
type Result struct {
	Params      model.CurveParams `json:"params"`
	SSE         float64           `json:"sse"`
	Iterations  int               `json:"iterations"`
	Evaluations int               `json:"evaluations"`
	Status      string            `json:"status"`
}

// Fitter fits CurveParams. It holds configuration only and is safe to reuse.
type Fitter struct {
	minimizer     Minimizer
	method        string
	maxIterations int
	tolerance     float64
}

// NewFitter creates a Fitter backed by gonum unless WithMinimizer is given.
func NewFitter(opts ...Option) *Fitter {
	f := &Fitter{
		method:        MethodNelderMead,
		maxIterations: defaultMaxIterations,
		tolerance:     defaultTolerance,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.minimizer == nil {
		f.minimizer = &GonumMinimizer{
			Method:            f.method,
			MaxIterations:     f.maxIterations,
			Tolerance:         f.tolerance,
			Window:            defaultWindow,
			GradientThreshold: defaultGradientThreshold,
		}
	}
	return f
}

// Fit minimizes the sum of squared residuals of salary against
// alpha * productivity^beta, starting at guess. The result is a local optimum.
func (f *Fitter) Fit(ctx context.Context, d model.Dataset, guess model.CurveParams) (Result, error) {
	if d.Len() == 0 {
		return Result{}, model.ErrEmptyDataset
	}
	points := d.Points()
	for i, p := range points {
		if p.Productivity <= 0 {
			return Result{}, fmt.Errorf("%w: point %d has productivity %v", model.ErrNonPositiveDomain, i, p.Productivity)
		}
	}
	s := newScale(points)
	initial := s.toSolver(guess)
	if !finite(guess.Alpha) || !finite(guess.Beta) || !finite(initial[0]) {
		return Result{}, fmt.Errorf("%w: initial guess %+v", model.ErrFitConvergence, guess)
	}

	sol, err := f.minimizer.Minimize(ctx, objective(points, s), initial)
	if err != nil {
		return Result{}, fmt.Errorf("fit power-law curve: %w", err)
	}
	if len(sol.X) != 2 {
		return Result{}, fmt.Errorf("%w: minimizer returned %d parameters", model.ErrFitConvergence, len(sol.X))
	}

	params := s.fromSolver(sol.X)
	if !finite(params.Alpha) || !finite(params.Beta) {
		return Result{}, fmt.Errorf("%w: solution %+v is not finite", model.ErrFitConvergence, params)
	}
	return Result{
		Params:      params,
		SSE:         params.SSE(d),
		Iterations:  sol.Iterations,
		Evaluations: sol.Evaluations,
		Status:      sol.Status,
	}, nil
}

// scale maps the fit onto units of the dataset means. The solver works on
// salary/y = a * (productivity/x)^beta with a = alpha * x^beta / y, so both
// parameters and the objective stay near one for any salary scale.
type scale struct {
	x, y float64
}

func newScale(points []model.SamplePoint) scale {
	var sx, sy float64
	for _, p := range points {
		sx += p.Productivity
		sy += p.Salary
	}
	n := float64(len(points))
	s := scale{x: sx / n, y: sy / n}
	if s.y <= 0 {
		s.y = 1
	}
	return s
}

func (s scale) toSolver(c model.CurveParams) []float64 {
	return []float64{c.Alpha * math.Pow(s.x, c.Beta) / s.y, c.Beta}
}

func (s scale) fromSolver(x []float64) model.CurveParams {
	return model.CurveParams{Alpha: x[0] * s.y / math.Pow(s.x, x[1]), Beta: x[1]}
}

// objective builds the scaled least-squares objective and its analytic
// gradient. Where the sum overflows, Func reports math.MaxFloat64 and Grad
// clamps to finite values so line searches back off instead of stalling.
func objective(points []model.SamplePoint, s scale) Objective {
	return Objective{
		Func: func(x []float64) float64 {
			a, b := x[0], x[1]
			var sum float64
			for _, p := range points {
				r := p.Salary/s.y - a*math.Pow(p.Productivity/s.x, b)
				sum += r * r
			}
			if !finite(sum) {
				return math.MaxFloat64
			}
			return sum
		},
		Grad: func(grad, x []float64) {
			a, b := x[0], x[1]
			grad[0], grad[1] = 0, 0
			for _, p := range points {
				u := p.Productivity / s.x
				pow := math.Pow(u, b)
				r := p.Salary/s.y - a*pow
				grad[0] -= 2 * r * pow
				grad[1] -= 2 * r * a * pow * math.Log(u)
			}
			for i, g := range grad {
				switch {
				case math.IsNaN(g):
					grad[i] = math.MaxFloat64
				case math.IsInf(g, 0):
					grad[i] = math.Copysign(math.MaxFloat64, g)
				}
			}
		},
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
