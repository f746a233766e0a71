package curve

import (
	"context"
	"fmt"

	"github.com/okian/fairpay/internal/domain/model"
	"gonum.org/v1/gonum/optimize"
)

// Objective is a scalar function of the parameter vector. Grad may be nil for
// derivative-free methods.
type Objective struct {
	Func func(x []float64) float64
	Grad func(grad, x []float64)
}

// Solution is the minimizer's best location.
type Solution struct {
	X           []float64
	F           float64
	Iterations  int
	Evaluations int
	Status      string
}

// Minimizer finds a local minimum of an objective from an initial point. It
// must return an error wrapping model.ErrFitConvergence when its budget runs
// out before its stopping tolerance is met.
type Minimizer interface {
	Minimize(ctx context.Context, obj Objective, initial []float64) (Solution, error)
}

// GonumMinimizer adapts gonum's optimize package to Minimizer.
type GonumMinimizer struct {
	Method        string
	MaxIterations int
	Tolerance     float64
	Window        int

	// GradientThreshold stops gradient-based methods once the largest
	// gradient component falls below it.
	GradientThreshold float64
}

// NewGonumMinimizer returns a Nelder-Mead minimizer with default limits.
func NewGonumMinimizer() *GonumMinimizer {
	return &GonumMinimizer{
		Method:            MethodNelderMead,
		MaxIterations:     defaultMaxIterations,
		Tolerance:         defaultTolerance,
		Window:            defaultWindow,
		GradientThreshold: defaultGradientThreshold,
	}
}

// Minimize runs optimize.Minimize and maps its termination status.
func (g *GonumMinimizer) Minimize(ctx context.Context, obj Objective, initial []float64) (Solution, error) {
	method, err := g.method(obj)
	if err != nil {
		return Solution{}, err
	}

	problem := optimize.Problem{Func: obj.Func, Grad: obj.Grad}
	settings := &optimize.Settings{
		MajorIterations:   g.MaxIterations,
		GradientThreshold: g.GradientThreshold,
		Converger: &contextConverger{
			ctx: ctx,
			next: &optimize.FunctionConverge{
				Absolute:   g.Tolerance,
				Relative:   g.Tolerance,
				Iterations: g.Window,
			},
		},
	}

	res, err := optimize.Minimize(problem, initial, settings, method)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Solution{}, fmt.Errorf("minimize: %w", ctxErr)
	}
	if res == nil {
		return Solution{}, fmt.Errorf("%w: %v", model.ErrFitConvergence, err)
	}

	sol := Solution{
		X:           res.X,
		F:           res.F,
		Iterations:  res.Stats.MajorIterations,
		Evaluations: res.Stats.FuncEvaluations,
		Status:      res.Status.String(),
	}
	if err != nil {
		return sol, fmt.Errorf("%w: %s: %v", model.ErrFitConvergence, res.Status, err)
	}
	switch res.Status {
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit, optimize.Failure:
		return sol, fmt.Errorf("%w: %s after %d iterations", model.ErrFitConvergence, res.Status, sol.Iterations)
	}
	return sol, nil
}

func (g *GonumMinimizer) method(obj Objective) (optimize.Method, error) {
	switch g.Method {
	case "", MethodNelderMead:
		return &optimize.NelderMead{}, nil
	case MethodBFGS:
		if obj.Grad == nil {
			return nil, fmt.Errorf("method %s needs a gradient", g.Method)
		}
		return &optimize.BFGS{}, nil
	default:
		return nil, fmt.Errorf("unknown optimization method %q", g.Method)
	}
}

// contextConverger stops the solver once ctx is done.
type contextConverger struct {
	ctx  context.Context
	next optimize.Converger
}

func (c *contextConverger) Init(dim int) { c.next.Init(dim) }

func (c *contextConverger) Converged(loc *optimize.Location) optimize.Status {
	if c.ctx.Err() != nil {
		return optimize.Failure
	}
	return c.next.Converged(loc)
}
