package curve

// Default solver configuration constants.
const (
	defaultMaxIterations     = 10_000
	defaultTolerance         = 1e-10
	defaultWindow            = 100
	defaultGradientThreshold = 1e-6
)

// Method names accepted by WithMethod.
const (
	MethodNelderMead = "nelder-mead"
	MethodBFGS       = "bfgs"
)

// Option applies a configuration option to the Fitter.
type Option func(*Fitter)

// WithMaxIterations bounds the number of major solver iterations.
func WithMaxIterations(n int) Option {
	return func(f *Fitter) {
		if n > 0 {
			f.maxIterations = n
		}
	}
}

// WithTolerance sets the absolute and relative objective improvement below
// which the solver is considered converged.
func WithTolerance(tol float64) Option {
	return func(f *Fitter) {
		if tol > 0 {
			f.tolerance = tol
		}
	}
}

// WithMethod selects the gonum optimization method by name.
func WithMethod(method string) Option {
	return func(f *Fitter) {
		if method != "" {
			f.method = method
		}
	}
}

// WithMinimizer replaces the default gonum-backed minimizer.
func WithMinimizer(m Minimizer) Option {
	return func(f *Fitter) {
		if m != nil {
			f.minimizer = m
		}
	}
}
