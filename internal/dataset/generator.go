package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/okian/fairpay/internal/domain/model"
)

// Default generator configuration constants.
const (
	defaultCount = 20
	defaultMinX  = 300
	defaultMaxX  = 2500
	defaultSeed  = 42
)

// GeneratorOption applies a configuration option to the Generator.
type GeneratorOption func(*Generator)

// WithCount sets the number of generated points.
func WithCount(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.count = n
		}
	}
}

// WithProductivityRange sets the uniform productivity range.
func WithProductivityRange(minX, maxX float64) GeneratorOption {
	return func(g *Generator) {
		if minX > 0 && maxX > minX {
			g.minX = minX
			g.maxX = maxX
		}
	}
}

// WithNoise sets the standard deviation of the multiplicative salary noise.
func WithNoise(sigma float64) GeneratorOption {
	return func(g *Generator) {
		if sigma >= 0 {
			g.noise = sigma
		}
	}
}

// WithSeed fixes the random source.
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) {
		g.seed = seed
	}
}

// Generator draws salaries from a power-law curve. Output is deterministic
// for a given seed.
type Generator struct {
	count      int
	minX, maxX float64
	noise      float64
	seed       uint64
}

// NewGenerator creates a Generator with 20 noise-free points on [300, 2500).
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		count: defaultCount,
		minX:  defaultMinX,
		maxX:  defaultMaxX,
		seed:  defaultSeed,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Count returns the number of points Generate draws.
func (g *Generator) Count() int { return g.count }

// MinProductivity returns the inclusive lower end of the productivity range.
func (g *Generator) MinProductivity() float64 { return g.minX }

// MaxProductivity returns the exclusive upper end of the productivity range.
func (g *Generator) MaxProductivity() float64 { return g.maxX }

// Seed returns the random seed.
func (g *Generator) Seed() uint64 { return g.seed }

// Generate returns a dataset following curve with the configured noise.
// Noisy salaries are clamped at zero.
func (g *Generator) Generate(curve model.CurveParams) (model.Dataset, error) {
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15)) //nolint:gosec // reproducible test data
	points := make([]model.SamplePoint, g.count)
	for i := range points {
		x := g.minX + rng.Float64()*(g.maxX-g.minX)
		y := curve.Eval(x)
		if g.noise > 0 {
			y *= 1 + g.noise*rng.NormFloat64()
		}
		points[i] = model.SamplePoint{Productivity: x, Salary: math.Max(0, y)}
	}
	d, err := model.NewDataset(points...)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("generate dataset: %w", err)
	}
	return d, nil
}
