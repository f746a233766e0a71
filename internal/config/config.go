// Package config defines the calibration configuration and its loading.
//
// Conventions:
// - Defaults live in New; files and env only override what they set.
// - Functions that load accept context.Context as the first parameter.
// - Load errors wrap this package's sentinel errors.
package config

import (
	"context"

	"github.com/okian/fairpay/internal/domain/model"
)

// Sample is one employee in a configured dataset.
type Sample struct {
	Productivity float64 `koanf:"productivity" validate:"gte=0"`
	Salary       float64 `koanf:"salary" validate:"gte=0"`
}

// Bands mirrors model.BandBounds with validation tags.
type Bands struct {
	Lo  float64 `koanf:"lo" validate:"gt=0"`
	Hi  float64 `koanf:"hi" validate:"gtefield=Lo"`
	Hi2 float64 `koanf:"hi2" validate:"gtefield=Hi"`
}

// Guess is the solver's starting point.
type Guess struct {
	Alpha float64 `koanf:"alpha"`
	Beta  float64 `koanf:"beta"`
}

// Solver configures the curve fitter.
type Solver struct {
	Method        string  `koanf:"method" validate:"oneof=nelder-mead bfgs"`
	MaxIterations int     `koanf:"max_iterations" validate:"gt=0"`
	Tolerance     float64 `koanf:"tolerance" validate:"gt=0"`
}

// Candidate is an optional offer to assess against the dataset.
type Candidate struct {
	Productivity float64 `koanf:"productivity" validate:"gte=0"`
	Salary       float64 `koanf:"salary" validate:"gte=0"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log records.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Dataset names a built-in dataset; ignored when Samples is non-empty.
	Dataset string `koanf:"dataset"`

	// Samples is an inline dataset.
	Samples []Sample `koanf:"samples" validate:"dive"`

	// Bands are the market band multipliers.
	Bands Bands `koanf:"bands"`

	// InitialGuess seeds the curve fit.
	InitialGuess Guess `koanf:"initial_guess"`

	// MarketMultiplier scales the fitted curve before classification.
	MarketMultiplier float64 `koanf:"market_multiplier" validate:"gt=0"`

	Solver Solver `koanf:"solver"`

	Candidate *Candidate `koanf:"candidate"`

	// Output selects the report format: json or table.
	Output string `koanf:"output" validate:"oneof=json table"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Dataset:   "baseline",
		Bands: Bands{
			Lo:  model.DefaultBandLo,
			Hi:  model.DefaultBandHi,
			Hi2: model.DefaultBandHi2,
		},
		InitialGuess:     Guess{Alpha: 1, Beta: 1},
		MarketMultiplier: 1.1,
		Solver: Solver{
			Method:        "nelder-mead",
			MaxIterations: 10_000,
			Tolerance:     1e-10,
		},
		Output: "json",
	}
}

// BandBounds converts the configured bands.
func (c *Config) BandBounds() model.BandBounds {
	return model.BandBounds{Lo: c.Bands.Lo, Hi: c.Bands.Hi, Hi2: c.Bands.Hi2}
}

// Guess converts the configured initial guess.
func (c *Config) Guess() model.CurveParams {
	return model.CurveParams{Alpha: c.InitialGuess.Alpha, Beta: c.InitialGuess.Beta}
}

// Points converts the inline samples.
func (c *Config) Points() []model.SamplePoint {
	out := make([]model.SamplePoint, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = model.SamplePoint{Productivity: s.Productivity, Salary: s.Salary}
	}
	return out
}
