// Package service runs the calibration pipeline: consistency, curve fit,
// market classification and aggregation over one dataset.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fairpay/internal/domain/aggregate"
	"github.com/okian/fairpay/internal/domain/consistency"
	"github.com/okian/fairpay/internal/domain/curve"
	"github.com/okian/fairpay/internal/domain/hiring"
	"github.com/okian/fairpay/internal/domain/market"
	"github.com/okian/fairpay/internal/domain/model"
	"github.com/okian/fairpay/internal/domain/types"
	"github.com/okian/fairpay/pkg/logger"
	"github.com/okian/fairpay/pkg/metrics"
)

const defaultMarketMultiplier = 1.1

// ConsistencyReport is the internal-consistency half of a run.
type ConsistencyReport struct {
	Adjustments  []float64 `json:"adjustments"`
	Inconsistent []int     `json:"inconsistent"`
	Total        float64   `json:"total"`
}

// MarketReport is the market half of a run.
type MarketReport struct {
	Curve    model.CurveParams `json:"curve"`
	Results  []market.Result   `json:"results"`
	Counts   map[string]int    `json:"counts"`
	TotalGap float64           `json:"total_gap"`
}

// Report is the outcome of Run. Fields after Consistency are nil when the
// stage producing them failed.
type Report struct {
	RunID       string              `json:"run_id"`
	Points      []model.SamplePoint `json:"points"`
	Consistency ConsistencyReport   `json:"consistency"`
	Fit         *curve.Result       `json:"fit,omitempty"`
	Market      *MarketReport       `json:"market,omitempty"`
	Ranking     *types.Ranking      `json:"ranking,omitempty"`
}

// Complete reports whether every stage ran.
func (r *Report) Complete() bool {
	return r.Fit != nil && r.Market != nil && r.Ranking != nil
}

// Service runs calibrations. It holds configuration only and may be shared.
type Service struct {
	logger     logger.Logger
	metrics    *metrics.Manager
	fitter     *curve.Fitter
	bounds     model.BandBounds
	guess      model.CurveParams
	multiplier float64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager. Nil disables recording.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithFitter replaces the default curve fitter.
func WithFitter(f *curve.Fitter) Option {
	return func(s *Service) {
		if f != nil {
			s.fitter = f
		}
	}
}

// WithBandBounds sets the market band multipliers. They are validated by Run.
func WithBandBounds(b model.BandBounds) Option {
	return func(s *Service) {
		s.bounds = b
	}
}

// WithInitialGuess sets the fitter's starting point.
func WithInitialGuess(g model.CurveParams) Option {
	return func(s *Service) {
		s.guess = g
	}
}

// WithMarketMultiplier scales the fitted curve before classification.
func WithMarketMultiplier(m float64) Option {
	return func(s *Service) {
		s.multiplier = m
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		logger:     logger.Nop(),
		metrics:    metrics.Default(),
		bounds:     model.DefaultBandBounds(),
		guess:      model.CurveParams{Alpha: 1, Beta: 1},
		multiplier: defaultMarketMultiplier,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fitter == nil {
		s.fitter = curve.NewFitter()
	}
	return s
}

// Run calibrates d. Consistency adjustments need no curve and are always
// present in the returned report; when a later stage fails Run returns the
// partial report together with the error.
func (s *Service) Run(ctx context.Context, d model.Dataset) (*Report, error) {
	report := &Report{
		RunID:  uuid.NewString(),
		Points: d.Points(),
	}
	log := s.logger.Named("calibration")
	runField := logger.String("run_id", report.RunID)

	s.metrics.RecordRun(d.Len())
	log.Info(ctx, "calibration started", runField, logger.Int("employees", d.Len()))

	if d.Len() == 0 {
		s.metrics.RecordRunError(metrics.StageValidate)
		return report, model.ErrEmptyDataset
	}

	adjustments := consistency.Calibrate(d)
	report.Consistency = ConsistencyReport{
		Adjustments:  adjustments,
		Inconsistent: consistency.Inconsistent(adjustments),
		Total:        consistency.Total(adjustments),
	}
	s.metrics.RecordConsistency(len(report.Consistency.Inconsistent), report.Consistency.Total)
	log.Debug(ctx, "consistency computed",
		runField,
		logger.Int("inconsistent", len(report.Consistency.Inconsistent)),
		logger.Float64("total", report.Consistency.Total),
	)

	started := time.Now()
	fit, err := s.fitter.Fit(ctx, d, s.guess)
	if err != nil {
		s.metrics.RecordRunError(metrics.StageFit)
		log.Error(ctx, "curve fit failed", runField, logger.Error(err))
		return report, err
	}
	s.metrics.RecordFit(time.Since(started), fit.Iterations, fit.SSE)
	report.Fit = &fit
	log.Debug(ctx, "curve fitted",
		runField,
		logger.Float64("alpha", fit.Params.Alpha),
		logger.Float64("beta", fit.Params.Beta),
		logger.Float64("sse", fit.SSE),
		logger.Int("iterations", fit.Iterations),
		logger.Duration("elapsed", time.Since(started)),
	)

	classifier, err := market.NewClassifier(fit.Params, s.bounds, market.WithMultiplier(s.multiplier))
	if err != nil {
		s.metrics.RecordRunError(metrics.StageClassify)
		log.Error(ctx, "market classification failed", runField, logger.Error(err))
		return report, fmt.Errorf("classify: %w", err)
	}
	results := classifier.ClassifyAll(d)
	gaps := market.Gaps(results)
	counts := make(map[string]int)
	for class, n := range market.Counts(results) {
		counts[class.String()] = n
	}
	report.Market = &MarketReport{
		Curve:    classifier.Curve(),
		Results:  results,
		Counts:   counts,
		TotalGap: consistency.Total(gaps),
	}
	s.metrics.RecordClassifications(counts)
	s.metrics.RecordMarketGap(report.Market.TotalGap)

	ranking, err := aggregate.Aggregate(adjustments, gaps)
	if err != nil {
		s.metrics.RecordRunError(metrics.StageAggregate)
		log.Error(ctx, "aggregation failed", runField, logger.Error(err))
		return report, err
	}
	report.Ranking = &ranking

	log.Info(ctx, "calibration finished",
		runField,
		logger.Float64("consistency_total", report.Consistency.Total),
		logger.Float64("market_gap_total", report.Market.TotalGap),
	)
	return report, nil
}

// Assess evaluates a salary offer to a prospective employee against d.
func (s *Service) Assess(ctx context.Context, d model.Dataset, offer model.SamplePoint) (hiring.Assessment, error) {
	log := s.logger.Named("hiring")

	a, err := hiring.Assess(d, offer)
	if err != nil {
		s.metrics.RecordRunError(metrics.StageAssessment)
		log.Error(ctx, "assessment failed", logger.Error(err))
		return hiring.Assessment{}, err
	}
	s.metrics.RecordAssessment(a.InconsistencyCost)
	log.Info(ctx, "offer assessed",
		logger.Float64("productivity", offer.Productivity),
		logger.Float64("salary", offer.Salary),
		logger.Int("inconsistencies", len(a.Inconsistencies)),
		logger.Float64("inconsistency_cost", a.InconsistencyCost),
		logger.Bool("in_range", a.Range.Contains(offer.Salary)),
	)
	return a, nil
}
