// Package metrics provides Prometheus metrics for calibration runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stages used as the "stage" label on error counters.
const (
	StageValidate   = "validate"
	StageFit        = "fit"
	StageClassify   = "classify"
	StageAggregate  = "aggregate"
	StageAssessment = "assessment"
)

const millisecondsPerSecond = 1e3

// Manager owns the calibration metrics. A nil or disabled Manager records nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         *prometheus.Registry

	runsTotal   prometheus.Counter
	runErrors   *prometheus.CounterVec
	datasetSize prometheus.Gauge

	fitDuration   prometheus.Histogram
	fitIterations prometheus.Gauge
	fitSSE        prometheus.Gauge

	classifications       *prometheus.CounterVec
	inconsistentEmployees prometheus.Gauge
	consistencyTotal      prometheus.Gauge
	marketGapTotal        prometheus.Gauge

	assessmentsTotal   prometheus.Counter
	assessmentCostLast prometheus.Gauge
}

var defaultManager *Manager //nolint:gochecknoglobals // process-wide metrics

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	defaultManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager registered on its own registry unless
// WithPrometheusRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fairpay",
		subsystem:        "calibration",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		enabled:          true,
		constLabels:      map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) opts(name, help string) prometheus.Opts {
	return prometheus.Opts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	// Run-level metrics
	m.runsTotal = auto.NewCounter(prometheus.CounterOpts(m.opts("runs_total", "Total number of calibration runs started")))
	m.runErrors = auto.NewCounterVec(prometheus.CounterOpts(m.opts("run_errors_total", "Calibration failures by pipeline stage")), []string{"stage"})
	m.datasetSize = auto.NewGauge(prometheus.GaugeOpts(m.opts("dataset_size", "Number of employees in the last calibrated dataset")))

	// Curve fitting
	m.fitDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fit_duration_milliseconds",
		Help:        "Time spent fitting the market curve",
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	})
	m.fitIterations = auto.NewGauge(prometheus.GaugeOpts(m.opts("fit_iterations", "Solver iterations used by the last curve fit")))
	m.fitSSE = auto.NewGauge(prometheus.GaugeOpts(m.opts("fit_sse", "Sum of squared residuals of the last curve fit")))

	// Adjustments
	m.classifications = auto.NewCounterVec(prometheus.CounterOpts(m.opts("classifications_total", "Employees classified against the market curve")), []string{"classification"})
	m.inconsistentEmployees = auto.NewGauge(prometheus.GaugeOpts(m.opts("inconsistent_employees", "Employees needing a consistency raise in the last run")))
	m.consistencyTotal = auto.NewGauge(prometheus.GaugeOpts(m.opts("consistency_adjustment_total", "Sum of consistency raises in the last run")))
	m.marketGapTotal = auto.NewGauge(prometheus.GaugeOpts(m.opts("market_gap_total", "Sum of market gaps in the last run")))

	// Hiring
	m.assessmentsTotal = auto.NewCounter(prometheus.CounterOpts(m.opts("assessments_total", "Candidate offers assessed")))
	m.assessmentCostLast = auto.NewGauge(prometheus.GaugeOpts(m.opts("assessment_inconsistency_cost", "Inconsistency cost of the last assessed offer")))
}

func (m *Manager) active() bool { return m != nil && m.enabled }

// RecordRun counts a started calibration run over n employees.
func (m *Manager) RecordRun(n int) {
	if !m.active() {
		return
	}
	m.runsTotal.Inc()
	m.datasetSize.Set(float64(n))
}

// RecordRunError counts a failure at stage.
func (m *Manager) RecordRunError(stage string) {
	if !m.active() {
		return
	}
	m.runErrors.WithLabelValues(stage).Inc()
}

// RecordFit records a completed curve fit.
func (m *Manager) RecordFit(d time.Duration, iterations int, sse float64) {
	if !m.active() {
		return
	}
	m.fitDuration.Observe(d.Seconds() * millisecondsPerSecond)
	m.fitIterations.Set(float64(iterations))
	m.fitSSE.Set(sse)
}

// RecordClassifications adds per-class counts.
func (m *Manager) RecordClassifications(counts map[string]int) {
	if !m.active() {
		return
	}
	for class, n := range counts {
		m.classifications.WithLabelValues(class).Add(float64(n))
	}
}

// RecordConsistency records the consistency outcome of a run.
func (m *Manager) RecordConsistency(inconsistent int, total float64) {
	if !m.active() {
		return
	}
	m.inconsistentEmployees.Set(float64(inconsistent))
	m.consistencyTotal.Set(total)
}

// RecordMarketGap records the summed market gap of a run.
func (m *Manager) RecordMarketGap(total float64) {
	if !m.active() {
		return
	}
	m.marketGapTotal.Set(total)
}

// RecordAssessment records a candidate assessment.
func (m *Manager) RecordAssessment(cost float64) {
	if !m.active() {
		return
	}
	m.assessmentsTotal.Inc()
	m.assessmentCostLast.Set(cost)
}

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every metric on the registry in the Prometheus text
// format, e.g. for the node exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

// Default returns the process-wide manager.
func Default() *Manager {
	return defaultManager
}

// GetRegistry returns the process-wide registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
