package service_test

import (
	"context"
	"errors"
	"testing"

	service "github.com/okian/fairpay/internal/app"
	"github.com/okian/fairpay/internal/dataset"
	"github.com/okian/fairpay/internal/domain/curve"
	"github.com/okian/fairpay/internal/domain/model"
	"github.com/okian/fairpay/pkg/logger"
	"github.com/okian/fairpay/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func newService(m *metrics.Manager, opts ...service.Option) *service.Service {
	return service.New(append([]service.Option{
		service.WithLogger(logger.Nop()),
		service.WithMetrics(m),
	}, opts...)...)
}

func TestService_Run(t *testing.T) {
	Convey("Given a service and the three-employee example", t, func() {
		m := metrics.NewManager()
		svc := newService(m)
		d, err := model.FromPairs([][2]float64{{100, 50}, {200, 40}, {300, 90}})
		So(err, ShouldBeNil)

		Convey("When running a calibration", func() {
			report, err := svc.Run(context.Background(), d)

			Convey("Then every stage completes", func() {
				So(err, ShouldBeNil)
				So(report.Complete(), ShouldBeTrue)
				So(report.RunID, ShouldNotBeEmpty)
				So(report.Points, ShouldHaveLength, 3)
			})

			Convey("Then the underpaid employee is lifted to the floor", func() {
				So(report.Consistency.Adjustments, ShouldResemble, []float64{0, 10, 0})
				So(report.Consistency.Inconsistent, ShouldResemble, []int{1})
				So(report.Consistency.Total, ShouldEqual, 10)
			})

			Convey("Then the market curve is the fit scaled by the multiplier", func() {
				So(report.Market.Curve.Alpha, ShouldAlmostEqual, report.Fit.Params.Alpha*1.1, 1e-12)
				So(report.Market.Curve.Beta, ShouldEqual, report.Fit.Params.Beta)
				So(report.Market.Results, ShouldHaveLength, 3)
			})

			Convey("Then the ranking covers every employee once", func() {
				So(report.Ranking.Len(), ShouldEqual, 3)
				seen := map[int]bool{}
				for _, idx := range report.Ranking.Order() {
					seen[idx] = true
				}
				So(seen, ShouldHaveLength, 3)
			})

			Convey("Then the run is recorded", func() {
				So(gathered(m.Registry(), "fairpay_calibration_runs_total"), ShouldEqual, 1)
				So(gathered(m.Registry(), "fairpay_calibration_dataset_size"), ShouldEqual, 3)
				So(gathered(m.Registry(), "fairpay_calibration_consistency_adjustment_total"), ShouldEqual, 10)
				So(gathered(m.Registry(), "fairpay_calibration_classifications_total"), ShouldEqual, 3)
			})

			Convey("Then a second run gets a new id", func() {
				again, err := svc.Run(context.Background(), d)
				So(err, ShouldBeNil)
				So(again.RunID, ShouldNotEqual, report.RunID)
			})
		})
	})

	Convey("Given the recalibration dataset", t, func() {
		svc := newService(metrics.NewManager())
		d, err := dataset.Builtin(dataset.Recalibration)
		So(err, ShouldBeNil)

		report, err := svc.Run(context.Background(), d)

		Convey("Then the consistency raises match the running maximum", func() {
			So(err, ShouldBeNil)
			So(report.Consistency.Total, ShouldEqual, 890)
			So(report.Consistency.Inconsistent, ShouldResemble, []int{0, 2, 4, 6, 8, 11, 15, 19})
		})

		Convey("Then the ranking is sorted by combined score", func() {
			combined := report.Ranking.CombinedSeries()
			for i := 1; i < len(combined); i++ {
				So(combined[i-1], ShouldBeGreaterThanOrEqualTo, combined[i])
			}
		})
	})
}

func TestService_RunPartial(t *testing.T) {
	Convey("Given a fitter that cannot converge", t, func() {
		m := metrics.NewManager()
		svc := newService(m, service.WithFitter(curve.NewFitter(curve.WithMaxIterations(2))))
		d, err := dataset.Builtin(dataset.Recalibration)
		So(err, ShouldBeNil)

		report, err := svc.Run(context.Background(), d)

		Convey("Then the consistency half is still reported", func() {
			So(errors.Is(err, model.ErrFitConvergence), ShouldBeTrue)
			So(report, ShouldNotBeNil)
			So(report.Consistency.Total, ShouldEqual, 890)
			So(report.Fit, ShouldBeNil)
			So(report.Market, ShouldBeNil)
			So(report.Ranking, ShouldBeNil)
			So(report.Complete(), ShouldBeFalse)
			So(gathered(m.Registry(), "fairpay_calibration_run_errors_total"), ShouldEqual, 1)
		})
	})

	Convey("Given an employee with zero productivity", t, func() {
		svc := newService(metrics.NewManager())
		d, err := model.FromPairs([][2]float64{{0, 10}, {100, 5}})
		So(err, ShouldBeNil)

		report, err := svc.Run(context.Background(), d)

		Convey("Then the fit is rejected but consistency is computed", func() {
			So(errors.Is(err, model.ErrNonPositiveDomain), ShouldBeTrue)
			So(report.Consistency.Adjustments, ShouldResemble, []float64{0, 5})
		})
	})

	Convey("Given misordered band bounds", t, func() {
		svc := newService(metrics.NewManager(), service.WithBandBounds(model.BandBounds{Lo: 1.2, Hi: 1.0, Hi2: 1.3}))
		d, err := dataset.Builtin(dataset.Baseline)
		So(err, ShouldBeNil)

		report, err := svc.Run(context.Background(), d)

		Convey("Then the fit is kept and classification fails", func() {
			So(errors.Is(err, model.ErrInvalidBandBounds), ShouldBeTrue)
			So(report.Fit, ShouldNotBeNil)
			So(report.Market, ShouldBeNil)
		})
	})

	Convey("Given a non-positive multiplier", t, func() {
		svc := newService(nil, service.WithMarketMultiplier(0))
		d, err := dataset.Builtin(dataset.Baseline)
		So(err, ShouldBeNil)

		_, err = svc.Run(context.Background(), d)
		So(errors.Is(err, model.ErrInvalidMultiplier), ShouldBeTrue)
	})

	Convey("Given an empty dataset", t, func() {
		svc := newService(metrics.NewManager())

		report, err := svc.Run(context.Background(), model.Dataset{})
		So(errors.Is(err, model.ErrEmptyDataset), ShouldBeTrue)
		So(report.Consistency.Adjustments, ShouldBeEmpty)
	})

	Convey("Given a cancelled context", t, func() {
		svc := newService(metrics.NewManager())
		d, err := dataset.Builtin(dataset.Baseline)
		So(err, ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = svc.Run(ctx, d)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestService_Assess(t *testing.T) {
	Convey("Given the baseline company and the example offer", t, func() {
		m := metrics.NewManager()
		svc := newService(m)
		d, err := dataset.Builtin(dataset.Baseline)
		So(err, ShouldBeNil)

		a, err := svc.Assess(context.Background(), d, dataset.ExampleOffer)

		Convey("Then four better producers would earn less", func() {
			So(err, ShouldBeNil)
			So(a.Inconsistencies, ShouldHaveLength, 4)
			So(a.InconsistencyCost, ShouldEqual, 523)
			So(a.ValueSurplus, ShouldEqual, 150)
		})

		Convey("Then the consistent range excludes the offer", func() {
			So(a.Range.Min, ShouldEqual, 330)
			So(a.Range.Max, ShouldEqual, 431)
			So(a.Range.Consistent, ShouldBeTrue)
			So(a.Range.Contains(dataset.ExampleOffer.Salary), ShouldBeFalse)
		})

		Convey("Then the assessment is recorded", func() {
			So(gathered(m.Registry(), "fairpay_calibration_assessments_total"), ShouldEqual, 1)
			So(gathered(m.Registry(), "fairpay_calibration_assessment_inconsistency_cost"), ShouldEqual, 523)
		})
	})

	Convey("Given an invalid offer", t, func() {
		svc := newService(metrics.NewManager())

		_, err := svc.Assess(context.Background(), model.Dataset{}, model.SamplePoint{Productivity: -1})
		So(errors.Is(err, model.ErrInvalidSample), ShouldBeTrue)
	})
}

// gathered sums every sample of the named counter or gauge family.
func gathered(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	if err != nil {
		panic(err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				total += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				total += metric.GetGauge().GetValue()
			}
		}
	}
	return total
}
