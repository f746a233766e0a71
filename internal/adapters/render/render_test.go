package render_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/fairpay/internal/adapters/render"
	service "github.com/okian/fairpay/internal/app"
	"github.com/okian/fairpay/internal/dataset"
	"github.com/okian/fairpay/internal/domain/curve"
	"github.com/okian/fairpay/internal/domain/equity"
	"github.com/okian/fairpay/internal/domain/hiring"
	"github.com/okian/fairpay/internal/domain/model"
	"github.com/okian/fairpay/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func runReport(opts ...service.Option) *service.Report {
	d, err := dataset.Builtin(dataset.Recalibration)
	if err != nil {
		panic(err)
	}
	svc := service.New(append([]service.Option{service.WithLogger(logger.Nop()), service.WithMetrics(nil)}, opts...)...)
	report, _ := svc.Run(context.Background(), d)
	return report
}

func TestReport(t *testing.T) {
	Convey("Given a complete report", t, func() {
		report := runReport()
		So(report.Complete(), ShouldBeTrue)

		Convey("When rendering JSON", func() {
			var buf bytes.Buffer
			So(render.Report(&buf, render.FormatJSON, report), ShouldBeNil)

			Convey("Then it decodes with every stage present", func() {
				var decoded map[string]any
				So(json.Unmarshal(buf.Bytes(), &decoded), ShouldBeNil)
				So(decoded["run_id"], ShouldEqual, report.RunID)
				So(decoded, ShouldContainKey, "fit")
				So(decoded, ShouldContainKey, "market")
				So(decoded, ShouldContainKey, "ranking")
			})

			Convey("Then classifications are written by name", func() {
				So(buf.String(), ShouldContainSubstring, `"classification": "`)
			})
		})

		Convey("When rendering a table", func() {
			var buf bytes.Buffer
			So(render.Report(&buf, render.FormatTable, report), ShouldBeNil)
			out := buf.String()

			Convey("Then headers, rows and the summary are present", func() {
				So(out, ShouldContainSubstring, "Productivity")
				So(out, ShouldContainSubstring, "Rank")
				So(out, ShouldContainSubstring, "2446.00")
				So(out, ShouldContainSubstring, "consistency raises: 890.00 across 8 employees")
				So(out, ShouldContainSubstring, "market curve:")
				So(out, ShouldNotContainSubstring, "partial report")
			})
		})

		Convey("When the format is unknown", func() {
			var buf bytes.Buffer
			err := render.Report(&buf, "xml", report)
			So(errors.Is(err, render.ErrUnknownFormat), ShouldBeTrue)
			So(buf.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given a partial report", t, func() {
		report := runReport(service.WithFitter(curve.NewFitter(curve.WithMaxIterations(2))))
		So(report.Complete(), ShouldBeFalse)

		Convey("Then JSON omits the missing stages", func() {
			var buf bytes.Buffer
			So(render.JSON(&buf, report), ShouldBeNil)
			var decoded map[string]any
			So(json.Unmarshal(buf.Bytes(), &decoded), ShouldBeNil)
			So(decoded, ShouldNotContainKey, "fit")
			So(decoded, ShouldNotContainKey, "ranking")
		})

		Convey("Then the table marks the report partial", func() {
			var buf bytes.Buffer
			So(render.Table(&buf, report), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "partial report")
			So(buf.String(), ShouldContainSubstring, "consistency raises: 890.00")
		})
	})
}

func TestAssessment(t *testing.T) {
	Convey("Given the example offer against the baseline", t, func() {
		d, err := dataset.Builtin(dataset.Baseline)
		So(err, ShouldBeNil)
		a, err := hiring.Assess(d, dataset.ExampleOffer)
		So(err, ShouldBeNil)

		Convey("Then the table shows the range and cost", func() {
			var buf bytes.Buffer
			So(render.Assessment(&buf, render.FormatTable, a), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "consistent range: 330.00 .. 431.00")
			So(buf.String(), ShouldContainSubstring, "inconsistency cost: 523.00")
		})

		Convey("Then an unbounded side is named", func() {
			top, err := hiring.Assess(d, model.SamplePoint{Productivity: 5000, Salary: 1800})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(render.Assessment(&buf, render.FormatTable, top), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "1781.00 .. unbounded")
		})

		Convey("Then an unknown format is rejected", func() {
			var buf bytes.Buffer
			err := render.Assessment(&buf, "yaml", a)
			So(errors.Is(err, render.ErrUnknownFormat), ShouldBeTrue)
			So(buf.Len(), ShouldEqual, 0)
		})

		Convey("Then JSON carries the inconsistencies", func() {
			var buf bytes.Buffer
			So(render.Assessment(&buf, render.FormatJSON, a), ShouldBeNil)
			var decoded hiring.Assessment
			So(json.Unmarshal(buf.Bytes(), &decoded), ShouldBeNil)
			So(decoded.Inconsistencies, ShouldHaveLength, 4)
		})
	})
}

func TestEquity(t *testing.T) {
	Convey("Given a sampled equity curve", t, func() {
		points, err := equity.Series(0, 1, 0.5)
		So(err, ShouldBeNil)

		var buf bytes.Buffer
		So(render.Equity(&buf, render.FormatTable, points), ShouldBeNil)

		Convey("Then each stage is a row", func() {
			So(buf.String(), ShouldContainSubstring, "Stage")
			So(buf.String(), ShouldContainSubstring, "0.00")
			So(buf.String(), ShouldContainSubstring, "0.50")
		})

		Convey("Then an unknown format is rejected", func() {
			var out bytes.Buffer
			err := render.Equity(&out, "csv", points)
			So(errors.Is(err, render.ErrUnknownFormat), ShouldBeTrue)
			So(out.Len(), ShouldEqual, 0)
		})
	})
}
