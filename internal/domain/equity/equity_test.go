package equity_test

import (
	"math"
	"testing"

	"github.com/okian/fairpay/internal/domain/equity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMultiple(t *testing.T) {
	Convey("Given the equity multiple curve", t, func() {
		Convey("Then seed equity is worth about five times nominal", func() {
			So(equity.Multiple(equity.Seed), ShouldAlmostEqual, 5+2.5*math.Exp(-6), 1e-12)
		})

		Convey("Then the value dips between rounds", func() {
			So(equity.Multiple(equity.SeriesB), ShouldBeLessThan, equity.Multiple(equity.SeriesA))
			So(equity.Multiple(equity.SeriesB), ShouldBeLessThan, 1)
		})

		Convey("Then the IPO value includes the pre-IPO spike", func() {
			So(equity.Multiple(equity.IPO), ShouldAlmostEqual, 5*math.Exp(-5)+2.5, 1e-12)
		})

		Convey("Then post-IPO value approaches nominal from below", func() {
			So(equity.Multiple(1.0001), ShouldAlmostEqual, 0.75, 1e-3)
			So(equity.Multiple(10), ShouldAlmostEqual, 1, 1e-6)
			So(equity.Multiple(10), ShouldBeLessThan, 1)
		})
	})
}

func TestSeries(t *testing.T) {
	Convey("Given a sampling request", t, func() {
		Convey("When sampling the pre-IPO stages", func() {
			pts, err := equity.Series(0, 1, 0.25)

			Convey("Then the interval is half open", func() {
				So(err, ShouldBeNil)
				So(pts, ShouldHaveLength, 4)
				So(pts[0].Stage, ShouldEqual, equity.Seed)
				So(pts[3].Stage, ShouldEqual, 0.75)
				So(pts[1].Multiple, ShouldEqual, equity.Multiple(equity.SeriesA))
			})
		})

		Convey("When the step is not positive", func() {
			_, err := equity.Series(0, 1, 0)
			So(err, ShouldNotBeNil)
		})

		Convey("When a bound or the step is not finite", func() {
			for _, args := range [][3]float64{
				{0, math.Inf(1), 0.25},
				{math.NaN(), 1, 0.25},
				{math.Inf(-1), 1, 0.25},
				{0, math.NaN(), 0.25},
				{0, 1, math.Inf(1)},
				{0, 1, math.NaN()},
			} {
				pts, err := equity.Series(args[0], args[1], args[2])
				So(err, ShouldNotBeNil)
				So(pts, ShouldBeNil)
			}
		})

		Convey("When the step yields too many points", func() {
			_, err := equity.Series(0, 1e6, 1e-6)
			So(err, ShouldNotBeNil)
		})

		Convey("When the interval holds exactly the maximum", func() {
			pts, err := equity.Series(0, equity.MaxSeriesPoints, 1)
			So(err, ShouldBeNil)
			So(pts, ShouldHaveLength, equity.MaxSeriesPoints)
		})

		Convey("When the interval is reversed", func() {
			_, err := equity.Series(1, 0, 0.1)
			So(err, ShouldNotBeNil)
		})
	})
}
