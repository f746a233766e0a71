package types_test

import (
	"testing"

	types "github.com/okian/fairpay/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRanking(t *testing.T) {
	Convey("Given a ranking", t, func() {
		r := types.Ranking{Entries: []types.Entry{
			{Rank: 1, Index: 1, Consistency: 10, Market: 5, Combined: 7.5},
			{Rank: 2, Index: 0, Consistency: 0, Market: 0, Combined: 0},
			{Rank: 3, Index: 2, Consistency: 0, Market: 0, Combined: 0},
		}}

		Convey("Then the series follow ranking order", func() {
			So(r.Len(), ShouldEqual, 3)
			So(r.Order(), ShouldResemble, []int{1, 0, 2})
			So(r.ConsistencySeries(), ShouldResemble, []float64{10, 0, 0})
			So(r.MarketSeries(), ShouldResemble, []float64{5, 0, 0})
			So(r.CombinedSeries(), ShouldResemble, []float64{7.5, 0, 0})
		})

		Convey("Then Top clamps its argument", func() {
			So(r.Top(1), ShouldHaveLength, 1)
			So(r.Top(10), ShouldHaveLength, 3)
			So(r.Top(-1), ShouldBeEmpty)
		})
	})

	Convey("Given an empty ranking", t, func() {
		var r types.Ranking

		Convey("Then the series are empty", func() {
			So(r.Order(), ShouldBeEmpty)
			So(r.ConsistencySeries(), ShouldBeEmpty)
			So(r.Top(3), ShouldBeEmpty)
		})
	})
}
