package dignity_test

import (
	"testing"

	"github.com/okian/celest/internal/domain/chart"
	"github.com/okian/celest/internal/domain/dignity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRulerOf(t *testing.T) {
	Convey("Given the rulership table", t, func() {
		Convey("Every sign has exactly one traditional ruler", func() {
			for s := chart.Aries; s <= chart.Pisces; s++ {
				So(dignity.RulerOf(s).Valid(), ShouldBeTrue)
			}
		})

		Convey("Known rulers resolve", func() {
			So(dignity.RulerOf(chart.Aries), ShouldEqual, chart.Mars)
			So(dignity.RulerOf(chart.Cancer), ShouldEqual, chart.Moon)
			So(dignity.RulerOf(chart.Leo), ShouldEqual, chart.Sun)
			So(dignity.RulerOf(chart.Capricorn), ShouldEqual, chart.Saturn)
			So(dignity.RulerOf(chart.Aquarius), ShouldEqual, chart.Saturn)
			So(dignity.RulerOf(chart.Pisces), ShouldEqual, chart.Jupiter)
		})
	})
}

func TestTraditional(t *testing.T) {
	Convey("Given the traditional dignity table", t, func() {
		tbl := dignity.Traditional()

		Convey("Classic placements carry the expected modifiers", func() {
			So(tbl.Dignity(chart.Sun, chart.Leo), ShouldEqual, 30)
			So(tbl.Dignity(chart.Sun, chart.Aries), ShouldEqual, 20)
			So(tbl.Dignity(chart.Sun, chart.Aquarius), ShouldEqual, -20)
			So(tbl.Dignity(chart.Sun, chart.Libra), ShouldEqual, -20)
			So(tbl.Dignity(chart.Mercury, chart.Virgo), ShouldEqual, 35)
			So(tbl.Dignity(chart.Mercury, chart.Pisces), ShouldEqual, -35)
			So(tbl.Dignity(chart.Saturn, chart.Capricorn), ShouldEqual, 30)
			So(tbl.Dignity(chart.Mars, chart.Gemini), ShouldEqual, 0)
			So(tbl.Score(chart.Mars, chart.Capricorn), ShouldEqual, 70)
		})

		Convey("Every modifier belongs to the conventional value set", func() {
			allowed := map[int]bool{35: true, 30: true, 20: true, 0: true, -20: true, -35: true}
			for _, b := range chart.Bodies {
				for s := chart.Aries; s <= chart.Pisces; s++ {
					So(allowed[tbl.Dignity(b, s)], ShouldBeTrue)
				}
			}
		})

		Convey("A body in domicile never scores below a peregrine placement", func() {
			for _, b := range chart.Bodies {
				var peregrine []chart.Sign
				var domiciles []chart.Sign
				for s := chart.Aries; s <= chart.Pisces; s++ {
					switch d := tbl.Dignity(b, s); {
					case d == 0:
						peregrine = append(peregrine, s)
					case d >= dignity.Domicile:
						domiciles = append(domiciles, s)
					}
				}
				So(domiciles, ShouldNotBeEmpty)
				for _, d := range domiciles {
					for _, p := range peregrine {
						So(tbl.Score(b, d), ShouldBeGreaterThanOrEqualTo, tbl.Score(b, p))
					}
				}
			}
		})

		Convey("Overrides do not mutate the original table", func() {
			custom := tbl.With(dignity.Entry{Body: chart.Mars, Sign: chart.Gemini, Modifier: 11})
			So(custom.Dignity(chart.Mars, chart.Gemini), ShouldEqual, 11)
			So(custom.Dignity(chart.Sun, chart.Leo), ShouldEqual, 30)
			So(tbl.Dignity(chart.Mars, chart.Gemini), ShouldEqual, 0)
		})

		Convey("A nil table is peregrine everywhere", func() {
			var empty *dignity.Table
			So(empty.Dignity(chart.Sun, chart.Leo), ShouldEqual, 0)
			So(empty.Score(chart.Sun, chart.Leo), ShouldEqual, 50)
		})
	})
}
