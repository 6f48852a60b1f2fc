package planetaryhour_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/celest/internal/domain/chart"
	"github.com/okian/celest/internal/domain/ephemeris"
	"github.com/okian/celest/internal/domain/planetaryhour"
	. "github.com/smartystreets/goconvey/convey"
)

// fixedSun rises at 06:00 and sets at 18:00 local mean solar time.
type fixedSun struct {
	err error
	// skew shifts every answer by whole days.
	skew int
}

func (f fixedSun) SunriseSunset(_ context.Context, date time.Time, _, lon float64) (time.Time, time.Time, error) {
	if f.err != nil {
		return time.Time{}, time.Time{}, f.err
	}
	y, m, d := date.Date()
	offset := -time.Duration(lon / 15 * float64(time.Hour))
	rise := time.Date(y, m, d+f.skew, 6, 0, 0, 0, time.UTC).Add(offset)
	return rise, rise.Add(12 * time.Hour), nil
}

func at(day, hour, minute int) time.Time {
	// 10 March 2024 is a Sunday.
	return time.Date(2024, 3, day, hour, minute, 0, 0, time.UTC)
}

func TestPlanetaryHour(t *testing.T) {
	Convey("Given an oracle with twelve-hour days", t, func() {
		calc := planetaryhour.NewCalculator(fixedSun{})
		ctx := context.Background()

		Convey("When it is Sunday at sunrise", func() {
			d, err := calc.Detail(ctx, 0, 0, at(10, 6, 0))

			Convey("Then the Sun rules the first hour", func() {
				So(err, ShouldBeNil)
				So(d.Ruler, ShouldEqual, chart.Sun)
				So(d.IsDay, ShouldBeTrue)
				So(d.HourNumber, ShouldEqual, 1)
				So(d.Start.Equal(at(10, 6, 0)), ShouldBeTrue)
				So(d.End.Equal(at(10, 7, 0)), ShouldBeTrue)
			})
		})

		Convey("When the hours advance through the day", func() {
			Convey("Then they follow the Chaldean order", func() {
				So(calc.ComputePlanetaryHour(ctx, 0, 0, at(10, 7, 30)), ShouldEqual, chart.Venus)
				So(calc.ComputePlanetaryHour(ctx, 0, 0, at(10, 8, 0)), ShouldEqual, chart.Mercury)
				So(calc.ComputePlanetaryHour(ctx, 0, 0, at(10, 9, 59)), ShouldEqual, chart.Moon)
				So(calc.ComputePlanetaryHour(ctx, 0, 0, at(10, 10, 0)), ShouldEqual, chart.Saturn)
			})
		})

		Convey("When Sunday night begins", func() {
			d, err := calc.Detail(ctx, 0, 0, at(10, 18, 0))

			Convey("Then the thirteenth hour continues the sequence", func() {
				So(err, ShouldBeNil)
				So(d.IsDay, ShouldBeFalse)
				So(d.HourNumber, ShouldEqual, 13)
				So(d.Ruler, ShouldEqual, chart.Jupiter)
				So(d.End.Equal(at(10, 19, 0)), ShouldBeTrue)
			})
		})

		Convey("When it is Sunday before sunrise", func() {
			d, err := calc.Detail(ctx, 0, 0, at(10, 5, 30))

			Convey("Then Saturday's last night hour applies", func() {
				So(err, ShouldBeNil)
				So(d.Weekday, ShouldEqual, time.Saturday)
				So(d.HourNumber, ShouldEqual, 24)
				So(d.Ruler, ShouldEqual, chart.Mars)
			})
		})

		Convey("When every weekday starts at sunrise", func() {
			want := []chart.Body{chart.Sun, chart.Moon, chart.Mars, chart.Mercury, chart.Jupiter, chart.Venus, chart.Saturn}
			for i, w := range want {
				So(calc.ComputePlanetaryHour(ctx, 0, 0, at(10+i, 6, 0)), ShouldEqual, w)
			}
		})

		Convey("When the same instant is given in two zones far east", func() {
			// 09:30 local solar time on Monday 11 March at 150E.
			utc := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)
			inUTC, err1 := calc.Detail(ctx, -33.9, 150, utc)
			inLocal, err2 := calc.Detail(ctx, -33.9, 150, utc.In(time.FixedZone("AEDT", 11*3600)))

			Convey("Then both resolve to Monday's fourth day hour", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(inUTC.Weekday, ShouldEqual, time.Monday)
				So(inUTC.IsDay, ShouldBeTrue)
				So(inUTC.HourNumber, ShouldEqual, 4)
				So(inUTC.Ruler, ShouldEqual, chart.Mars)
				So(inLocal.Ruler, ShouldEqual, inUTC.Ruler)
				So(inLocal.HourNumber, ShouldEqual, inUTC.HourNumber)
				So(inLocal.Weekday, ShouldEqual, inUTC.Weekday)
				So(inLocal.Start.Equal(inUTC.Start), ShouldBeTrue)
			})
		})

		Convey("When the instant is late evening far west", func() {
			// Sunday 20:00 local solar time at 120W is Monday 04:00 UTC.
			d, err := calc.Detail(ctx, 34, -120, time.Date(2024, 3, 11, 4, 0, 0, 0, time.UTC))

			Convey("Then Sunday's night applies", func() {
				So(err, ShouldBeNil)
				So(d.Weekday, ShouldEqual, time.Sunday)
				So(d.IsDay, ShouldBeFalse)
				So(d.HourNumber, ShouldEqual, 15)
				So(d.Ruler, ShouldEqual, chart.Sun)
			})
		})
	})

	Convey("Given an oracle whose spans do not contain the instant", t, func() {
		calc := planetaryhour.NewCalculator(fixedSun{skew: 2})

		Convey("Then the hour is an error and the ruler falls back", func() {
			_, err := calc.Detail(context.Background(), 0, 0, at(10, 12, 0))
			So(errors.Is(err, planetaryhour.ErrOutsideSpan), ShouldBeTrue)
			So(calc.ComputePlanetaryHour(context.Background(), 0, 0, at(10, 12, 0)), ShouldEqual, planetaryhour.FallbackRuler)
		})
	})

	Convey("Given a failing oracle", t, func() {
		calc := planetaryhour.NewCalculator(fixedSun{err: ephemeris.ErrNoSunrise})

		Convey("Then the fallback ruler is returned", func() {
			So(calc.ComputePlanetaryHour(context.Background(), 78, 15, at(10, 12, 0)), ShouldEqual, planetaryhour.FallbackRuler)
			_, err := calc.Detail(context.Background(), 78, 15, at(10, 12, 0))
			So(errors.Is(err, ephemeris.ErrNoSunrise), ShouldBeTrue)
		})
	})

	Convey("Given the analytic oracle", t, func() {
		oracle := ephemeris.NewAnalytic()
		calc := planetaryhour.NewCalculator(oracle)
		ctx := context.Background()
		rise, _, err := oracle.SunriseSunset(ctx, at(10, 0, 0), 51.5, -0.12)
		So(err, ShouldBeNil)

		Convey("Then a Sunday just after sunrise is ruled by the Sun", func() {
			So(calc.ComputePlanetaryHour(ctx, 51.5, -0.12, rise.Add(time.Minute)), ShouldEqual, chart.Sun)
		})

		Convey("When Sunday late morning in Wellington is given in UTC and in NZST", func() {
			utc := time.Date(2024, 6, 8, 23, 0, 0, 0, time.UTC)
			inUTC, err1 := calc.Detail(ctx, -41.29, 174.78, utc)
			inNZ, err2 := calc.Detail(ctx, -41.29, 174.78, utc.In(time.FixedZone("NZST", 12*3600)))

			Convey("Then both read Saturn's fifth day hour of Sunday", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				for _, d := range []planetaryhour.Detail{inUTC, inNZ} {
					So(d.Weekday, ShouldEqual, time.Sunday)
					So(d.IsDay, ShouldBeTrue)
					So(d.HourNumber, ShouldEqual, 5)
					So(d.Ruler, ShouldEqual, chart.Saturn)
				}
			})
		})
	})
}
