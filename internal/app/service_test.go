package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/celest/internal/app"
	"github.com/okian/celest/internal/domain/chart"
	"github.com/okian/celest/internal/domain/ephemeris"
	"github.com/okian/celest/internal/domain/model"
	"github.com/okian/celest/internal/domain/scoring"
	"github.com/okian/celest/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// clock is a settable test clock.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock(t time.Time) *clock { return &clock{t: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// brokenMars fails every Mars longitude and otherwise answers analytically.
type brokenMars struct {
	*ephemeris.Analytic
}

func (b brokenMars) LongitudeOf(ctx context.Context, body chart.Body, t time.Time) (float64, error) {
	if body == chart.Mars {
		return 0, errors.New("mars offline")
	}
	return b.Analytic.LongitudeOf(ctx, body, t)
}

var knownBirth = model.BirthData{
	Date:      "1990-05-17",
	Time:      "08:30",
	Latitude:  48.8566,
	Longitude: 2.3522,
	Location:  "Europe/Paris",
}

var unknownTimeBirth = model.BirthData{
	Date:        "1990-05-17",
	TimeUnknown: true,
	Latitude:    48.8566,
	Longitude:   2.3522,
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc, err := service.New()
		So(err, ShouldBeNil)

		Convey("Then it should not be started", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["natalCached"], ShouldEqual, 0)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc, err := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithNatalCacheSize(16),
		)

		Convey("Then it should carry them", func() {
			So(err, ShouldBeNil)
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 50_000)
			So(stats["dedupeSize"], ShouldEqual, 25_000)
			So(stats["natalCacheSize"], ShouldEqual, 16)
		})
	})
}

func TestService_Overlay(t *testing.T) {
	Convey("Given a service", t, func() {
		svc, err := service.New()
		So(err, ShouldBeNil)

		Convey("When overlaying 220 degrees on a 95 degree ascendant", func() {
			house, err := svc.Overlay(220, 95)

			Convey("Then the point falls in the fifth house", func() {
				So(err, ShouldBeNil)
				So(house, ShouldEqual, 5)
			})
		})

		Convey("When a longitude is out of range", func() {
			_, errPoint := svc.Overlay(360, 95)
			_, errAsc := svc.Overlay(10, -1)

			Convey("Then the input is rejected", func() {
				So(errors.Is(errPoint, chart.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(errAsc, chart.ErrInvalidInput), ShouldBeTrue)
			})
		})
	})
}

func TestService_Score(t *testing.T) {
	Convey("Given a service whose clock sits on a zero rhythm hour", t, func() {
		clk := newClock(time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC))
		svc, err := service.New(service.WithClock(clk.Now))
		So(err, ShouldBeNil)

		Convey("When scoring two empty charts", func() {
			report, err := svc.Score(context.Background(), chart.Raw{}, chart.Raw{})

			Convey("Then every sector and dimension is neutral", func() {
				So(err, ShouldBeNil)
				So(report.Wheel.Sectors, ShouldHaveLength, 8)
				for _, sc := range report.Wheel.Sectors {
					So(sc.Score, ShouldEqual, 56)
				}
				So(report.Wheel.Harmony, ShouldEqual, 56)
				So(report.Dimensions, ShouldHaveLength, 3)
				for _, d := range scoring.Dimensions {
					So(report.Dimensions[d].Score, ShouldEqual, 50)
				}
				So(report.Synergy.Mean, ShouldEqual, 50)
				So(report.Synergy.Verdict, ShouldEqual, scoring.VerdictStable)
			})
		})

		Convey("When a raw chart is malformed", func() {
			bad := chart.Raw{Points: []chart.RawPoint{{Body: "Mars", Longitude: 400}}}
			_, errNatal := svc.Score(context.Background(), bad, chart.Raw{})
			_, errTransit := svc.Score(context.Background(), chart.Raw{}, bad)

			Convey("Then it is rejected and named", func() {
				So(errors.Is(errNatal, chart.ErrInvalidInput), ShouldBeTrue)
				So(errNatal.Error(), ShouldStartWith, "natal:")
				So(errors.Is(errTransit, chart.ErrInvalidInput), ShouldBeTrue)
				So(errTransit.Error(), ShouldStartWith, "transit:")
			})
		})
	})
}

func TestService_Wheel(t *testing.T) {
	Convey("Given a service on the analytic ephemeris", t, func() {
		clk := newClock(time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC))
		svc, err := service.New(service.WithClock(clk.Now))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When the wheel is read twice", func() {
			first, err1 := svc.Wheel(ctx, knownBirth, time.Time{})
			second, err2 := svc.Wheel(ctx, knownBirth, time.Time{})

			Convey("Then both readings agree and are bounded", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first.At.Equal(clk.Now()), ShouldBeTrue)
				So(first.Wheel, ShouldResemble, second.Wheel)
				So(first.Sectors, ShouldHaveLength, 8)
				for _, sc := range first.Sectors {
					So(sc.Score, ShouldBeBetweenOrEqual, scoring.MinSectorScore, scoring.MaxSectorScore)
				}
				So(first.Degraded, ShouldBeEmpty)
			})

			Convey("And the natal chart is cached once", func() {
				So(svc.GetStats()["natalCached"], ShouldEqual, 1)
			})
		})

		Convey("When the birth data is invalid", func() {
			_, err := svc.Wheel(ctx, model.BirthData{Date: "17/05/1990"}, time.Time{})

			Convey("Then the request is rejected", func() {
				So(errors.Is(err, model.ErrInvalidBirthData), ShouldBeTrue)
			})
		})
	})

	Convey("Given an ephemeris that cannot place Mars", t, func() {
		svc, err := service.New(service.WithOracle(brokenMars{ephemeris.NewAnalytic()}))
		So(err, ShouldBeNil)

		Convey("When reading the wheel", func() {
			r, err := svc.Wheel(context.Background(), knownBirth, time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC))

			Convey("Then the reading degrades instead of failing", func() {
				So(err, ShouldBeNil)
				So(r.Sectors, ShouldHaveLength, 8)
				So(r.Degraded, ShouldHaveLength, 2)
				So(strings.Join(r.Degraded, ";"), ShouldContainSubstring, "natal: Mars")
				So(strings.Join(r.Degraded, ";"), ShouldContainSubstring, "transit: Mars")
			})

			Convey("And the degraded natal chart is not cached", func() {
				So(svc.GetStats()["natalCached"], ShouldEqual, 0)
			})
		})
	})
}

func TestService_Dimension(t *testing.T) {
	Convey("Given a service", t, func() {
		svc, err := service.New()
		So(err, ShouldBeNil)
		at := time.Date(2024, 6, 21, 9, 30, 0, 0, time.UTC)

		Convey("When reading the physical dimension", func() {
			r, err := svc.Dimension(context.Background(), knownBirth, scoring.Physical, at)

			Convey("Then a five-day noon trend surrounds the day", func() {
				So(err, ShouldBeNil)
				So(r.Dimension, ShouldEqual, scoring.Physical)
				So(r.Score, ShouldBeBetweenOrEqual, scoring.MinDimensionScore, scoring.MaxDimensionScore)
				So(r.Trend, ShouldHaveLength, 5)
				for i, p := range r.Trend {
					So(p.Date, ShouldEqual, fmt.Sprintf("2024-06-%02d", 19+i))
					So(p.Score, ShouldBeBetweenOrEqual, scoring.MinDimensionScore, scoring.MaxDimensionScore)
				}
			})
		})

		Convey("When the dimension is unknown", func() {
			_, err := svc.Dimension(context.Background(), knownBirth, scoring.Dimension("spiritual"), at)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, scoring.ErrUnknownDimension), ShouldBeTrue)
			})
		})
	})
}

func TestService_Transits(t *testing.T) {
	Convey("Given a service", t, func() {
		svc, err := service.New()
		So(err, ShouldBeNil)
		at := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)

		Convey("When the birth time is known", func() {
			r, err := svc.Transits(context.Background(), knownBirth, at)

			Convey("Then every body lands in a house", func() {
				So(err, ShouldBeNil)
				So(r.HousesKnown, ShouldBeTrue)
				So(r.Placements, ShouldHaveLength, chart.BodyCount)
				for _, p := range r.Placements {
					So(p.House, ShouldBeBetweenOrEqual, 1, 12)
					So(p.Sign, ShouldEqual, chart.SignOf(p.Longitude))
				}
			})
		})

		Convey("When the birth time is unknown", func() {
			r, err := svc.Transits(context.Background(), unknownTimeBirth, at)

			Convey("Then no houses are assigned", func() {
				So(err, ShouldBeNil)
				So(r.HousesKnown, ShouldBeFalse)
				So(r.Placements, ShouldHaveLength, chart.BodyCount)
				for _, p := range r.Placements {
					So(p.House, ShouldEqual, 0)
				}
			})
		})
	})
}

func TestService_PlanetaryHour(t *testing.T) {
	Convey("Given a service referenced on Greenwich", t, func() {
		svc, err := service.New(service.WithReferenceLocation(51.4779, -0.0015))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When asking shortly after a Friday sunrise", func() {
			r, err := svc.PlanetaryHour(ctx, nil, nil, time.Date(2024, 6, 21, 4, 0, 0, 0, time.UTC))

			Convey("Then Venus rules the first hour at the reference location", func() {
				So(err, ShouldBeNil)
				So(r.Fallback, ShouldBeFalse)
				So(r.Latitude, ShouldEqual, 51.4779)
				So(r.Ruler, ShouldEqual, chart.Venus)
				So(r.HourNumber, ShouldEqual, 1)
				So(r.IsDay, ShouldBeTrue)
			})
		})

		Convey("When a UTC instant is asked for a far-east location", func() {
			lat, lon := -41.29, 174.78
			r, err := svc.PlanetaryHour(ctx, &lat, &lon, time.Date(2024, 6, 8, 23, 0, 0, 0, time.UTC))

			Convey("Then the location's Sunday morning is read", func() {
				So(err, ShouldBeNil)
				So(r.Fallback, ShouldBeFalse)
				So(r.Weekday, ShouldEqual, time.Sunday)
				So(r.IsDay, ShouldBeTrue)
				So(r.Ruler, ShouldEqual, chart.Saturn)
			})
		})

		Convey("When the sun does not rise", func() {
			lat, lon := 78.2232, 15.6267
			r, err := svc.PlanetaryHour(ctx, &lat, &lon, time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC))

			Convey("Then the Sun is the fallback ruler", func() {
				So(err, ShouldBeNil)
				So(r.Fallback, ShouldBeTrue)
				So(r.Ruler, ShouldEqual, chart.Sun)
			})
		})

		Convey("When the coordinates are invalid", func() {
			lat := 91.0
			_, err := svc.PlanetaryHour(ctx, &lat, nil, time.Time{})

			Convey("Then the request is rejected", func() {
				So(errors.Is(err, ephemeris.ErrInvalidLocation), ShouldBeTrue)
			})
		})
	})
}
