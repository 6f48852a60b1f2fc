// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/celest/internal/domain/chart"
	"github.com/okian/celest/internal/domain/ephemeris"
	"github.com/okian/celest/internal/domain/model"
	"github.com/okian/celest/internal/domain/planetaryhour"
	"github.com/okian/celest/internal/domain/scoring"
	"github.com/okian/celest/pkg/logger"
	"github.com/okian/celest/pkg/metrics"
)

// trendDays is the half-width of the dimension trend around the requested day.
const trendDays = 2

// trendHour is the UTC hour at which each trend day's sky is taken.
const trendHour = 12

// WheelReading is the life wheel of one native at one instant.
type WheelReading struct {
	At time.Time `json:"at"`
	scoring.Wheel
	// Degraded lists oracle failures absorbed while building the charts.
	Degraded []string `json:"degraded,omitempty"`
}

// ScoreReport scores caller-supplied charts.
type ScoreReport struct {
	Wheel      scoring.Wheel                             `json:"wheel"`
	Dimensions map[scoring.Dimension]scoring.ScoreResult `json:"dimensions"`
	Synergy    scoring.Synergy                           `json:"synergy"`
}

// TrendPoint is one day of a dimension trend.
type TrendPoint struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

// DimensionReading is one daily dimension with a five-day trend.
type DimensionReading struct {
	Dimension scoring.Dimension `json:"dimension"`
	At        time.Time         `json:"at"`
	scoring.ScoreResult
	Trend    []TrendPoint `json:"trend"`
	Degraded []string     `json:"degraded,omitempty"`
}

// TransitReading is the current sky in the native's houses.
type TransitReading struct {
	At         time.Time           `json:"at"`
	Placements []scoring.Placement `json:"placements"`
	// HousesKnown is false when the birth time is unknown; no houses are
	// assigned then.
	HousesKnown bool     `json:"houses_known"`
	Degraded    []string `json:"degraded,omitempty"`
}

// HourReading is a planetary hour, or the fallback ruler when the oracle
// could not place the sun.
type HourReading struct {
	planetaryhour.Detail
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Fallback  bool    `json:"fallback"`
}

// instant returns at, or the service clock when at is zero.
func (s *Service) instant(at time.Time) time.Time {
	if at.IsZero() {
		return s.now()
	}
	return at
}

// charts builds the natal chart (memoized) and the transit chart at at
// concurrently.
func (s *Service) charts(ctx context.Context, birth model.BirthData, at time.Time) (natal, transit ephemeris.Build, err error) {
	if err := birth.Validate(); err != nil {
		return ephemeris.Build{}, ephemeris.Build{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		natal, err = s.natal.Get(gctx, birth)
		return err
	})
	g.Go(func() error {
		var err error
		transit, err = s.builder.Transit(gctx, at)
		return err
	})
	if err := g.Wait(); err != nil {
		return ephemeris.Build{}, ephemeris.Build{}, err
	}
	return natal, transit, nil
}

// degraded logs and counts absorbed oracle failures, returning them as
// strings for the response.
func (s *Service) degraded(ctx context.Context, kind string, builds ...ephemeris.Build) []string {
	var out []string
	for _, b := range builds {
		for _, d := range b.Degraded {
			component := "longitude"
			if d.Angles {
				component = "houses"
			}
			s.logger.Warn(ctx, "ephemeris failure absorbed",
				logger.String("chart", kind),
				logger.String("component", component),
				logger.Error(d),
			)
			metrics.RecordOracleDegradation(component)
			out = append(out, kind+": "+d.Error())
		}
	}
	return out
}

// Wheel scores the eight life sectors for a native at at (now when zero).
func (s *Service) Wheel(ctx context.Context, birth model.BirthData, at time.Time) (WheelReading, error) {
	at = s.instant(at)
	natal, transit, err := s.charts(ctx, birth, at)
	if err != nil {
		return WheelReading{}, err
	}

	start := time.Now()
	w := s.engine.ComputeSectorWheel(&natal.Chart, &transit.Chart)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	recordWheel(w)

	return WheelReading{
		At:       at,
		Wheel:    w,
		Degraded: append(s.degraded(ctx, "natal", natal), s.degraded(ctx, "transit", transit)...),
	}, nil
}

// Score normalizes caller-supplied charts and scores the wheel and the
// three dimensions.
func (s *Service) Score(_ context.Context, natalRaw, transitRaw chart.Raw) (ScoreReport, error) {
	natal, err := chart.Normalize(natalRaw)
	if err != nil {
		return ScoreReport{}, fmt.Errorf("natal: %w", err)
	}
	transit, err := chart.Normalize(transitRaw)
	if err != nil {
		return ScoreReport{}, fmt.Errorf("transit: %w", err)
	}

	w := s.engine.ComputeSectorWheel(&natal, &transit)
	recordWheel(w)
	report := ScoreReport{
		Wheel:      w,
		Dimensions: make(map[scoring.Dimension]scoring.ScoreResult, len(scoring.Dimensions)),
	}
	scores := make(map[scoring.Dimension]int, len(scoring.Dimensions))
	for _, d := range scoring.Dimensions {
		res := s.engine.ComputeDimensionScore(&natal, &transit, d)
		metrics.RecordDimensionScore(string(d), res.Score)
		report.Dimensions[d] = res
		scores[d] = res.Score
	}
	report.Synergy = scoring.ComputeSynergy(scores)
	return report, nil
}

// Dimension scores one daily dimension at at and its trend over the
// surrounding days, each taken at noon UTC.
func (s *Service) Dimension(ctx context.Context, birth model.BirthData, d scoring.Dimension, at time.Time) (DimensionReading, error) {
	if _, ok := d.Driver(); !ok {
		return DimensionReading{}, fmt.Errorf("%w: %q", scoring.ErrUnknownDimension, d)
	}
	at = s.instant(at)
	natal, transit, err := s.charts(ctx, birth, at)
	if err != nil {
		return DimensionReading{}, err
	}

	res := s.engine.ComputeDimensionScore(&natal.Chart, &transit.Chart, d)
	metrics.RecordDimensionScore(string(d), res.Score)

	day := at.UTC().Truncate(24 * time.Hour)
	trend := make([]TrendPoint, 2*trendDays+1)
	g, gctx := errgroup.WithContext(ctx)
	for i := range trend {
		noon := day.AddDate(0, 0, i-trendDays).Add(trendHour * time.Hour)
		g.Go(func() error {
			sky, err := s.builder.Transit(gctx, noon)
			if err != nil {
				return err
			}
			trend[i] = TrendPoint{
				Date:  noon.Format(model.DateLayout),
				Score: s.engine.ComputeDimensionScore(&natal.Chart, &sky.Chart, d).Score,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return DimensionReading{}, fmt.Errorf("trend: %w", err)
	}

	return DimensionReading{
		Dimension:   d,
		At:          at,
		ScoreResult: res,
		Trend:       trend,
		Degraded:    append(s.degraded(ctx, "natal", natal), s.degraded(ctx, "transit", transit)...),
	}, nil
}

// Overlay places a longitude in the whole-sign house of an ascendant.
func (s *Service) Overlay(point, ascendant float64) (int, error) {
	if !chart.ValidLongitude(point) {
		return 0, fmt.Errorf("%w: point %v outside [0,360)", chart.ErrInvalidInput, point)
	}
	if !chart.ValidLongitude(ascendant) {
		return 0, fmt.Errorf("%w: ascendant %v outside [0,360)", chart.ErrInvalidInput, ascendant)
	}
	return s.engine.ComputeHouseOverlay(point, ascendant), nil
}

// Transits places the sky at at (now when zero) in the native's houses.
func (s *Service) Transits(ctx context.Context, birth model.BirthData, at time.Time) (TransitReading, error) {
	at = s.instant(at)
	natal, transit, err := s.charts(ctx, birth, at)
	if err != nil {
		return TransitReading{}, err
	}
	placements, known := s.engine.TransitOverlay(&natal.Chart, &transit.Chart)
	return TransitReading{
		At:          at,
		Placements:  placements,
		HousesKnown: known,
		Degraded:    append(s.degraded(ctx, "natal", natal), s.degraded(ctx, "transit", transit)...),
	}, nil
}

// PlanetaryHour resolves the planetary hour at at (now when zero). Nil
// coordinates fall back to the reference location. Oracle failures yield
// the fallback ruler; only invalid coordinates are errors.
func (s *Service) PlanetaryHour(ctx context.Context, lat, lon *float64, at time.Time) (HourReading, error) {
	at = s.instant(at)
	r := HourReading{Latitude: s.refLatitude, Longitude: s.refLongitude}
	if lat != nil {
		r.Latitude = *lat
	}
	if lon != nil {
		r.Longitude = *lon
	}
	if r.Latitude < -90 || r.Latitude > 90 || r.Longitude < -180 || r.Longitude > 180 {
		return HourReading{}, fmt.Errorf("%w: (%v, %v)", ephemeris.ErrInvalidLocation, r.Latitude, r.Longitude)
	}

	d, err := s.hours.Detail(ctx, r.Latitude, r.Longitude, at)
	if err != nil {
		if ctx.Err() != nil {
			return HourReading{}, ctx.Err()
		}
		s.logger.Warn(ctx, "planetary hour unavailable; using fallback ruler",
			logger.Float64("latitude", r.Latitude),
			logger.Float64("longitude", r.Longitude),
			logger.String("at", at.Format(time.RFC3339)),
			logger.Error(err),
		)
		metrics.RecordPlanetaryHour(true)
		metrics.RecordOracleDegradation("sunrise")
		r.Detail = planetaryhour.Detail{Ruler: planetaryhour.FallbackRuler, Weekday: at.Weekday()}
		r.Fallback = true
		return r, nil
	}
	metrics.RecordPlanetaryHour(false)
	r.Detail = d
	return r, nil
}

func recordWheel(w scoring.Wheel) {
	sectors := make(map[string]int, len(w.Sectors))
	for _, sc := range w.Sectors {
		sectors[sc.Label] = sc.Score
	}
	metrics.RecordSectorWheel(w.Harmony, sectors)
}
