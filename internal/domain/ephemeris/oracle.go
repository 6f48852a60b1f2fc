// Package ephemeris supplies planetary positions, house angles and sunrise
// and sunset times, and builds normalized charts from them.
package ephemeris

import (
	"context"
	"time"

	"github.com/okian/celest/internal/domain/chart"
)

// Oracle is the contract the scoring service needs from an ephemeris.
// Implementations must be safe for concurrent use.
type Oracle interface {
	// LongitudeOf returns the geocentric ecliptic longitude of b at t, in [0,360).
	LongitudeOf(ctx context.Context, b chart.Body, t time.Time) (float64, error)
	// Houses returns the house cusps and angles for t at the given location.
	// Latitude is north-positive, longitude east-positive.
	Houses(ctx context.Context, t time.Time, lat, lon float64) (Houses, error)
	// SunriseSunset returns the sunrise and sunset of the calendar day of
	// date, read in date's own location.
	SunriseSunset(ctx context.Context, date time.Time, lat, lon float64) (sunrise, sunset time.Time, err error)
}

// Houses are quadrant house cusp longitudes (index 0 is house 1) with the
// chart angles.
type Houses struct {
	Cusps     [chart.HouseCount]float64
	Ascendant float64
	Midheaven float64
}

// CuspSigns returns the sign on each cusp.
func (h Houses) CuspSigns() []string {
	out := make([]string, chart.HouseCount)
	for i, lon := range h.Cusps {
		out[i] = chart.SignOf(lon).String()
	}
	return out
}
