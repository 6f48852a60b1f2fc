// Package ephemeris supplies planetary positions, house angles and sunrise
// and sunset times, and builds normalized charts from them.
package ephemeris

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/celest/internal/domain/chart"
)

// Sun altitude at rise and set: refraction plus the solar semi-diameter.
const sunriseAltitude = -0.833

// Analytic is a closed-form Oracle. It trades precision (arc-minutes for the
// planets, tenths of a degree for the Moon) for having no data files.
type Analytic struct{}

// NewAnalytic returns the analytic oracle.
func NewAnalytic() *Analytic { return &Analytic{} }

var planetElements = map[chart.Body]elements{
	chart.Mercury: mercuryElements,
	chart.Venus:   venusElements,
	chart.Mars:    marsElements,
	chart.Jupiter: jupiterElements,
	chart.Saturn:  saturnElements,
	chart.Uranus:  uranusElements,
	chart.Neptune: neptuneElements,
	chart.Pluto:   plutoElements,
}

// LongitudeOf implements Oracle.
func (a *Analytic) LongitudeOf(ctx context.Context, b chart.Body, t time.Time) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	jc := centuries(julianDay(t))
	switch b {
	case chart.Sun:
		return sunLongitude(jc), nil
	case chart.Moon:
		return moonLongitude(jc), nil
	}
	el, ok := planetElements[b]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedBody, b)
	}
	return geocentricLongitude(el, jc), nil
}

// Houses implements Oracle with Porphyry cusps: each quadrant between the
// angles is trisected along the ecliptic.
func (a *Analytic) Houses(ctx context.Context, t time.Time, lat, lon float64) (Houses, error) {
	if err := ctx.Err(); err != nil {
		return Houses{}, err
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || lat <= -90 || lat >= 90 || lon < -180 || lon > 180 {
		return Houses{}, fmt.Errorf("%w: (%v, %v)", ErrInvalidLocation, lat, lon)
	}
	asc, mc := angles(julianDay(t), lat, lon)
	return porphyry(asc, mc), nil
}

// angles returns the ascendant and midheaven longitudes.
func angles(jd, lat, lon float64) (asc, mc float64) {
	t := centuries(jd)
	gmst := 280.46061837 + 360.98564736629*(jd-j2000JD) + 0.000387933*t*t - t*t*t/38710000
	ramc := norm360(gmst + lon)
	eps := obliquity(t)

	mc = atan2D(sinD(ramc), cosD(ramc)*cosD(eps))
	asc = atan2D(cosD(ramc), -(sinD(ramc)*cosD(eps) + tanD(lat)*sinD(eps)))
	return asc, mc
}

func porphyry(asc, mc float64) Houses {
	h := Houses{Ascendant: asc, Midheaven: mc}
	ic := norm360(mc + 180)

	lower := norm360(ic-asc) / 3
	upper := norm360(asc+180-ic) / 3
	h.Cusps[0] = asc
	h.Cusps[1] = norm360(asc + lower)
	h.Cusps[2] = norm360(asc + 2*lower)
	h.Cusps[3] = ic
	h.Cusps[4] = norm360(ic + upper)
	h.Cusps[5] = norm360(ic + 2*upper)
	for i := 6; i < chart.HouseCount; i++ {
		h.Cusps[i] = norm360(h.Cusps[i-6] + 180)
	}
	return h
}

// SunriseSunset implements Oracle with the NOAA sunrise equation.
func (a *Analytic) SunriseSunset(ctx context.Context, date time.Time, lat, lon float64) (time.Time, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: (%v, %v)", ErrInvalidLocation, lat, lon)
	}

	y, m, d := date.Date()
	n := math.Round(julianDay(time.Date(y, m, d, 12, 0, 0, 0, time.UTC)) - j2000JD)
	jStar := n - lon/360

	anomaly := norm360(357.5291 + 0.98560028*jStar)
	center := 1.9148*sinD(anomaly) + 0.02*sinD(2*anomaly) + 0.0003*sinD(3*anomaly)
	ecliptic := norm360(anomaly + center + 180 + 102.9372)
	transit := j2000JD + jStar + 0.0053*sinD(anomaly) - 0.0069*sinD(2*ecliptic)

	sinDecl := sinD(ecliptic) * sinD(23.4397)
	cosDecl := math.Sqrt(1 - sinDecl*sinDecl)
	cosHour := (sinD(sunriseAltitude) - sinD(lat)*sinDecl) / (cosD(lat) * cosDecl)
	if cosHour < -1 || cosHour > 1 || math.IsNaN(cosHour) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s at (%v, %v)", ErrNoSunrise, date.Format(time.DateOnly), lat, lon)
	}
	hour := math.Acos(cosHour) * radToDeg / 360

	loc := date.Location()
	return fromJulianDay(transit - hour).In(loc), fromJulianDay(transit + hour).In(loc), nil
}
