// Package ephemeris supplies planetary positions, house angles and sunrise
// and sunset times, and builds normalized charts from them.
package ephemeris

import (
	"math"
	"time"
)

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi

	unixEpochJD   = 2440587.5
	j2000JD       = 2451545.0
	daysPerJulian = 36525.0
	secondsPerDay = 86400.0
)

// julianDay converts an instant to a Julian day number.
func julianDay(t time.Time) float64 {
	return float64(t.UnixNano())/1e9/secondsPerDay + unixEpochJD
}

// fromJulianDay converts a Julian day number to a UTC instant.
func fromJulianDay(jd float64) time.Time {
	secs := (jd - unixEpochJD) * secondsPerDay
	whole := math.Floor(secs)
	return time.Unix(int64(whole), int64((secs-whole)*1e9)).UTC()
}

// centuries returns Julian centuries since J2000.0.
func centuries(jd float64) float64 {
	return (jd - j2000JD) / daysPerJulian
}

func norm360(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	// Mod of a tiny negative value can round up to exactly 360.
	if d >= 360 {
		d = 0
	}
	return d
}

func sinD(d float64) float64 { return math.Sin(d * degToRad) }
func cosD(d float64) float64 { return math.Cos(d * degToRad) }
func tanD(d float64) float64 { return math.Tan(d * degToRad) }

func atan2D(y, x float64) float64 { return norm360(math.Atan2(y, x) * radToDeg) }

// obliquity is the mean obliquity of the ecliptic in degrees.
func obliquity(t float64) float64 {
	return 23.439291 - 0.0130042*t
}
