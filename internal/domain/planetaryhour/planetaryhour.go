// Package planetaryhour computes the traditional planetary hour ruler: the
// day and the night are each split into twelve unequal hours, and the rulers
// follow the Chaldean order starting from the weekday's ruler at sunrise.
package planetaryhour

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/celest/internal/domain/chart"
)

// FallbackRuler is returned when sunrise or sunset cannot be computed.
const FallbackRuler = chart.Sun

const hoursPerHalf = 12

// ChaldeanOrder is the descending order of apparent planetary speed.
var ChaldeanOrder = [7]chart.Body{
	chart.Saturn, chart.Jupiter, chart.Mars, chart.Sun, chart.Venus, chart.Mercury, chart.Moon,
}

// weekdayStart is the Chaldean index of each weekday's ruler, which rules
// that day's first hour.
var weekdayStart = map[time.Weekday]int{
	time.Sunday:    3, // Sun
	time.Monday:    6, // Moon
	time.Tuesday:   2, // Mars
	time.Wednesday: 5, // Mercury
	time.Thursday:  1, // Jupiter
	time.Friday:    4, // Venus
	time.Saturday:  0, // Saturn
}

// SunOracle supplies sunrise and sunset for the calendar day of date.
type SunOracle interface {
	SunriseSunset(ctx context.Context, date time.Time, lat, lon float64) (sunrise, sunset time.Time, err error)
}

// Detail describes the planetary hour containing an instant.
type Detail struct {
	Ruler chart.Body `json:"ruler"`
	IsDay bool       `json:"is_day"`
	// HourNumber counts from 1 at sunrise through 24 just before the next
	// sunrise.
	HourNumber int       `json:"hour_number"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	// Weekday is the planetary weekday, which before sunrise is the
	// previous calendar day.
	Weekday time.Weekday `json:"weekday"`
}

// Calculator resolves planetary hours from an oracle.
type Calculator struct {
	oracle SunOracle
}

// NewCalculator creates a calculator.
func NewCalculator(oracle SunOracle) *Calculator {
	return &Calculator{oracle: oracle}
}

// ComputePlanetaryHour returns the ruler of the hour containing at. It never
// fails: any oracle error yields FallbackRuler.
func (c *Calculator) ComputePlanetaryHour(ctx context.Context, lat, lon float64, at time.Time) chart.Body {
	d, err := c.Detail(ctx, lat, lon, at)
	if err != nil {
		return FallbackRuler
	}
	return d.Ruler
}

// Detail returns the full planetary hour for at. The day is the local solar
// day at lon, so the answer does not depend on at's location. Before that
// day's sunrise the previous day's night applies.
func (c *Calculator) Detail(ctx context.Context, lat, lon float64, at time.Time) (Detail, error) {
	day := solarDay(at, lon)
	rise, set, err := c.oracle.SunriseSunset(ctx, day, lat, lon)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{Weekday: day.Weekday()}
	switch {
	case at.Before(rise):
		prev := day.AddDate(0, 0, -1)
		_, prevSet, err := c.oracle.SunriseSunset(ctx, prev, lat, lon)
		if err != nil {
			return Detail{}, err
		}
		d.Weekday = prev.Weekday()
		d.Start, d.End = prevSet, rise
	case at.Before(set):
		d.IsDay = true
		d.Start, d.End = rise, set
	default:
		nextRise, _, err := c.oracle.SunriseSunset(ctx, day.AddDate(0, 0, 1), lat, lon)
		if err != nil {
			return Detail{}, err
		}
		d.Start, d.End = set, nextRise
	}

	hourLen := d.End.Sub(d.Start) / hoursPerHalf
	if hourLen <= 0 {
		return Detail{}, ErrEmptySpan
	}
	if at.Before(d.Start) || !at.Before(d.End) {
		return Detail{}, fmt.Errorf("%w: %s not in [%s, %s)", ErrOutsideSpan,
			at.UTC().Format(time.RFC3339), d.Start.UTC().Format(time.RFC3339), d.End.UTC().Format(time.RFC3339))
	}
	// hourLen is truncated to whole nanoseconds, so the last instant of a
	// span can count as a thirteenth hour.
	passed := min(int(at.Sub(d.Start)/hourLen), hoursPerHalf-1)

	loc := at.Location()
	d.Start, d.End = d.Start.Add(time.Duration(passed)*hourLen).In(loc), d.Start.Add(time.Duration(passed+1)*hourLen).In(loc)
	if !d.IsDay {
		passed += hoursPerHalf
	}
	d.HourNumber = passed + 1
	d.Ruler = ChaldeanOrder[(weekdayStart[d.Weekday]+passed)%len(ChaldeanOrder)]
	return d, nil
}

// solarDay returns noon UTC of the calendar day that at falls on in local
// mean solar time at lon.
func solarDay(at time.Time, lon float64) time.Time {
	local := at.UTC().Add(time.Duration(lon / 15 * float64(time.Hour)))
	y, m, d := local.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
