// Package ephemeris supplies planetary positions, house angles and sunrise
// and sunset times, and builds normalized charts from them.
package ephemeris

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/celest/internal/domain/chart"
	"github.com/okian/celest/internal/domain/model"
)

// Degradation records one oracle failure that the builder absorbed. The
// affected body became a placeholder, or the chart lost its angles.
type Degradation struct {
	// Body is the body that failed; meaningless when Angles is set.
	Body   chart.Body
	Angles bool
	Err    error
}

func (d Degradation) Error() string {
	if d.Angles {
		return fmt.Sprintf("houses: %v", d.Err)
	}
	return fmt.Sprintf("%s: %v", d.Body, d.Err)
}

func (d Degradation) Unwrap() error { return d.Err }

// Build is a normalized chart with the failures absorbed while building it.
type Build struct {
	Chart    chart.Chart
	Degraded []Degradation
}

// Builder turns oracle output into normalized charts. A failing body
// degrades to a placeholder instead of failing the chart.
type Builder struct {
	oracle Oracle
}

// NewBuilder creates a chart builder over an oracle.
func NewBuilder(oracle Oracle) *Builder {
	return &Builder{oracle: oracle}
}

// Oracle returns the underlying oracle.
func (b *Builder) Oracle() Oracle { return b.oracle }

// Natal builds the birth chart. Houses and angles are only computed when the
// birth time is known.
func (b *Builder) Natal(ctx context.Context, birth model.BirthData) (Build, error) {
	if err := birth.Validate(); err != nil {
		return Build{}, err
	}
	at, err := birth.Instant()
	if err != nil {
		return Build{}, err
	}

	var (
		raw chart.Raw
		out Build
	)
	if birth.HasTime() {
		h, err := b.oracle.Houses(ctx, at, birth.Latitude, birth.Longitude)
		switch {
		case ctx.Err() != nil:
			return Build{}, ctx.Err()
		case err != nil:
			out.Degraded = append(out.Degraded, Degradation{Angles: true, Err: err})
		default:
			asc, mc := h.Ascendant, h.Midheaven
			raw.Ascendant, raw.Midheaven = &asc, &mc
			raw.Cusps = h.CuspSigns()
		}
	}
	return b.finish(ctx, at, raw, out)
}

// Transit builds the sky at t. Transit charts carry no houses: occupancy
// always reads the natal cusps.
func (b *Builder) Transit(ctx context.Context, t time.Time) (Build, error) {
	return b.finish(ctx, t, chart.Raw{}, Build{})
}

func (b *Builder) finish(ctx context.Context, t time.Time, raw chart.Raw, out Build) (Build, error) {
	for _, body := range chart.Bodies {
		lon, err := b.oracle.LongitudeOf(ctx, body, t)
		if ctx.Err() != nil {
			return Build{}, ctx.Err()
		}
		if err == nil && !chart.ValidLongitude(lon) {
			err = fmt.Errorf("%w: longitude %v", chart.ErrInvalidInput, lon)
		}
		if err != nil {
			out.Degraded = append(out.Degraded, Degradation{Body: body, Err: err})
			continue
		}
		raw.Points = append(raw.Points, chart.RawPoint{Body: body.String(), Longitude: lon})
	}

	c, err := chart.Normalize(raw)
	if err != nil {
		return Build{}, fmt.Errorf("normalize: %w", err)
	}
	out.Chart = c
	return out, nil
}
