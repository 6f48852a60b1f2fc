// Package scoring is the astrological influence scoring engine. It turns a
// natal chart and a transit chart into bounded, explainable scores for the
// eight life sectors and the three daily dimensions.
//
// Every computation is a pure function of its inputs; an Engine only carries
// the shared dignity table and the clock used for the hourly rhythm term.
package scoring

import (
	"time"

	"github.com/okian/celest/internal/domain/chart"
	"github.com/okian/celest/internal/domain/dignity"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDignityTable replaces the traditional dignity table.
func WithDignityTable(t *dignity.Table) Option {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// WithClock sets the clock used by the dimension scorer's hourly rhythm.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine computes sector wheels and dimension scores.
type Engine struct {
	table *dignity.Table
	now   func() time.Time
}

// NewEngine creates an engine with the traditional dignity table and the
// wall clock.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		table: dignity.Traditional(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the dignity table shared by all scorers of this engine.
func (e *Engine) Table() *dignity.Table { return e.table }

// ComputeHouseOverlay places a longitude in the whole-sign house of an ascendant.
func (e *Engine) ComputeHouseOverlay(pointLongitude, ascendantLongitude float64) int {
	return chart.HouseOf(pointLongitude, ascendantLongitude)
}

// emptyChart stands in for an absent chart: every body a placeholder and the
// natural zodiac on the cusps.
func emptyChart() *chart.Chart {
	c, _ := chart.Normalize(chart.Raw{})
	return &c
}

func orEmpty(c *chart.Chart) *chart.Chart {
	if c == nil || c.Points == nil {
		return emptyChart()
	}
	return c
}
