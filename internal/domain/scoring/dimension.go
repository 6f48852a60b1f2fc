// Package scoring is the astrological influence scoring engine.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/celest/internal/domain/chart"
	"github.com/okian/celest/internal/domain/dignity"
)

// Dimension score bounds and fallback.
const (
	MinDimensionScore = 10
	MaxDimensionScore = 100
	// NeutralDimensionScore is returned when a chart is unavailable.
	NeutralDimensionScore = 50

	rhythmPeriodHours = 6
	rhythmOffset      = 3
)

// Dimension is one of the three daily dashboard dimensions.
type Dimension string

// Daily dimensions.
const (
	Mental    Dimension = "mental"
	Physical  Dimension = "physical"
	Emotional Dimension = "emotional"
)

// Dimensions lists the daily dimensions in dashboard order.
var Dimensions = []Dimension{Mental, Physical, Emotional}

// ParseDimension resolves a case-insensitive dimension name.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case Mental, Physical, Emotional:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// Driver returns the body whose transit drives the dimension. Mental uses the
// Sun until Mercury is wired through the ephemeris; switching it changes every
// mental score.
func (d Dimension) Driver() (chart.Body, bool) {
	switch d {
	case Mental:
		return chart.Sun, true
	case Physical:
		return chart.Mars, true
	case Emotional:
		return chart.Moon, true
	}
	return 0, false
}

// ComputeDimensionScore scores one daily dimension from its driver's dignity
// in the transit sky, the driver's transit-to-natal aspect and an hourly
// rhythm of (UTC hour mod 6) - 3. The result is in [10,100]; when either chart
// is missing the neutral score 50 is returned.
func (e *Engine) ComputeDimensionScore(natal, transit *chart.Chart, d Dimension) ScoreResult {
	driver, ok := d.Driver()
	if natal == nil || transit == nil || !ok {
		return ScoreResult{
			Score:   NeutralDimensionScore,
			Reasons: []string{"Charts unavailable: neutral reading"},
		}
	}
	reasons := NewReasons()

	base := dignity.BaseScore
	tp, transitOK := transit.Point(driver)
	if transitOK {
		base = e.table.Score(driver, tp.Sign)
		if dg := e.table.Dignity(driver, tp.Sign); dg != 0 {
			reasons.Addf("Transit: %s in %s (%+d)", driver, tp.Sign, dg)
		}
	}

	aspect := 0
	if np, natalOK := natal.Point(driver); natalOK && transitOK {
		a := ClassifyAspect(chart.ShortestArc(tp.Longitude, np.Longitude))
		if pts := dimensionAspectPoints[a]; pts != 0 {
			aspect = pts
			reasons.Addf("Transit: %s %s natal %s (%+d)", driver, a, driver, pts)
		}
	}

	jitter := e.now().UTC().Hour()%rhythmPeriodHours - rhythmOffset
	if jitter != 0 {
		reasons.Addf("Hourly rhythm (%+d)", jitter)
	}

	raw := float64(base + aspect + jitter)
	return ScoreResult{
		Score:   clamp(int(math.Round(raw)), MinDimensionScore, MaxDimensionScore),
		Reasons: reasons.Sorted(),
	}
}
