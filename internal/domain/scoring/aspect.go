// Package scoring is the astrological influence scoring engine.
package scoring

import "github.com/okian/celest/internal/domain/chart"

// AspectImpact sums the aspects every transiting body makes to a natal
// reference longitude (the position of ref). One reason is recorded per
// non-zero contribution.
func (e *Engine) AspectImpact(reference float64, ref chart.Body, transit *chart.Chart, reasons Reasons) int {
	transit = orEmpty(transit)

	total := 0
	for _, b := range chart.Bodies {
		t, ok := transit.Point(b)
		if !ok {
			continue
		}
		a := ClassifyAspect(chart.ShortestArc(t.Longitude, reference))
		pts := sectorAspectPoints(a, b)
		if pts == 0 {
			continue
		}
		total += pts
		reasons.Addf("Transit: %s %s natal %s (%+d)", b, a, ref, pts)
	}
	return total
}
