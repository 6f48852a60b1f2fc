// Package scoring is the astrological influence scoring engine.
package scoring

import "github.com/okian/celest/internal/domain/chart"

// OccupancyScore scores the bodies of c that sit in the signs governing the
// given houses. The governing sign of each house is always read from the
// reference (natal) chart, even when c is the transit chart.
//
// Benefics add 20 and neutral bodies 5. A malefic adds 5 when its own dignity
// score in that sign is above 60 and subtracts 15 otherwise.
func (e *Engine) OccupancyScore(houses []int, c, reference *chart.Chart, label string) (int, Reasons) {
	reasons := NewReasons()
	c, reference = orEmpty(c), orEmpty(reference)

	total := 0
	for _, h := range houses {
		target := reference.CuspSign(h)
		for _, p := range c.Occupants(target) {
			switch {
			case occupancyBenefics.has(p.Body):
				total += occupancyBenefic
				reasons.Addf("%s: %s on House (%+d)", label, p.Body, occupancyBenefic)
			case occupancyMalefics.has(p.Body):
				if e.table.Score(p.Body, p.Sign) > maleficDignityThreshold {
					total += occupancyDignifiedMalefic
					reasons.Addf("%s: %s dignified on House (%+d)", label, p.Body, occupancyDignifiedMalefic)
				} else {
					total += occupancyMalefic
					reasons.Addf("%s: %s on House (%+d)", label, p.Body, occupancyMalefic)
				}
			default:
				total += occupancyNeutral
				reasons.Addf("%s: %s on House (%+d)", label, p.Body, occupancyNeutral)
			}
		}
	}
	return total, reasons
}
