// Package scoring is the astrological influence scoring engine.
package scoring

import "github.com/okian/celest/internal/domain/chart"

// Placement is a transiting body seen through the native's houses.
type Placement struct {
	Body      chart.Body `json:"body"`
	Sign      chart.Sign `json:"sign"`
	Longitude float64    `json:"longitude"`
	// House is the whole-sign house relative to the natal ascendant, or 0
	// when the birth time (and so the ascendant) is unknown.
	House int `json:"house,omitempty"`
}

// TransitOverlay places every transiting body in the native's whole-sign
// houses. The second result is false when the natal ascendant is unknown, in
// which case no house is assigned.
func (e *Engine) TransitOverlay(natal, transit *chart.Chart) ([]Placement, bool) {
	transit = orEmpty(transit)
	withHouses := natal != nil && natal.HasAngles

	out := make([]Placement, 0, chart.BodyCount)
	for _, b := range chart.Bodies {
		p, ok := transit.Point(b)
		if !ok {
			continue
		}
		pl := Placement{Body: b, Sign: p.Sign, Longitude: p.Longitude}
		if withHouses {
			pl.House = e.ComputeHouseOverlay(p.Longitude, natal.Ascendant)
		}
		out = append(out, pl)
	}
	return out, withHouses
}
