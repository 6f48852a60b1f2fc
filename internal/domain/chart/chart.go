// Package chart holds the zodiac vocabulary and the normalized Chart value that
// every scorer consumes.
package chart

// HouseCount is the number of houses in a chart.
const HouseCount = 12

// ChartPoint is the placement of one body in a chart.
type ChartPoint struct {
	Body      Body    `json:"body"`
	Sign      Sign    `json:"sign"`
	Longitude float64 `json:"longitude"`
	House     int     `json:"house"`
	// Placeholder marks a neutral point substituted for a body the ephemeris
	// did not report. Scorers treat it as absent.
	Placeholder bool `json:"placeholder,omitempty"`
}

// placeholderPoint is the neutral stand-in for a missing body.
func placeholderPoint(b Body) ChartPoint {
	return ChartPoint{Body: b, Sign: Aries, Longitude: 0, House: 1, Placeholder: true}
}

// Chart is a normalized natal or transit chart. A Chart produced by Normalize
// always carries all ten bodies and all twelve cusps.
type Chart struct {
	Points map[Body]ChartPoint `json:"points"`
	// Cusps holds the sign on each house cusp; index 0 is house 1.
	Cusps [HouseCount]Sign `json:"cusps"`

	// Ascendant and Midheaven are meaningful only when HasAngles is set
	// (birth time known).
	Ascendant float64 `json:"ascendant,omitempty"`
	Midheaven float64 `json:"midheaven,omitempty"`
	HasAngles bool    `json:"has_angles"`
}

// Point returns the placement of b. ok is false when the body is missing or is
// a neutral placeholder.
func (c *Chart) Point(b Body) (ChartPoint, bool) {
	if c == nil {
		return ChartPoint{}, false
	}
	p, found := c.Points[b]
	if !found || p.Placeholder {
		return p, false
	}
	return p, true
}

// CuspSign returns the sign on the cusp of house h (1..12).
func (c *Chart) CuspSign(h int) Sign {
	if h < 1 || h > HouseCount {
		return Aries
	}
	return c.Cusps[h-1]
}

// Occupants returns the non-placeholder points in sign s, in canonical body order.
func (c *Chart) Occupants(s Sign) []ChartPoint {
	var out []ChartPoint
	for _, b := range Bodies {
		p, ok := c.Point(b)
		if ok && p.Sign == s {
			out = append(out, p)
		}
	}
	return out
}
