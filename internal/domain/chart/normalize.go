// Package chart holds the zodiac vocabulary and the normalized Chart value that
// every scorer consumes.
package chart

import (
	"fmt"
	"strings"
)

// RawPoint is one body as reported by the ephemeris: a name, an optional sign
// name, an ecliptic longitude and an optional house (0 when unknown).
type RawPoint struct {
	Body      string  `json:"body"`
	Sign      string  `json:"sign,omitempty"`
	Longitude float64 `json:"longitude"`
	House     int     `json:"house,omitempty"`
}

// Raw is unnormalized ephemeris output.
type Raw struct {
	Points []RawPoint `json:"points"`
	// Cusps lists the sign names on houses 1..12. Missing entries are filled.
	Cusps     []string `json:"cusps,omitempty"`
	Ascendant *float64 `json:"ascendant,omitempty"`
	Midheaven *float64 `json:"midheaven,omitempty"`
}

// Normalize turns raw ephemeris output into a Chart.
//
// Bodies the raw data omits become neutral placeholders and missing cusps are
// filled (whole-sign from the ascendant when known, natural zodiac otherwise),
// so the result always carries ten bodies and twelve cusps. Malformed input
// (unknown names, longitude outside [0,360), house outside [1,12], duplicate
// bodies, a sign contradicting its longitude) is rejected with ErrInvalidInput.
func Normalize(raw Raw) (Chart, error) {
	c := Chart{Points: make(map[Body]ChartPoint, BodyCount)}

	if raw.Ascendant != nil {
		if !ValidLongitude(*raw.Ascendant) {
			return Chart{}, fmt.Errorf("%w: ascendant %v outside [0,360)", ErrInvalidInput, *raw.Ascendant)
		}
		c.Ascendant = *raw.Ascendant
		c.HasAngles = true
		if raw.Midheaven != nil {
			if !ValidLongitude(*raw.Midheaven) {
				return Chart{}, fmt.Errorf("%w: midheaven %v outside [0,360)", ErrInvalidInput, *raw.Midheaven)
			}
			c.Midheaven = *raw.Midheaven
		}
	}

	if err := c.fillCusps(raw.Cusps); err != nil {
		return Chart{}, err
	}

	for _, rp := range raw.Points {
		p, err := c.normalizePoint(rp)
		if err != nil {
			return Chart{}, err
		}
		if _, dup := c.Points[p.Body]; dup {
			return Chart{}, fmt.Errorf("%w: duplicate body %s", ErrInvalidInput, p.Body)
		}
		c.Points[p.Body] = p
	}

	for _, b := range Bodies {
		if _, ok := c.Points[b]; !ok {
			c.Points[b] = placeholderPoint(b)
		}
	}
	return c, nil
}

func (c *Chart) fillCusps(names []string) error {
	if len(names) > HouseCount {
		return fmt.Errorf("%w: %d cusps, want at most %d", ErrInvalidInput, len(names), HouseCount)
	}
	for h := 1; h <= HouseCount; h++ {
		if h <= len(names) && strings.TrimSpace(names[h-1]) != "" {
			s, err := ParseSign(names[h-1])
			if err != nil {
				return fmt.Errorf("%w: cusp %d: %w", ErrInvalidInput, h, err)
			}
			c.Cusps[h-1] = s
			continue
		}
		if c.HasAngles {
			c.Cusps[h-1] = SignOf(c.Ascendant).Add(h - 1)
		} else {
			c.Cusps[h-1] = Sign(h - 1)
		}
	}
	return nil
}

func (c *Chart) normalizePoint(rp RawPoint) (ChartPoint, error) {
	b, err := ParseBody(rp.Body)
	if err != nil {
		return ChartPoint{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !ValidLongitude(rp.Longitude) {
		return ChartPoint{}, fmt.Errorf("%w: %s longitude %v outside [0,360)", ErrInvalidInput, b, rp.Longitude)
	}
	sign := SignOf(rp.Longitude)
	if strings.TrimSpace(rp.Sign) != "" {
		given, err := ParseSign(rp.Sign)
		if err != nil {
			return ChartPoint{}, fmt.Errorf("%w: %s: %w", ErrInvalidInput, b, err)
		}
		if given != sign {
			return ChartPoint{}, fmt.Errorf("%w: %s sign %s does not match longitude %v", ErrInvalidInput, b, given, rp.Longitude)
		}
	}

	house := rp.House
	switch {
	case house == 0 && c.HasAngles:
		house = HouseOf(rp.Longitude, c.Ascendant)
	case house == 0:
		house = 1
	case house < 1 || house > HouseCount:
		return ChartPoint{}, fmt.Errorf("%w: %s house %d outside [1,12]", ErrInvalidInput, b, house)
	}

	return ChartPoint{Body: b, Sign: sign, Longitude: rp.Longitude, House: house}, nil
}
