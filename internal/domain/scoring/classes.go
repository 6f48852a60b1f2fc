// Package scoring is the astrological influence scoring engine.
package scoring

import "github.com/okian/celest/internal/domain/chart"

// The occupancy, sector-aspect and dimension-aspect rules each keep their own
// classification and point tables. They disagree on purpose (Uranus is malefic
// only for aspects, dimension points differ); changing any of them changes
// product output.

type bodySet map[chart.Body]bool

func (s bodySet) has(b chart.Body) bool { return s[b] }

var (
	occupancyBenefics = bodySet{chart.Jupiter: true, chart.Venus: true, chart.Sun: true}
	occupancyMalefics = bodySet{chart.Saturn: true, chart.Mars: true, chart.Pluto: true}

	aspectBenefics = bodySet{chart.Jupiter: true, chart.Venus: true, chart.Sun: true}
	aspectMalefics = bodySet{chart.Saturn: true, chart.Mars: true, chart.Pluto: true, chart.Uranus: true}
)

// Occupancy points.
const (
	occupancyBenefic          = 20
	occupancyDignifiedMalefic = 5
	occupancyMalefic          = -15
	occupancyNeutral          = 5
	// maleficDignityThreshold is exclusive: a malefic needs a dignity score
	// strictly above it to read as discipline instead of crisis.
	maleficDignityThreshold = 60
)

// Orb is the tolerance in degrees around every exact aspect angle.
const Orb = 8.0

// Aspect is an angular relationship between two longitudes.
type Aspect int

// Aspects recognized by the engine.
const (
	NoAspect Aspect = iota
	Conjunction
	Sextile
	Trine
	Square
	Opposition
)

var aspectAngles = []struct {
	aspect Aspect
	angle  float64
}{
	{Conjunction, 0},
	{Sextile, 60},
	{Trine, 120},
	{Square, 90},
	{Opposition, 180},
}

func (a Aspect) String() string {
	switch a {
	case Conjunction:
		return "conjunction"
	case Sextile:
		return "sextile"
	case Trine:
		return "trine"
	case Square:
		return "square"
	case Opposition:
		return "opposition"
	default:
		return "none"
	}
}

// ClassifyAspect returns the aspect formed by a shortest-arc separation in
// [0,180]. Bands cannot overlap with an 8 degree orb.
func ClassifyAspect(diff float64) Aspect {
	for _, a := range aspectAngles {
		d := diff - a.angle
		if d < 0 {
			d = -d
		}
		if d <= Orb {
			return a.aspect
		}
	}
	return NoAspect
}

// sectorAspectPoints scores a transiting body aspecting a natal ruler. The
// sector table has no sextile and gives benefic squares nothing.
func sectorAspectPoints(a Aspect, b chart.Body) int {
	benefic, malefic := aspectBenefics.has(b), aspectMalefics.has(b)
	switch a {
	case Conjunction:
		switch {
		case benefic:
			return 25
		case malefic:
			return -20
		default:
			return 5
		}
	case Trine:
		switch {
		case benefic:
			return 15
		case malefic:
			return 5
		default:
			return 10
		}
	case Square:
		switch {
		case benefic:
			return 0
		case malefic:
			return -25
		default:
			return -10
		}
	case Opposition:
		return -15
	default:
		return 0
	}
}

// dimensionAspectPoints scores the single driver of a daily dimension against
// its natal position.
var dimensionAspectPoints = map[Aspect]int{
	Trine:       25,
	Sextile:     15,
	Conjunction: 20,
	Square:      -20,
	Opposition:  -10,
}
