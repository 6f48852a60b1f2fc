// Package scoring is the astrological influence scoring engine.
package scoring

import (
	"math"
	"sort"
)

// Synergy bands over the mean of the three daily dimensions.
const (
	synergyHighMean     = 75
	synergyHighFloor    = 70
	synergyModerateMean = 50

	highlightPeakAbove = 80
	highlightLowBelow  = 40
)

// Verdict classifies a day by how the three dimensions work together.
type Verdict string

// Synergy verdicts, strongest first.
const (
	// VerdictExceptional: mean at least 75 with no dimension under 70.
	VerdictExceptional Verdict = "exceptional"
	// VerdictDirected: mean at least 75 carried by some dimensions.
	VerdictDirected Verdict = "directed"
	VerdictStable   Verdict = "stable"
	VerdictPreserve Verdict = "preserve"
)

// Highlight marks a single dimension as peaking, steady or low.
type Highlight string

// Dimension highlights.
const (
	HighlightPeak   Highlight = "peak"
	HighlightSteady Highlight = "steady"
	HighlightLow    Highlight = "low"
)

// Synergy summarises the three daily dimension scores.
type Synergy struct {
	Verdict Verdict `json:"verdict"`
	// Mean is the rounded mean of the three scores.
	Mean       int                     `json:"mean"`
	Strongest  Dimension               `json:"strongest"`
	Weakest    Dimension               `json:"weakest"`
	Highlights map[Dimension]Highlight `json:"highlights"`
}

// ComputeSynergy classifies the daily dimension scores. Missing dimensions
// count as NeutralDimensionScore. Ties for strongest go to the earlier
// dimension in dashboard order and ties for weakest to the later one.
func ComputeSynergy(scores map[Dimension]int) Synergy {
	type entry struct {
		d     Dimension
		score int
	}
	entries := make([]entry, 0, len(Dimensions))
	sum := 0
	for _, d := range Dimensions {
		v, ok := scores[d]
		if !ok {
			v = NeutralDimensionScore
		}
		entries = append(entries, entry{d, v})
		sum += v
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].score > entries[j].score })

	s := Synergy{
		Mean:       int(math.Round(float64(sum) / float64(len(entries)))),
		Strongest:  entries[0].d,
		Weakest:    entries[len(entries)-1].d,
		Highlights: make(map[Dimension]Highlight, len(entries)),
	}
	lowest := entries[len(entries)-1].score

	switch {
	case s.Mean >= synergyHighMean && lowest >= synergyHighFloor:
		s.Verdict = VerdictExceptional
	case s.Mean >= synergyHighMean:
		s.Verdict = VerdictDirected
	case s.Mean >= synergyModerateMean:
		s.Verdict = VerdictStable
	default:
		s.Verdict = VerdictPreserve
	}

	for _, e := range entries {
		switch {
		case e.score > highlightPeakAbove:
			s.Highlights[e.d] = HighlightPeak
		case e.score < highlightLowBelow:
			s.Highlights[e.d] = HighlightLow
		default:
			s.Highlights[e.d] = HighlightSteady
		}
	}
	return s
}
