// Package scoring is the astrological influence scoring engine.
package scoring

import (
	"math"

	"github.com/okian/celest/internal/domain/chart"
	"github.com/okian/celest/internal/domain/dignity"
)

// Sector score bounds.
const (
	MinSectorScore = 20
	MaxSectorScore = 100
)

// Composition weights of the sector formula.
const (
	rulerWeight      = 0.6
	essenceOffset    = 30.0
	essenceWeight    = 0.6
	transitOccWeight = 0.2
	sectorOffset     = 20.0
	neutralRuler     = float64(dignity.BaseScore)
)

// Occupancy labels used in reasons.
const (
	natalLabel   = "Natal"
	transitLabel = "Transit"
)

// SectorDefinition is one slice of the life wheel.
type SectorDefinition struct {
	Label  string `json:"label"`
	Houses []int  `json:"houses"`
	Color  string `json:"color"`
}

// Sectors returns the eight fixed life-wheel sectors.
func Sectors() []SectorDefinition {
	return []SectorDefinition{
		{Label: "Relationship", Houses: []int{7}, Color: "#f472b6"},
		{Label: "Career", Houses: []int{10, 6}, Color: "#fbbf24"},
		{Label: "Physical Health", Houses: []int{6, 1}, Color: "#ef4444"},
		{Label: "Mental Health", Houses: []int{3, 12}, Color: "#60a5fa"},
		{Label: "Spirituality", Houses: []int{9, 12}, Color: "#8b5cf6"},
		{Label: "Finance", Houses: []int{2, 8}, Color: "#10b981"},
		{Label: "Leisure", Houses: []int{5}, Color: "#f97316"},
		{Label: "Personal Growth", Houses: []int{1, 9}, Color: "#14b8a6"},
	}
}

// SectorScore is a sector definition with its computed result.
type SectorScore struct {
	SectorDefinition
	ScoreResult
}

// Wheel is the eight-sector life wheel plus its harmony score.
type Wheel struct {
	Sectors []SectorScore `json:"sectors"`
	// Harmony is the truncated mean of the sector scores.
	Harmony int `json:"harmony"`
}

// Rulers returns the distinct natal rulers of the given houses in canonical
// body order. Rulership follows the native's actual cusp signs.
func Rulers(houses []int, natal *chart.Chart) []chart.Body {
	natal = orEmpty(natal)
	seen := make(map[chart.Body]bool, len(houses))
	for _, h := range houses {
		seen[dignity.RulerOf(natal.CuspSign(h))] = true
	}
	out := make([]chart.Body, 0, len(seen))
	for _, b := range chart.Bodies {
		if seen[b] {
			out = append(out, b)
		}
	}
	return out
}

// SectorScore composes ruler strength, natal and transit occupancy and transit
// aspects to the rulers into one score in [20,100]:
//
//	essence = rulerAvg*0.6 + 30 + natalOccupancy
//	raw     = essence*0.6 + transitOccupancy*0.2 + aspects + 20
func (e *Engine) SectorScore(def SectorDefinition, natal, transit *chart.Chart) ScoreResult {
	natal, transit = orEmpty(natal), orEmpty(transit)
	reasons := NewReasons()

	rulers := Rulers(def.Houses, natal)
	rulerSum := 0.0
	for _, r := range rulers {
		p, ok := natal.Point(r)
		if !ok {
			rulerSum += neutralRuler
			continue
		}
		rulerSum += float64(e.table.Score(r, p.Sign))
		if d := e.table.Dignity(r, p.Sign); d != 0 {
			reasons.Addf("Ruler: %s in %s (%+d)", r, p.Sign, d)
		}
	}
	rulerAvg := neutralRuler
	if len(rulers) > 0 {
		rulerAvg = rulerSum / float64(len(rulers))
	}

	natalOcc, natalReasons := e.OccupancyScore(def.Houses, natal, natal, natalLabel)
	reasons.Merge(natalReasons)
	essence := rulerAvg*rulerWeight + essenceOffset + float64(natalOcc)

	transitOcc, transitReasons := e.OccupancyScore(def.Houses, transit, natal, transitLabel)
	reasons.Merge(transitReasons)

	aspects := 0
	for _, r := range rulers {
		p, ok := natal.Point(r)
		if !ok {
			continue
		}
		aspects += e.AspectImpact(p.Longitude, r, transit, reasons)
	}

	raw := essence*essenceWeight + float64(transitOcc)*transitOccWeight + float64(aspects) + sectorOffset
	return ScoreResult{
		Score:   clamp(int(math.Round(raw)), MinSectorScore, MaxSectorScore),
		Reasons: reasons.Sorted(),
	}
}

// ComputeSectorWheel scores all eight sectors.
func (e *Engine) ComputeSectorWheel(natal, transit *chart.Chart) Wheel {
	defs := Sectors()
	w := Wheel{Sectors: make([]SectorScore, 0, len(defs))}
	sum := 0
	for _, def := range defs {
		res := e.SectorScore(def, natal, transit)
		sum += res.Score
		w.Sectors = append(w.Sectors, SectorScore{SectorDefinition: def, ScoreResult: res})
	}
	w.Harmony = sum / len(defs)
	return w
}
