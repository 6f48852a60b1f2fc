// Package chart holds the zodiac vocabulary and the normalized Chart value that
// every scorer consumes.
package chart

import "math"

// HouseOf places a longitude into the whole-sign house framework anchored at
// the ascendant's sign. Each house is exactly one 30 degree sign, which is
// deliberately different from the quadrant cusps used for natal charts.
// It must only be called when the ascendant is known.
func HouseOf(pointLongitude, ascendantLongitude float64) int {
	offset := int(math.Floor(pointLongitude/degreesPerSign)) - int(math.Floor(ascendantLongitude/degreesPerSign))
	if offset < 0 {
		offset += HouseCount
	}
	return offset%HouseCount + 1
}

// ShortestArc returns the angular separation of two longitudes in [0,180].
func ShortestArc(a, b float64) float64 {
	diff := math.Abs(a - b)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}
