// Package chart holds the zodiac vocabulary and the normalized Chart value that
// every scorer consumes.
package chart

import (
	"fmt"
	"math"
	"strings"
)

// Body identifies one of the ten traditional chart bodies.
type Body int

// Bodies in canonical order. Iteration order everywhere follows this order so
// that reason sets and sums are reproducible.
const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
)

// BodyCount is the number of bodies a normalized chart always carries.
const BodyCount = 10

// Bodies lists all bodies in canonical order.
var Bodies = [BodyCount]Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

var bodyNames = [BodyCount]string{
	"Sun", "Moon", "Mercury", "Venus", "Mars",
	"Jupiter", "Saturn", "Uranus", "Neptune", "Pluto",
}

// String returns the English name of the body.
func (b Body) String() string {
	if b < 0 || int(b) >= BodyCount {
		return fmt.Sprintf("Body(%d)", int(b))
	}
	return bodyNames[b]
}

// Valid reports whether b is one of the ten known bodies.
func (b Body) Valid() bool { return b >= 0 && int(b) < BodyCount }

// ParseBody resolves a case-insensitive body name.
func ParseBody(s string) (Body, error) {
	name := strings.TrimSpace(s)
	for i, n := range bodyNames {
		if strings.EqualFold(n, name) {
			return Body(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBody, s)
}

// MarshalText implements encoding.TextMarshaler.
func (b Body) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBody, int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Body) UnmarshalText(text []byte) error {
	v, err := ParseBody(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Sign is a tropical zodiac sign, Aries = 0 through Pisces = 11.
type Sign int

// Zodiac signs in ecliptic order.
const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

// SignCount is the number of zodiac signs (and of houses).
const SignCount = 12

// degreesPerSign is the width of a sign on the ecliptic.
const degreesPerSign = 30.0

var signNames = [SignCount]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// String returns the English name of the sign.
func (s Sign) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Sign(%d)", int(s))
	}
	return signNames[s]
}

// Valid reports whether s is one of the twelve signs.
func (s Sign) Valid() bool { return s >= 0 && int(s) < SignCount }

// Add moves n signs forward around the zodiac.
func (s Sign) Add(n int) Sign {
	return Sign(((int(s)+n)%SignCount + SignCount) % SignCount)
}

// ParseSign resolves a case-insensitive sign name.
func ParseSign(s string) (Sign, error) {
	name := strings.TrimSpace(s)
	for i, n := range signNames {
		if strings.EqualFold(n, name) {
			return Sign(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSign, s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Sign) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSign, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sign) UnmarshalText(text []byte) error {
	v, err := ParseSign(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SignOf returns the sign containing an ecliptic longitude in [0,360).
func SignOf(longitude float64) Sign {
	return Sign(int(math.Floor(longitude/degreesPerSign)) % SignCount)
}

// ValidLongitude reports whether lon lies in [0,360).
func ValidLongitude(lon float64) bool {
	return !math.IsNaN(lon) && lon >= 0 && lon < 360
}

// NormalizeDegrees wraps any angle into [0,360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}
