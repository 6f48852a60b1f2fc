package ephemeris

import "errors"

var (
	// ErrNoSunrise is returned when the sun does not rise or set on a date
	// at a location (polar day or night).
	ErrNoSunrise = errors.New("no sunrise or sunset")
	// ErrUnsupportedBody is returned for a body the oracle cannot place.
	ErrUnsupportedBody = errors.New("unsupported body")
	// ErrInvalidLocation is returned for coordinates outside the globe or
	// where houses are undefined.
	ErrInvalidLocation = errors.New("invalid location")
)
