package planetaryhour

import "errors"

// Sentinel kinds for planetary hour errors.
var (
	// ErrEmptySpan is returned when the oracle reports a day or night of zero
	// or negative length.
	ErrEmptySpan = errors.New("planetary hour: empty day or night span")
	// ErrOutsideSpan is returned when the oracle's sunrise and sunset do not
	// bracket the instant.
	ErrOutsideSpan = errors.New("planetary hour: instant outside day and night spans")
)
