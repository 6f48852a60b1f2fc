package model

import "errors"

// ErrInvalidBirthData is returned when birth data cannot be resolved.
var ErrInvalidBirthData = errors.New("invalid birth data")
