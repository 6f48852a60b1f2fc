package scoring

import "errors"

// Sentinel error kinds for scoring. These allow errors.Is/As from callers.
var (
	ErrUnknownDimension = errors.New("unknown dimension")
)
