package chart

import "errors"

// Sentinel error kinds for chart construction. These allow errors.Is/As from callers.
var (
	ErrInvalidInput = errors.New("invalid chart input")
	ErrUnknownBody  = errors.New("unknown body")
	ErrUnknownSign  = errors.New("unknown sign")
)
