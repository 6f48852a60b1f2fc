package service

import "errors"

// Sentinel error kinds for the service. These allow errors.Is/As from callers.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrInvalidSubject = errors.New("invalid subject id")
	ErrInvalidDate    = errors.New("invalid date")
)
