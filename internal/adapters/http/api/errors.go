package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrDropped       = errors.New("key press dropped")
)
