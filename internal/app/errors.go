package service

import "errors"

// Sentinel errors returned by Service.
var (
	ErrStopped       = errors.New("service stopped")
	ErrInvalidOption = errors.New("invalid service option")
)
