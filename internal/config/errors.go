package config

import "errors"

// ErrInvalidConfig is wrapped by Validate; ErrLoadConfig by Load when a
// provider fails.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
