package engine

import "errors"

var (
	// ErrAlreadyRunning is returned when another process watches the same
	// root.
	ErrAlreadyRunning = errors.New("another instance is already watching this directory")

	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid engine configuration")
)
