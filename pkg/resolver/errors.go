package resolver

import "errors"

var (
	// ErrNotAbsolute is returned when a path is relative after ~ expansion.
	ErrNotAbsolute = errors.New("path is not absolute")

	// ErrNotDirectory is returned when a path exists but is not a directory.
	ErrNotDirectory = errors.New("path is not a directory")

	// ErrNoInput is returned when the prompt reaches end of input.
	ErrNoInput = errors.New("no path entered")

	// ErrNotInteractive is returned when no valid path was given and stdin
	// is not a terminal to prompt on.
	ErrNotInteractive = errors.New("no valid watch path given and stdin is not a terminal")
)
