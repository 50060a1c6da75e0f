package service

import "errors"

var (
	// ErrUnsupportedPlatform is returned on systems without launchd or
	// systemd user units.
	ErrUnsupportedPlatform = errors.New("service registration is not supported on this platform")

	// ErrNotInstalled is returned by Uninstall when no descriptor exists.
	ErrNotInstalled = errors.New("service is not installed")

	// ErrInvalidSpec is returned when a Spec lacks a label, binary or root.
	ErrInvalidSpec = errors.New("invalid service spec")
)
