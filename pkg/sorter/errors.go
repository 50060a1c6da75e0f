package sorter

import "errors"

// Errors attached to skipped results.
var (
	// ErrOutsideRoot is returned when a source is not a direct child of the
	// watch root.
	ErrOutsideRoot = errors.New("source is not a direct child of the watch root")

	// ErrNoCategory is returned when a file has no extension and no
	// fallback category is configured.
	ErrNoCategory = errors.New("file has no extension and no fallback category")

	// ErrHidden is returned for dotfiles without an extension, such as
	// .DS_Store or .localized.
	ErrHidden = errors.New("hidden file without extension")

	// ErrIgnored is returned when a file name matches an ignore pattern.
	ErrIgnored = errors.New("file name matches an ignore pattern")

	// ErrInvalidRoot is returned by New when the root is not absolute.
	ErrInvalidRoot = errors.New("watch root must be an absolute path")
)
