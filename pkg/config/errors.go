package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrWatchRootNotAbsolute is returned when a configured watch root is relative.
	ErrWatchRootNotAbsolute = errors.New("watch root must be an absolute path")

	// ErrInvalidDebounceWindow is returned when the debounce window is <= 0.
	ErrInvalidDebounceWindow = errors.New("invalid debounce window: must be > 0")

	// ErrInvalidCategory is returned when the no-extension category is not a
	// single path element.
	ErrInvalidCategory = errors.New("invalid no-extension category: must be a plain directory name")

	// ErrInvalidIgnorePattern is returned when an ignore pattern is empty.
	ErrInvalidIgnorePattern = errors.New("invalid ignore pattern: must not be empty")

	// ErrInvalidDirMode is returned when the directory mode lacks owner access.
	ErrInvalidDirMode = errors.New("invalid dir mode: owner must have rwx")

	// ErrNoJournalPath is returned when the journal path is empty.
	ErrNoJournalPath = errors.New("journal path not set")

	// ErrNoStateDir is returned when the state directory is empty.
	ErrNoStateDir = errors.New("state directory not set")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrNoLogDir is returned when log output is "dir" without a directory.
	ErrNoLogDir = errors.New("log output dir requires logging.dir")

	// ErrInvalidRetention is returned when retention days is negative.
	ErrInvalidRetention = errors.New("invalid log retention: must be >= 0")

	// ErrNoServiceLabel is returned when the service label is empty.
	ErrNoServiceLabel = errors.New("service label not set")

	// ErrConfigNotFound is returned when config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)
