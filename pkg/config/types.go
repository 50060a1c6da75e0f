// Package config provides configuration management for filesorter.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Configuration file
// 4. Default values (lowest priority)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Debounce window: %v\n", cfg.Engine.DebounceWindow)
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config represents the complete application configuration.
//
// Invariants:
// - WatchRoot, when set, is absolute
// - DebounceWindow must be > 0
// - NoExtensionCategory is empty or a single path element
// - JournalPath and StateDir are set.
type Config struct {
	// Directory to watch. Empty means it is resolved at startup.
	WatchRoot string `yaml:"watch_root" json:"watch_root"`

	// Engine settings
	Engine EngineConfig `yaml:"engine" json:"engine"`

	// Storage settings
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics settings
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Service registration settings
	Service ServiceConfig `yaml:"service" json:"service"`
}

// EngineConfig contains categorization engine settings.
type EngineConfig struct {
	// Quiet period before a burst of raw events becomes one logical event
	DebounceWindow time.Duration `yaml:"debounce_window" json:"debounce_window"`

	// Category for files without an extension; empty leaves them in place
	NoExtensionCategory string `yaml:"no_extension_category" json:"no_extension_category"`

	// File name globs that are never moved
	IgnorePatterns []string `yaml:"ignore_patterns" json:"ignore_patterns"`

	// Sort files already present in the root when the watch starts
	SortExisting bool `yaml:"sort_existing" json:"sort_existing"`

	// Octal permission bits for created category directories
	DirMode string `yaml:"dir_mode" json:"dir_mode"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Path to the BoltDB move journal
	JournalPath string `yaml:"journal_path" json:"journal_path"`

	// Directory for instance lock files
	StateDir string `yaml:"state_dir" json:"state_dir"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`

	// Log output destination (stdout, stderr, dir, file path)
	Output string `yaml:"output" json:"output"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format"`

	// Directory for per-run log files when output is "dir"
	Dir string `yaml:"dir" json:"dir"`

	// Days to keep per-run log files (0 keeps everything)
	RetentionDays int `yaml:"retention_days" json:"retention_days"`
}

// MetricsConfig contains Prometheus exporter settings.
type MetricsConfig struct {
	// Listen address for /metrics; empty disables the listener
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

// ServiceConfig contains OS service registration settings.
type ServiceConfig struct {
	// launchd label / systemd unit base name
	Label string `yaml:"label" json:"label"`
}

// Validate checks if the configuration satisfies all invariants.
//
// Thread-safety: This method is read-only and thread-safe.
func (c *Config) Validate() error {
	if c.WatchRoot != "" && !filepath.IsAbs(c.WatchRoot) {
		return ErrWatchRootNotAbsolute
	}

	// Validate engine config
	if c.Engine.DebounceWindow <= 0 {
		return ErrInvalidDebounceWindow
	}
	if cat := c.Engine.NoExtensionCategory; cat != "" {
		if cat == "." || cat == ".." || strings.ContainsAny(cat, `/\`) {
			return ErrInvalidCategory
		}
	}
	for _, p := range c.Engine.IgnorePatterns {
		if strings.TrimSpace(p) == "" {
			return ErrInvalidIgnorePattern
		}
	}
	mode, err := parseDirMode(c.Engine.DirMode)
	if err != nil || mode&0700 != 0700 {
		return ErrInvalidDirMode
	}

	// Validate storage config
	if c.Storage.JournalPath == "" {
		return ErrNoJournalPath
	}
	if c.Storage.StateDir == "" {
		return ErrNoStateDir
	}

	// Validate logging config
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}
	if c.Logging.Output == "dir" && c.Logging.Dir == "" {
		return ErrNoLogDir
	}
	if c.Logging.RetentionDays < 0 {
		return ErrInvalidRetention
	}

	if c.Service.Label == "" {
		return ErrNoServiceLabel
	}

	return nil
}

// DirPerm returns the parsed category directory permission bits.
// Invalid values fall back to 0755.
func (c *Config) DirPerm() os.FileMode {
	mode, err := parseDirMode(c.Engine.DirMode)
	if err != nil {
		return 0755
	}
	return mode
}

func parseDirMode(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0o"), 8, 32)
	if err != nil {
		return 0, err
	}
	return os.FileMode(v) & os.ModePerm, nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			DebounceWindow:      5 * time.Second,
			NoExtensionCategory: "MISC",
			IgnorePatterns:      defaultIgnorePatterns(),
			DirMode:             "0755",
		},
		Storage: StorageConfig{
			JournalPath: defaultJournalPath(),
			StateDir:    defaultStateDir(),
		},
		Logging: LoggingConfig{
			Level:         "info",
			Output:        "stderr",
			Format:        "text",
			Dir:           defaultLogDir(),
			RetentionDays: 14,
		},
		Service: ServiceConfig{
			Label: "com.filesorter.agent",
		},
	}
}
