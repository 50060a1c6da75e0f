package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by the loader.
const (
	EnvWatchRoot = "FILESORTER_WATCH_ROOT"
	EnvJournal   = "FILESORTER_JOURNAL"
	EnvLogLevel  = "FILESORTER_LOG_LEVEL"
	EnvDebounce  = "FILESORTER_DEBOUNCE"
)

// Loader provides methods for loading configuration from various sources.
type Loader interface {
	// Load loads configuration with the following precedence:
	// 1. Environment variables
	// 2. Configuration file
	// 3. Default values
	//
	// Returns the merged configuration or an error if validation fails.
	Load() (*Config, error)

	// LoadFromFile loads configuration from a specific file.
	LoadFromFile(path string) (*Config, error)

	// Source returns the config file used by the last Load, or "" when
	// only defaults and environment were applied.
	Source() string
}

// loader implements the Loader interface.
type loader struct {
	configPath string
	source     string
}

// NewLoader creates a new configuration loader.
//
// If configPath is empty, the first existing file from SearchPaths is used.
func NewLoader(configPath string) Loader {
	return &loader{
		configPath: configPath,
	}
}

// SearchPaths lists the config file locations checked when no explicit
// path is given, in order of precedence.
func SearchPaths() []string {
	return []string{
		"./filesorter.yaml",
		DefaultConfigPath(),
	}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	cfg := Default()

	configPath := l.configPath
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		fileCfg, err := l.LoadFromFile(configPath)
		if err != nil {
			// An explicitly requested file must load.
			if l.configPath != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		} else {
			cfg = mergeConfigs(cfg, fileCfg)
			l.source = configPath
		}
	}

	cfg, err := applyEnvVars(cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile implements Loader.LoadFromFile.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return &cfg, nil
}

// Source implements Loader.Source.
func (l *loader) Source() string {
	return l.source
}

// findConfigFile returns the first existing entry of SearchPaths, or "".
func findConfigFile() string {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// mergeConfigs merges file configuration into default configuration.
//
// File values override defaults, but only if they are non-zero.
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.WatchRoot != "" {
		result.WatchRoot = override.WatchRoot
	}

	// Merge engine config
	if override.Engine.DebounceWindow > 0 {
		result.Engine.DebounceWindow = override.Engine.DebounceWindow
	}
	if override.Engine.NoExtensionCategory != "" {
		result.Engine.NoExtensionCategory = override.Engine.NoExtensionCategory
	}
	if len(override.Engine.IgnorePatterns) > 0 {
		result.Engine.IgnorePatterns = override.Engine.IgnorePatterns
	}
	// SortExisting is a bool, so we always take the override value
	result.Engine.SortExisting = override.Engine.SortExisting
	if override.Engine.DirMode != "" {
		result.Engine.DirMode = override.Engine.DirMode
	}

	// Merge storage config
	if override.Storage.JournalPath != "" {
		result.Storage.JournalPath = override.Storage.JournalPath
	}
	if override.Storage.StateDir != "" {
		result.Storage.StateDir = override.Storage.StateDir
	}

	// Merge logging config
	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Output != "" {
		result.Logging.Output = override.Logging.Output
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}
	if override.Logging.Dir != "" {
		result.Logging.Dir = override.Logging.Dir
	}
	if override.Logging.RetentionDays != 0 {
		result.Logging.RetentionDays = override.Logging.RetentionDays
	}

	if override.Metrics.ListenAddr != "" {
		result.Metrics.ListenAddr = override.Metrics.ListenAddr
	}
	if override.Service.Label != "" {
		result.Service.Label = override.Service.Label
	}

	return &result
}

// applyEnvVars applies environment variable overrides to the configuration.
//
// Supported environment variables:
//   - FILESORTER_WATCH_ROOT: Directory to watch
//   - FILESORTER_JOURNAL: Path to journal database
//   - FILESORTER_LOG_LEVEL: Log level
//   - FILESORTER_DEBOUNCE: Debounce window (Go duration, e.g. 2s)
func applyEnvVars(cfg *Config) (*Config, error) {
	result := *cfg

	if root := os.Getenv(EnvWatchRoot); root != "" {
		result.WatchRoot = filepath.Clean(strings.TrimSpace(root))
	}

	if journal := os.Getenv(EnvJournal); journal != "" {
		result.Storage.JournalPath = journal
	}

	if logLevel := os.Getenv(EnvLogLevel); logLevel != "" {
		result.Logging.Level = strings.ToLower(logLevel)
	}

	if window := os.Getenv(EnvDebounce); window != "" {
		d, err := time.ParseDuration(window)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvDebounce, err)
		}
		result.Engine.DebounceWindow = d
	}

	return &result, nil
}

// Load is a convenience function that creates a loader and loads configuration.
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// LoadFromFile is a convenience function that loads configuration from a file.
//
// Equivalent to:
//
//	loader := NewLoader(path)
//	return loader.Load()
func LoadFromFile(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Save writes the configuration to a YAML file.
//
// Creates parent directories if they don't exist.
// File is created with 0600 permissions (read/write for owner only).
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
