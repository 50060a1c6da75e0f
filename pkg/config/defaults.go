package config

import (
	"os"
	"path/filepath"
)

// appDir returns ~/.config/filesorter, or a relative fallback when the
// home directory is unavailable.
func appDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(homeDir, ".config", "filesorter")
}

// defaultJournalPath returns the default move journal file path.
//
// Returns: ~/.config/filesorter/journal.db.
func defaultJournalPath() string {
	return filepath.Join(appDir(), "journal.db")
}

// defaultStateDir returns the directory holding instance lock files.
//
// Returns: ~/.config/filesorter/state/.
func defaultStateDir() string {
	return filepath.Join(appDir(), "state")
}

// defaultLogDir returns the directory for per-run log files.
func defaultLogDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./logs"
	}

	return filepath.Join(homeDir, ".local", "state", "filesorter", "logs")
}

// DefaultConfigPath returns the default configuration file path.
//
// Returns: ~/.config/filesorter/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(appDir(), "config.yaml")
}

// defaultIgnorePatterns are partial-download and editor temp files that are
// renamed into place once complete.
func defaultIgnorePatterns() []string {
	return []string{
		"*.tmp",
		"*.part",
		"*.crdownload",
		"*.download",
		".~*",
	}
}
