package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 5*time.Second, cfg.Engine.DebounceWindow)
	assert.Equal(t, "MISC", cfg.Engine.NoExtensionCategory)
	assert.NotEmpty(t, cfg.Engine.IgnorePatterns)
	assert.Equal(t, os.FileMode(0755), cfg.DirPerm())
	assert.NotEmpty(t, cfg.Storage.JournalPath)
	assert.NotEmpty(t, cfg.Storage.StateDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Metrics.ListenAddr)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "valid default config",
			mutate:  func(c *Config) {},
			wantErr: nil,
		},
		{
			name:    "relative watch root",
			mutate:  func(c *Config) { c.WatchRoot = "inbox" },
			wantErr: ErrWatchRootNotAbsolute,
		},
		{
			name:    "zero debounce window",
			mutate:  func(c *Config) { c.Engine.DebounceWindow = 0 },
			wantErr: ErrInvalidDebounceWindow,
		},
		{
			name:    "category with separator",
			mutate:  func(c *Config) { c.Engine.NoExtensionCategory = "a/b" },
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "parent directory category",
			mutate:  func(c *Config) { c.Engine.NoExtensionCategory = ".." },
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "empty no-extension category is allowed",
			mutate:  func(c *Config) { c.Engine.NoExtensionCategory = "" },
			wantErr: nil,
		},
		{
			name:    "blank ignore pattern",
			mutate:  func(c *Config) { c.Engine.IgnorePatterns = []string{"*.tmp", " "} },
			wantErr: ErrInvalidIgnorePattern,
		},
		{
			name:    "dir mode not octal",
			mutate:  func(c *Config) { c.Engine.DirMode = "rwx" },
			wantErr: ErrInvalidDirMode,
		},
		{
			name:    "dir mode without owner write",
			mutate:  func(c *Config) { c.Engine.DirMode = "0555" },
			wantErr: ErrInvalidDirMode,
		},
		{
			name:    "missing journal path",
			mutate:  func(c *Config) { c.Storage.JournalPath = "" },
			wantErr: ErrNoJournalPath,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: ErrInvalidLogFormat,
		},
		{
			name: "dir output without dir",
			mutate: func(c *Config) {
				c.Logging.Output = "dir"
				c.Logging.Dir = ""
			},
			wantErr: ErrNoLogDir,
		},
		{
			name:    "negative retention",
			mutate:  func(c *Config) { c.Logging.RetentionDays = -1 },
			wantErr: ErrInvalidRetention,
		},
		{
			name:    "missing service label",
			mutate:  func(c *Config) { c.Service.Label = "" },
			wantErr: ErrNoServiceLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "Validate() error = %v, want %v", err, tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
		missing bool
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid config file",
			content: `
watch_root: /data/inbox
engine:
  debounce_window: 250ms
  no_extension_category: OTHER
  ignore_patterns: ["*.swp"]
  sort_existing: true
  dir_mode: "0700"
storage:
  journal_path: /tmp/journal.db
logging:
  level: debug
  format: json
metrics:
  listen_addr: 127.0.0.1:9310
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/data/inbox", cfg.WatchRoot)
				assert.Equal(t, 250*time.Millisecond, cfg.Engine.DebounceWindow)
				assert.Equal(t, "OTHER", cfg.Engine.NoExtensionCategory)
				assert.Equal(t, []string{"*.swp"}, cfg.Engine.IgnorePatterns)
				assert.True(t, cfg.Engine.SortExisting)
				assert.Equal(t, os.FileMode(0700), cfg.DirPerm())
				assert.Equal(t, "/tmp/journal.db", cfg.Storage.JournalPath)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "127.0.0.1:9310", cfg.Metrics.ListenAddr)
				// Unset sections keep their defaults.
				assert.Equal(t, "com.filesorter.agent", cfg.Service.Label)
				assert.NotEmpty(t, cfg.Storage.StateDir)
			},
		},
		{
			name:    "invalid yaml",
			content: `engine: [debounce_window`,
			wantErr: true,
		},
		{
			name:    "relative watch root",
			content: "watch_root: inbox\n",
			wantErr: true,
		},
		{
			name:    "non-existent file",
			missing: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, "nonexistent.yaml")
			if !tt.missing {
				filePath = filepath.Join(tmpDir, tt.name+".yaml")
				require.NoError(t, os.WriteFile(filePath, []byte(tt.content), 0600))
			}

			loader := NewLoader(filePath)
			cfg, err := loader.Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filePath, loader.Source())
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadFromFileMissingSentinel(t *testing.T) {
	_, err := NewLoader("").LoadFromFile(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestSaveRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.WatchRoot = "/data/inbox"
	cfg.Engine.DebounceWindow = 3 * time.Second
	cfg.Logging.Level = "debug"

	require.NoError(t, Save(cfg, configPath))

	loaded, err := LoadFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/data/inbox", loaded.WatchRoot)
	assert.Equal(t, 3*time.Second, loaded.Engine.DebounceWindow)
	assert.Equal(t, "debug", loaded.Logging.Level)
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Engine.DebounceWindow = -time.Second

	err := Save(cfg, filepath.Join(t.TempDir(), "config.yaml"))
	assert.ErrorIs(t, err, ErrInvalidDebounceWindow)
}

func TestEnvVarOverrides(t *testing.T) {
	t.Setenv(EnvWatchRoot, "/env/inbox/")
	t.Setenv(EnvJournal, "/env/journal.db")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvDebounce, "750ms")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("watch_root: /file/inbox\n"), 0600))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/env/inbox", cfg.WatchRoot)
	assert.Equal(t, "/env/journal.db", cfg.Storage.JournalPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 750*time.Millisecond, cfg.Engine.DebounceWindow)
}

func TestEnvVarInvalidDebounce(t *testing.T) {
	t.Setenv(EnvDebounce, "soon")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("{}\n"), 0600))

	_, err := LoadFromFile(configPath)
	assert.Error(t, err)
}

func BenchmarkValidate(b *testing.B) {
	cfg := Default()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := cfg.Validate(); err != nil {
			b.Fatal(err)
		}
	}
}
