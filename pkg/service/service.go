// Package service registers the watcher as a per-user background service:
// a launchd agent on macOS and a systemd user unit on Linux.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/0xmhha/filesorter/pkg/logger"
)

// Platform is a service manager.
type Platform string

// Supported platforms.
const (
	PlatformLaunchd Platform = "launchd"
	PlatformSystemd Platform = "systemd"
)

const systemdUnitName = "filesorter.service"

// Spec describes the service to register.
type Spec struct {
	// Label is the launchd label, e.g. com.filesorter.agent.
	Label string

	// Binary is the absolute path of the executable to run.
	Binary string

	// WatchRoot is passed as --path.
	WatchRoot string

	// LogFile receives launchd stdout and stderr. Optional.
	LogFile string

	Platform Platform

	// Dir overrides the descriptor directory. Default:
	// ~/Library/LaunchAgents or ~/.config/systemd/user.
	Dir string

	// Force rewrites an existing descriptor.
	Force bool
}

// Args returns the program arguments the service runs with. A service
// started while another watcher holds the directory exits cleanly.
func (s Spec) Args() []string {
	return []string{s.Binary, "watch", "--path", s.WatchRoot, "--if-not-running"}
}

func (s Spec) validate() error {
	if s.Label == "" || s.Binary == "" || s.WatchRoot == "" {
		return ErrInvalidSpec
	}
	if !filepath.IsAbs(s.Binary) || !filepath.IsAbs(s.WatchRoot) {
		return fmt.Errorf("%w: binary and watch root must be absolute", ErrInvalidSpec)
	}
	return nil
}

// Runner executes service manager commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.Run.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Result reports what Install did.
type Result struct {
	Path      string
	Written   bool
	Activated bool
}

// Manager installs and removes service descriptors.
type Manager struct {
	runner Runner
	logger logger.Logger
}

// New creates a Manager. A nil runner selects ExecRunner.
func New(runner Runner, log logger.Logger) *Manager {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Manager{runner: runner, logger: log}
}

// DetectPlatform returns the service manager of the running OS.
func DetectPlatform() (Platform, error) {
	switch runtime.GOOS {
	case "darwin":
		return PlatformLaunchd, nil
	case "linux":
		return PlatformSystemd, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, runtime.GOOS)
	}
}

// Render returns the descriptor for spec.
func Render(spec Spec) ([]byte, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	data := templateData{
		Label:     spec.Label,
		WatchRoot: spec.WatchRoot,
		Args:      spec.Args(),
		LogFile:   spec.LogFile,
	}

	var buf bytes.Buffer
	var err error
	switch spec.Platform {
	case PlatformLaunchd:
		err = launchdTemplate.Execute(&buf, data)
	case PlatformSystemd:
		err = systemdTemplate.Execute(&buf, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, spec.Platform)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render descriptor: %w", err)
	}
	return buf.Bytes(), nil
}

// DescriptorPath returns where the descriptor for spec lives.
func DescriptorPath(spec Spec) (string, error) {
	dir := spec.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		switch spec.Platform {
		case PlatformLaunchd:
			dir = filepath.Join(home, "Library", "LaunchAgents")
		case PlatformSystemd:
			dir = filepath.Join(home, ".config", "systemd", "user")
		default:
			return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, spec.Platform)
		}
	}

	switch spec.Platform {
	case PlatformLaunchd:
		return filepath.Join(dir, spec.Label+".plist"), nil
	case PlatformSystemd:
		return filepath.Join(dir, systemdUnitName), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, spec.Platform)
	}
}

// Install writes the descriptor and activates it. An existing descriptor
// is left alone, and not re-activated, unless spec.Force is set.
func (m *Manager) Install(ctx context.Context, spec Spec) (Result, error) {
	content, err := Render(spec)
	if err != nil {
		return Result{}, err
	}
	path, err := DescriptorPath(spec)
	if err != nil {
		return Result{}, err
	}
	res := Result{Path: path}

	if _, statErr := os.Stat(path); statErr == nil && !spec.Force {
		m.logger.Info("service descriptor already present", "path", path)
		return res, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return res, fmt.Errorf("failed to create descriptor directory: %w", err)
	}
	// launchd does not create parents of StandardOutPath.
	if spec.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(spec.LogFile), 0700); err != nil {
			return res, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return res, fmt.Errorf("failed to write descriptor: %w", err)
	}
	res.Written = true
	m.logger.Info("service descriptor written", "path", path, "platform", spec.Platform)

	for _, cmd := range activateCommands(spec.Platform, path) {
		if err := m.run(ctx, cmd); err != nil {
			return res, fmt.Errorf("failed to activate service: %w", err)
		}
	}
	res.Activated = true
	m.logger.Info("service activated", "label", spec.Label, "root", spec.WatchRoot)

	return res, nil
}

// Uninstall deactivates the service and removes its descriptor.
// Deactivation failures are logged; the descriptor is removed regardless.
func (m *Manager) Uninstall(ctx context.Context, spec Spec) (string, error) {
	path, err := DescriptorPath(spec)
	if err != nil {
		return "", err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
		return path, ErrNotInstalled
	}

	for _, cmd := range deactivateCommands(spec.Platform, path) {
		if err := m.run(ctx, cmd); err != nil {
			m.logger.Warn("failed to deactivate service", "error", err)
		}
	}

	if err := os.Remove(path); err != nil {
		return path, fmt.Errorf("failed to remove descriptor: %w", err)
	}
	if spec.Platform == PlatformSystemd {
		if err := m.run(ctx, []string{"systemctl", "--user", "daemon-reload"}); err != nil {
			m.logger.Warn("failed to reload systemd", "error", err)
		}
	}
	m.logger.Info("service removed", "path", path)
	return path, nil
}

func (m *Manager) run(ctx context.Context, cmd []string) error {
	out, err := m.runner.Run(ctx, cmd[0], cmd[1:]...)
	if err != nil {
		return fmt.Errorf("%s: %w: %s", strings.Join(cmd, " "), err, strings.TrimSpace(string(out)))
	}
	m.logger.Debug("service command ok", "command", strings.Join(cmd, " "))
	return nil
}

func activateCommands(p Platform, path string) [][]string {
	switch p {
	case PlatformLaunchd:
		return [][]string{{"launchctl", "load", "-w", path}}
	case PlatformSystemd:
		return [][]string{
			{"systemctl", "--user", "daemon-reload"},
			{"systemctl", "--user", "enable", "--now", systemdUnitName},
		}
	}
	return nil
}

func deactivateCommands(p Platform, path string) [][]string {
	switch p {
	case PlatformLaunchd:
		return [][]string{{"launchctl", "unload", "-w", path}}
	case PlatformSystemd:
		return [][]string{{"systemctl", "--user", "disable", "--now", systemdUnitName}}
	}
	return nil
}
