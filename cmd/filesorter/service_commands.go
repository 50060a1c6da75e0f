package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/0xmhha/filesorter/pkg/config"
	"github.com/0xmhha/filesorter/pkg/service"
)

// serviceFlags are shared by install and uninstall.
type serviceFlags struct {
	platform string
	dir      string
}

func (f *serviceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.platform, "platform", "", "Service manager (launchd, systemd); detected when empty")
	cmd.Flags().StringVar(&f.dir, "dir", "", "Directory for the service descriptor")
	_ = cmd.Flags().MarkHidden("dir") // nolint:errcheck
}

func (f *serviceFlags) spec(cfg *config.Config) (service.Spec, error) {
	platform := service.Platform(f.platform)
	if platform == "" {
		detected, err := service.DetectPlatform()
		if err != nil {
			return service.Spec{}, err
		}
		platform = detected
	}
	return service.Spec{
		Label:    cfg.Service.Label,
		Platform: platform,
		Dir:      f.dir,
	}, nil
}

func newInstallCommand(ctx *commandContext) *cobra.Command {
	var (
		flags    serviceFlags
		pathFlag string
		binary   string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Register filesorter to watch a directory at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			root, err := ctx.resolveRoot(cmd, pathFlag, cfg)
			if err != nil {
				return err
			}

			if binary == "" {
				binary, err = currentBinary()
				if err != nil {
					return err
				}
			}

			spec, err := flags.spec(cfg)
			if err != nil {
				return err
			}
			spec.Binary = binary
			spec.WatchRoot = root
			spec.Force = force
			if spec.Platform == service.PlatformLaunchd {
				spec.LogFile = filepath.Join(cfg.Logging.Dir, "launchd.log")
			}

			mgr := service.New(ctx.runner, ctx.newLogger(cfg))
			res, err := mgr.Install(cmd.Context(), spec)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !res.Written {
				fmt.Fprintf(out, "Service already installed at %s (use --force to replace it)\n", res.Path)
				return nil
			}
			fmt.Fprintf(out, "Installed %s watching %s\n", res.Path, root)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Directory to watch (absolute)")
	cmd.Flags().StringVar(&binary, "binary", "", "Executable the service runs; defaults to this binary")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing service descriptor")
	return cmd
}

func newUninstallCommand(ctx *commandContext) *cobra.Command {
	var flags serviceFlags

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Stop and remove the login service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			spec, err := flags.spec(cfg)
			if err != nil {
				return err
			}

			mgr := service.New(ctx.runner, ctx.newLogger(cfg))
			path, err := mgr.Uninstall(cmd.Context(), spec)
			if errors.Is(err, service.ErrNotInstalled) {
				fmt.Fprintf(cmd.OutOrStdout(), "No service installed at %s\n", path)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", path)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func currentBinary() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return exe, nil
	}
	return resolved, nil
}
