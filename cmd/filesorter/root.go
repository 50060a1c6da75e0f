package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/0xmhha/filesorter/pkg/config"
	"github.com/0xmhha/filesorter/pkg/logger"
	"github.com/0xmhha/filesorter/pkg/resolver"
	"github.com/0xmhha/filesorter/pkg/service"
)

// commandContext carries state shared by all subcommands.
type commandContext struct {
	configFlag   string
	logLevelFlag string

	// runner executes service manager commands; nil runs them for real.
	runner service.Runner

	// interactive reports whether the path prompt may be shown; nil
	// checks whether stdin is a terminal.
	interactive func(cmd *cobra.Command) bool

	configOnce sync.Once
	config     *config.Config
	source     string
	configErr  error
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(&commandContext{})
}

func newRootCommandWith(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "filesorter",
		Short:         "Sort new files into folders named after their extension",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetVersionTemplate("filesorter {{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newSortCommand(ctx))
	rootCmd.AddCommand(newInstallCommand(ctx))
	rootCmd.AddCommand(newUninstallCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// ensureConfig loads configuration once and applies the global flags.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		loader := config.NewLoader(strings.TrimSpace(c.configFlag))
		cfg, err := loader.Load()
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != "" {
			cfg.Logging.Level = strings.ToLower(c.logLevelFlag)
			if err := cfg.Validate(); err != nil {
				c.configErr = fmt.Errorf("invalid --log-level: %w", err)
				return
			}
		}
		c.config = cfg
		c.source = loader.Source()
	})
	return c.config, c.configErr
}

func (c *commandContext) configSource() string {
	if c.source == "" {
		return "defaults (no config file found)"
	}
	return c.source
}

func (c *commandContext) newLogger(cfg *config.Config) logger.Logger {
	return logger.New(logger.Config{
		Level:         cfg.Logging.Level,
		Output:        cfg.Logging.Output,
		Format:        cfg.Logging.Format,
		Dir:           cfg.Logging.Dir,
		RetentionDays: cfg.Logging.RetentionDays,
	})
}

// resolveRoot picks the watch root: --path, then configuration, then the
// interactive prompt.
func (c *commandContext) resolveRoot(cmd *cobra.Command, pathFlag string, cfg *config.Config) (string, error) {
	candidate := strings.TrimSpace(pathFlag)
	if candidate == "" {
		candidate = cfg.WatchRoot
	}
	return resolver.Resolve(candidate, cmd.InOrStdin(), cmd.OutOrStdout(), c.isInteractive(cmd))
}

func (c *commandContext) isInteractive(cmd *cobra.Command) bool {
	if c.interactive != nil {
		return c.interactive(cmd)
	}
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && resolver.IsInteractive(f)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "filesorter %s\n", version)
			return nil
		},
	}
}
