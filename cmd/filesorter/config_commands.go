package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/0xmhha/filesorter/pkg/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigPathCommand(ctx))
	configCmd.AddCommand(newConfigResetCommand())

	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				fmt.Fprintln(out, string(data))
			case "yaml", "":
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				fmt.Fprintln(out, "# Current Configuration")
				fmt.Fprintln(out, "# Source:", ctx.configSource())
				fmt.Fprintln(out)
				fmt.Fprint(out, string(data))
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (yaml, json)")
	return cmd
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration file search paths (in order of precedence):")
			fmt.Fprintln(out)

			for i, p := range config.SearchPaths() {
				exists := "not found"
				if _, err := os.Stat(p); err == nil {
					exists = "found"
				}
				fmt.Fprintf(out, "  %d. %s [%s]\n", i+1, p, exists)
			}

			fmt.Fprintln(out)
			if _, err := ctx.ensureConfig(); err != nil {
				fmt.Fprintln(out, "Active configuration: invalid:", err)
				return nil
			}
			fmt.Fprintln(out, "Active configuration:", ctx.configSource())
			return nil
		},
	}
}

func newConfigResetCommand() *cobra.Command {
	var (
		force  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Write the default configuration to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(output)
			if target == "" {
				target = config.DefaultConfigPath()
			}
			out := cmd.OutOrStdout()

			if _, err := os.Stat(target); err == nil && !force {
				fmt.Fprintf(out, "Configuration file already exists at: %s\n", target)
				fmt.Fprint(out, "Overwrite? [y/N]: ")

				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n') // nolint:errcheck
				response = strings.ToLower(strings.TrimSpace(response))
				if response != "y" && response != "yes" {
					fmt.Fprintln(out, "Reset cancelled.")
					return nil
				}
			}

			if err := config.Save(config.Default(), target); err != nil {
				return err
			}

			fmt.Fprintf(out, "Configuration reset to defaults at: %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: ~/.config/filesorter/config.yaml)")
	return cmd
}
