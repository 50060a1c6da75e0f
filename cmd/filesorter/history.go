package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/0xmhha/filesorter/pkg/display"
	"github.com/0xmhha/filesorter/pkg/journal"
)

const journalReadTimeout = 2 * time.Second

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		format     string
		showErrors bool
		stats      bool
		compact    bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently sorted files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, ok := display.ParseFormat(format)
			if !ok {
				return fmt.Errorf("unknown format %q", format)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			// A running watcher takes the file lock only while appending.
			j, err := journal.Open(journal.Config{
				Path:    cfg.Storage.JournalPath,
				Timeout: journalReadTimeout,
			}, ctx.newLogger(cfg))
			if err != nil {
				return fmt.Errorf("%w (journal busy, retry)", err)
			}
			defer func() { _ = j.Close() }() // nolint:errcheck

			f := display.New(display.Config{
				Format:     outFormat,
				ShowErrors: showErrors,
				Compact:    compact,
			})

			if stats {
				s, err := j.Stats()
				if err != nil {
					return err
				}
				return f.FormatStats(cmd.OutOrStdout(), s)
			}

			records, err := j.List(limit)
			if err != nil {
				return err
			}
			return f.FormatHistory(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to show (0 for all)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json, simple)")
	cmd.Flags().BoolVar(&showErrors, "errors", false, "Show the error of failed attempts")
	cmd.Flags().BoolVar(&stats, "stats", false, "Show totals by outcome and category instead")
	cmd.Flags().BoolVar(&compact, "compact", false, "Compact output")
	return cmd
}
