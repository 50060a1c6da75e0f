package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xmhha/filesorter/pkg/display"
	"github.com/0xmhha/filesorter/pkg/journal"
)

func newSortCommand(ctx *commandContext) *cobra.Command {
	var (
		flags  engineFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort the files currently in a directory once and exit",
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
			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			root, err := ctx.resolveRoot(cmd, flags.path, cfg)
			if err != nil {
				return err
			}

			log := ctx.newLogger(cfg)
			s, err := newSorter(root, cfg, log)
			if err != nil {
				return err
			}

			j, err := journal.Open(journal.Config{Path: cfg.Storage.JournalPath}, log)
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }() // nolint:errcheck

			results, err := s.SortExisting(cmd.Context())
			records := make([]journal.Record, 0, len(results))
			for _, res := range results {
				rec := journal.FromResult(res)
				if appendErr := j.Append(rec); appendErr != nil {
					log.Error("failed to append journal record", "source", res.Source, "error", appendErr)
				}
				records = append(records, rec)
			}
			if err != nil {
				return err
			}

			return display.New(display.Config{Format: outFormat, ShowErrors: true}).
				FormatHistory(cmd.OutOrStdout(), records)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "simple", "Output format (table, json, simple)")
	return cmd
}
