package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/0xmhha/filesorter/pkg/config"
	"github.com/0xmhha/filesorter/pkg/engine"
	"github.com/0xmhha/filesorter/pkg/journal"
	"github.com/0xmhha/filesorter/pkg/logger"
	"github.com/0xmhha/filesorter/pkg/metrics"
	"github.com/0xmhha/filesorter/pkg/sorter"
	"github.com/0xmhha/filesorter/pkg/watcher"
)

// engineFlags are the flags shared by watch and sort.
type engineFlags struct {
	path          string
	noExtCategory string
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "path", "p", "", "Directory to sort (absolute)")
	cmd.Flags().StringVar(&f.noExtCategory, "no-extension-category", "", "Folder for files without an extension; empty leaves them in place")
}

// apply copies explicitly set flags onto cfg.
func (f *engineFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("no-extension-category") {
		cfg.Engine.NoExtensionCategory = f.noExtCategory
	}
}

func newSorter(root string, cfg *config.Config, log logger.Logger) (*sorter.Sorter, error) {
	return sorter.New(sorter.Config{
		Root:                root,
		NoExtensionCategory: cfg.Engine.NoExtensionCategory,
		IgnorePatterns:      cfg.Engine.IgnorePatterns,
		DirPerm:             cfg.DirPerm(),
	}, nil, log)
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		flags        engineFlags
		debounce     time.Duration
		sortExisting bool
		metricsAddr  string
		ifNotRunning bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory and sort new files until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if cmd.Flags().Changed("debounce") {
				cfg.Engine.DebounceWindow = debounce
			}
			if cmd.Flags().Changed("sort-existing") {
				cfg.Engine.SortExisting = sortExisting
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Metrics.ListenAddr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			root, err := ctx.resolveRoot(cmd, flags.path, cfg)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := ctx.newLogger(cfg)
			err = runWatch(runCtx, root, cfg, log)
			if ifNotRunning && errors.Is(err, engine.ErrAlreadyRunning) {
				log.Info("directory already watched, exiting", "root", root, "error", err)
				return nil
			}
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "Quiet period before a new file is sorted (e.g. 5s)")
	cmd.Flags().BoolVar(&sortExisting, "sort-existing", false, "Sort files already in the directory first")
	cmd.Flags().BoolVar(&ifNotRunning, "if-not-running", false, "Exit successfully when another watcher already holds the directory")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
	return cmd
}

// runWatch wires the pipeline and blocks until ctx is cancelled.
func runWatch(ctx context.Context, root string, cfg *config.Config, log logger.Logger) error {
	w, err := watcher.New(watcher.Config{DebounceWindow: cfg.Engine.DebounceWindow}, log)
	if err != nil {
		return err
	}

	s, err := newSorter(root, cfg, log)
	if err != nil {
		_ = w.Close() // nolint:errcheck
		return err
	}

	j, err := journal.Open(journal.Config{Path: cfg.Storage.JournalPath}, log)
	if err != nil {
		_ = w.Close() // nolint:errcheck
		return err
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			log.Warn("failed to close journal", "error", closeErr)
		}
	}()

	m := metrics.New()

	eng, err := engine.New(engine.Config{
		Root:         root,
		StateDir:     cfg.Storage.StateDir,
		SortExisting: cfg.Engine.SortExisting,
	}, engine.Deps{
		Watcher: w,
		Sorter:  s,
		Journal: j,
		Metrics: m,
		Logger:  log,
	})
	if err != nil {
		_ = w.Close() // nolint:errcheck
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		// The metrics server lives only as long as the engine.
		defer cancel()
		return eng.Run(runCtx)
	})
	if addr := cfg.Metrics.ListenAddr; addr != "" {
		g.Go(func() error {
			return m.Serve(runCtx, addr, log)
		})
	}

	return g.Wait()
}
