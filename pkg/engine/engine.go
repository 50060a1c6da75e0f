// Package engine runs the sorting pipeline: it owns the watcher
// subscription and feeds every debounced event through the sorter, one at
// a time, until its context is cancelled.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"

	"github.com/0xmhha/filesorter/pkg/journal"
	"github.com/0xmhha/filesorter/pkg/logger"
	"github.com/0xmhha/filesorter/pkg/metrics"
	"github.com/0xmhha/filesorter/pkg/sorter"
	"github.com/0xmhha/filesorter/pkg/watcher"
)

// Config holds the engine configuration.
type Config struct {
	// Root is the absolute directory to watch.
	Root string

	// StateDir holds the per-root instance lock.
	StateDir string

	// SortExisting sorts files already in Root before handling events.
	SortExisting bool
}

// Deps are the collaborators the engine drives. Watcher and Sorter are
// required; Journal and Metrics are optional. The engine closes Watcher
// when Run returns.
type Deps struct {
	Watcher watcher.Watcher
	Sorter  *sorter.Sorter
	Journal journal.Journal
	Metrics *metrics.Metrics
	Logger  logger.Logger
}

// Engine is the single worker that owns the pipeline.
type Engine struct {
	config Config
	deps   Deps
	logger logger.Logger
	lock   *flock.Flock
	ready  chan struct{}
}

// New creates an engine.
func New(cfg Config, deps Deps) (*Engine, error) {
	if !filepath.IsAbs(cfg.Root) {
		return nil, fmt.Errorf("%w: root %q is not absolute", ErrInvalidConfig, cfg.Root)
	}
	if cfg.StateDir == "" {
		return nil, fmt.Errorf("%w: state dir is required", ErrInvalidConfig)
	}
	if deps.Watcher == nil || deps.Sorter == nil {
		return nil, fmt.Errorf("%w: watcher and sorter are required", ErrInvalidConfig)
	}
	if deps.Logger == nil {
		deps.Logger = logger.Noop()
	}

	cfg.Root = filepath.Clean(cfg.Root)

	return &Engine{
		config: cfg,
		deps:   deps,
		logger: deps.Logger.With("root", cfg.Root),
		lock:   flock.New(LockPath(cfg.StateDir, cfg.Root)),
		ready:  make(chan struct{}),
	}, nil
}

// LockPath returns the instance lock file for root. Distinct roots get
// distinct locks so one user can sort several directories.
func LockPath(stateDir, root string) string {
	sum := xxhash.Sum64String(filepath.Clean(root))
	return filepath.Join(stateDir, "watch-"+strconv.FormatUint(sum, 16)+".lock")
}

// Ready is closed once the watch is active and existing files, if
// requested, have been sorted.
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

// Run acquires the instance lock, starts the watch and processes events
// until ctx is cancelled. Setup failures are returned; once the loop runs,
// per-event failures are logged and counted, and Run returns nil on
// cancellation.
func (e *Engine) Run(ctx context.Context) error {
	defer func() {
		if err := e.deps.Watcher.Close(); err != nil {
			e.logger.Warn("failed to close watcher", "error", err)
		}
	}()

	if err := os.MkdirAll(e.config.StateDir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	ok, err := e.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, e.lock.Path())
	}
	defer func() {
		if err := e.lock.Unlock(); err != nil {
			e.logger.Warn("failed to release lock", "error", err)
		}
	}()

	// Subscribe before sorting existing files so nothing created in
	// between is missed.
	if err := e.deps.Watcher.Start(ctx, e.config.Root); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if e.config.SortExisting {
		results, err := e.deps.Sorter.SortExisting(ctx)
		if err != nil {
			e.logger.Warn("sorting existing files stopped early", "error", err)
		}
		for _, res := range results {
			e.record(res)
		}
	}

	e.logger.Info("sorting started", "lock", e.lock.Path())
	close(e.ready)
	return e.loop(ctx)
}

func (e *Engine) loop(ctx context.Context) error {
	events := e.deps.Watcher.Events()
	errs := e.deps.Watcher.Errors()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("sorting stopped", "reason", ctx.Err())
			return nil

		case ev, ok := <-events:
			if !ok {
				e.logger.Warn("event stream closed")
				return nil
			}
			e.handle(ev)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			e.logger.Error("watch error", "error", err)
			if e.deps.Metrics != nil {
				e.deps.Metrics.RecordTransportError()
			}
		}
	}
}

func (e *Engine) handle(ev watcher.ChangeEvent) {
	if e.deps.Metrics != nil {
		e.deps.Metrics.RecordEvent(ev.Kind)
	}

	res, handled := e.deps.Sorter.Handle(ev)
	if !handled {
		e.logger.Debug("event ignored",
			"event_id", ev.ID,
			"kind", ev.Kind,
			"path", ev.Path())
		return
	}
	e.record(res)
}

// record persists and counts one result. Journal failures never stop
// sorting.
func (e *Engine) record(res sorter.Result) {
	if e.deps.Metrics != nil {
		e.deps.Metrics.RecordResult(res)
	}
	if e.deps.Journal == nil {
		return
	}
	if err := e.deps.Journal.Append(journal.FromResult(res)); err != nil {
		e.logger.Error("failed to append journal record",
			"source", res.Source,
			"error", err)
	}
}
