package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/0xmhha/filesorter/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

// watcher implements the Watcher interface using fsnotify.
type watcher struct {
	fsw    *fsnotify.Watcher
	logger logger.Logger
	config Config

	events chan ChangeEvent
	errors chan error

	queue    *eventQueue
	debounce *debouncer

	mu       sync.RWMutex
	running  bool
	closed   bool
	root     string
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Consecutive notification errors since the last good event.
	failureCount int
}

// New creates a new file system watcher.
//
// Returns error if the underlying notification handle cannot be created.
func New(cfg Config, log logger.Logger) (Watcher, error) {
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = DefaultDebounceWindow
	}
	if cfg.ErrorBuffer <= 0 {
		cfg.ErrorBuffer = 10
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	queue := newEventQueue()
	w := &watcher{
		fsw:      fsw,
		logger:   log,
		config:   cfg,
		events:   make(chan ChangeEvent),
		errors:   make(chan error, cfg.ErrorBuffer),
		queue:    queue,
		debounce: newDebouncer(cfg.DebounceWindow, queue),
		stopChan: make(chan struct{}),
	}

	log.Debug("file watcher created", "debounce_window", cfg.DebounceWindow)

	return w, nil
}

// Start implements Watcher.Start.
func (w *watcher) Start(ctx context.Context, root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.running {
		return ErrAlreadyStarted
	}

	if !filepath.IsAbs(root) {
		return fmt.Errorf("%w: %s is not absolute", ErrInvalidPath, root)
	}
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, root)
	}

	// fsnotify watches are non-recursive: only direct children report.
	if err := w.fsw.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	w.root = root
	w.running = true
	// A previous Stop closed the old channel.
	w.stopChan = make(chan struct{})

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.queue.pump(w.events, w.stopChan)
	}()
	go func() {
		defer w.wg.Done()
		w.processEvents(ctx)
	}()

	w.logger.Info("watch started",
		"root", root,
		"debounce_window", w.config.DebounceWindow)

	return nil
}

// Stop implements Watcher.Stop.
func (w *watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.running {
		return ErrNotStarted
	}

	close(w.stopChan)
	w.running = false

	w.logger.Info("watch stopped", "root", w.root)
	return nil
}

// Events implements Watcher.Events.
func (w *watcher) Events() <-chan ChangeEvent {
	return w.events
}

// Errors implements Watcher.Errors.
func (w *watcher) Errors() <-chan error {
	return w.errors
}

// Close implements Watcher.Close.
func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.running {
		close(w.stopChan)
		w.running = false
	}
	w.mu.Unlock()

	w.debounce.close()

	// Both goroutines observe stopChan; wait before closing their outputs.
	w.wg.Wait()
	close(w.events)
	close(w.errors)

	if err := w.fsw.Close(); err != nil {
		w.logger.Error("failed to close fsnotify watcher", "error", err)
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.logger.Debug("watcher closed")
	return nil
}

// processEvents handles events from fsnotify.
func (w *watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("event processing stopped", "reason", "context cancelled")
			return

		case <-w.stopChan:
			w.logger.Debug("event processing stopped", "reason", "stop signal")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				w.logger.Warn("fsnotify events channel closed")
				return
			}

			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.logger.Warn("fsnotify errors channel closed")
				return
			}

			w.handleError(err)
		}
	}
}

// handleEvent classifies one raw fsnotify event and feeds the debouncer.
func (w *watcher) handleEvent(event fsnotify.Event) {
	w.failureCount = 0

	var (
		op   Op
		kind Kind
	)
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
		kind = classifyCreate(event.Name)
	case event.Has(fsnotify.Remove):
		op, kind = OpRemove, KindRemove
	case event.Has(fsnotify.Rename):
		op, kind = OpRename, KindRename
	case event.Has(fsnotify.Write):
		op, kind = OpWrite, KindModify
	case event.Has(fsnotify.Chmod):
		op, kind = OpChmod, KindModify
	default:
		w.logger.Debug("unknown fsnotify operation",
			"op", event.Op,
			"path", event.Name)
		return
	}

	w.debounce.add(event.Name, op, kind)
}

// classifyCreate inspects a freshly created entry without following links.
func classifyCreate(path string) Kind {
	info, err := os.Lstat(path)
	if err != nil {
		return KindCreateOther
	}
	switch mode := info.Mode(); {
	case mode.IsRegular():
		return KindCreateFile
	case mode.IsDir():
		return KindCreateDir
	default:
		return KindCreateOther
	}
}

// handleError logs a notification error and forwards it without blocking.
// Errors never stop the subscription.
func (w *watcher) handleError(err error) {
	w.failureCount++

	w.logger.Error("fsnotify error",
		"error", err,
		"consecutive_failures", w.failureCount)

	select {
	case w.errors <- err:
	default:
		w.logger.Warn("error channel full, dropping error")
	}
}
