// Package sorter turns file-creation events into moves: it filters events,
// derives the category directory from the file extension, makes sure the
// directory exists and hands the move to a Mover.
//
// Every failure is reported as a Result; nothing below Handle returns an
// error to the caller or panics.
package sorter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/0xmhha/filesorter/pkg/logger"
	"github.com/0xmhha/filesorter/pkg/watcher"
)

// Config contains categorizer settings.
type Config struct {
	// Root is the absolute watch root. All destinations are Root/<KEY>/.
	Root string

	// NoExtensionCategory receives files without an extension. Empty
	// leaves such files where they are.
	NoExtensionCategory string

	// IgnorePatterns are globs matched against the file name.
	IgnorePatterns []string

	// DirPerm is the mode for created category directories.
	// Default: 0755.
	DirPerm os.FileMode
}

// Sorter is the categorizer.
type Sorter struct {
	root   string
	config Config
	ignore []glob.Glob
	mover  Mover
	logger logger.Logger
	now    func() time.Time

	// Serializes work per destination directory so two callers can never
	// race on the no-overwrite check for the same name.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New creates a Sorter. A nil mover selects NewMoveHandler.
func New(cfg Config, mover Mover, log logger.Logger) (*Sorter, error) {
	if !filepath.IsAbs(cfg.Root) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRoot, cfg.Root)
	}
	if cfg.DirPerm == 0 {
		cfg.DirPerm = 0755
	}
	if mover == nil {
		mover = NewMoveHandler(log)
	}

	ignore := make([]glob.Glob, 0, len(cfg.IgnorePatterns))
	for _, pattern := range cfg.IgnorePatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		ignore = append(ignore, g)
	}

	return &Sorter{
		root:   filepath.Clean(cfg.Root),
		config: cfg,
		ignore: ignore,
		mover:  mover,
		logger: log,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Root returns the watch root.
func (s *Sorter) Root() string {
	return s.root
}

// Handle sorts the file named by ev if ev is a file creation. It reports
// false, without touching the filesystem, for any other event.
func (s *Sorter) Handle(ev watcher.ChangeEvent) (Result, bool) {
	if !IsFileCreate(ev) {
		return Result{}, false
	}
	return s.Sort(ev.ID, ev.Path()), true
}

// Sort moves src into its category directory.
func (s *Sorter) Sort(eventID, src string) Result {
	src = filepath.Clean(src)
	name := filepath.Base(src)
	log := s.logger.With("event_id", eventID, "source", src)

	res := Result{EventID: eventID, Source: src}

	if filepath.Dir(src) != s.root {
		log.Warn("ignoring file outside watch root", "root", s.root)
		return s.skip(res, ErrOutsideRoot)
	}

	if s.ignored(name) {
		log.Debug("ignoring file matching ignore pattern")
		return s.skip(res, ErrIgnored)
	}

	key, ok := CategoryKey(name)
	if !ok && strings.HasPrefix(name, ".") {
		log.Debug("ignoring hidden file")
		return s.skip(res, ErrHidden)
	}
	if !ok {
		if s.config.NoExtensionCategory == "" {
			log.Info("file has no extension, leaving in place")
			return s.skip(res, ErrNoCategory)
		}
		key = s.config.NoExtensionCategory
	}
	res.Category = key

	destDir := filepath.Join(s.root, key)
	res.Destination = filepath.Join(destDir, name)

	unlock := s.lockDir(destDir)
	defer unlock()

	if err := os.MkdirAll(destDir, s.config.DirPerm); err != nil {
		log.Error("failed to create category directory",
			"dir", destDir,
			"error", err)
		res.Outcome = OutcomeMkdirFailed
		res.Err = err
		res.At = s.now()
		return res
	}

	moved := s.mover.Move(src, res.Destination)
	moved.EventID = eventID
	moved.Category = key
	return moved
}

// SortExisting sorts the regular files already present in the root, in
// directory order. Directories, links and other special files are left
// alone, and hidden files without an extension are skipped by Sort. It stops early when ctx is cancelled.
func (s *Sorter) SortExisting(ctx context.Context) ([]Result, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read watch root: %w", err)
	}

	var results []Result
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		results = append(results, s.Sort(uuid.NewString(), filepath.Join(s.root, entry.Name())))
	}

	s.logger.Info("sorted existing files", "root", s.root, "files", len(results))
	return results, nil
}

func (s *Sorter) ignored(name string) bool {
	for _, g := range s.ignore {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (s *Sorter) skip(res Result, err error) Result {
	res.Outcome = OutcomeSkipped
	res.Err = err
	res.At = s.now()
	return res
}

// lockDir locks the per-directory mutex for dir and returns its unlock.
func (s *Sorter) lockDir(dir string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[dir]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[dir] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
