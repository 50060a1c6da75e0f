package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/filesorter/pkg/journal"
	"github.com/0xmhha/filesorter/pkg/logger"
	"github.com/0xmhha/filesorter/pkg/metrics"
	"github.com/0xmhha/filesorter/pkg/sorter"
	"github.com/0xmhha/filesorter/pkg/watcher"
)

const testWindow = 50 * time.Millisecond

type harness struct {
	root    string
	engine  *Engine
	journal journal.Journal
	metrics *metrics.Metrics
}

func newHarness(t *testing.T, root, state string, sortExisting bool) *harness {
	t.Helper()
	return newHarnessWithJournal(t, root, state, sortExisting, journal.NewMemory())
}

func newHarnessWithJournal(t *testing.T, root, state string, sortExisting bool, j journal.Journal) *harness {
	t.Helper()

	w, err := watcher.New(watcher.Config{DebounceWindow: testWindow}, logger.Noop())
	require.NoError(t, err)

	s, err := sorter.New(sorter.Config{Root: root, NoExtensionCategory: "MISC"}, nil, logger.Noop())
	require.NoError(t, err)

	h := &harness{
		root:    root,
		journal: j,
		metrics: metrics.New(),
	}
	h.engine, err = New(Config{Root: root, StateDir: state, SortExisting: sortExisting}, Deps{
		Watcher: w,
		Sorter:  s,
		Journal: h.journal,
		Metrics: h.metrics,
		Logger:  logger.Noop(),
	})
	require.NoError(t, err)
	return h
}

// start runs the engine in the background and waits until it is ready.
func (h *harness) start(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.engine.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after cancel")
		}
	})

	select {
	case <-h.engine.Ready():
	case err := <-done:
		t.Fatalf("Run() returned early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine not ready")
	}
}

func (h *harness) waitRecords(t *testing.T, n int) []journal.Record {
	t.Helper()
	var recs []journal.Record
	require.Eventually(t, func() bool {
		var err error
		recs, err = h.journal.List(0)
		return err == nil && len(recs) >= n
	}, 2*time.Second, 10*time.Millisecond)
	return recs
}

func (h *harness) scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestNewValidation(t *testing.T) {
	w, err := watcher.New(watcher.Config{}, logger.Noop())
	require.NoError(t, err)
	defer func() { _ = w.Close() }() // nolint:errcheck
	s, err := sorter.New(sorter.Config{Root: "/in"}, nil, logger.Noop())
	require.NoError(t, err)

	tests := []struct {
		name string
		cfg  Config
		deps Deps
	}{
		{"relative root", Config{Root: "in", StateDir: "/s"}, Deps{Watcher: w, Sorter: s}},
		{"no state dir", Config{Root: "/in"}, Deps{Watcher: w, Sorter: s}},
		{"no watcher", Config{Root: "/in", StateDir: "/s"}, Deps{Sorter: s}},
		{"no sorter", Config{Root: "/in", StateDir: "/s"}, Deps{Watcher: w}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.deps)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLockPath(t *testing.T) {
	a := LockPath("/state", "/home/me/Downloads")
	b := LockPath("/state", "/home/me/Downloads/")
	c := LockPath("/state", "/home/me/Desktop")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "/state", filepath.Dir(a))
}

func TestRunSortsNewFiles(t *testing.T) {
	h := newHarness(t, t.TempDir(), t.TempDir(), false)
	h.start(t)

	src := filepath.Join(h.root, "report.csv")
	require.NoError(t, os.WriteFile(src, []byte("a,b\n"), 0600))

	recs := h.waitRecords(t, 1)
	assert.Equal(t, sorter.OutcomeMoved, recs[0].Outcome)
	assert.Equal(t, "CSV", recs[0].Category)
	assert.NotEmpty(t, recs[0].EventID)

	assert.FileExists(t, filepath.Join(h.root, "CSV", "report.csv"))
	assert.NoFileExists(t, src)

	body := h.scrape(t)
	assert.Contains(t, body, `filesorter_moves_total{outcome="moved"} 1`)
	assert.Contains(t, body, `filesorter_events_total{kind="create_file"} 1`)
}

func TestRunLeavesCollisionInPlace(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "TXT"), 0755))
	existing := filepath.Join(root, "TXT", "notes.txt")
	require.NoError(t, os.WriteFile(existing, []byte("original"), 0600))

	h := newHarness(t, root, t.TempDir(), false)
	h.start(t)

	src := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("newcomer"), 0600))

	recs := h.waitRecords(t, 1)
	assert.Equal(t, sorter.OutcomeDestinationExists, recs[0].Outcome)
	assert.NotEmpty(t, recs[0].Error)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
	assert.FileExists(t, src)

	// The loop keeps going after a failed move.
	next := filepath.Join(root, "other.txt")
	require.NoError(t, os.WriteFile(next, []byte("x"), 0600))
	recs = h.waitRecords(t, 2)
	assert.Equal(t, sorter.OutcomeMoved, recs[0].Outcome)
}

func TestRunIgnoresDirectoriesAndNested(t *testing.T) {
	h := newHarness(t, t.TempDir(), t.TempDir(), false)
	h.start(t)

	dir := filepath.Join(h.root, "photos.2024")
	require.NoError(t, os.Mkdir(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0600))

	time.Sleep(6 * testWindow)
	recs, err := h.journal.List(0)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.DirExists(t, dir)
	assert.NoDirExists(t, filepath.Join(h.root, "2024"))
}

func TestRunSortExisting(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "old.pdf"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Makefile"), []byte("x"), 0600))

	h := newHarness(t, root, t.TempDir(), true)
	h.start(t)

	recs, err := h.journal.List(0)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.FileExists(t, filepath.Join(root, "PDF", "old.pdf"))
	assert.FileExists(t, filepath.Join(root, "MISC", "Makefile"))
}

func TestJournalReadableWhileRunning(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	j, err := journal.Open(journal.Config{Path: dbPath}, logger.Noop())
	require.NoError(t, err)
	defer func() { _ = j.Close() }() // nolint:errcheck

	h := newHarnessWithJournal(t, t.TempDir(), t.TempDir(), false, j)
	h.start(t)

	require.NoError(t, os.WriteFile(filepath.Join(h.root, "a.txt"), []byte("x"), 0600))
	h.waitRecords(t, 1)

	// A separate reader, as the history command opens it.
	reader, err := journal.Open(journal.Config{Path: dbPath, Timeout: 500 * time.Millisecond}, logger.Noop())
	require.NoError(t, err)
	defer func() { _ = reader.Close() }() // nolint:errcheck

	recs, err := reader.List(0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "TXT", recs[0].Category)

	// The engine keeps appending after the reader has been in.
	require.NoError(t, os.WriteFile(filepath.Join(h.root, "b.pdf"), []byte("x"), 0600))
	recs = h.waitRecords(t, 2)
	assert.Equal(t, "PDF", recs[0].Category)

	stats, err := reader.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ByOutcome[sorter.OutcomeMoved])
}

func TestRunSecondInstanceFails(t *testing.T) {
	root := t.TempDir()
	state := t.TempDir()

	first := newHarness(t, root, state, false)
	first.start(t)

	second := newHarness(t, root, state, false)
	err := second.engine.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestRunInvalidRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")
	h := newHarness(t, root, t.TempDir(), false)

	err := h.engine.Run(context.Background())
	assert.ErrorIs(t, err, watcher.ErrInvalidPath)
}

func TestRunReturnsNilOnCancel(t *testing.T) {
	h := newHarness(t, t.TempDir(), t.TempDir(), false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.engine.Run(ctx) }()

	<-h.engine.Ready()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
