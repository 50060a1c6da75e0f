package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(data)
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		present []string
		absent  []string
	}{
		{"debug", []string{"dbg", "inf", "wrn", "err"}, nil},
		{"info", []string{"inf", "wrn", "err"}, []string{"dbg"}},
		{"warn", []string{"wrn", "err"}, []string{"dbg", "inf"}},
		{"error", []string{"err"}, []string{"dbg", "inf", "wrn"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), "sorter.log")
			log := New(Config{Level: tt.level, Output: logFile, Format: "text"})

			log.Debug("dbg")
			log.Info("inf")
			log.Warn("wrn")
			log.Error("err")

			content := readLog(t, logFile)
			for _, msg := range tt.present {
				if !strings.Contains(content, "msg="+msg) {
					t.Errorf("message %q missing at level %s", msg, tt.level)
				}
			}
			for _, msg := range tt.absent {
				if strings.Contains(content, "msg="+msg) {
					t.Errorf("message %q should be filtered at level %s", msg, tt.level)
				}
			}
		})
	}
}

func TestWithFields(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "sorter.log")
	log := New(Config{Level: "info", Output: logFile, Format: "text"}).
		With("root", "/data/inbox")

	log.Info("file moved", "category", "PDF")

	content := readLog(t, logFile)
	for _, want := range []string{"file moved", "root=/data/inbox", "category=PDF"} {
		if !strings.Contains(content, want) {
			t.Errorf("log output missing %q: %s", want, content)
		}
	}
}

func TestJSONOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "sorter.json")
	log := New(Config{Level: "info", Output: logFile, Format: "json"})

	log.Info("move abandoned", "outcome", "destination_exists", "attempt", 1)

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(readLog(t, logFile)), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["msg"] != "move abandoned" {
		t.Errorf("msg = %v, want move abandoned", entry["msg"])
	}
	if entry["outcome"] != "destination_exists" {
		t.Errorf("outcome = %v, want destination_exists", entry["outcome"])
	}
	if n, ok := entry["attempt"].(float64); !ok || n != 1 {
		t.Errorf("attempt = %v, want 1", entry["attempt"])
	}
}

func TestDirOutputCreatesRunFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log := New(Config{Level: "info", Output: "dir", Dir: dir, Format: "text"})
	log.Info("watch started")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d log files, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
		t.Errorf("unexpected log file name %q", name)
	}
	if !strings.Contains(readLog(t, filepath.Join(dir, name)), "watch started") {
		t.Error("run log does not contain message")
	}
}

func TestDirOutputWithoutDirFallsBack(t *testing.T) {
	if _, err := getWriter(Config{Output: "dir"}, time.Now()); err == nil {
		t.Error("getWriter() error = nil, want error for missing dir")
	}

	// New must still return a usable logger.
	log := New(Config{Output: "dir"})
	log.Info("still works")
}

func TestRunFileName(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)
	if got, want := RunFileName(at), "filesorter_20240309_070501.log"; got != want {
		t.Errorf("RunFileName() = %s, want %s", got, want)
	}
}

func TestPruneOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	old := filepath.Join(dir, RunFileName(now.AddDate(0, 0, -10)))
	recent := filepath.Join(dir, RunFileName(now.AddDate(0, 0, -1)))
	unrelated := filepath.Join(dir, "notes.log")

	for _, p := range []string{old, recent, unrelated} {
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range []string{old, unrelated} {
		past := now.AddDate(0, 0, -10)
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatal(err)
		}
	}

	if removed := pruneOldLogs(dir, 7, now); removed != 1 {
		t.Errorf("pruneOldLogs() removed %d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old run log was not pruned")
	}
	if _, err := os.Stat(recent); err != nil {
		t.Error("recent run log was pruned")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("unrelated file was pruned")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warning", "WARN"},
		{"ERROR", "ERROR"},
		{"", "INFO"},
		{"loud", "INFO"},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.level).String(); got != tt.want {
			t.Errorf("parseLevel(%q) = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestNoop(t *testing.T) {
	log := Noop()
	log.Debug("debug")
	log.With("k", "v").Error("error")
}

func BenchmarkLogWithFields(b *testing.B) {
	log := Noop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		log.Info("file moved", "source", "/data/inbox/a.pdf", "category", "PDF")
	}
}
