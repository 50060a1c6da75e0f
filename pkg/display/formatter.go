package display

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/0xmhha/filesorter/pkg/journal"
	"github.com/0xmhha/filesorter/pkg/sorter"
)

const timeLayout = "2006-01-02 15:04:05"

// New creates a new formatter based on configuration.
func New(cfg Config) Formatter {
	if cfg.Format == "" {
		cfg.Format = FormatTable
	}

	switch cfg.Format {
	case FormatJSON:
		return &jsonFormatter{config: cfg}
	case FormatSimple:
		return &simpleFormatter{config: cfg}
	case FormatTable:
		fallthrough
	default:
		return &tableFormatter{config: cfg}
	}
}

// formatNumber formats a number with thousand separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)
	result := ""
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// destination shortens a destination to CATEGORY/name.
func destination(rec journal.Record) string {
	if rec.Destination == "" {
		return "-"
	}
	return filepath.Join(filepath.Base(filepath.Dir(rec.Destination)), filepath.Base(rec.Destination))
}

// sortedCategories returns categories by descending count, then name.
func sortedCategories(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// outcomeCounts returns non-zero outcome counts in reporting order.
func outcomeCounts(stats journal.Stats) [][2]string {
	var out [][2]string
	for _, o := range sorter.Outcomes {
		if n := stats.ByOutcome[o]; n > 0 {
			out = append(out, [2]string{string(o), formatNumber(n)})
		}
	}
	return out
}

// writeHeader writes a section header.
func writeHeader(w io.Writer, title string, compact bool) error {
	if compact {
		_, err := fmt.Fprintf(w, "%s\n", title)
		return err
	}

	separator := ""
	for i := 0; i < len(title); i++ {
		separator += "="
	}

	_, err := fmt.Fprintf(w, "\n%s\n%s\n\n", title, separator)
	return err
}
