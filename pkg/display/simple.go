package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/0xmhha/filesorter/pkg/journal"
)

// simpleFormatter formats output as simple text.
type simpleFormatter struct {
	config Config
}

// FormatHistory implements Formatter.FormatHistory.
func (f *simpleFormatter) FormatHistory(w io.Writer, records []journal.Record) error {
	for _, rec := range records {
		line := fmt.Sprintf("%s %s %s -> %s",
			formatTime(rec.At),
			rec.Outcome,
			rec.Source,
			destination(rec))
		if f.config.ShowErrors && rec.Error != "" {
			line += " (" + rec.Error + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatStats implements Formatter.FormatStats.
func (f *simpleFormatter) FormatStats(w io.Writer, stats journal.Stats) error {
	parts := []string{"Total: " + formatNumber(stats.Total)}
	for _, oc := range outcomeCounts(stats) {
		parts = append(parts, oc[0]+": "+oc[1])
	}
	if _, err := fmt.Fprintln(w, strings.Join(parts, " | ")); err != nil {
		return err
	}

	for _, cat := range sortedCategories(stats.ByCategory) {
		if _, err := fmt.Fprintf(w, "%s: %s\n", cat, formatNumber(stats.ByCategory[cat])); err != nil {
			return err
		}
	}
	return nil
}
