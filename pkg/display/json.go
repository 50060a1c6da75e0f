package display

import (
	"encoding/json"
	"io"

	"github.com/0xmhha/filesorter/pkg/journal"
)

// jsonFormatter formats output as JSON.
type jsonFormatter struct {
	config Config
}

// FormatHistory implements Formatter.FormatHistory.
func (f *jsonFormatter) FormatHistory(w io.Writer, records []journal.Record) error {
	if records == nil {
		records = []journal.Record{}
	}
	return f.encode(w, records)
}

// FormatStats implements Formatter.FormatStats.
func (f *jsonFormatter) FormatStats(w io.Writer, stats journal.Stats) error {
	return f.encode(w, stats)
}

func (f *jsonFormatter) encode(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	if !f.config.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}
