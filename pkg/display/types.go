// Package display renders the move journal for the terminal.
//
// It supports multiple output formats (table, JSON, simple text).
package display

import (
	"io"

	"github.com/0xmhha/filesorter/pkg/journal"
)

// Format represents an output format.
type Format string

const (
	// FormatTable displays records in a bordered table.
	FormatTable Format = "table"

	// FormatJSON displays records as JSON.
	FormatJSON Format = "json"

	// FormatSimple displays one line per record.
	FormatSimple Format = "simple"
)

// Formatter formats journal contents.
type Formatter interface {
	// FormatHistory formats records in the order given.
	//
	// Returns error if writing fails.
	FormatHistory(w io.Writer, records []journal.Record) error

	// FormatStats formats outcome and category totals.
	//
	// Returns error if writing fails.
	FormatStats(w io.Writer, stats journal.Stats) error
}

// Config contains formatter configuration.
type Config struct {
	// Format specifies the output format.
	// Default: FormatTable.
	Format Format

	// ShowErrors adds the error column to history output.
	// Default: false.
	ShowErrors bool

	// Compact enables compact output (less whitespace).
	// Default: false.
	Compact bool
}

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatSimple:
		return f, true
	case "":
		return FormatTable, true
	default:
		return "", false
	}
}
