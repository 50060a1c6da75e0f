package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/0xmhha/filesorter/pkg/journal"
)

// tableFormatter formats output as tables.
type tableFormatter struct {
	config Config
}

// FormatHistory implements Formatter.FormatHistory.
func (f *tableFormatter) FormatHistory(w io.Writer, records []journal.Record) error {
	if err := writeHeader(w, "Move History", f.config.Compact); err != nil {
		return err
	}

	header := table.Row{"#", "Time", "File", "Outcome", "Destination"}
	if f.config.ShowErrors {
		header = append(header, "Error")
	}

	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		row := table.Row{
			rec.Seq,
			formatTime(rec.At),
			filepath.Base(rec.Source),
			string(rec.Outcome),
			destination(rec),
		}
		if f.config.ShowErrors {
			row = append(row, rec.Error)
		}
		rows = append(rows, row)
	}

	return f.writeTable(w, header, rows, 1)
}

// FormatStats implements Formatter.FormatStats.
func (f *tableFormatter) FormatStats(w io.Writer, stats journal.Stats) error {
	if err := writeHeader(w, "Sort Statistics", f.config.Compact); err != nil {
		return err
	}

	rows := []table.Row{{"Total", formatNumber(stats.Total)}}
	for _, oc := range outcomeCounts(stats) {
		rows = append(rows, table.Row{oc[0], oc[1]})
	}
	if !stats.First.IsZero() {
		rows = append(rows,
			table.Row{"First", formatTime(stats.First)},
			table.Row{"Last", formatTime(stats.Last)},
		)
	}
	if err := f.writeTable(w, table.Row{"Metric", "Value"}, rows, 2); err != nil {
		return err
	}

	if len(stats.ByCategory) == 0 {
		return nil
	}

	if err := writeHeader(w, "Moved by Category", f.config.Compact); err != nil {
		return err
	}
	catRows := make([]table.Row, 0, len(stats.ByCategory))
	for _, cat := range sortedCategories(stats.ByCategory) {
		catRows = append(catRows, table.Row{cat, formatNumber(stats.ByCategory[cat])})
	}
	return f.writeTable(w, table.Row{"Category", "Files"}, catRows, 2)
}

// writeTable renders a table with column rightCol right-aligned.
func (f *tableFormatter) writeTable(w io.Writer, header table.Row, rows []table.Row, rightCol int) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if f.config.Compact {
		tw.SetStyle(table.StyleLight)
	} else {
		tw.SetStyle(table.StyleRounded)
	}
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	tw.SetColumnConfigs([]table.ColumnConfig{{
		Number:      rightCol,
		Align:       text.AlignRight,
		AlignHeader: text.AlignLeft,
	}})
	tw.Render()

	if !f.config.Compact {
		_, err := fmt.Fprintln(w)
		return err
	}
	return nil
}
