// Package journal keeps a persistent history of every file the sorter
// handled, one record per attempt.
package journal

import (
	"time"

	"github.com/0xmhha/filesorter/pkg/sorter"
)

// Journal stores sort results.
type Journal interface {
	// Append stores one record. Seq and, if zero, At are assigned.
	Append(rec Record) error

	// List returns up to limit records, newest first. A limit <= 0
	// returns every record.
	List(limit int) ([]Record, error)

	// Stats summarizes all stored records.
	Stats() (Stats, error)

	// Close releases the underlying storage.
	Close() error
}

// Record is one persisted sort attempt.
type Record struct {
	Seq         uint64         `json:"seq"`
	EventID     string         `json:"event_id,omitempty"`
	Source      string         `json:"source"`
	Destination string         `json:"destination,omitempty"`
	Category    string         `json:"category,omitempty"`
	Outcome     sorter.Outcome `json:"outcome"`
	Error       string         `json:"error,omitempty"`
	At          time.Time      `json:"at"`
}

// Stats counts records by outcome and by category. Only moved records
// count toward ByCategory.
type Stats struct {
	Total      int                    `json:"total"`
	ByOutcome  map[sorter.Outcome]int `json:"by_outcome"`
	ByCategory map[string]int         `json:"by_category"`
	First      time.Time              `json:"first,omitempty"`
	Last       time.Time              `json:"last,omitempty"`
}

// Config contains journal settings.
type Config struct {
	// Path of the bbolt database file. A leading ~ is expanded.
	Path string

	// Timeout for acquiring the database file lock on each call.
	// Default: 1 second.
	Timeout time.Duration
}

// FromResult converts a sort result to a record.
func FromResult(res sorter.Result) Record {
	rec := Record{
		EventID:     res.EventID,
		Source:      res.Source,
		Destination: res.Destination,
		Category:    res.Category,
		Outcome:     res.Outcome,
		At:          res.At,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	return rec
}

func newStats() Stats {
	return Stats{
		ByOutcome:  make(map[sorter.Outcome]int),
		ByCategory: make(map[string]int),
	}
}

func (s *Stats) add(rec Record) {
	s.Total++
	s.ByOutcome[rec.Outcome]++
	if rec.Outcome == sorter.OutcomeMoved && rec.Category != "" {
		s.ByCategory[rec.Category]++
	}
	if s.First.IsZero() || rec.At.Before(s.First) {
		s.First = rec.At
	}
	if rec.At.After(s.Last) {
		s.Last = rec.At
	}
}

func validate(rec Record) error {
	if rec.Source == "" || rec.Outcome == "" {
		return ErrInvalidRecord
	}
	return nil
}
