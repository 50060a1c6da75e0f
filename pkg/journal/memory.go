package journal

import (
	"sync"
	"time"
)

// memoryJournal keeps records in process memory.
type memoryJournal struct {
	mu      sync.Mutex
	records []Record
	closed  bool
}

// NewMemory returns a Journal that lives only as long as the process.
func NewMemory() Journal {
	return &memoryJournal{}
}

func (m *memoryJournal) Append(rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrJournalClosed
	}
	rec.Seq = uint64(len(m.records) + 1)
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryJournal) List(limit int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrJournalClosed
	}

	n := len(m.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, 0, n)
	for i := len(m.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *memoryJournal) Stats() (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Stats{}, ErrJournalClosed
	}

	stats := newStats()
	for _, rec := range m.records {
		stats.add(rec)
	}
	return stats, nil
}

func (m *memoryJournal) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
