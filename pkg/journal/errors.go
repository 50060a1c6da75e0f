package journal

import "errors"

var (
	// ErrJournalClosed is returned when operating on a closed journal.
	ErrJournalClosed = errors.New("journal is closed")

	// ErrInvalidRecord is returned when a record lacks a source path or an
	// outcome.
	ErrInvalidRecord = errors.New("invalid journal record")
)
