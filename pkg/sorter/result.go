package sorter

import (
	"errors"
	"io/fs"
	"syscall"
	"time"
)

// Outcome classifies the result of handling one file.
type Outcome string

// Possible outcomes.
const (
	OutcomeMoved             Outcome = "moved"
	OutcomeSourceNotFound    Outcome = "source_not_found"
	OutcomeDestinationExists Outcome = "destination_exists"
	OutcomeMkdirFailed       Outcome = "mkdir_failed"
	OutcomeFailed            Outcome = "failed"
	OutcomeSkipped           Outcome = "skipped"
)

// Outcomes lists every outcome, in reporting order.
var Outcomes = []Outcome{
	OutcomeMoved,
	OutcomeSourceNotFound,
	OutcomeDestinationExists,
	OutcomeMkdirFailed,
	OutcomeFailed,
	OutcomeSkipped,
}

// Result is the explicit per-file result of the categorizer. It replaces
// error propagation past the per-event boundary.
type Result struct {
	// EventID is the ID of the change event that triggered the attempt.
	EventID string

	// Source is the path the file was expected at.
	Source string

	// Destination is the intended target path, if one was computed.
	Destination string

	// Category is the destination directory name, if one was computed.
	Category string

	Outcome Outcome

	// Err carries the underlying error for every outcome except moved.
	Err error

	// At is when the attempt finished.
	At time.Time
}

// OK reports whether the file was moved.
func (r Result) OK() bool {
	return r.Outcome == OutcomeMoved
}

// classify maps a move error to its outcome.
func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeMoved
	case errors.Is(err, fs.ErrNotExist):
		return OutcomeSourceNotFound
	case errors.Is(err, fs.ErrExist):
		return OutcomeDestinationExists
	default:
		return OutcomeFailed
	}
}

// errnoName returns the symbolic errno (e.g. "EXDEV") wrapped in err, or "".
func errnoName(err error) string {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return ""
	}
	switch errno {
	case syscall.EXDEV:
		return "EXDEV"
	case syscall.EACCES:
		return "EACCES"
	case syscall.EPERM:
		return "EPERM"
	case syscall.ENOSPC:
		return "ENOSPC"
	case syscall.ENAMETOOLONG:
		return "ENAMETOOLONG"
	case syscall.EROFS:
		return "EROFS"
	default:
		return errno.Error()
	}
}
