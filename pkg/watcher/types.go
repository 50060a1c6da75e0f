// Package watcher provides debounced file system notifications for a single
// directory.
//
// It uses fsnotify to watch one root (non-recursively) and coalesces bursts
// of raw notifications for the same path into one logical ChangeEvent once
// the path has been quiet for the debounce window.
//
// Example usage:
//
//	w, err := watcher.New(watcher.Config{
//	    DebounceWindow: 5 * time.Second,
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	if err := w.Start(ctx, "/data/inbox"); err != nil {
//	    log.Fatal(err)
//	}
//
//	for event := range w.Events() {
//	    fmt.Printf("%s %s\n", event.Kind, event.Path())
//	}
package watcher

import (
	"context"
	"strings"
	"time"
)

// Op describes a raw file operation type.
type Op uint32

// File operation types.
const (
	OpCreate Op = 1 << iota // File created
	OpWrite                 // File modified
	OpRemove                // File deleted
	OpRename                // File renamed/moved away
	OpChmod                 // File permissions changed
)

var opNames = []struct {
	op   Op
	name string
}{
	{OpCreate, "CREATE"},
	{OpWrite, "WRITE"},
	{OpRemove, "REMOVE"},
	{OpRename, "RENAME"},
	{OpChmod, "CHMOD"},
}

// String returns a human-readable operation name. Combined operations are
// joined with "|".
func (op Op) String() string {
	var parts []string
	for _, n := range opNames {
		if op&n.op != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 || op&^(OpCreate|OpWrite|OpRemove|OpRename|OpChmod) != 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// Kind classifies a logical change.
type Kind int

// Logical change kinds.
const (
	KindOther       Kind = iota
	KindCreateFile       // regular file created
	KindCreateDir        // directory created
	KindCreateOther      // symlink, device, or an entry that vanished before it could be inspected
	KindModify
	KindRemove
	KindRename
)

// String returns the kind name used in logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindCreateFile:
		return "create_file"
	case KindCreateDir:
		return "create_dir"
	case KindCreateOther:
		return "create_other"
	case KindModify:
		return "modify"
	case KindRemove:
		return "remove"
	case KindRename:
		return "rename"
	default:
		return "other"
	}
}

// IsCreate reports whether k is one of the create kinds.
func (k Kind) IsCreate() bool {
	return k == KindCreateFile || k == KindCreateDir || k == KindCreateOther
}

// ChangeEvent is a logical, debounced notification.
type ChangeEvent struct {
	// ID correlates log lines and journal records for one event.
	ID string

	// Kind is the coalesced change kind.
	Kind Kind

	// Paths holds the affected paths; the first entry is the subject.
	Paths []string

	// Ops is every raw operation observed during the window.
	Ops Op

	// FirstSeen is when the first raw notification arrived.
	FirstSeen time.Time

	// LastSeen is when the last raw notification arrived.
	LastSeen time.Time
}

// Path returns the subject path, or "" when the event carries none.
func (e ChangeEvent) Path() string {
	if len(e.Paths) == 0 {
		return ""
	}
	return e.Paths[0]
}

// Watcher provides debounced monitoring of one directory.
type Watcher interface {
	// Start subscribes to notifications for root (not its descendants) and
	// begins event processing in the background.
	//
	// Returns error if the subscription cannot be established; no events
	// are produced in that case.
	Start(ctx context.Context, root string) error

	// Stop stops event processing.
	Stop() error

	// Events returns the channel of debounced events, in emission order.
	// The channel is closed when the watcher is closed.
	Events() <-chan ChangeEvent

	// Errors returns the channel for non-fatal notification errors.
	// The channel is closed when the watcher is closed.
	Errors() <-chan error

	// Close releases the subscription and pending timers.
	Close() error
}

// Config contains watcher configuration.
type Config struct {
	// DebounceWindow is how long a path must stay quiet before its
	// coalesced event is emitted.
	// Default: 5s.
	DebounceWindow time.Duration

	// ErrorBuffer is the capacity of the Errors channel.
	// Default: 10.
	ErrorBuffer int
}

// DefaultDebounceWindow is used when Config.DebounceWindow is zero.
const DefaultDebounceWindow = 5 * time.Second
