package sorter

import "github.com/0xmhha/filesorter/pkg/watcher"

// IsFileCreate reports whether ev is the creation of a regular file.
// Every other event is rejected without side effects.
func IsFileCreate(ev watcher.ChangeEvent) bool {
	return ev.Kind == watcher.KindCreateFile && len(ev.Paths) > 0
}
