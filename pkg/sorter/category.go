package sorter

import (
	"path/filepath"
	"strings"
)

// CategoryKey returns the uppercased extension of the base name of path,
// without the leading dot. It reports false when the name has no
// extension: no dot, only a leading dot (".bashrc"), or a trailing dot.
func CategoryKey(path string) (string, bool) {
	name := filepath.Base(path)
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return "", false
	}
	return strings.ToUpper(name[i+1:]), true
}
