//go:build !linux && !darwin

package sorter

// renameNoReplace renames src to dst, failing with EEXIST if dst exists.
func renameNoReplace(src, dst string) error {
	return linkRename(src, dst)
}
