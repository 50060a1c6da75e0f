package sorter

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// linkFile is os.Link, replaceable in tests.
var linkFile = os.Link

// linkRename moves src to dst without ever replacing dst: the hard link
// fails with EEXIST when dst is taken, then src is unlinked. Filesystems
// without hard links (FAT, exFAT) get checkedRename.
func linkRename(src, dst string) error {
	if err := linkFile(src, dst); err != nil {
		if linkUnsupported(err) {
			return checkedRename(src, dst)
		}
		return err
	}
	if err := os.Remove(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Someone else unlinked src; the file lives on at dst.
			return nil
		}
		// src is still in place, so drop the extra link.
		_ = os.Remove(dst) // nolint:errcheck
		return err
	}
	return nil
}

// checkedRename refuses an existing dst, then renames. The check and the
// rename are two steps; callers serialize per directory.
func checkedRename(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: syscall.EEXIST}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(src, dst)
}

func linkUnsupported(err error) bool {
	return errors.Is(err, syscall.ENOTSUP) ||
		errors.Is(err, syscall.EOPNOTSUPP) ||
		errors.Is(err, syscall.EPERM)
}
