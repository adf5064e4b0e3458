// Package fs abstracts the handful of file system operations the export
// merge needs, so failures can be injected in tests.
package fs

import (
	"io"
	"os"
)

// File represents an open output file.
type File interface {
	io.WriteCloser
	Sync() error
}

// FileSystem abstracts file system operations for testability.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm) //nolint:gosec // G304: Path is configurable
}

func (LocalFS) Remove(name string) error             { return os.Remove(name) }
func (LocalFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }

// Default is the default local file system.
var Default FileSystem = LocalFS{}
