package fs

import (
	"errors"
	"os"
	"sync"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("injected fault")

// FaultyFS is a FileSystem wrapper that injects errors into writes, syncs
// and renames.
type FaultyFS struct {
	FS FileSystem

	// FailAfterBytes fails writes once this many bytes went through all
	// files combined. -1 disables the limit.
	FailAfterBytes int64
	FailOnSync     bool
	FailOnRename   bool
	// Err overrides ErrInjected as the injected error.
	Err error

	mu      sync.Mutex
	written int64
}

// NewFaultyFS wraps the given FileSystem (Default if nil) with no faults
// armed.
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{FS: fsys, FailAfterBytes: -1}
}

func (f *FaultyFS) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, fs: f}, nil
}

func (f *FaultyFS) Remove(name string) error { return f.FS.Remove(name) }

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if f.FailOnRename {
		return f.err()
	}
	return f.FS.Rename(oldpath, newpath)
}

type faultyFile struct {
	File
	fs *FaultyFS
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	ff.fs.mu.Lock()
	exceeded := ff.fs.FailAfterBytes >= 0 && ff.fs.written+int64(len(p)) > ff.fs.FailAfterBytes
	if !exceeded {
		ff.fs.written += int64(len(p))
	}
	ff.fs.mu.Unlock()

	if exceeded {
		return 0, ff.fs.err()
	}
	return ff.File.Write(p)
}

func (ff *faultyFile) Sync() error {
	if ff.fs.FailOnSync {
		return ff.fs.err()
	}
	return ff.File.Sync()
}
