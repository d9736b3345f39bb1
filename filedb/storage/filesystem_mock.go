package storage

import (
	"io/fs"
	"sync"
)

// FaultyFileSystem wraps a FileSystem and injects errors, for testing
// failure paths of persist, load and creation
type FaultyFileSystem struct {
	inner FileSystem

	mu sync.Mutex

	// Optional errors returned instead of calling the wrapped file system
	StatError      error
	ReadFileError  error
	WriteFileError error
	MkdirAllError  error
	ChmodError     error

	// For tracking calls
	Writes int
	Reads  int
	Chmods []ChmodCall
}

// ChmodCall records one Chmod invocation
type ChmodCall struct {
	Name string
	Mode fs.FileMode
}

// NewFaultyFileSystem wraps inner; a nil inner uses an in-memory file system
func NewFaultyFileSystem(inner FileSystem) *FaultyFileSystem {
	if inner == nil {
		inner = NewMemFileSystem()
	}
	return &FaultyFileSystem{inner: inner}
}

// Stat implements FileSystem.Stat
func (f *FaultyFileSystem) Stat(name string) (fs.FileInfo, error) {
	f.mu.Lock()
	err := f.StatError
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.inner.Stat(name)
}

// ReadFile implements FileSystem.ReadFile
func (f *FaultyFileSystem) ReadFile(name string) ([]byte, error) {
	f.mu.Lock()
	f.Reads++
	err := f.ReadFileError
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.inner.ReadFile(name)
}

// WriteFile implements FileSystem.WriteFile
func (f *FaultyFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	f.mu.Lock()
	f.Writes++
	err := f.WriteFileError
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.inner.WriteFile(name, data, perm)
}

// MkdirAll implements FileSystem.MkdirAll
func (f *FaultyFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	f.mu.Lock()
	err := f.MkdirAllError
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.inner.MkdirAll(path, perm)
}

// Chmod implements FileSystem.Chmod
func (f *FaultyFileSystem) Chmod(name string, mode fs.FileMode) error {
	f.mu.Lock()
	f.Chmods = append(f.Chmods, ChmodCall{Name: name, Mode: mode})
	err := f.ChmodError
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.inner.Chmod(name, mode)
}

// SetWriteError sets the error returned by WriteFile; nil clears it
func (f *FaultyFileSystem) SetWriteError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WriteFileError = err
}

// SetReadError sets the error returned by ReadFile; nil clears it
func (f *FaultyFileSystem) SetReadError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReadFileError = err
}

// WriteCount returns how many times WriteFile was called
func (f *FaultyFileSystem) WriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Writes
}
