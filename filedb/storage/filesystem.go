package storage

import (
	"io/fs"

	"github.com/spf13/afero"
)

// FileSystem defines the file system operations used by the store.
// This abstraction allows in-memory file systems in tests and fault
// injection for failure paths.
type FileSystem interface {
	// Stat returns file info for the given path
	Stat(name string) (fs.FileInfo, error)

	// ReadFile reads the entire file and returns its contents
	ReadFile(name string) ([]byte, error)

	// WriteFile writes data to a file, truncating it first
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// MkdirAll creates a directory and any missing parents
	MkdirAll(path string, perm fs.FileMode) error

	// Chmod changes the mode of the named file or directory
	Chmod(name string, mode fs.FileMode) error
}

// AferoFileSystem implements FileSystem on top of an afero.Fs
type AferoFileSystem struct {
	fs afero.Fs
}

// FromAfero wraps any afero file system
func FromAfero(fs afero.Fs) *AferoFileSystem {
	return &AferoFileSystem{fs: fs}
}

// NewOSFileSystem returns the operating system file system
func NewOSFileSystem() *AferoFileSystem {
	return FromAfero(afero.NewOsFs())
}

// NewMemFileSystem returns an empty in-memory file system
func NewMemFileSystem() *AferoFileSystem {
	return FromAfero(afero.NewMemMapFs())
}

// Afero exposes the underlying afero.Fs
func (a *AferoFileSystem) Afero() afero.Fs {
	return a.fs
}

// Stat implements FileSystem.Stat
func (a *AferoFileSystem) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(name)
}

// ReadFile implements FileSystem.ReadFile
func (a *AferoFileSystem) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(a.fs, name)
}

// WriteFile implements FileSystem.WriteFile
func (a *AferoFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return afero.WriteFile(a.fs, name, data, perm)
}

// MkdirAll implements FileSystem.MkdirAll
func (a *AferoFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return a.fs.MkdirAll(path, perm)
}

// Chmod implements FileSystem.Chmod
func (a *AferoFileSystem) Chmod(name string, mode fs.FileMode) error {
	return a.fs.Chmod(name, mode)
}
