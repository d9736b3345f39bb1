package storage

import (
	"fmt"
	"io/fs"
)

// Access controls who may modify created data-store directories and
// collection files. It is applied once, when the path is first created.
type Access bool

const (
	// AccessRestricted limits access to the owning user
	AccessRestricted Access = false
	// AccessEveryone lets every user read and modify
	AccessEveryone Access = true
)

// DirMode returns the permission bits for directories
func (a Access) DirMode() fs.FileMode {
	if a == AccessEveryone {
		return 0o777
	}
	return 0o700
}

// FileMode returns the permission bits for collection files
func (a Access) FileMode() fs.FileMode {
	if a == AccessEveryone {
		return 0o666
	}
	return 0o600
}

func (a Access) String() string {
	if a == AccessEveryone {
		return "everyone"
	}
	return "restricted"
}

// Apply sets the mode for a newly created path. Chmod is used so the
// process umask does not narrow the requested bits.
func (a Access) Apply(fsys FileSystem, path string, dir bool) error {
	mode := a.FileMode()
	if dir {
		mode = a.DirMode()
	}
	if err := fsys.Chmod(path, mode); err != nil {
		return fmt.Errorf("failed to set %s access on %s: %w", a, path, err)
	}
	return nil
}

// EnsureDir creates dir when missing and applies access to it.
// It reports whether the directory was created.
func EnsureDir(fsys FileSystem, dir string, access Access) (bool, error) {
	info, err := fsys.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", dir)
		}
		return false, nil
	}
	if !isNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	if err := fsys.MkdirAll(dir, access.DirMode()); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := access.Apply(fsys, dir, true); err != nil {
		return true, err
	}
	return true, nil
}
