package storage

import "time"

// FileInfo describes one entry of a FileBackend.
type FileInfo struct {
	Name    string
	Size    int64
	IsDir   bool
	Symlink bool
	ModTime time.Time
}

// FileBackend is hierarchical file persistence addressed by absolute path.
// It performs no access control; callers validate paths before use.
// Implementations must be safe for concurrent use.
type FileBackend interface {
	// Write replaces the file at path with data, creating parent
	// directories. Readers never observe a partially written file.
	Write(path string, data []byte) error

	// Read returns the file's content, or ErrNotFound.
	Read(path string) ([]byte, error)

	// ListDir returns the names of the immediate children of path in
	// lexical order, or ErrNotFound if the directory does not exist.
	ListDir(path string) ([]string, error)

	// Rename moves oldPath to newPath, creating newPath's parent.
	// Returns ErrCrossDevice when the move cannot be done atomically.
	Rename(oldPath, newPath string) error

	// Delete removes a file or a whole directory tree. Deleting an absent
	// path is not an error.
	Delete(path string) error

	// Stat describes path without following a final symlink, or returns
	// ErrNotFound.
	Stat(path string) (FileInfo, error)

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string) error

	// EvalSymlinks returns path with every symbolic link resolved, or
	// ErrNotFound if some component does not exist.
	EvalSymlinks(path string) (string, error)
}
