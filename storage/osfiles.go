package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// OSFiles implements FileBackend on the local filesystem.
// Files are created 0600 and directories 0700.
type OSFiles struct {
	mu sync.RWMutex
}

// Compile-time interface check.
var _ FileBackend = (*OSFiles)(nil)

// NewOSFiles returns a FileBackend over the local filesystem.
func NewOSFiles() *OSFiles {
	return &OSFiles{}
}

// Write stores data via a temp file in the target directory, then renames it
// over path.
func (fs *OSFiles) Write(path string, data []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := f.Chmod(0600); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	committed = true
	return nil
}

// Read returns the file's content.
func (fs *OSFiles) Read(path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	info, err := os.Stat(path)
	if err != nil {
		return nil, wrapOS(err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrIOFailure, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapOS(err)
	}
	return data, nil
}

// ListDir returns the sorted names of path's immediate children.
func (fs *OSFiles) ListDir(path string) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, wrapOS(err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Rename moves oldPath to newPath.
func (fs *OSFiles) Rename(oldPath, newPath string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, err := os.Lstat(oldPath); err != nil {
		return wrapOS(err)
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0700); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		if isCrossDevice(err) {
			return fmt.Errorf("%w: %w", ErrCrossDevice, err)
		}
		return wrapOS(err)
	}
	return nil
}

// Delete removes path and anything below it.
func (fs *OSFiles) Delete(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// Stat describes path without following a final symlink.
func (fs *OSFiles) Stat(path string) (FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	info, err := os.Lstat(path)
	if err != nil {
		return FileInfo{}, wrapOS(err)
	}
	return FileInfo{
		Name:    info.Name(),
		Size:    info.Size(),
		IsDir:   info.IsDir(),
		Symlink: info.Mode()&os.ModeSymlink != 0,
		ModTime: info.ModTime(),
	}, nil
}

// MkdirAll creates path and any missing parents.
func (fs *OSFiles) MkdirAll(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// EvalSymlinks resolves every symbolic link in path.
func (fs *OSFiles) EvalSymlinks(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", wrapOS(err)
	}
	return resolved, nil
}

func wrapOS(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrIOFailure, err)
}
