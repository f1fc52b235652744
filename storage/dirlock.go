package storage

import (
	"errors"
	"os"
	"path/filepath"
)

// LockFileName is the lock file created inside a locked data directory.
const LockFileName = ".lock"

// ErrLocked indicates another process holds the data directory lock.
var ErrLocked = errors.New("storage: data directory locked by another process")

// DirLock is an exclusive cross-process lock on a data directory.
type DirLock struct {
	f *os.File
}

// LockDir blocks until it holds the lock on dir.
func LockDir(dir string) (*DirLock, error) {
	f, err := acquireLock(filepath.Join(dir, LockFileName))
	if err != nil {
		return nil, err
	}
	return &DirLock{f: f}, nil
}

// TryLockDir takes the lock on dir or fails with ErrLocked.
func TryLockDir(dir string) (*DirLock, error) {
	f, err := tryLock(filepath.Join(dir, LockFileName))
	if err != nil {
		return nil, err
	}
	return &DirLock{f: f}, nil
}

// Unlock releases the lock. It is safe to call more than once.
func (l *DirLock) Unlock() {
	if l == nil {
		return
	}
	releaseLock(l.f)
	l.f = nil
}
