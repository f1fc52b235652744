//go:build windows

package storage

import (
	"fmt"
	"os"
)

// Windows has no syscall.Flock. The lock file is still created so the
// layout matches, but no cross-process exclusion is enforced.

func acquireLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: open lock file: %w", ErrIOFailure, err)
	}
	return f, nil
}

func tryLock(path string) (*os.File, error) {
	return acquireLock(path)
}

func releaseLock(f *os.File) {
	if f == nil {
		return
	}
	_ = f.Close()
}
