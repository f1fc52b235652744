//go:build unix

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirLock_CreatesLockFile(t *testing.T) {
	dir := t.TempDir()

	l, err := LockDir(dir)
	require.NoError(t, err)
	defer l.Unlock()

	_, err = os.Stat(filepath.Join(dir, LockFileName))
	assert.NoError(t, err)
}

func TestDirLock_Exclusive(t *testing.T) {
	dir := t.TempDir()

	l1, err := LockDir(dir)
	require.NoError(t, err)

	l2, err := TryLockDir(dir)
	assert.ErrorIs(t, err, ErrLocked)
	assert.Nil(t, l2)

	l1.Unlock()
	l1.Unlock()

	l3, err := TryLockDir(dir)
	require.NoError(t, err)
	l3.Unlock()
}

func TestDirLock_MissingDir(t *testing.T) {
	_, err := LockDir(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrIOFailure)
}
