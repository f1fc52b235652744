package cipher

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KeySource supplies the 32-byte master key. Implementations stand in for
// the platform keychain.
type KeySource interface {
	MasterKey() ([]byte, error)
}

// StaticKey is a KeySource holding a key supplied by the caller.
type StaticKey []byte

// MasterKey returns a copy of the key.
func (k StaticKey) MasterKey() ([]byte, error) {
	if len(k) != KeyLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(k))
	}
	return bytes.Clone(k), nil
}

// GenerateKey returns KeyLen random bytes.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("cipher: failed to generate key: %w", err)
	}
	return key, nil
}

// KeyFile is a KeySource backed by a 0600 file holding the raw master key.
// The file is generated on first use.
type KeyFile struct {
	path string
	mu   sync.Mutex
}

// NewKeyFile returns a KeySource reading the key at path.
func NewKeyFile(path string) *KeyFile {
	return &KeyFile{path: path}
}

// Path returns the key file location.
func (k *KeyFile) Path() string { return k.path }

// MasterKey reads the key file, creating it with a fresh key if absent.
func (k *KeyFile) MasterKey() ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	key, err := os.ReadFile(k.path)
	if errors.Is(err, os.ErrNotExist) {
		key, err = k.create()
	}
	if err != nil {
		return nil, err
	}
	if len(key) != KeyLen {
		return nil, fmt.Errorf("%w: key file %s holds %d bytes", ErrInvalidKey, k.path, len(key))
	}
	return key, nil
}

// create writes a new key with O_EXCL so two processes racing on first use
// agree on one key.
func (k *KeyFile) create() ([]byte, error) {
	if err := os.MkdirAll(filepath.Dir(k.path), 0700); err != nil {
		return nil, fmt.Errorf("cipher: create key directory: %w", err)
	}
	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(k.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, os.ErrExist) {
		return os.ReadFile(k.path)
	}
	if err != nil {
		return nil, fmt.Errorf("cipher: create key file: %w", err)
	}
	if _, err := f.Write(key); err != nil {
		_ = f.Close()
		_ = os.Remove(k.path)
		return nil, fmt.Errorf("cipher: write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(k.path)
		return nil, fmt.Errorf("cipher: close key file: %w", err)
	}
	return key, nil
}
