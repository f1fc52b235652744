package cipher

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

// SaltLen is the length of the Argon2id salt in bytes.
const SaltLen = 16

// Argon2Params tunes the Argon2id password KDF.
type Argon2Params struct {
	Time        uint32
	Memory      uint32 // KiB
	Parallelism uint8
}

// DefaultArgon2Params matches the wallet seed encryption parameters.
var DefaultArgon2Params = Argon2Params{
	Time:        3,
	Memory:      64 * 1024, // 64 MB
	Parallelism: 4,
}

// PasswordKey is a KeySource deriving the master key from a password with
// Argon2id. The derivation runs once, at construction.
type PasswordKey struct {
	key []byte
}

// NewPasswordKey derives the master key from password and salt.
func NewPasswordKey(password string, salt []byte, params Argon2Params) (*PasswordKey, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if len(salt) < SaltLen {
		return nil, fmt.Errorf("cipher: salt must be at least %d bytes, got %d", SaltLen, len(salt))
	}
	if params.Time == 0 || params.Memory == 0 || params.Parallelism == 0 {
		params = DefaultArgon2Params
	}

	key := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, KeyLen)
	return &PasswordKey{key: key}, nil
}

// NewPasswordKeyFile derives the master key from password and the salt
// stored at saltPath, generating and persisting a salt on first use.
func NewPasswordKeyFile(password, saltPath string, params Argon2Params) (*PasswordKey, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	salt, err := loadOrCreateSalt(saltPath)
	if err != nil {
		return nil, err
	}
	return NewPasswordKey(password, salt, params)
}

// MasterKey returns a copy of the derived key.
func (p *PasswordKey) MasterKey() ([]byte, error) {
	return bytes.Clone(p.key), nil
}

func loadOrCreateSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err == nil {
		if len(salt) < SaltLen {
			return nil, fmt.Errorf("cipher: salt file %s is truncated", path)
		}
		return salt, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cipher: read salt file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("cipher: create salt directory: %w", err)
	}
	salt = make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("cipher: failed to generate salt: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, os.ErrExist) {
		return loadOrCreateSalt(path)
	}
	if err != nil {
		return nil, fmt.Errorf("cipher: create salt file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(salt); err != nil {
		return nil, fmt.Errorf("cipher: write salt file: %w", err)
	}
	return salt, nil
}
