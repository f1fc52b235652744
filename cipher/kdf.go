// Package cipher implements the authenticated encryption used by the
// secure stores.
//
// Every store key is derived from a 32-byte master key:
//
//	store_key = HKDF-SHA256(master_key, salt = nil, info = "securestore/v1/" + suite)
//
// so the same master key never feeds two cipher suites directly.
package cipher

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeyLen is the length of master and derived keys in bytes.
	KeyLen = 32

	// HKDFInfoPrefix prefixes the HKDF info string of every derived key.
	HKDFInfoPrefix = "securestore/v1/"
)

// DeriveKey derives a KeyLen-byte key from master for the given purpose
// using HKDF-SHA256. The derivation is deterministic.
func DeriveKey(master []byte, purpose string) ([]byte, error) {
	if len(master) != KeyLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(master))
	}
	if purpose == "" {
		return nil, fmt.Errorf("%w: purpose is empty", ErrHKDFFailure)
	}

	r := hkdf.New(sha256.New, master, nil, []byte(HKDFInfoPrefix+purpose))
	key := make([]byte, KeyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHKDFFailure, err)
	}
	return key, nil
}
