package cipher

import "errors"

var (
	// ErrKeyUnavailable indicates the key source could not supply key material.
	ErrKeyUnavailable = errors.New("cipher: key material unavailable")

	// ErrInvalidKey indicates key material has the wrong length.
	ErrInvalidKey = errors.New("cipher: master key must be 32 bytes")

	// ErrInvalidCiphertext indicates the ciphertext is too short or its
	// header is malformed.
	ErrInvalidCiphertext = errors.New("cipher: invalid ciphertext")

	// ErrSuiteMismatch indicates the ciphertext was produced by another suite.
	ErrSuiteMismatch = errors.New("cipher: cipher suite mismatch")

	// ErrDecryptionFailed indicates AEAD authentication failed: the content
	// was tampered with or the key differs from the one used to encrypt.
	ErrDecryptionFailed = errors.New("cipher: decryption failed")

	// ErrEncryptionFailed indicates the AEAD could not be constructed or the
	// nonce could not be generated.
	ErrEncryptionFailed = errors.New("cipher: encryption failed")

	// ErrUnknownSuite indicates an unrecognised suite name or identifier.
	ErrUnknownSuite = errors.New("cipher: unknown cipher suite")

	// ErrNilPrivateKey indicates a nil private key was provided.
	ErrNilPrivateKey = errors.New("cipher: private key is nil")

	// ErrEmptyPassword indicates an empty password was provided.
	ErrEmptyPassword = errors.New("cipher: password is empty")

	// ErrHKDFFailure indicates HKDF key derivation failed.
	ErrHKDFFailure = errors.New("cipher: HKDF key derivation failed")
)
