package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no entry or file exists at the requested key or path.
	ErrNotFound = errors.New("storage: not found")

	// ErrIOFailure indicates a backend read/write error. The underlying cause
	// is always wrapped alongside it.
	ErrIOFailure = errors.New("storage: I/O failure")

	// ErrEncryption indicates the cipher provider could not produce ciphertext.
	ErrEncryption = errors.New("storage: encryption failed")

	// ErrDecryption indicates stored content could not be decrypted, either
	// because it was tampered with or because the key material changed.
	ErrDecryption = errors.New("storage: decryption failed")

	// ErrPathNotAllowed indicates a path resolves outside every allowed root.
	ErrPathNotAllowed = errors.New("storage: path not allowed")

	// ErrParse indicates structured content could not be encoded or decoded.
	ErrParse = errors.New("storage: parse failed")

	// ErrCrossDevice indicates a rename crossed a device or volume boundary
	// and must be emulated by copy-then-delete.
	ErrCrossDevice = errors.New("storage: rename across devices")

	// ErrInvalidBaseDir indicates the base directory path is invalid.
	ErrInvalidBaseDir = errors.New("storage: invalid base directory")

	// ErrClosed indicates the backend has been closed.
	ErrClosed = errors.New("storage: backend closed")

	// ErrUnsupportedCompression indicates an unsupported compression scheme.
	ErrUnsupportedCompression = errors.New("storage: unsupported compression scheme")

	// ErrDecompressedTooLarge indicates decompressed data exceeds the safety limit.
	ErrDecompressedTooLarge = errors.New("storage: decompressed data exceeds maximum size")
)

// PathError reports a path rejected by the allow-list check.
// It matches ErrPathNotAllowed under errors.Is.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("storage: path not allowed: %s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrPathNotAllowed.
func (e *PathError) Unwrap() error { return ErrPathNotAllowed }

// ParseError reports malformed structured content. Offset is the byte
// offset of the failure in the decoded plaintext, or -1 when unknown.
// It matches ErrParse and the underlying decoder error under errors.Is.
type ParseError struct {
	Path   string
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("storage: parse failed: %s at offset %d: %v", e.Path, e.Offset, e.Err)
	}
	return fmt.Sprintf("storage: parse failed: %s: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrParse and the decoder error.
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }
