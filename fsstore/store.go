// Package fsstore implements the scoped file store: file operations confined
// to a fixed set of allowed root directories, with optional transparent
// encryption of file contents.
//
// Every path is checked by one allow-list gate before the backend sees it.
// The gate cleans the path, rejects anything lexically outside the roots,
// resolves symbolic links on the longest existing prefix and checks
// containment again on the resolved form.
package fsstore

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/bitfsorg/securestore-go/cipher"
	"github.com/bitfsorg/securestore-go/storage"
)

// Store is the scoped file store. The allowed roots are fixed at
// construction; the encryption flag is the only mutable state and may be
// flipped concurrently with other operations, each of which observes either
// the old or the new value. Safe for concurrent use.
type Store struct {
	roots       []root
	backend     storage.FileBackend
	provider    cipher.Provider
	compression storage.Compression
	encrypt     atomic.Bool
	log         zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l.With().Str("component", "fsstore").Logger() }
}

// WithCompression compresses content before encryption on save and
// decompresses it after decryption on read. It applies to every file the
// store touches, so it must not change over the life of a data directory.
func WithCompression(c storage.Compression) Option {
	return func(s *Store) { s.compression = c }
}

// WithEncryption sets the initial state of the encryption flag.
func WithEncryption(enabled bool) Option {
	return func(s *Store) { s.encrypt.Store(enabled) }
}

// Constants describes the store to its callers.
type Constants struct {
	DocumentDirectory     string
	SupportsDirectoryMove bool
	SupportsEncryption    bool
}

// New returns a Store confining backend to roots. Missing roots are created.
// provider may be nil, in which case encryption cannot be enabled.
func New(roots []string, backend storage.FileBackend, provider cipher.Provider, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("fsstore: backend is nil")
	}
	s := &Store{
		backend:  backend,
		provider: provider,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.encrypt.Load() && provider == nil {
		return nil, ErrNoProvider
	}
	if _, err := storage.Compress(nil, s.compression); err != nil {
		return nil, err
	}

	rs, err := newRoots(roots, backend)
	if err != nil {
		return nil, err
	}
	s.roots = rs

	s.log.Debug().Int("roots", len(rs)).Bool("encrypt", s.encrypt.Load()).
		Str("compression", s.compression.String()).Msg("file store ready")
	return s, nil
}

// SetEncryptionEnabled toggles encryption for subsequent saves and reads.
// Existing files are not re-encrypted.
func (s *Store) SetEncryptionEnabled(enabled bool) error {
	if enabled && s.provider == nil {
		return fmt.Errorf("%w: %w", storage.ErrEncryption, ErrNoProvider)
	}
	s.encrypt.Store(enabled)
	s.log.Info().Bool("enabled", enabled).Msg("file encryption toggled")
	return nil
}

// EncryptionEnabled reports the current state of the encryption flag.
func (s *Store) EncryptionEnabled() bool { return s.encrypt.Load() }

// Constants returns the document directory (the first root) and the
// store's capabilities.
func (s *Store) Constants() Constants {
	return Constants{
		DocumentDirectory:     s.roots[0].clean,
		SupportsDirectoryMove: true,
		SupportsEncryption:    s.provider != nil,
	}
}

// Roots returns the allowed roots in registration order.
func (s *Store) Roots() []string {
	out := make([]string, len(s.roots))
	for i, r := range s.roots {
		out[i] = r.clean
	}
	return out
}

// ResolveRelative returns path unchanged when it already lies in the
// document directory, otherwise it joins path onto it. The result still has
// to pass the allow-list check of whichever operation uses it.
func (s *Store) ResolveRelative(path string) string {
	doc := s.roots[0].clean
	if filepath.IsAbs(path) && within(filepath.Clean(path), doc) {
		return path
	}
	return filepath.Join(doc, path)
}

// seal compresses then, if encryption is on, encrypts data.
func (s *Store) seal(data []byte, encrypt bool) ([]byte, error) {
	payload, err := storage.Compress(data, s.compression)
	if err != nil {
		return nil, fmt.Errorf("%w: compress: %w", storage.ErrIOFailure, err)
	}
	if !encrypt {
		return payload, nil
	}
	ct, err := s.provider.Encrypt(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrEncryption, err)
	}
	return ct, nil
}

// open reverses seal. Corrupt content of either stage is a decryption error.
func (s *Store) open(raw []byte, encrypt bool) ([]byte, error) {
	payload := raw
	if encrypt {
		pt, err := s.provider.Decrypt(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrDecryption, err)
		}
		payload = pt
	}
	data, err := storage.Decompress(payload, s.compression)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt content: %w", storage.ErrDecryption, err)
	}
	return data, nil
}

// ioError tags backend failures as storage errors without double wrapping.
func ioError(op, path string, err error) error {
	if errors.Is(err, storage.ErrIOFailure) {
		return fmt.Errorf("fsstore: %s %s: %w", op, path, err)
	}
	return fmt.Errorf("fsstore: %s %s: %w: %w", op, path, storage.ErrIOFailure, err)
}
