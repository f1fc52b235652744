// Package kvstore implements the encrypted key-value store: string values
// under string keys, encrypted before they reach the backend and decrypted
// on every read.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/bitfsorg/securestore-go/cipher"
	"github.com/bitfsorg/securestore-go/storage"
)

// MaxKeyLen is the maximum key length in bytes.
const MaxKeyLen = 1024

// Store is the encrypted key-value store. It keeps no cache: every Get
// consults the backend, so values written by another process are never
// served stale. Safe for concurrent use.
type Store struct {
	backend  storage.KVBackend
	provider cipher.Provider
	log      zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l.With().Str("component", "kvstore").Logger() }
}

// New returns a Store over backend. A nil provider yields an unencrypted
// store; IsEncrypted reports which one the caller got.
func New(backend storage.KVBackend, provider cipher.Provider, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("kvstore: backend is nil")
	}
	s := &Store{
		backend:  backend,
		provider: provider,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if provider == nil {
		s.log.Warn().Msg("no cipher provider configured, values are stored unencrypted")
	}
	return s, nil
}

// IsEncrypted reports whether values pass through a cipher provider.
func (s *Store) IsEncrypted() bool { return s.provider != nil }

// Set encrypts value and stores it under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	payload := []byte(value)
	if s.provider != nil {
		ct, err := s.provider.Encrypt(payload)
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrEncryption, err)
		}
		payload = ct
	}

	if err := s.backend.Put(ctx, key, payload); err != nil {
		return ioError(err)
	}
	s.log.Debug().Int("key_len", len(key)).Int("size", len(payload)).Msg("set")
	return nil
}

// Get returns the value stored under key. An absent key yields
// ("", false, nil).
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}

	payload, err := s.backend.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, ioError(err)
	}

	if s.provider != nil {
		pt, err := s.provider.Decrypt(payload)
		if err != nil {
			s.log.Warn().Err(err).Msg("stored value failed to decrypt")
			return "", false, fmt.Errorf("%w: %w", storage.ErrDecryption, err)
		}
		payload = pt
	}
	return string(payload), true, nil
}

// Remove deletes key. Removing an absent key succeeds.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		return ioError(err)
	}
	s.log.Debug().Int("key_len", len(key)).Msg("remove")
	return nil
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Clear(ctx); err != nil {
		return ioError(err)
	}
	s.log.Debug().Msg("clear")
	return nil
}

// Close closes the backend.
func (s *Store) Close() error { return s.backend.Close() }

func validateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	case len(key) > MaxKeyLen:
		return fmt.Errorf("%w: key is %d bytes, max %d", ErrInvalidKey, len(key), MaxKeyLen)
	case !utf8.ValidString(key):
		return fmt.Errorf("%w: key is not valid UTF-8", ErrInvalidKey)
	}
	return nil
}

// ioError tags backend failures as storage errors. Context errors pass
// through unchanged.
func ioError(err error) error {
	if errors.Is(err, storage.ErrIOFailure) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", storage.ErrIOFailure, err)
}
