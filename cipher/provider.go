package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Provider encrypts and decrypts opaque byte strings. Key management is
// entirely the provider's concern.
type Provider interface {
	// Encrypt returns ciphertext for plaintext. Errors match ErrKeyUnavailable
	// or ErrEncryptionFailed.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt returns the plaintext for ciphertext produced by Encrypt.
	// Tampered, truncated or foreign ciphertext fails with an error matching
	// ErrInvalidCiphertext, ErrSuiteMismatch or ErrDecryptionFailed.
	Decrypt(ciphertext []byte) ([]byte, error)
}

// Suite identifies an AEAD construction.
type Suite byte

const (
	SuiteAES256GCM        Suite = 1
	SuiteChaCha20Poly1305 Suite = 2
)

const (
	// FormatVersion is the first byte of every ciphertext.
	FormatVersion = 1

	// HeaderLen is version(1B) || suite(1B).
	HeaderLen = 2

	// TagLen is the AEAD authentication tag length for both suites.
	TagLen = 16
)

// String returns the config name of the suite.
func (s Suite) String() string {
	switch s {
	case SuiteAES256GCM:
		return "aes-256-gcm"
	case SuiteChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return fmt.Sprintf("suite(%d)", byte(s))
	}
}

// ParseSuite maps a config name to its suite.
func ParseSuite(name string) (Suite, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "aes-256-gcm", "aes256gcm", "aes-gcm":
		return SuiteAES256GCM, nil
	case "chacha20-poly1305", "chacha20poly1305", "chacha20":
		return SuiteChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSuite, name)
	}
}

// AEAD is a Provider backed by AES-256-GCM or ChaCha20-Poly1305.
//
// Ciphertext format:
//
//	version(1B) || suite(1B) || nonce || AEAD(plaintext, aad = version||suite) || tag(16B)
//
// The store key is derived from the key source on every call, so a key
// source that becomes unavailable surfaces as an encryption error rather
// than a stale cached key.
type AEAD struct {
	suite  Suite
	source KeySource
}

// Compile-time interface check.
var _ Provider = (*AEAD)(nil)

// NewAEAD returns an AEAD provider for suite keyed by source.
func NewAEAD(source KeySource, suite Suite) (*AEAD, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: key source is nil", ErrKeyUnavailable)
	}
	if suite != SuiteAES256GCM && suite != SuiteChaCha20Poly1305 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSuite, byte(suite))
	}
	return &AEAD{suite: suite, source: source}, nil
}

// Suite returns the provider's cipher suite.
func (a *AEAD) Suite() Suite { return a.suite }

// Encrypt seals plaintext with a fresh random nonce.
func (a *AEAD) Encrypt(plaintext []byte) ([]byte, error) {
	aead, err := a.aead()
	if err != nil {
		return nil, err
	}

	header := []byte{FormatVersion, byte(a.suite)}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: random nonce generation failed: %w", ErrEncryptionFailed, err)
	}

	out := make([]byte, 0, HeaderLen+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, header), nil
}

// Decrypt opens ciphertext produced by Encrypt with the same suite and key.
func (a *AEAD) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < HeaderLen {
		return nil, ErrInvalidCiphertext
	}
	if ciphertext[0] != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrInvalidCiphertext, ciphertext[0])
	}
	if Suite(ciphertext[1]) != a.suite {
		return nil, fmt.Errorf("%w: have %s, ciphertext uses %s", ErrSuiteMismatch, a.suite, Suite(ciphertext[1]))
	}

	aead, err := a.aead()
	if err != nil {
		return nil, err
	}

	nonceSize := aead.NonceSize()
	if len(ciphertext) < HeaderLen+nonceSize+aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}

	header := ciphertext[:HeaderLen]
	nonce := ciphertext[HeaderLen : HeaderLen+nonceSize]
	sealed := ciphertext[HeaderLen+nonceSize:]

	plaintext, err := aead.Open(nil, nonce, sealed, header)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	// Normalize nil to empty slice for consistency.
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// aead builds the AEAD from a freshly derived store key.
func (a *AEAD) aead() (stdcipher.AEAD, error) {
	master, err := a.source.MasterKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyUnavailable, err)
	}
	key, err := DeriveKey(master, a.suite.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyUnavailable, err)
	}

	switch a.suite {
	case SuiteChaCha20Poly1305:
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, fmt.Errorf("%w: ChaCha20-Poly1305 creation failed: %w", ErrEncryptionFailed, err)
		}
		return aead, nil
	default:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("%w: AES cipher creation failed: %w", ErrEncryptionFailed, err)
		}
		gcm, err := stdcipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("%w: GCM creation failed: %w", ErrEncryptionFailed, err)
		}
		return gcm, nil
	}
}
