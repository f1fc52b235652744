package cipher

import (
	"encoding/hex"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// ECDHKey is a KeySource bound to a secp256k1 private key, typically one
// derived from an HD wallet.
//
//	master_key = ECDH(D, D·G).x
//
// Only the holder of D can reproduce the key.
type ECDHKey struct {
	priv *ec.PrivateKey
}

// NewECDHKey returns a KeySource for priv.
func NewECDHKey(priv *ec.PrivateKey) (*ECDHKey, error) {
	if priv == nil {
		return nil, ErrNilPrivateKey
	}
	return &ECDHKey{priv: priv}, nil
}

// NewECDHKeyFromHex parses a 32-byte hex-encoded private key scalar.
func NewECDHKeyFromHex(privHex string) (*ECDHKey, error) {
	raw, err := hex.DecodeString(privHex)
	if err != nil {
		return nil, fmt.Errorf("cipher: decode private key: %w", err)
	}
	if len(raw) != KeyLen {
		return nil, fmt.Errorf("%w: private key is %d bytes", ErrInvalidKey, len(raw))
	}
	priv, _ := ec.PrivateKeyFromBytes(raw)
	return NewECDHKey(priv)
}

// MasterKey computes the shared x-coordinate, zero-padded to 32 bytes.
func (k *ECDHKey) MasterKey() ([]byte, error) {
	shared, err := k.priv.DeriveSharedSecret(k.priv.PubKey())
	if err != nil {
		return nil, fmt.Errorf("cipher: ECDH failed: %w", err)
	}

	xBytes := shared.X.Bytes()
	if len(xBytes) < KeyLen {
		padded := make([]byte, KeyLen)
		copy(padded[KeyLen-len(xBytes):], xBytes)
		return padded, nil
	}
	return xBytes[:KeyLen], nil
}
