// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"path/filepath"
	"strings"
)

var (
	validLogLevels = map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	validKVBackends = map[string]bool{
		"bolt":   true,
		"sqlite": true,
		"memory": true,
	}
	validCiphers = map[string]bool{
		"aes-256-gcm":       true,
		"chacha20-poly1305": true,
	}
	validKeySources = map[string]bool{
		"keyfile":   true,
		"password":  true,
		"secp256k1": true,
		"none":      true,
	}
	validCompressions = map[string]bool{
		"none": true,
		"lzw":  true,
		"gzip": true,
	}
)

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	for _, root := range cfg.Roots {
		if !filepath.IsAbs(root) {
			return ErrInvalidRoot
		}
	}

	if !validKVBackends[strings.ToLower(cfg.KVBackend)] {
		return ErrInvalidKVBackend
	}

	if !validCiphers[strings.ToLower(cfg.Cipher)] {
		return ErrInvalidCipher
	}

	keySource := strings.ToLower(cfg.KeySource)
	if !validKeySources[keySource] {
		return ErrInvalidKeySource
	}
	if cfg.EncryptFiles && keySource == "none" {
		return ErrEncryptionWithoutKey
	}

	if !validCompressions[strings.ToLower(cfg.Compression)] {
		return ErrInvalidCompression
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	return nil
}
