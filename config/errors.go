// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidKVBackend indicates the KV backend name is not recognized.
	ErrInvalidKVBackend = errors.New("config: invalid kv backend (must be \"bolt\", \"sqlite\", or \"memory\")")

	// ErrInvalidCipher indicates the cipher suite name is not recognized.
	ErrInvalidCipher = errors.New("config: invalid cipher (must be \"aes-256-gcm\" or \"chacha20-poly1305\")")

	// ErrInvalidKeySource indicates the key source name is not recognized.
	ErrInvalidKeySource = errors.New("config: invalid key source (must be \"keyfile\", \"password\", \"secp256k1\", or \"none\")")

	// ErrInvalidCompression indicates the compression scheme is not recognized.
	ErrInvalidCompression = errors.New("config: invalid compression (must be \"none\", \"lzw\", or \"gzip\")")

	// ErrInvalidRoot indicates an allowed root is not an absolute path.
	ErrInvalidRoot = errors.New("config: allowed roots must be absolute paths")

	// ErrEncryptionWithoutKey indicates file encryption was enabled with no key source.
	ErrEncryptionWithoutKey = errors.New("config: encryptfiles requires a key source")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")

	// ErrInvalidYAML indicates a YAML configuration file could not be decoded.
	ErrInvalidYAML = errors.New("config: invalid YAML configuration")

	// ErrInvalidEnv indicates an environment override could not be parsed.
	ErrInvalidEnv = errors.New("config: invalid environment override")
)
