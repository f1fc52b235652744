// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and validates SecureStore settings.
//
// Settings live in a plain "key = value" file under the data directory, or
// in a YAML file when the path ends in .yaml or .yml. Environment variables
// prefixed SECURESTORE_ override either.
package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SECURESTORE_"

// Config holds SecureStore settings.
type Config struct {
	DataDir      string   `yaml:"datadir" env:"DATADIR"`
	Roots        []string `yaml:"roots" env:"ROOTS"`
	KVBackend    string   `yaml:"kvbackend" env:"KV_BACKEND"`
	Cipher       string   `yaml:"cipher" env:"CIPHER"`
	KeySource    string   `yaml:"keysource" env:"KEY_SOURCE"`
	EncryptFiles bool     `yaml:"encryptfiles" env:"ENCRYPT_FILES"`
	Compression  string   `yaml:"compression" env:"COMPRESSION"`
	LogLevel     string   `yaml:"loglevel" env:"LOG_LEVEL"`
	LogFile      string   `yaml:"logfile" env:"LOG_FILE"`
}

// DefaultDataDir returns ~/.securestore, or .securestore in the working
// directory when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".securestore"
	}
	return filepath.Join(home, ".securestore")
}

// DefaultConfig returns the built-in settings. With no roots configured the
// file store is confined to <datadir>/files.
func DefaultConfig() Config {
	return Config{
		DataDir:      DefaultDataDir(),
		KVBackend:    "bolt",
		Cipher:       "aes-256-gcm",
		KeySource:    "keyfile",
		EncryptFiles: true,
		Compression:  "none",
		LogLevel:     "info",
	}
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// FileRoots returns the allowed roots of the file store.
func (c Config) FileRoots() []string {
	if len(c.Roots) > 0 {
		return c.Roots
	}
	return []string{filepath.Join(c.DataDir, "files")}
}

// LoadConfig reads path over DefaultConfig. Unset keys keep their defaults
// and unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
		}
		return cfg, nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("%w: line %d: %w", ErrInvalidConfigLine, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits a line on its first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return strings.ToLower(key), strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "roots":
		c.Roots = splitList(value)
	case "kvbackend":
		c.KVBackend = value
	case "cipher":
		c.Cipher = value
	case "keysource":
		c.KeySource = value
	case "encryptfiles":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("encryptfiles: %w", err)
		}
		c.EncryptFiles = b
	case "compression":
		c.Compression = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SaveConfig writes cfg to path in key = value form, creating the parent
// directory. The file is readable by its owner only.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# SecureStore Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "roots = %s\n", strings.Join(cfg.Roots, ","))
	fmt.Fprintf(&b, "kvbackend = %s\n", cfg.KVBackend)
	fmt.Fprintf(&b, "cipher = %s\n", cfg.Cipher)
	fmt.Fprintf(&b, "keysource = %s\n", cfg.KeySource)
	fmt.Fprintf(&b, "encryptfiles = %t\n", cfg.EncryptFiles)
	fmt.Fprintf(&b, "compression = %s\n", cfg.Compression)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields of cfg from SECURESTORE_* environment
// variables. Unset variables leave the field alone; SECURESTORE_ROOTS is
// comma separated.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEnv, err)
	}
	return nil
}
