// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"KVBackend", cfg.KVBackend, "bolt"},
		{"Cipher", cfg.Cipher, "aes-256-gcm"},
		{"KeySource", cfg.KeySource, "keyfile"},
		{"EncryptFiles", cfg.EncryptFiles, true},
		{"Compression", cfg.Compression, "none"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	// The full DataDir depends on the home directory.
	if cfg.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
	if len(cfg.Roots) != 0 {
		t.Errorf("Roots = %v, want none", cfg.Roots)
	}
}

func TestFileRoots(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/srv/store"

	got := cfg.FileRoots()
	if len(got) != 1 || got[0] != filepath.Join("/srv/store", "files") {
		t.Errorf("FileRoots() = %v, want [%s]", got, filepath.Join("/srv/store", "files"))
	}

	cfg.Roots = []string{"/a", "/b"}
	got = cfg.FileRoots()
	if len(got) != 2 || got[0] != "/a" || got[1] != "/b" {
		t.Errorf("FileRoots() = %v, want [/a /b]", got)
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	original := Config{
		DataDir:      "/tmp/test-securestore",
		Roots:        []string{"/tmp/docs", "/tmp/cache"},
		KVBackend:    "sqlite",
		Cipher:       "chacha20-poly1305",
		KeySource:    "password",
		EncryptFiles: false,
		Compression:  "gzip",
		LogLevel:     "debug",
		LogFile:      "/tmp/securestore.log",
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"DataDir", loaded.DataDir, original.DataDir},
		{"Roots", strings.Join(loaded.Roots, ","), "/tmp/docs,/tmp/cache"},
		{"KVBackend", loaded.KVBackend, original.KVBackend},
		{"Cipher", loaded.Cipher, original.Cipher},
		{"KeySource", loaded.KeySource, original.KeySource},
		{"EncryptFiles", loaded.EncryptFiles, original.EncryptFiles},
		{"Compression", loaded.Compression, original.Compression},
		{"LogLevel", loaded.LogLevel, original.LogLevel},
		{"LogFile", loaded.LogFile, original.LogFile},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config")

	cfg := DefaultConfig()
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Config file not created: %v", err)
	}
}

// ---------------------------------------------------------------------------
// LoadConfig error tests
// ---------------------------------------------------------------------------

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	content := "this-is-not-key-value\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfigLine) {
		t.Errorf("LoadConfig bad line: got %v, want ErrInvalidConfigLine", err)
	}
}

func TestLoadConfigCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	content := `# This is a comment
kvbackend = sqlite

# Another comment
loglevel = debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.KVBackend != "sqlite" {
		t.Errorf("KVBackend = %q, want %q", cfg.KVBackend, "sqlite")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	// Unset fields should retain defaults.
	if cfg.Cipher != "aes-256-gcm" {
		t.Errorf("Cipher = %q, want default %q", cfg.Cipher, "aes-256-gcm")
	}
}

func TestLoadConfigUnknownKeysIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	content := "futurekey = futurevalue\nkvbackend = memory\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig with unknown key: %v", err)
	}
	if cfg.KVBackend != "memory" {
		t.Errorf("KVBackend = %q, want %q", cfg.KVBackend, "memory")
	}
}

func TestLoadConfigBadBool(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	if err := os.WriteFile(path, []byte("encryptfiles = maybe\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfigLine) {
		t.Errorf("LoadConfig bad bool: got %v, want ErrInvalidConfigLine", err)
	}
}

// ---------------------------------------------------------------------------
// YAML tests
// ---------------------------------------------------------------------------

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `datadir: /srv/securestore
roots:
  - /srv/docs
  - /srv/cache
kvbackend: sqlite
encryptfiles: false
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DataDir != "/srv/securestore" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "/srv/securestore")
	}
	if len(cfg.Roots) != 2 || cfg.Roots[1] != "/srv/cache" {
		t.Errorf("Roots = %v, want [/srv/docs /srv/cache]", cfg.Roots)
	}
	if cfg.KVBackend != "sqlite" {
		t.Errorf("KVBackend = %q, want %q", cfg.KVBackend, "sqlite")
	}
	if cfg.EncryptFiles {
		t.Error("EncryptFiles = true, want false")
	}
	if cfg.Cipher != "aes-256-gcm" {
		t.Errorf("Cipher = %q, want default %q", cfg.Cipher, "aes-256-gcm")
	}
}

func TestLoadConfigYAMLInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	if err := os.WriteFile(path, []byte("roots: [unterminated\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidYAML) {
		t.Errorf("LoadConfig bad yaml: got %v, want ErrInvalidYAML", err)
	}
}

// ---------------------------------------------------------------------------
// ApplyEnv tests
// ---------------------------------------------------------------------------

func TestApplyEnv(t *testing.T) {
	t.Setenv("SECURESTORE_KV_BACKEND", "memory")
	t.Setenv("SECURESTORE_ROOTS", "/x,/y")
	t.Setenv("SECURESTORE_ENCRYPT_FILES", "false")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.KVBackend != "memory" {
		t.Errorf("KVBackend = %q, want %q", cfg.KVBackend, "memory")
	}
	if len(cfg.Roots) != 2 || cfg.Roots[0] != "/x" || cfg.Roots[1] != "/y" {
		t.Errorf("Roots = %v, want [/x /y]", cfg.Roots)
	}
	if cfg.EncryptFiles {
		t.Error("EncryptFiles = true, want false")
	}
	// Unset variables leave fields alone.
	if cfg.Cipher != "aes-256-gcm" {
		t.Errorf("Cipher = %q, want %q", cfg.Cipher, "aes-256-gcm")
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("SECURESTORE_ENCRYPT_FILES", "sometimes")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); !errors.Is(err, ErrInvalidEnv) {
		t.Errorf("ApplyEnv: got %v, want ErrInvalidEnv", err)
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "empty_datadir",
			modify:  func(c *Config) { c.DataDir = "" },
			wantErr: ErrEmptyDataDir,
		},
		{
			name:    "relative_root",
			modify:  func(c *Config) { c.Roots = []string{"/ok", "rel"} },
			wantErr: ErrInvalidRoot,
		},
		{
			name:    "bad_kvbackend",
			modify:  func(c *Config) { c.KVBackend = "redis" },
			wantErr: ErrInvalidKVBackend,
		},
		{
			name:    "bad_cipher",
			modify:  func(c *Config) { c.Cipher = "des" },
			wantErr: ErrInvalidCipher,
		},
		{
			name:    "bad_keysource",
			modify:  func(c *Config) { c.KeySource = "hsm" },
			wantErr: ErrInvalidKeySource,
		},
		{
			name:    "encrypt_without_key",
			modify:  func(c *Config) { c.KeySource = "none" },
			wantErr: ErrEncryptionWithoutKey,
		},
		{
			name:    "bad_compression",
			modify:  func(c *Config) { c.Compression = "zstd" },
			wantErr: ErrInvalidCompression,
		},
		{
			name:    "bad_loglevel",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigValidBackends(t *testing.T) {
	for _, backend := range []string{"bolt", "sqlite", "memory"} {
		cfg := DefaultConfig()
		cfg.KVBackend = backend
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with kvbackend %q: %v", backend, err)
		}
	}
}

func TestValidateConfigNoKeyUnencrypted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeySource = "none"
	cfg.EncryptFiles = false
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("ValidateConfig with keysource none: %v", err)
	}
}

func TestValidateConfigValidLogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := DefaultConfig()
		cfg.LogLevel = level
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with loglevel %q: %v", level, err)
		}
	}
}

// ---------------------------------------------------------------------------
// ConfigPath tests
// ---------------------------------------------------------------------------

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/home/user/.securestore")
	want := filepath.Join("/home/user/.securestore", "config")
	if got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Supplementary tests: DefaultDataDir
// ---------------------------------------------------------------------------

func TestDefaultDataDir_EndsWith_DotSecurestore(t *testing.T) {
	dir := DefaultDataDir()
	if !strings.HasSuffix(dir, ".securestore") {
		t.Errorf("DefaultDataDir() = %q, want suffix %q", dir, ".securestore")
	}
}

// ---------------------------------------------------------------------------
// Supplementary tests: LoadConfig parser edge cases
// ---------------------------------------------------------------------------

func TestLoadConfig_EmptyValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	content := "logfile=\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogFile != "" {
		t.Errorf("LogFile = %q, want empty string", cfg.LogFile)
	}
}

func TestLoadConfig_MultipleEquals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	// The value "/tmp/a=b.log" contains an extra '='.
	// parseKeyValue should split on the first '=' only.
	content := "logfile=/tmp/a=b.log\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogFile != "/tmp/a=b.log" {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, "/tmp/a=b.log")
	}
}

func TestLoadConfig_WhitespaceAroundEquals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	// Leading/trailing whitespace on the line and around '='.
	content := "  cipher = chacha20-poly1305  \n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Cipher != "chacha20-poly1305" {
		t.Errorf("Cipher = %q, want %q", cfg.Cipher, "chacha20-poly1305")
	}
}

// ---------------------------------------------------------------------------
// Supplementary tests: SaveConfig output format
// ---------------------------------------------------------------------------

func TestSaveConfig_OutputContainsHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	cfg := DefaultConfig()
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "# SecureStore Configuration") {
		t.Error("saved config should contain header '# SecureStore Configuration'")
	}
}

func TestSaveConfig_OutputContainsAllKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	cfg := Config{
		DataDir:   "/data",
		Roots:     []string{"/data/files"},
		KVBackend: "bolt",
		LogLevel:  "warn",
		LogFile:   "/var/log/securestore.log",
	}
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)

	keys := []string{"datadir", "roots", "kvbackend", "cipher", "keysource", "encryptfiles", "compression", "loglevel", "logfile"}
	for _, key := range keys {
		if !strings.Contains(content, key+" = ") {
			t.Errorf("saved config should contain key %q", key)
		}
	}
}

// ---------------------------------------------------------------------------
// Supplementary tests: ValidateConfig boundary cases
// ---------------------------------------------------------------------------

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	// ValidateConfig lowercases the log level before lookup,
	// so mixed-case values should be accepted.
	levels := []string{"INFO", "Debug", "WARN", "Error", "dEbUg"}
	for _, level := range levels {
		t.Run(level, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogLevel = level
			if err := ValidateConfig(cfg); err != nil {
				t.Errorf("ValidateConfig with LogLevel %q: %v", level, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Supplementary tests: LoadConfig error paths
// ---------------------------------------------------------------------------

func TestLoadConfig_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission test not reliable on Windows")
	}
	if os.Getuid() == 0 {
		t.Skip("cannot test permission denial as root")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	if err := os.WriteFile(path, []byte("loglevel=debug\n"), 0600); err != nil {
		t.Fatal(err)
	}
	// Remove read permission.
	if err := os.Chmod(path, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(path, 0600) })

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig on unreadable file: expected error, got nil")
	}
	// The file exists, so this must not be ErrConfigNotFound.
	if errors.Is(err, ErrConfigNotFound) {
		t.Error("LoadConfig on unreadable file should not return ErrConfigNotFound")
	}
}

// ---------------------------------------------------------------------------
// Supplementary tests: ConfigPath
// ---------------------------------------------------------------------------

func TestConfigPath_WithTrailingSlash(t *testing.T) {
	got := ConfigPath("/foo/")
	want := filepath.Join("/foo", "config")
	if got != want {
		t.Errorf("ConfigPath(%q) = %q, want %q", "/foo/", got, want)
	}
}
