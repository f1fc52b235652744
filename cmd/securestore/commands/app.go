package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bitfsorg/securestore-go/cipher"
	"github.com/bitfsorg/securestore-go/config"
	"github.com/bitfsorg/securestore-go/fsstore"
	"github.com/bitfsorg/securestore-go/kvstore"
	"github.com/bitfsorg/securestore-go/logging"
	"github.com/bitfsorg/securestore-go/storage"
)

// File names inside the data directory.
const (
	masterKeyFile = "master.key"
	saltFile      = "password.salt"
	boltFile      = "kv.db"
	sqliteFile    = "kv.sqlite"
)

// app holds the state shared by every command. Stores are opened on first
// use so that commands which need neither never touch key material.
type app struct {
	dataDir    string
	configPath string
	password   string

	cfg       config.Config
	log       zerolog.Logger
	logCloser io.Closer

	lock      *storage.DirLock
	provider  cipher.Provider
	keyLoaded bool
	kv        *kvstore.Store
	fs        *fsstore.Store
}

// load resolves the configuration: defaults, then the config file, then
// SECURESTORE_* variables, then command-line flags.
func (a *app) load() error {
	dataDir := a.dataDir
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	if a.configPath == "" {
		a.configPath = config.ConfigPath(dataDir)
	}

	cfg, err := config.LoadConfig(a.configPath)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return err
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if a.password == "" {
		a.password = os.Getenv(config.EnvPrefix + "PASSWORD")
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	l, closer, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	a.log = l
	a.logCloser = closer
	return nil
}

// lockDataDir creates the data directory and holds its lock until close,
// so concurrent invocations never interleave key creation or writes.
func (a *app) lockDataDir() error {
	if a.lock != nil {
		return nil
	}
	if err := os.MkdirAll(a.cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrIOFailure, err)
	}
	l, err := storage.TryLockDir(a.cfg.DataDir)
	if errors.Is(err, storage.ErrLocked) {
		a.log.Info().Str("datadir", a.cfg.DataDir).Msg("waiting for data directory lock")
		l, err = storage.LockDir(a.cfg.DataDir)
	}
	if err != nil {
		return err
	}
	a.lock = l
	return nil
}

// cipherProvider builds the provider from the configured key source, or
// returns nil for the "none" source.
func (a *app) cipherProvider() (cipher.Provider, error) {
	if a.keyLoaded {
		return a.provider, nil
	}

	var source cipher.KeySource
	switch strings.ToLower(a.cfg.KeySource) {
	case "none":
		a.keyLoaded = true
		return nil, nil
	case "keyfile":
		source = cipher.NewKeyFile(filepath.Join(a.cfg.DataDir, masterKeyFile))
	case "password":
		if a.password == "" {
			return nil, errors.New("password required (-p or SECURESTORE_PASSWORD)")
		}
		pk, err := cipher.NewPasswordKeyFile(a.password, filepath.Join(a.cfg.DataDir, saltFile), cipher.DefaultArgon2Params)
		if err != nil {
			return nil, err
		}
		source = pk
	case "secp256k1":
		privHex := os.Getenv(config.EnvPrefix + "PRIVATE_KEY")
		if privHex == "" {
			return nil, errors.New("private key required (SECURESTORE_PRIVATE_KEY)")
		}
		ek, err := cipher.NewECDHKeyFromHex(privHex)
		if err != nil {
			return nil, err
		}
		source = ek
	default:
		return nil, config.ErrInvalidKeySource
	}

	suite, err := cipher.ParseSuite(a.cfg.Cipher)
	if err != nil {
		return nil, err
	}
	p, err := cipher.NewAEAD(source, suite)
	if err != nil {
		return nil, err
	}
	a.provider = p
	a.keyLoaded = true
	a.log.Debug().Str("keysource", a.cfg.KeySource).Str("cipher", suite.String()).Msg("cipher ready")
	return p, nil
}

func (a *app) kvStore() (*kvstore.Store, error) {
	if a.kv != nil {
		return a.kv, nil
	}
	if err := a.lockDataDir(); err != nil {
		return nil, err
	}

	var backend storage.KVBackend
	switch strings.ToLower(a.cfg.KVBackend) {
	case "bolt":
		b, err := storage.OpenBoltKV(filepath.Join(a.cfg.DataDir, boltFile))
		if err != nil {
			return nil, err
		}
		backend = b
	case "sqlite":
		b, err := storage.OpenSQLiteKV(filepath.Join(a.cfg.DataDir, sqliteFile))
		if err != nil {
			return nil, err
		}
		backend = b
	case "memory":
		backend = storage.NewMemoryKV()
	default:
		return nil, config.ErrInvalidKVBackend
	}

	provider, err := a.cipherProvider()
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	s, err := kvstore.New(backend, provider, kvstore.WithLogger(a.log))
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	a.kv = s
	return s, nil
}

func (a *app) fileStore() (*fsstore.Store, error) {
	if a.fs != nil {
		return a.fs, nil
	}
	if err := a.lockDataDir(); err != nil {
		return nil, err
	}

	compression, err := storage.ParseCompression(a.cfg.Compression)
	if err != nil {
		return nil, err
	}
	provider, err := a.cipherProvider()
	if err != nil {
		return nil, err
	}
	s, err := fsstore.New(a.cfg.FileRoots(), storage.NewOSFiles(), provider,
		fsstore.WithLogger(a.log),
		fsstore.WithCompression(compression),
		fsstore.WithEncryption(a.cfg.EncryptFiles),
	)
	if err != nil {
		return nil, err
	}
	a.fs = s
	return s, nil
}

func (a *app) close() error {
	var errs []error
	if a.kv != nil {
		errs = append(errs, a.kv.Close())
	}
	a.lock.Unlock()
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}
