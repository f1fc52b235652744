// Package logging builds the zerolog loggers used across SecureStore.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalidLevel indicates the level name is not a zerolog level.
var ErrInvalidLevel = errors.New("logging: invalid level")

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger at level. With an empty file the logger writes
// human-readable lines to stderr; otherwise it appends JSON lines to file,
// which the caller closes through the returned io.Closer.
func New(level, file string) (zerolog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	if file == "" {
		return NewWriter(zerolog.ConsoleWriter{Out: os.Stderr}, lvl), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("logging: create log directory: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("logging: open %s: %w", file, err)
	}
	return NewWriter(f, lvl), f, nil
}

// NewWriter returns a timestamped logger writing to w at level.
func NewWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ParseLevel maps a config level name to a zerolog level. An empty name
// means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
	return lvl, nil
}
