package fsstore

import (
	"encoding/base64"
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/bitfsorg/securestore-go/storage"
)

// Save writes data to path, creating intermediate directories. The content
// is encrypted first when encryption is enabled.
func (s *Store) Save(path string, data []byte) error {
	p, err := s.ensureWhiteListedPath(path, true)
	if err != nil {
		return err
	}
	encrypt := s.encrypt.Load()

	payload, err := s.seal(data, encrypt)
	if err != nil {
		return err
	}
	if err := s.backend.Write(p, payload); err != nil {
		return ioError("save", p, err)
	}
	s.log.Debug().Str("path", p).Int("size", len(data)).Bool("encrypted", encrypt).Msg("save")
	return nil
}

// Read returns the content of path, decrypting it when encryption is
// enabled. A missing file yields (nil, false, nil).
func (s *Store) Read(path string) ([]byte, bool, error) {
	p, err := s.ensureWhiteListedPath(path, false)
	if err != nil {
		return nil, false, err
	}
	return s.read(p)
}

func (s *Store) read(p string) ([]byte, bool, error) {
	encrypt := s.encrypt.Load()

	raw, err := s.backend.Read(p)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ioError("read", p, err)
	}

	data, err := s.open(raw, encrypt)
	if err != nil {
		s.log.Warn().Str("path", p).Err(err).Msg("stored content failed to open")
		return nil, false, err
	}
	return data, true, nil
}

// ReadAsText returns the content of path as a string.
func (s *Store) ReadAsText(path string) (string, bool, error) {
	data, found, err := s.Read(path)
	if err != nil || !found {
		return "", found, err
	}
	return string(data), true, nil
}

// ReadAsDataURL returns the content of path as a base64 data URL. The MIME
// type comes from the file extension, falling back to content sniffing.
func (s *Store) ReadAsDataURL(path string) (string, bool, error) {
	data, found, err := s.Read(path)
	if err != nil || !found {
		return "", found, err
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), true, nil
}

// Exists reports whether a file or directory exists at path.
func (s *Store) Exists(path string) (bool, error) {
	p, err := s.ensureWhiteListedPath(path, false)
	if err != nil {
		return false, err
	}
	_, err = s.backend.Stat(p)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, ioError("stat", p, err)
	}
	return true, nil
}

// List returns the names of the immediate children of the directory at
// path. A missing directory, or a path naming a regular file, yields an
// empty slice.
func (s *Store) List(path string) ([]string, error) {
	p, err := s.ensureWhiteListedPath(path, false)
	if err != nil {
		return nil, err
	}

	info, err := s.backend.Stat(p)
	if errors.Is(err, storage.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, ioError("list", p, err)
	}
	if !info.IsDir {
		return []string{}, nil
	}

	names, err := s.backend.ListDir(p)
	if errors.Is(err, storage.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, ioError("list", p, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Remove deletes the file or directory tree at path. A missing path is not
// an error.
func (s *Store) Remove(path string) error {
	p, err := s.ensureWhiteListedPath(path, true)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(p); err != nil {
		return ioError("remove", p, err)
	}
	s.log.Debug().Str("path", p).Msg("remove")
	return nil
}
