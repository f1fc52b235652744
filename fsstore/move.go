package fsstore

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bitfsorg/securestore-go/storage"
)

// Move renames the file or directory at from to to. Both paths must pass
// the allow-list check before the backend is touched. When the backend
// cannot rename across devices, the tree is copied byte for byte, verified
// and only then removed from its old location. Stored bytes are moved as
// they are, so a move never depends on the encryption flag.
func (s *Store) Move(from, to string) error {
	cleanFrom, err := s.lexicalPath(from)
	if err != nil {
		s.logRejected(from, err)
		return err
	}
	cleanTo, err := s.lexicalPath(to)
	if err != nil {
		s.logRejected(to, err)
		return err
	}

	src, err := s.resolvePath(from, cleanFrom, true)
	if err != nil {
		s.logRejected(from, err)
		return err
	}
	dst, err := s.resolvePath(to, cleanTo, true)
	if err != nil {
		s.logRejected(to, err)
		return err
	}

	if src == dst {
		return nil
	}
	info, err := s.backend.Stat(src)
	if err != nil {
		return ioError("move", src, err)
	}
	if info.IsDir && within(dst, src) {
		return fmt.Errorf("%w: %s -> %s", ErrMoveIntoSelf, src, dst)
	}

	err = s.backend.Rename(src, dst)
	if errors.Is(err, storage.ErrCrossDevice) {
		s.log.Debug().Str("from", src).Str("to", dst).Msg("rename crosses devices, copying")
		err = s.copyThenDelete(src, dst, info)
	}
	if err != nil {
		return ioError("move", src, err)
	}
	s.log.Debug().Str("from", src).Str("to", dst).Msg("move")
	return nil
}

// copyThenDelete emulates a rename by copying src onto dst. On failure only
// the entries this copy created are removed, so an existing destination and
// the source are left as they were.
func (s *Store) copyThenDelete(src, dst string, info storage.FileInfo) error {
	c := &treeCopier{backend: s.backend}
	var err error
	switch {
	case info.Symlink:
		err = fmt.Errorf("%w: cannot copy symbolic link %s across devices", storage.ErrIOFailure, src)
	case info.IsDir:
		err = c.copyTree(src, dst)
	default:
		err = c.copyFile(src, dst)
	}
	if err != nil {
		c.rollback(s)
		return err
	}
	return s.backend.Delete(src)
}

// treeCopier copies through a FileBackend and remembers which paths did not
// exist before it wrote them.
type treeCopier struct {
	backend storage.FileBackend
	created []string
}

func (c *treeCopier) exists(p string) (bool, error) {
	_, err := c.backend.Stat(p)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (c *treeCopier) copyTree(src, dst string) error {
	existed, err := c.exists(dst)
	if err != nil {
		return err
	}
	if err := c.backend.MkdirAll(dst); err != nil {
		return err
	}
	if !existed {
		c.created = append(c.created, dst)
	}

	names, err := c.backend.ListDir(src)
	if err != nil {
		return err
	}
	for _, name := range names {
		from := filepath.Join(src, name)
		to := filepath.Join(dst, name)
		info, err := c.backend.Stat(from)
		if err != nil {
			return err
		}
		switch {
		case info.Symlink:
			return fmt.Errorf("%w: cannot copy symbolic link %s across devices", storage.ErrIOFailure, from)
		case info.IsDir:
			err = c.copyTree(from, to)
		default:
			err = c.copyFile(from, to)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *treeCopier) copyFile(src, dst string) error {
	data, err := c.backend.Read(src)
	if err != nil {
		return err
	}
	existed, err := c.exists(dst)
	if err != nil {
		return err
	}
	if err := c.backend.Write(dst, data); err != nil {
		return err
	}
	if !existed {
		c.created = append(c.created, dst)
	}
	got, err := c.backend.Read(dst)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, data) {
		return fmt.Errorf("%w: %s", ErrCopyMismatch, dst)
	}
	return nil
}

func (c *treeCopier) rollback(s *Store) {
	for i := len(c.created) - 1; i >= 0; i-- {
		if err := c.backend.Delete(c.created[i]); err != nil {
			s.log.Warn().Str("path", c.created[i]).Err(err).Msg("partial copy left behind")
		}
	}
}
