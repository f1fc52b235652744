package fsstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitfsorg/securestore-go/storage"
)

// root is one allowed root in its cleaned and symlink-resolved forms.
type root struct {
	clean    string
	resolved string
}

// newRoots cleans, creates and resolves the allowed roots once. The result
// is never modified afterwards.
func newRoots(paths []string, backend storage.FileBackend) ([]root, error) {
	if len(paths) == 0 {
		return nil, ErrNoRoots
	}

	seen := make(map[string]bool, len(paths))
	roots := make([]root, 0, len(paths))
	for _, p := range paths {
		if p == "" || !filepath.IsAbs(p) {
			return nil, fmt.Errorf("%w: %q is not an absolute path", ErrInvalidRoot, p)
		}
		clean := filepath.Clean(p)
		if err := backend.MkdirAll(clean); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidRoot, p, err)
		}
		resolved, err := backend.EvalSymlinks(clean)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidRoot, p, err)
		}
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		roots = append(roots, root{clean: clean, resolved: resolved})
	}
	return roots, nil
}

// within reports whether p equals dir or lies below it on a full path
// segment boundary: "/a/b" contains "/a/b/c" but not "/a/bc".
func within(p, dir string) bool {
	if p == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	return strings.HasPrefix(p, prefix)
}

func reject(path, reason string) error {
	return &storage.PathError{Path: path, Reason: reason}
}

// lexicalPath cleans path and checks it against the roots without touching
// the backend.
func (s *Store) lexicalPath(path string) (string, error) {
	if path == "" {
		return "", reject(path, "path is empty")
	}
	if strings.ContainsRune(path, 0) {
		return "", reject(path, "path contains NUL byte")
	}
	if !filepath.IsAbs(path) {
		return "", reject(path, "path must be absolute")
	}
	clean := filepath.Clean(path)
	for _, r := range s.roots {
		if within(clean, r.clean) || within(clean, r.resolved) {
			return clean, nil
		}
	}
	return "", reject(path, "outside allowed roots")
}

// resolvePath resolves symlinks and re-checks containment on the result.
// Reads resolve the whole path. Mutating operations resolve only the parent
// directory so that they act on a final symlink itself, never its target.
func (s *Store) resolvePath(original, clean string, mutating bool) (string, error) {
	target := clean
	if mutating {
		target = filepath.Dir(clean)
		if target == clean {
			return "", reject(original, "cannot modify the filesystem root")
		}
	}
	resolved, err := s.resolveExisting(original, target)
	if err != nil {
		return "", err
	}
	if mutating {
		resolved = filepath.Join(resolved, filepath.Base(clean))
	}

	for _, r := range s.roots {
		if !within(resolved, r.resolved) {
			continue
		}
		if mutating && (resolved == r.resolved || clean == r.clean) {
			return "", reject(original, "path is an allowed root")
		}
		return resolved, nil
	}
	return "", reject(original, "resolves outside allowed roots")
}

// resolveExisting resolves symlinks on the longest existing prefix of p and
// re-appends the missing tail.
func (s *Store) resolveExisting(original, p string) (string, error) {
	cur := p
	var rest []string
	var resolved string
	for {
		r, err := s.backend.EvalSymlinks(cur)
		if err == nil {
			resolved = r
			break
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return "", reject(original, fmt.Sprintf("cannot resolve: %v", err))
		}
		// A dangling symlink reports not-found but must not be followed.
		if _, statErr := s.backend.Stat(cur); statErr == nil {
			return "", reject(original, "dangling symbolic link")
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", reject(original, "cannot resolve")
		}
		rest = append(rest, filepath.Base(cur))
		cur = parent
	}
	for i := len(rest) - 1; i >= 0; i-- {
		resolved = filepath.Join(resolved, rest[i])
	}
	return resolved, nil
}

// ensureWhiteListedPath is the single gate every operation passes through.
// It returns the normalized path to hand to the backend.
func (s *Store) ensureWhiteListedPath(path string, mutating bool) (string, error) {
	clean, err := s.lexicalPath(path)
	if err != nil {
		s.logRejected(path, err)
		return "", err
	}
	resolved, err := s.resolvePath(path, clean, mutating)
	if err != nil {
		s.logRejected(path, err)
		return "", err
	}
	return resolved, nil
}

func (s *Store) logRejected(path string, err error) {
	var pe *storage.PathError
	reason := err.Error()
	if errors.As(err, &pe) {
		reason = pe.Reason
	}
	s.log.Warn().Str("path", path).Str("reason", reason).Msg("path rejected")
}
