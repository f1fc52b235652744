package fsstore

import "errors"

var (
	// ErrNoRoots indicates the store was constructed without allowed roots.
	ErrNoRoots = errors.New("fsstore: at least one allowed root is required")

	// ErrInvalidRoot indicates an allowed root is not an absolute path or
	// cannot be created.
	ErrInvalidRoot = errors.New("fsstore: invalid allowed root")

	// ErrNoProvider indicates encryption was requested without a cipher provider.
	ErrNoProvider = errors.New("fsstore: encryption requires a cipher provider")

	// ErrMoveIntoSelf indicates a directory move whose target lies inside
	// the source.
	ErrMoveIntoSelf = errors.New("fsstore: cannot move a directory into itself")

	// ErrCopyMismatch indicates a copied file did not read back identically.
	ErrCopyMismatch = errors.New("fsstore: copy verification failed")
)
