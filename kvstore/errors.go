package kvstore

import "errors"

// ErrInvalidKey indicates an empty, oversized or non-UTF-8 key.
var ErrInvalidKey = errors.New("kvstore: invalid key")
