package domain

import "errors"

// ErrDuplicateKey is returned by repositories when a unique constraint rejects a write.
var ErrDuplicateKey = errors.New("duplicate key")
