package keybackend

import "errors"

// ErrKeyNotFound is returned when the uid does not exist in the store.
var ErrKeyNotFound = errors.New("uid not found")
