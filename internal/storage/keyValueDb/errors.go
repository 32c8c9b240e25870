package keyValueDb

import "errors"

var (
	// ErrKeyNotFound is returned when a key has no value.
	ErrKeyNotFound = errors.New("keyValueDb: key not found")

	// ErrClosed is returned when operating on a closed database.
	ErrClosed = errors.New("keyValueDb: database closed")
)
