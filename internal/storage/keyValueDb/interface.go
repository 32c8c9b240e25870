// Package keyValueDb defines the key-value storage abstraction the state
// store is built on.
package keyValueDb

import (
	"context"
)

// DB defines the basic operations any keyValueDb implementation must support
type DB interface {
	// Read Basic operations
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies a set of operations atomically.
	Batch(ctx context.Context, ops []BatchOperation) error

	// Close releases the underlying resources.
	Close() error
}

// BatchOperation represents a single operation in a batch
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)
