// Package pebble implements keyValueDb.DB on top of cockroachdb/pebble.
package pebble

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/cockroachdb/pebble"

	"github.com/solkeen/marinade-anchor/internal/storage/keyValueDb"
)

// DB is a pebble-backed key-value database.
type DB struct {
	db   *pebble.DB
	open atomic.Bool
}

// Open opens (or creates) a pebble database at the given path.
func Open(path string) (*DB, error) {
	pdb, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	d := &DB{db: pdb}
	d.open.Store(true)
	return d, nil
}

// Read retrieves the value stored under key.
func (d *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if !d.open.Load() {
		return nil, keyValueDb.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, closer, err := d.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, keyValueDb.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Write stores value under key.
func (d *DB) Write(ctx context.Context, key []byte, value []byte) error {
	if !d.open.Load() {
		return keyValueDb.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.Set(key, value, pebble.Sync)
}

// Delete removes key.
func (d *DB) Delete(ctx context.Context, key []byte) error {
	if !d.open.Load() {
		return keyValueDb.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.db.Delete(key, pebble.Sync)
}

// Batch applies all operations as one atomic, durable write.
func (d *DB) Batch(ctx context.Context, ops []keyValueDb.BatchOperation) error {
	if !d.open.Load() {
		return keyValueDb.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b := d.db.NewBatch()
	defer b.Close()

	for _, op := range ops {
		var err error
		switch op.Type {
		case keyValueDb.BatchPut:
			err = b.Set(op.Key, op.Value, nil)
		case keyValueDb.BatchDelete:
			err = b.Delete(op.Key, nil)
		}
		if err != nil {
			return err
		}
	}
	return d.db.Apply(b, pebble.Sync)
}

// Close flushes and closes the database.
func (d *DB) Close() error {
	if !d.open.CompareAndSwap(true, false) {
		return nil
	}
	if err := d.db.Flush(); err != nil {
		d.db.Close()
		return err
	}
	return d.db.Close()
}
