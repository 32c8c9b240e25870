// Package statestore persists ledger entries in a key/value database with an
// LRU read cache in front. It implements both ledger.View for reads and
// ledger.Committer so an instruction's buffered change set lands as one
// atomic batch.
package statestore

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/solkeen/marinade-anchor/internal/core/ledger"
	"github.com/solkeen/marinade-anchor/internal/core/ledger/keylet"
	"github.com/solkeen/marinade-anchor/internal/storage/keyValueDb"
)

// DefaultCacheSize is the number of ledger entries kept in memory when no
// size is configured.
const DefaultCacheSize = 16384

// Store is a persistent ledger view backed by a key/value database.
type Store struct {
	db    keyValueDb.DB
	cache *lru.Cache[[32]byte, []byte]
}

// New creates a store over db. cacheSize <= 0 selects DefaultCacheSize.
func New(db keyValueDb.DB, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[[32]byte, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("statestore: creating entry cache: %w", err)
	}
	return &Store{db: db, cache: cache}, nil
}

// Read reads a ledger entry, consulting the cache before the database.
func (s *Store) Read(k keylet.Keylet) ([]byte, error) {
	if data, ok := s.cache.Get(k.Key); ok {
		return append([]byte(nil), data...), nil
	}
	data, err := s.db.Read(context.Background(), k.Key[:])
	if err != nil {
		if errors.Is(err, keyValueDb.ErrKeyNotFound) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	s.cache.Add(k.Key, data)
	return append([]byte(nil), data...), nil
}

// Exists checks if an entry exists.
func (s *Store) Exists(k keylet.Keylet) (bool, error) {
	if s.cache.Contains(k.Key) {
		return true, nil
	}
	_, err := s.db.Read(context.Background(), k.Key[:])
	if err != nil {
		if errors.Is(err, keyValueDb.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Insert adds a new entry.
func (s *Store) Insert(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ledger.ErrEntryExists
	}
	return s.put(k, data)
}

// Update modifies an existing entry.
func (s *Store) Update(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return ledger.ErrNotFound
	}
	return s.put(k, data)
}

// Erase removes an entry.
func (s *Store) Erase(k keylet.Keylet) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return ledger.ErrNotFound
	}
	if err := s.db.Delete(context.Background(), k.Key[:]); err != nil {
		return err
	}
	s.cache.Remove(k.Key)
	return nil
}

func (s *Store) put(k keylet.Keylet, data []byte) error {
	stored := append([]byte(nil), data...)
	if err := s.db.Write(context.Background(), k.Key[:], stored); err != nil {
		return err
	}
	s.cache.Add(k.Key, stored)
	return nil
}

// Commit applies an instruction's change set as a single batch. The cache is
// updated only after the batch lands, so a failed commit leaves reads
// consistent with the database.
func (s *Store) Commit(changes []ledger.Change) error {
	ops := make([]keyValueDb.BatchOperation, 0, len(changes))
	for _, c := range changes {
		switch c.Action {
		case ledger.ActionInsert, ledger.ActionModify:
			ops = append(ops, keyValueDb.BatchOperation{
				Type:  keyValueDb.BatchPut,
				Key:   append([]byte(nil), c.Keylet.Key[:]...),
				Value: append([]byte(nil), c.Data...),
			})
		case ledger.ActionErase:
			ops = append(ops, keyValueDb.BatchOperation{
				Type: keyValueDb.BatchDelete,
				Key:  append([]byte(nil), c.Keylet.Key[:]...),
			})
		}
	}
	if err := s.db.Batch(context.Background(), ops); err != nil {
		return err
	}
	for _, c := range changes {
		if c.Action == ledger.ActionErase {
			s.cache.Remove(c.Keylet.Key)
			continue
		}
		s.cache.Add(c.Keylet.Key, append([]byte(nil), c.Data...))
	}
	return nil
}
