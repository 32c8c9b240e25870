package ledger

import (
	"sync"

	"github.com/solkeen/marinade-anchor/internal/core/ledger/keylet"
)

// MemoryView is a map-backed base view for tests and genesis construction.
type MemoryView struct {
	mu      sync.RWMutex
	entries map[[32]byte][]byte
}

// NewMemoryView creates an empty in-memory view.
func NewMemoryView() *MemoryView {
	return &MemoryView{entries: make(map[[32]byte][]byte)}
}

// Read reads a ledger entry.
func (m *MemoryView) Read(k keylet.Keylet) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.entries[k.Key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Exists checks if an entry exists.
func (m *MemoryView) Exists(k keylet.Keylet) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[k.Key]
	return ok, nil
}

// Insert adds a new entry.
func (m *MemoryView) Insert(k keylet.Keylet, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[k.Key]; ok {
		return ErrEntryExists
	}
	m.entries[k.Key] = append([]byte(nil), data...)
	return nil
}

// Update modifies an existing entry.
func (m *MemoryView) Update(k keylet.Keylet, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[k.Key]; !ok {
		return ErrNotFound
	}
	m.entries[k.Key] = append([]byte(nil), data...)
	return nil
}

// Erase removes an entry.
func (m *MemoryView) Erase(k keylet.Keylet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[k.Key]; !ok {
		return ErrNotFound
	}
	delete(m.entries, k.Key)
	return nil
}
