package ledger

import (
	"github.com/solkeen/marinade-anchor/internal/core/ledger/keylet"
)

type trackedAction int

const (
	actionCache trackedAction = iota
	actionInsert
	actionModify
	actionErase
)

// trackedEntry records the buffered fate of one ledger entry.
type trackedEntry struct {
	keylet  keylet.Keylet
	action  trackedAction
	current []byte // nil after erase
}

// Sandbox wraps a base View and buffers every modification. Nothing reaches
// the base until Changes() is replayed onto it, so an instruction that fails
// mid-settlement leaves the base untouched: the caller simply discards the
// sandbox.
type Sandbox struct {
	base  View
	items map[[32]byte]*trackedEntry
}

// NewSandbox creates a sandbox over the given base view.
func NewSandbox(base View) *Sandbox {
	return &Sandbox{
		base:  base,
		items: make(map[[32]byte]*trackedEntry),
	}
}

// Read reads an entry, consulting buffered modifications first.
func (s *Sandbox) Read(k keylet.Keylet) ([]byte, error) {
	if e, ok := s.items[k.Key]; ok {
		if e.action == actionErase {
			return nil, ErrNotFound
		}
		return e.current, nil
	}
	data, err := s.base.Read(k)
	if err != nil {
		return nil, err
	}
	s.items[k.Key] = &trackedEntry{keylet: k, action: actionCache, current: data}
	return data, nil
}

// Exists checks whether an entry exists in the buffered state.
func (s *Sandbox) Exists(k keylet.Keylet) (bool, error) {
	if e, ok := s.items[k.Key]; ok {
		return e.action != actionErase, nil
	}
	return s.base.Exists(k)
}

// Insert buffers the creation of a new entry.
func (s *Sandbox) Insert(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrEntryExists
	}
	s.items[k.Key] = &trackedEntry{keylet: k, action: actionInsert, current: data}
	return nil
}

// Update buffers the modification of an existing entry.
func (s *Sandbox) Update(k keylet.Keylet, data []byte) error {
	if e, ok := s.items[k.Key]; ok && e.action != actionCache {
		if e.action == actionErase {
			return ErrNotFound
		}
		// keep the original action: an inserted entry stays an insert
		e.current = data
		return nil
	}
	exists, err := s.base.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	s.items[k.Key] = &trackedEntry{keylet: k, action: actionModify, current: data}
	return nil
}

// Erase buffers the deletion of an entry.
func (s *Sandbox) Erase(k keylet.Keylet) error {
	if e, ok := s.items[k.Key]; ok {
		if e.action == actionErase {
			return ErrNotFound
		}
		if e.action == actionInsert {
			// never existed in the base
			delete(s.items, k.Key)
			return nil
		}
		e.action = actionErase
		e.current = nil
		return nil
	}
	exists, err := s.base.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	s.items[k.Key] = &trackedEntry{keylet: k, action: actionErase}
	return nil
}

// Changes returns the buffered modifications, read-only entries excluded.
func (s *Sandbox) Changes() []Change {
	changes := make([]Change, 0, len(s.items))
	for _, e := range s.items {
		switch e.action {
		case actionInsert:
			changes = append(changes, Change{Keylet: e.keylet, Action: ActionInsert, Data: e.current})
		case actionModify:
			changes = append(changes, Change{Keylet: e.keylet, Action: ActionModify, Data: e.current})
		case actionErase:
			changes = append(changes, Change{Keylet: e.keylet, Action: ActionErase})
		}
	}
	return changes
}
