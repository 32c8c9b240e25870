// Package ledger defines read/write access to ledger state and the buffered
// sandbox that gives each instruction all-or-nothing semantics.
package ledger

import (
	"errors"

	"github.com/solkeen/marinade-anchor/internal/core/ledger/keylet"
)

// ErrNotFound is returned when a keylet has no entry.
var ErrNotFound = errors.New("ledger: entry not found")

// ErrEntryExists is returned when inserting over an existing entry.
var ErrEntryExists = errors.New("ledger: entry already exists")

// View provides read/write access to ledger state.
type View interface {
	// Read reads a ledger entry.
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists.
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry.
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry.
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry.
	Erase(k keylet.Keylet) error
}

// Action represents the type of modification to a ledger entry.
type Action int

const (
	// ActionInsert means a new entry was created.
	ActionInsert Action = iota
	// ActionModify means an existing entry was modified.
	ActionModify
	// ActionErase means an entry was deleted.
	ActionErase
)

// Change is one buffered modification, ready to be committed to a base view.
type Change struct {
	Keylet keylet.Keylet
	Action Action
	Data   []byte // nil for ActionErase
}

// Committer is implemented by base views that can apply a change set
// atomically (e.g. the pebble-backed state store).
type Committer interface {
	Commit(changes []Change) error
}

// ApplyChanges replays a change set onto a view entry by entry. It is the
// fallback for base views without a Committer; the in-memory view used in
// tests has no failure paths, so entry-by-entry replay is still atomic in
// effect.
func ApplyChanges(v View, changes []Change) error {
	for _, c := range changes {
		var err error
		switch c.Action {
		case ActionInsert:
			err = v.Insert(c.Keylet, c.Data)
		case ActionModify:
			err = v.Update(c.Keylet, c.Data)
		case ActionErase:
			err = v.Erase(c.Keylet)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
