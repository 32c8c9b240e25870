// Package instruction provides the framework for applying protocol
// instructions against ledger state: a registry of instruction types, typed
// result codes, and an engine that gives every instruction all-or-nothing
// semantics through a sandboxed view.
package instruction

import (
	"fmt"
	"sync"
)

// Type identifies an instruction type.
type Type uint16

const (
	// TypeRemoveLiquidity burns LP tokens for a proportional share of both
	// pool legs.
	TypeRemoveLiquidity Type = 3
)

// String returns the instruction type name.
func (t Type) String() string {
	switch t {
	case TypeRemoveLiquidity:
		return "RemoveLiquidity"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(t))
	}
}

// Instruction is a single protocol state transition.
type Instruction interface {
	// InstrType returns the instruction type.
	InstrType() Type

	// Validate performs static validation, before any state access.
	Validate() error

	// Apply applies the instruction to ledger state through the context's
	// sandboxed view. A non-success result aborts the whole call; nothing the
	// instruction wrote is persisted.
	Apply(ctx *ApplyContext) Result
}

// Factory creates a new empty instruction of a registered type.
type Factory func() Instruction

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]Factory)
)

// Register registers an instruction factory. Called from package init().
func Register(t Type, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[t]; dup {
		panic(fmt.Sprintf("instruction: duplicate registration for %s", t))
	}
	registry[t] = f
}

// New creates an empty instruction of the given type, or nil if unregistered.
func New(t Type) Instruction {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if f, ok := registry[t]; ok {
		return f()
	}
	return nil
}
