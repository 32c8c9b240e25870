package instruction

import (
	"go.uber.org/zap"

	"github.com/solkeen/marinade-anchor/internal/core/ledger"
	"github.com/solkeen/marinade-anchor/internal/core/state"
)

// Metadata carries the amounts an instruction emitted, reported to the
// caller on success.
type Metadata struct {
	// SolOut is the native payout delivered to the destination account.
	SolOut uint64

	// MsolOut is the derivative payout delivered to the destination holding.
	MsolOut uint64
}

// ApplyContext provides the state and helpers an instruction needs to apply.
type ApplyContext struct {
	// View is the sandboxed ledger view. Everything written through it is
	// buffered and committed by the engine only on success.
	View ledger.View

	// State is the protocol state loaded for this call. Mutations are
	// persisted by the engine only on success.
	State *state.State

	// Logger is the engine's structured logger.
	Logger *zap.Logger

	// Metadata collects emitted amounts.
	Metadata *Metadata
}
