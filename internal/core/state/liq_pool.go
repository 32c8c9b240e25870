package state

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/solkeen/marinade-anchor/internal/core/calc"
	"github.com/solkeen/marinade-anchor/internal/crypto"
)

// Seed material for the pool's keyless custody derivations. The bump byte
// stored next to each address completes the seed set.
var (
	SolLegSeed           = []byte("liq_sol")
	MsolLegSeed          = []byte("liq_st_sol")
	MsolLegAuthoritySeed = []byte("liq_st_sol_authority")
)

// ErrConfigMismatch is returned when a supplied account does not match the
// pool's configured mint or custody addresses.
var ErrConfigMismatch = errors.New("state: pool configuration mismatch")

// LiqPool is the two-leg liquidity pool backing the LP token: a native SOL
// leg and an mSOL leg, plus the internally tracked ("virtual") LP supply.
type LiqPool struct {
	// LPMint is the claim-token mint.
	LPMint crypto.AccountID `codec:"lp_mint"`

	// LPSupply is the tracked LP supply. It is reconciled against the mint's
	// actual supply before every redemption and never exceeds it afterwards.
	LPSupply uint64 `codec:"lp_supply"`

	// SolLeg is the native-currency custody account. Its address is the
	// derivation of (state address, SolLegSeed, SolLegBumpSeed).
	SolLeg         crypto.AccountID `codec:"sol_leg"`
	SolLegBumpSeed uint8            `codec:"sol_leg_bump_seed"`

	// MsolLeg is the mSOL custody token account, owned by the authority
	// derived from (state address, MsolLegAuthoritySeed, bump).
	MsolLeg                  crypto.AccountID `codec:"msol_leg"`
	MsolLegAuthorityBumpSeed uint8            `codec:"msol_leg_authority_bump_seed"`
}

// CheckLPMint verifies the supplied mint is the pool's claim-token mint.
func (lp *LiqPool) CheckLPMint(mint crypto.AccountID) error {
	if mint != lp.LPMint {
		return fmt.Errorf("%w: lp mint %s, expected %s", ErrConfigMismatch, mint, lp.LPMint)
	}
	return nil
}

// CheckMsolLeg verifies the supplied custody is the pool's mSOL leg.
func (lp *LiqPool) CheckMsolLeg(account crypto.AccountID) error {
	if account != lp.MsolLeg {
		return fmt.Errorf("%w: msol leg %s, expected %s", ErrConfigMismatch, account, lp.MsolLeg)
	}
	return nil
}

// ReconcileLPSupply aligns the tracked supply with the mint's actual supply.
// Burns performed outside this module are absorbed by clamping down. Growth
// is never trusted: it means someone minted LP tokens without our permission
// (or a bug), so the tracked supply is left unchanged and a warning emitted.
// The caller persists the result only if the whole operation succeeds.
func (lp *LiqPool) ReconcileLPSupply(actualMinted uint64, log *zap.Logger) {
	if actualMinted > lp.LPSupply {
		log.Warn("lp tokens minted outside protocol control",
			zap.Uint64("tracked_supply", lp.LPSupply),
			zap.Uint64("actual_supply", actualMinted),
		)
		return
	}
	lp.LPSupply = actualMinted
}

// OnLPBurn commits a successful burn to the tracked supply. Underflow is
// defensive: reconciliation plus the burn-from balance check make the burned
// amount a subset of the snapshot supply.
func (lp *LiqPool) OnLPBurn(amount uint64) error {
	supply, err := calc.CheckedSub(lp.LPSupply, amount)
	if err != nil {
		return fmt.Errorf("burn %d exceeds tracked supply %d: %w", amount, lp.LPSupply, err)
	}
	lp.LPSupply = supply
	return nil
}
