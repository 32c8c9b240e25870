// Package liqpool implements the liquidity-pool instructions.
package liqpool

import (
	"errors"

	"go.uber.org/zap"

	"github.com/solkeen/marinade-anchor/internal/core/calc"
	"github.com/solkeen/marinade-anchor/internal/core/instruction"
	"github.com/solkeen/marinade-anchor/internal/core/ledger/keylet"
	"github.com/solkeen/marinade-anchor/internal/core/token"
	"github.com/solkeen/marinade-anchor/internal/crypto"
)

func init() {
	instruction.Register(instruction.TypeRemoveLiquidity, func() instruction.Instruction {
		return &RemoveLiquidity{}
	})
}

// RemoveLiquidity burns LP tokens and pays out the proportional share of
// both pool legs to the requester's destinations.
type RemoveLiquidity struct {
	// Amount is the number of LP tokens to burn.
	Amount uint64 `json:"amount"`

	// LPMint is the claim-token mint the caller believes it is redeeming;
	// checked against the pool's configured mint.
	LPMint crypto.AccountID `json:"lp_mint"`

	// BurnFrom is the holding the LP tokens are burned from, and
	// BurnFromAuthority the host-authenticated identity authorizing the burn
	// (the holding's owner or a registered delegate).
	BurnFrom          crypto.AccountID `json:"burn_from"`
	BurnFromAuthority crypto.AccountID `json:"burn_from_authority"`

	// TransferSolTo receives the native payout.
	TransferSolTo crypto.AccountID `json:"transfer_sol_to"`

	// TransferMsolTo receives the derivative payout.
	TransferMsolTo crypto.AccountID `json:"transfer_msol_to"`

	// MsolLeg and MsolLegAuthority are the caller-supplied derivative custody
	// and its transfer authority; both checked against pool configuration.
	MsolLeg          crypto.AccountID `json:"msol_leg"`
	MsolLegAuthority crypto.AccountID `json:"msol_leg_authority"`
}

// InstrType returns the instruction type.
func (r *RemoveLiquidity) InstrType() instruction.Type {
	return instruction.TypeRemoveLiquidity
}

// Validate performs static validation before any state access.
func (r *RemoveLiquidity) Validate() error {
	switch {
	case r.LPMint.IsZero():
		return errors.New("lp mint is required")
	case r.BurnFrom.IsZero():
		return errors.New("burn source holding is required")
	case r.BurnFromAuthority.IsZero():
		return errors.New("burn authority is required")
	case r.TransferSolTo.IsZero():
		return errors.New("native destination is required")
	case r.TransferMsolTo.IsZero():
		return errors.New("derivative destination is required")
	case r.MsolLeg.IsZero():
		return errors.New("msol leg is required")
	case r.MsolLegAuthority.IsZero():
		return errors.New("msol leg authority is required")
	}
	return nil
}

// Apply runs the redemption pipeline: validate the supplied accounts against
// pool configuration, authorize the burn, reconcile the tracked LP supply,
// compute both payouts from that one snapshot, enforce the minimum-output
// floor, then settle (transfers before burn) and commit the supply decrease.
// Every stage failure aborts with zero mutation; the engine discards the
// sandbox.
func (r *RemoveLiquidity) Apply(ctx *instruction.ApplyContext) instruction.Result {
	st := ctx.State
	log := ctx.Logger

	// Validate
	if err := st.LiqPool.CheckLPMint(r.LPMint); err != nil {
		log.Debug("remove-liquidity config check failed", zap.Error(err))
		return instruction.ResCONFIG_MISMATCH
	}
	if res := r.checkBurnFrom(ctx); !res.IsSuccess() {
		return res
	}
	if err := st.LiqPool.CheckMsolLeg(r.MsolLeg); err != nil {
		log.Debug("remove-liquidity config check failed", zap.Error(err))
		return instruction.ResCONFIG_MISMATCH
	}
	if err := st.CheckMsolLegAuthority(r.MsolLegAuthority); err != nil {
		log.Debug("remove-liquidity config check failed", zap.Error(err))
		return instruction.ResCONFIG_MISMATCH
	}

	// Reconcile the virtual supply with the mint's actual supply. The result
	// is the denominator for this call; it reaches persistent state only if
	// the whole call succeeds.
	lpMintData, err := ctx.View.Read(keylet.Mint(st.LiqPool.LPMint))
	if err != nil {
		log.Error("cannot read lp mint", zap.Error(err))
		return instruction.ResINTERNAL
	}
	lpMint, err := token.ParseMint(lpMintData)
	if err != nil {
		log.Error("cannot decode lp mint", zap.Error(err))
		return instruction.ResINTERNAL
	}
	st.LiqPool.ReconcileLPSupply(lpMint.Supply, log)
	log.Debug("lp supply snapshot",
		zap.Uint64("actual", lpMint.Supply),
		zap.Uint64("tracked", st.LiqPool.LPSupply),
	)

	// Compute both payouts from the identical snapshot. The rent-exempt floor
	// is excluded from the SOL leg before any distribution.
	solLegData, err := ctx.View.Read(keylet.SystemAccount(st.LiqPool.SolLeg))
	if err != nil {
		log.Error("cannot read sol leg", zap.Error(err))
		return instruction.ResINTERNAL
	}
	solLeg, err := token.ParseSystemAccount(solLegData)
	if err != nil {
		log.Error("cannot decode sol leg", zap.Error(err))
		return instruction.ResINTERNAL
	}
	distributable, err := calc.CheckedSub(solLeg.Lamports, st.RentExemptForTokenAcc)
	if err != nil {
		log.Error("sol leg below rent-exempt floor",
			zap.Uint64("lamports", solLeg.Lamports),
			zap.Uint64("floor", st.RentExemptForTokenAcc),
		)
		return instruction.ResUNDERFLOW
	}
	solOut, err := calc.Proportional(r.Amount, distributable, st.LiqPool.LPSupply)
	if err != nil {
		return resultFromCalcErr(err)
	}

	msolLegData, err := ctx.View.Read(keylet.TokenAccount(st.LiqPool.MsolLeg))
	if err != nil {
		log.Error("cannot read msol leg", zap.Error(err))
		return instruction.ResINTERNAL
	}
	msolLeg, err := token.ParseTokenAccount(msolLegData)
	if err != nil {
		log.Error("cannot decode msol leg", zap.Error(err))
		return instruction.ResINTERNAL
	}
	msolOut, err := calc.Proportional(r.Amount, msolLeg.Amount, st.LiqPool.LPSupply)
	if err != nil {
		return resultFromCalcErr(err)
	}

	// Guard: combined value in lamports must clear the minimum floor.
	msolValue, err := st.MsolToLamports(msolOut)
	if err != nil {
		log.Debug("msol conversion failed", zap.Error(err))
		return instruction.ResCONVERSION_ERROR
	}
	combined, err := calc.CheckedAdd(solOut, msolValue)
	if err != nil {
		return instruction.ResARITHMETIC_OVERFLOW
	}
	if combined < st.MinWithdraw {
		log.Debug("removed liquidity below minimum",
			zap.Uint64("combined_lamports", combined),
			zap.Uint64("min_withdraw", st.MinWithdraw),
		)
		return instruction.ResSLIPPAGE_EXCEEDED
	}
	log.Debug("remove-liquidity payouts",
		zap.Uint64("sol_out", solOut),
		zap.Uint64("msol_out", msolOut),
	)

	// Settle. Transfers run before the burn so no path destroys claim tokens
	// without the payouts having been attempted in the same atomic unit.
	if solOut > 0 {
		if err := token.Transfer(ctx.View, st.LiqPool.SolLeg, r.TransferSolTo, solOut, st.SolLegAuthority()); err != nil {
			log.Error("sol leg transfer failed", zap.Error(err))
			return instruction.ResTRANSFER_FAILURE
		}
	}
	if msolOut > 0 {
		if err := token.TransferTokens(ctx.View, st.LiqPool.MsolLeg, r.TransferMsolTo, msolOut, st.MsolLegAuthority()); err != nil {
			log.Error("msol leg transfer failed", zap.Error(err))
			return instruction.ResTRANSFER_FAILURE
		}
	}
	if err := token.Burn(ctx.View, st.LiqPool.LPMint, r.BurnFrom, r.Amount, token.Identity(r.BurnFromAuthority)); err != nil {
		log.Error("lp burn failed", zap.Error(err))
		return instruction.ResTRANSFER_FAILURE
	}

	// Commit the tracked-supply decrease; unreachable underflow given the
	// snapshot discipline above.
	if err := st.LiqPool.OnLPBurn(r.Amount); err != nil {
		log.Error("tracked supply commit failed", zap.Error(err))
		return instruction.ResUNDERFLOW
	}

	ctx.Metadata.SolOut = solOut
	ctx.Metadata.MsolOut = msolOut
	return instruction.ResSUCCESS
}
