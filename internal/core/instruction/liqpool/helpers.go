package liqpool

import (
	"errors"

	"go.uber.org/zap"

	"github.com/solkeen/marinade-anchor/internal/core/calc"
	"github.com/solkeen/marinade-anchor/internal/core/instruction"
	"github.com/solkeen/marinade-anchor/internal/core/ledger/keylet"
	"github.com/solkeen/marinade-anchor/internal/core/token"
)

// checkBurnFrom authorizes the burn against the source holding. Owners are
// bounded by the holding balance, registered delegates by their remaining
// allowance; anyone else is unauthorized.
func (r *RemoveLiquidity) checkBurnFrom(ctx *instruction.ApplyContext) instruction.Result {
	data, err := ctx.View.Read(keylet.TokenAccount(r.BurnFrom))
	if err != nil {
		ctx.Logger.Error("cannot read burn source holding", zap.Error(err))
		return instruction.ResINTERNAL
	}
	holding, err := token.ParseTokenAccount(data)
	if err != nil {
		ctx.Logger.Error("cannot decode burn source holding", zap.Error(err))
		return instruction.ResINTERNAL
	}

	if err := token.CheckAuthority(holding, r.BurnFromAuthority, r.Amount); err != nil {
		switch {
		case errors.Is(err, token.ErrInsufficientFunds):
			ctx.Logger.Debug("burn not covered",
				zap.Uint64("requested", r.Amount),
				zap.Error(err),
			)
			return instruction.ResINSUFFICIENT_FUNDS
		default:
			ctx.Logger.Debug("burn authority not permitted",
				zap.Stringer("authority", r.BurnFromAuthority),
			)
			return instruction.ResUNAUTHORIZED
		}
	}
	return instruction.ResSUCCESS
}

// resultFromCalcErr maps checked-arithmetic failures to result codes.
func resultFromCalcErr(err error) instruction.Result {
	switch {
	case errors.Is(err, calc.ErrDivideByZero):
		return instruction.ResDIVIDE_BY_ZERO
	case errors.Is(err, calc.ErrUnderflow):
		return instruction.ResUNDERFLOW
	default:
		return instruction.ResARITHMETIC_OVERFLOW
	}
}
