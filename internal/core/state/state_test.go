package state

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/solkeen/marinade-anchor/internal/core/calc"
	"github.com/solkeen/marinade-anchor/internal/core/ledger"
	"github.com/solkeen/marinade-anchor/internal/crypto"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

func TestReconcileLPSupplyClampsDown(t *testing.T) {
	lp := LiqPool{LPSupply: 100}
	lp.ReconcileLPSupply(90, zap.NewNop())
	require.Equal(t, uint64(90), lp.LPSupply)
}

func TestReconcileLPSupplyNeverIncreases(t *testing.T) {
	core, logs := observedLogger()
	lp := LiqPool{LPSupply: 100}
	lp.ReconcileLPSupply(110, core)
	require.Equal(t, uint64(100), lp.LPSupply)
	require.Equal(t, 1, logs.Len(), "foreign mint growth must be warned about")
}

func TestReconcileLPSupplyEqual(t *testing.T) {
	lp := LiqPool{LPSupply: 100}
	lp.ReconcileLPSupply(100, zap.NewNop())
	require.Equal(t, uint64(100), lp.LPSupply)
}

func TestOnLPBurn(t *testing.T) {
	lp := LiqPool{LPSupply: 1000}
	require.NoError(t, lp.OnLPBurn(100))
	require.Equal(t, uint64(900), lp.LPSupply)

	err := lp.OnLPBurn(901)
	require.ErrorIs(t, err, calc.ErrUnderflow)
	require.Equal(t, uint64(900), lp.LPSupply, "failed burn must not mutate supply")
}

func TestCheckLPMint(t *testing.T) {
	mint := crypto.DeriveAuthority([]byte("lp-mint"))
	lp := LiqPool{LPMint: mint}
	require.NoError(t, lp.CheckLPMint(mint))
	require.ErrorIs(t, lp.CheckLPMint(crypto.DeriveAuthority([]byte("impostor"))), ErrConfigMismatch)
}

func TestCheckMsolLeg(t *testing.T) {
	leg := crypto.DeriveAuthority([]byte("msol-leg"))
	lp := LiqPool{MsolLeg: leg}
	require.NoError(t, lp.CheckMsolLeg(leg))
	require.ErrorIs(t, lp.CheckMsolLeg(crypto.DeriveAuthority([]byte("impostor"))), ErrConfigMismatch)
}

func TestMsolToLamports(t *testing.T) {
	tests := []struct {
		name    string
		staked  uint64
		supply  uint64
		amount  uint64
		want    uint64
		wantErr error
	}{
		{name: "one to one", staked: 1_000, supply: 1_000, amount: 40, want: 40},
		{name: "appreciated rate", staked: 1_500, supply: 1_000, amount: 40, want: 60},
		{name: "floors down", staked: 1_001, supply: 1_000, amount: 1, want: 1},
		{name: "zero amount", staked: 1_000, supply: 1_000, amount: 0, want: 0},
		{name: "empty protocol defaults 1:1", staked: 0, supply: 0, amount: 40, want: 40},
		{name: "staked without supply", staked: 1_000, supply: 0, amount: 40, wantErr: ErrInvalidRateState},
		{name: "overflowing rate", staked: math.MaxUint64, supply: 1, amount: 2, wantErr: ErrInvalidRateState},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &State{TotalVirtualStakedLamports: tc.staked, MsolSupply: tc.supply}
			got, err := s.MsolToLamports(tc.amount)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestLegAuthorities(t *testing.T) {
	s := &State{Address: crypto.DeriveAuthority([]byte("state"))}
	s.LiqPool.SolLegBumpSeed = 254
	s.LiqPool.MsolLegAuthorityBumpSeed = 251

	solAddr := s.SolLegAuthority().Address()
	require.Equal(t, crypto.DeriveAuthority(s.Address[:], SolLegSeed, []byte{254}), solAddr)

	require.NoError(t, s.CheckMsolLegAuthority(s.MsolLegAuthority().Address()))
	require.ErrorIs(t, s.CheckMsolLegAuthority(solAddr), ErrConfigMismatch)
}

func TestStateRoundTrip(t *testing.T) {
	v := ledger.NewMemoryView()
	s := &State{
		Address:                    crypto.DeriveAuthority([]byte("state")),
		MsolMint:                   crypto.DeriveAuthority([]byte("msol")),
		RentExemptForTokenAcc:      2_039_280,
		MinWithdraw:                10,
		TotalVirtualStakedLamports: 5_000,
		MsolSupply:                 4_000,
		LiqPool: LiqPool{
			LPMint:   crypto.DeriveAuthority([]byte("lp")),
			LPSupply: 1_000,
		},
	}
	require.NoError(t, Save(v, s))

	back, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, s, back)

	// Save over an existing entry updates in place
	s.LiqPool.LPSupply = 900
	require.NoError(t, Save(v, s))
	back, err = Load(v)
	require.NoError(t, err)
	require.Equal(t, uint64(900), back.LiqPool.LPSupply)
}
