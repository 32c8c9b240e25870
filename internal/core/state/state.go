// Package state holds the persistent protocol state: stake accounting that
// prices mSOL in lamports, protocol-wide limits, and the liquidity pool.
package state

import (
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/solkeen/marinade-anchor/internal/core/calc"
	"github.com/solkeen/marinade-anchor/internal/core/ledger"
	"github.com/solkeen/marinade-anchor/internal/core/ledger/keylet"
	"github.com/solkeen/marinade-anchor/internal/crypto"
)

// ErrInvalidRateState is returned when the staking rate state cannot price
// mSOL: lamports are staked but no mSOL exists to claim them.
var ErrInvalidRateState = errors.New("state: invalid msol rate state")

var cborHandle codec.CborHandle

// State is the singleton protocol state entry.
type State struct {
	// Address is the state account's own address, the base seed for every
	// custody derivation.
	Address crypto.AccountID `codec:"address"`

	// MsolMint is the staked-derivative token mint.
	MsolMint crypto.AccountID `codec:"msol_mint"`

	// RentExemptForTokenAcc is the floor kept in the SOL leg; it is excluded
	// from every distributable-balance calculation and never withdrawn.
	RentExemptForTokenAcc uint64 `codec:"rent_exempt_for_token_acc"`

	// MinWithdraw is the minimum combined redemption value in lamports.
	MinWithdraw uint64 `codec:"min_withdraw"`

	// Stake accounting backing the mSOL price: one mSOL is worth
	// TotalVirtualStakedLamports/MsolSupply lamports.
	TotalVirtualStakedLamports uint64 `codec:"total_virtual_staked_lamports"`
	MsolSupply                 uint64 `codec:"msol_supply"`

	LiqPool LiqPool `codec:"liq_pool"`
}

// Load reads and decodes the protocol state entry.
func Load(v ledger.View) (*State, error) {
	data, err := v.Read(keylet.State())
	if err != nil {
		return nil, fmt.Errorf("read protocol state: %w", err)
	}
	var s State
	if err := codec.NewDecoderBytes(data, &cborHandle).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode protocol state: %w", err)
	}
	return &s, nil
}

// Save encodes and writes the protocol state entry.
func Save(v ledger.View, s *State) error {
	var data []byte
	if err := codec.NewEncoderBytes(&data, &cborHandle).Encode(s); err != nil {
		return fmt.Errorf("encode protocol state: %w", err)
	}
	exists, err := v.Exists(keylet.State())
	if err != nil {
		return err
	}
	if !exists {
		return v.Insert(keylet.State(), data)
	}
	return v.Update(keylet.State(), data)
}

// MsolToLamports converts an mSOL amount into lamports at the current stake
// rate. With no stake at all the rate is 1:1; mSOL supply zero while lamports
// are staked is an inconsistent rate state and fails.
func (s *State) MsolToLamports(amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, nil
	}
	if s.MsolSupply == 0 {
		if s.TotalVirtualStakedLamports != 0 {
			return 0, ErrInvalidRateState
		}
		return amount, nil
	}
	lamports, err := calc.Proportional(amount, s.TotalVirtualStakedLamports, s.MsolSupply)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRateState, err)
	}
	return lamports, nil
}

// SolLegAuthority is the capability proof controlling the SOL leg custody.
func (s *State) SolLegAuthority() crypto.SeedAuthority {
	return crypto.NewSeedAuthority(s.Address[:], SolLegSeed, []byte{s.LiqPool.SolLegBumpSeed})
}

// MsolLegAuthority is the capability proof controlling the mSOL leg custody.
func (s *State) MsolLegAuthority() crypto.SeedAuthority {
	return crypto.NewSeedAuthority(s.Address[:], MsolLegAuthoritySeed, []byte{s.LiqPool.MsolLegAuthorityBumpSeed})
}

// CheckMsolLegAuthority verifies the supplied transfer authority matches the
// address derived from the leg's seed material.
func (s *State) CheckMsolLegAuthority(authority crypto.AccountID) error {
	if expected := s.MsolLegAuthority().Address(); authority != expected {
		return fmt.Errorf("%w: msol leg authority %s, expected %s", ErrConfigMismatch, authority, expected)
	}
	return nil
}
