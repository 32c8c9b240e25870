// Package testing provides a test environment for applying instructions
// against an in-memory ledger, in the style of a transaction test harness:
// build a pool, fund accounts, submit, assert results and balances.
package testing

import (
	"testing"

	"go.uber.org/zap"

	"github.com/solkeen/marinade-anchor/internal/core/instruction"
	"github.com/solkeen/marinade-anchor/internal/core/instruction/liqpool"
	"github.com/solkeen/marinade-anchor/internal/core/ledger"
	"github.com/solkeen/marinade-anchor/internal/core/ledger/keylet"
	"github.com/solkeen/marinade-anchor/internal/core/state"
	"github.com/solkeen/marinade-anchor/internal/core/token"
	"github.com/solkeen/marinade-anchor/internal/crypto"
)

// PoolConfig describes the initial pool for a test environment.
type PoolConfig struct {
	// SolLegLamports is the raw SOL leg balance, including the rent-exempt
	// floor below.
	SolLegLamports uint64

	// RentExempt is the reserved floor excluded from distribution.
	RentExempt uint64

	// MsolLegAmount is the mSOL leg balance.
	MsolLegAmount uint64

	// TrackedLPSupply is the pool's virtual LP supply.
	TrackedLPSupply uint64

	// MintedLPSupply is the LP mint's actual supply.
	MintedLPSupply uint64

	// MinWithdraw is the minimum combined redemption value in lamports.
	MinWithdraw uint64

	// StakedLamports and MsolSupply set the mSOL price
	// (StakedLamports/MsolSupply lamports per mSOL).
	StakedLamports uint64
	MsolSupply     uint64
}

// DefaultPool is the canonical test pool: 500 distributable lamports, 400
// mSOL, supply 1000 both tracked and minted, 1:1 rate, floor of 10.
func DefaultPool() PoolConfig {
	return PoolConfig{
		SolLegLamports:  500 + 2_039_280,
		RentExempt:      2_039_280,
		MsolLegAmount:   400,
		TrackedLPSupply: 1_000,
		MintedLPSupply:  1_000,
		MinWithdraw:     10,
		StakedLamports:  1_000_000,
		MsolSupply:      1_000_000,
	}
}

// TestEnv is an in-memory ledger with a configured pool and an engine.
type TestEnv struct {
	t      *testing.T
	View   *ledger.MemoryView
	Engine *instruction.Engine

	StateAddr crypto.AccountID
	LPMint    crypto.AccountID
	MsolMint  crypto.AccountID
	SolLeg    crypto.AccountID
	MsolLeg   crypto.AccountID
}

const (
	solLegBump      = 254
	msolLegAuthBump = 251
)

// AccountID derives a deterministic test account ID from a name.
func AccountID(name string) crypto.AccountID {
	return crypto.DeriveAuthority([]byte("test-account"), []byte(name))
}

// NewTestEnv builds an environment with the given pool configuration.
func NewTestEnv(t *testing.T, cfg PoolConfig) *TestEnv {
	t.Helper()

	view := ledger.NewMemoryView()
	stateAddr := crypto.DeriveAuthority([]byte("protocol-state"))
	lpMint := crypto.DeriveAuthority([]byte("lp-mint"))
	msolMint := crypto.DeriveAuthority([]byte("msol-mint"))
	solLeg := crypto.DeriveAuthority(stateAddr[:], state.SolLegSeed, []byte{solLegBump})
	msolLeg := crypto.DeriveAuthority(stateAddr[:], state.MsolLegSeed)
	msolLegOwner := crypto.DeriveAuthority(stateAddr[:], state.MsolLegAuthoritySeed, []byte{msolLegAuthBump})

	st := &state.State{
		Address:                    stateAddr,
		MsolMint:                   msolMint,
		RentExemptForTokenAcc:      cfg.RentExempt,
		MinWithdraw:                cfg.MinWithdraw,
		TotalVirtualStakedLamports: cfg.StakedLamports,
		MsolSupply:                 cfg.MsolSupply,
		LiqPool: state.LiqPool{
			LPMint:                   lpMint,
			LPSupply:                 cfg.TrackedLPSupply,
			SolLeg:                   solLeg,
			SolLegBumpSeed:           solLegBump,
			MsolLeg:                  msolLeg,
			MsolLegAuthorityBumpSeed: msolLegAuthBump,
		},
	}
	if err := state.Save(view, st); err != nil {
		t.Fatalf("save protocol state: %v", err)
	}

	env := &TestEnv{
		t:         t,
		View:      view,
		Engine:    instruction.NewEngine(view, zap.NewNop()),
		StateAddr: stateAddr,
		LPMint:    lpMint,
		MsolMint:  msolMint,
		SolLeg:    solLeg,
		MsolLeg:   msolLeg,
	}

	env.insertSystemAccount(solLeg, cfg.SolLegLamports)
	env.insertMint(lpMint, cfg.MintedLPSupply)
	env.insertMint(msolMint, cfg.MsolSupply)
	env.insertTokenAccount(&token.TokenAccount{
		Address: msolLeg,
		Mint:    msolMint,
		Owner:   msolLegOwner,
		Amount:  cfg.MsolLegAmount,
	})
	return env
}

// Submit applies an instruction through the engine.
func (e *TestEnv) Submit(instr instruction.Instruction) (instruction.Result, *instruction.Metadata) {
	e.t.Helper()
	return e.Engine.Apply(instr)
}

// RemoveLiquidity builds a request with the pool's correct configuration
// accounts prefilled; tests override fields to provoke mismatches.
func (e *TestEnv) RemoveLiquidity(amount uint64, burnFrom, authority, solTo, msolTo crypto.AccountID) *liqpool.RemoveLiquidity {
	st := e.loadState()
	return &liqpool.RemoveLiquidity{
		Amount:            amount,
		LPMint:            e.LPMint,
		BurnFrom:          burnFrom,
		BurnFromAuthority: authority,
		TransferSolTo:     solTo,
		TransferMsolTo:    msolTo,
		MsolLeg:           e.MsolLeg,
		MsolLegAuthority:  st.MsolLegAuthority().Address(),
	}
}

// FundSystemAccount creates a native account with the given balance.
func (e *TestEnv) FundSystemAccount(name string, lamports uint64) crypto.AccountID {
	e.t.Helper()
	id := AccountID(name)
	e.insertSystemAccount(id, lamports)
	return id
}

// CreateLPHolding creates a holding of LP tokens. It does not touch the mint
// supply; the pool configuration fixes the minted supply independently.
func (e *TestEnv) CreateLPHolding(name string, owner crypto.AccountID, amount uint64) crypto.AccountID {
	e.t.Helper()
	id := AccountID(name)
	e.insertTokenAccount(&token.TokenAccount{Address: id, Mint: e.LPMint, Owner: owner, Amount: amount})
	return id
}

// CreateMsolHolding creates an empty-or-funded mSOL holding.
func (e *TestEnv) CreateMsolHolding(name string, owner crypto.AccountID, amount uint64) crypto.AccountID {
	e.t.Helper()
	id := AccountID(name)
	e.insertTokenAccount(&token.TokenAccount{Address: id, Mint: e.MsolMint, Owner: owner, Amount: amount})
	return id
}

// Delegate registers a bounded allowance on a holding.
func (e *TestEnv) Delegate(holding, authority crypto.AccountID, allowance uint64) {
	e.t.Helper()
	acc := e.TokenAccount(holding)
	acc.Delegation = &token.Delegation{Authority: authority, Remaining: allowance}
	data, err := token.SerializeTokenAccount(acc)
	if err != nil {
		e.t.Fatalf("serialize holding: %v", err)
	}
	if err := e.View.Update(keylet.TokenAccount(holding), data); err != nil {
		e.t.Fatalf("update holding: %v", err)
	}
}

// SystemLamports reads a native account balance.
func (e *TestEnv) SystemLamports(id crypto.AccountID) uint64 {
	e.t.Helper()
	data, err := e.View.Read(keylet.SystemAccount(id))
	if err != nil {
		e.t.Fatalf("read system account: %v", err)
	}
	acc, err := token.ParseSystemAccount(data)
	if err != nil {
		e.t.Fatalf("decode system account: %v", err)
	}
	return acc.Lamports
}

// TokenAccount reads a token holding.
func (e *TestEnv) TokenAccount(id crypto.AccountID) *token.TokenAccount {
	e.t.Helper()
	data, err := e.View.Read(keylet.TokenAccount(id))
	if err != nil {
		e.t.Fatalf("read token account: %v", err)
	}
	acc, err := token.ParseTokenAccount(data)
	if err != nil {
		e.t.Fatalf("decode token account: %v", err)
	}
	return acc
}

// TokenAmount reads a token holding balance.
func (e *TestEnv) TokenAmount(id crypto.AccountID) uint64 {
	return e.TokenAccount(id).Amount
}

// MintSupply reads a mint's actual supply.
func (e *TestEnv) MintSupply(id crypto.AccountID) uint64 {
	e.t.Helper()
	data, err := e.View.Read(keylet.Mint(id))
	if err != nil {
		e.t.Fatalf("read mint: %v", err)
	}
	m, err := token.ParseMint(data)
	if err != nil {
		e.t.Fatalf("decode mint: %v", err)
	}
	return m.Supply
}

// TrackedLPSupply reads the pool's persisted virtual supply.
func (e *TestEnv) TrackedLPSupply() uint64 {
	return e.loadState().LiqPool.LPSupply
}

// SetMintedLPSupply overrides the LP mint's actual supply, simulating burns
// or mints performed outside the module.
func (e *TestEnv) SetMintedLPSupply(supply uint64) {
	e.t.Helper()
	data, err := token.SerializeMint(&token.Mint{Address: e.LPMint, Supply: supply})
	if err != nil {
		e.t.Fatalf("serialize mint: %v", err)
	}
	if err := e.View.Update(keylet.Mint(e.LPMint), data); err != nil {
		e.t.Fatalf("update mint: %v", err)
	}
}

func (e *TestEnv) loadState() *state.State {
	e.t.Helper()
	st, err := state.Load(e.View)
	if err != nil {
		e.t.Fatalf("load protocol state: %v", err)
	}
	return st
}

func (e *TestEnv) insertSystemAccount(id crypto.AccountID, lamports uint64) {
	e.t.Helper()
	data, err := token.SerializeSystemAccount(&token.SystemAccount{Address: id, Lamports: lamports})
	if err != nil {
		e.t.Fatalf("serialize system account: %v", err)
	}
	if err := e.View.Insert(keylet.SystemAccount(id), data); err != nil {
		e.t.Fatalf("insert system account: %v", err)
	}
}

func (e *TestEnv) insertMint(id crypto.AccountID, supply uint64) {
	e.t.Helper()
	data, err := token.SerializeMint(&token.Mint{Address: id, Supply: supply})
	if err != nil {
		e.t.Fatalf("serialize mint: %v", err)
	}
	if err := e.View.Insert(keylet.Mint(id), data); err != nil {
		e.t.Fatalf("insert mint: %v", err)
	}
}

func (e *TestEnv) insertTokenAccount(acc *token.TokenAccount) {
	e.t.Helper()
	data, err := token.SerializeTokenAccount(acc)
	if err != nil {
		e.t.Fatalf("serialize token account: %v", err)
	}
	if err := e.View.Insert(keylet.TokenAccount(acc.Address), data); err != nil {
		e.t.Fatalf("insert token account: %v", err)
	}
}
