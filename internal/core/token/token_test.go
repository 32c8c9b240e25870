package token

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solkeen/marinade-anchor/internal/core/ledger"
	"github.com/solkeen/marinade-anchor/internal/core/ledger/keylet"
	"github.com/solkeen/marinade-anchor/internal/crypto"
)

func id(name string) crypto.AccountID {
	return crypto.DeriveAuthority([]byte(name))
}

func putSystemAccount(t *testing.T, v ledger.View, address crypto.AccountID, lamports uint64) {
	t.Helper()
	data, err := SerializeSystemAccount(&SystemAccount{Address: address, Lamports: lamports})
	require.NoError(t, err)
	require.NoError(t, v.Insert(keylet.SystemAccount(address), data))
}

func putMint(t *testing.T, v ledger.View, address crypto.AccountID, supply uint64) {
	t.Helper()
	data, err := SerializeMint(&Mint{Address: address, Supply: supply})
	require.NoError(t, err)
	require.NoError(t, v.Insert(keylet.Mint(address), data))
}

func putTokenAccount(t *testing.T, v ledger.View, acc *TokenAccount) {
	t.Helper()
	data, err := SerializeTokenAccount(acc)
	require.NoError(t, err)
	require.NoError(t, v.Insert(keylet.TokenAccount(acc.Address), data))
}

func readTokenAccount(t *testing.T, v ledger.View, address crypto.AccountID) *TokenAccount {
	t.Helper()
	data, err := v.Read(keylet.TokenAccount(address))
	require.NoError(t, err)
	acc, err := ParseTokenAccount(data)
	require.NoError(t, err)
	return acc
}

func TestCheckAuthority(t *testing.T) {
	owner := id("owner")
	delegate := id("delegate")
	stranger := id("stranger")

	tests := []struct {
		name      string
		balance   uint64
		remaining uint64
		authority crypto.AccountID
		amount    uint64
		wantErr   error
	}{
		{name: "owner exact balance", balance: 50, authority: owner, amount: 50},
		{name: "owner short one", balance: 49, authority: owner, amount: 50, wantErr: ErrInsufficientFunds},
		{name: "delegate within allowance", balance: 100, remaining: 30, authority: delegate, amount: 30},
		{name: "delegate over allowance", balance: 100, remaining: 30, authority: delegate, amount: 31, wantErr: ErrInsufficientFunds},
		{name: "stranger", balance: 100, remaining: 30, authority: stranger, amount: 1, wantErr: ErrUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			acc := &TokenAccount{Address: id("holding"), Mint: id("mint"), Owner: owner, Amount: tc.balance}
			if tc.remaining > 0 {
				acc.Delegation = &Delegation{Authority: delegate, Remaining: tc.remaining}
			}
			err := CheckAuthority(acc, tc.authority, tc.amount)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestClassifyAuthority(t *testing.T) {
	owner := id("owner")
	delegate := id("delegate")
	acc := &TokenAccount{Owner: owner, Amount: 10, Delegation: &Delegation{Authority: delegate, Remaining: 7}}

	role, _ := acc.ClassifyAuthority(owner)
	require.Equal(t, RoleOwner, role)

	role, remaining := acc.ClassifyAuthority(delegate)
	require.Equal(t, RoleDelegate, role)
	require.Equal(t, uint64(7), remaining)

	role, _ = acc.ClassifyAuthority(id("nobody"))
	require.Equal(t, RoleNone, role)
}

func TestTransfer(t *testing.T) {
	v := ledger.NewMemoryView()
	custody := crypto.DeriveAuthority([]byte("pool"), []byte("liq_sol"), []byte{250})
	dest := id("dest")
	putSystemAccount(t, v, custody, 1_000)
	putSystemAccount(t, v, dest, 5)

	auth := crypto.NewSeedAuthority([]byte("pool"), []byte("liq_sol"), []byte{250})
	require.NoError(t, Transfer(v, custody, dest, 400, auth))

	data, err := v.Read(keylet.SystemAccount(custody))
	require.NoError(t, err)
	src, err := ParseSystemAccount(data)
	require.NoError(t, err)
	require.Equal(t, uint64(600), src.Lamports)

	data, err = v.Read(keylet.SystemAccount(dest))
	require.NoError(t, err)
	dst, err := ParseSystemAccount(data)
	require.NoError(t, err)
	require.Equal(t, uint64(405), dst.Lamports)
}

func TestTransferWrongSeedAuthority(t *testing.T) {
	v := ledger.NewMemoryView()
	custody := crypto.DeriveAuthority([]byte("pool"), []byte("liq_sol"), []byte{250})
	dest := id("dest")
	putSystemAccount(t, v, custody, 1_000)
	putSystemAccount(t, v, dest, 0)

	// wrong bump nonce derives a different address
	auth := crypto.NewSeedAuthority([]byte("pool"), []byte("liq_sol"), []byte{249})
	require.ErrorIs(t, Transfer(v, custody, dest, 1, auth), ErrUnauthorized)
}

func TestTransferInsufficient(t *testing.T) {
	v := ledger.NewMemoryView()
	src := id("src")
	dest := id("dest")
	putSystemAccount(t, v, src, 10)
	putSystemAccount(t, v, dest, 0)

	require.ErrorIs(t, Transfer(v, src, dest, 11, Identity(src)), ErrInsufficientFunds)
}

func TestTransferTokens(t *testing.T) {
	v := ledger.NewMemoryView()
	mint := id("msol-mint")
	owner := id("owner")
	putTokenAccount(t, v, &TokenAccount{Address: id("a"), Mint: mint, Owner: owner, Amount: 100})
	putTokenAccount(t, v, &TokenAccount{Address: id("b"), Mint: mint, Owner: id("other"), Amount: 1})

	require.NoError(t, TransferTokens(v, id("a"), id("b"), 40, Identity(owner)))
	require.Equal(t, uint64(60), readTokenAccount(t, v, id("a")).Amount)
	require.Equal(t, uint64(41), readTokenAccount(t, v, id("b")).Amount)
}

func TestTransferTokensMintMismatch(t *testing.T) {
	v := ledger.NewMemoryView()
	owner := id("owner")
	putTokenAccount(t, v, &TokenAccount{Address: id("a"), Mint: id("mint1"), Owner: owner, Amount: 100})
	putTokenAccount(t, v, &TokenAccount{Address: id("b"), Mint: id("mint2"), Owner: owner, Amount: 0})

	require.ErrorIs(t, TransferTokens(v, id("a"), id("b"), 1, Identity(owner)), ErrWrongMint)
}

func TestBurnByOwner(t *testing.T) {
	v := ledger.NewMemoryView()
	mint := id("lp-mint")
	owner := id("owner")
	putMint(t, v, mint, 1_000)
	putTokenAccount(t, v, &TokenAccount{Address: id("holding"), Mint: mint, Owner: owner, Amount: 100})

	require.NoError(t, Burn(v, mint, id("holding"), 100, Identity(owner)))
	require.Equal(t, uint64(0), readTokenAccount(t, v, id("holding")).Amount)

	data, err := v.Read(keylet.Mint(mint))
	require.NoError(t, err)
	m, err := ParseMint(data)
	require.NoError(t, err)
	require.Equal(t, uint64(900), m.Supply)
}

func TestBurnByDelegateConsumesAllowance(t *testing.T) {
	v := ledger.NewMemoryView()
	mint := id("lp-mint")
	delegate := id("delegate")
	putMint(t, v, mint, 1_000)
	putTokenAccount(t, v, &TokenAccount{
		Address:    id("holding"),
		Mint:       mint,
		Owner:      id("owner"),
		Amount:     100,
		Delegation: &Delegation{Authority: delegate, Remaining: 30},
	})

	require.NoError(t, Burn(v, mint, id("holding"), 20, Identity(delegate)))
	acc := readTokenAccount(t, v, id("holding"))
	require.Equal(t, uint64(80), acc.Amount)
	require.Equal(t, uint64(10), acc.Delegation.Remaining)

	// allowance now exhausted below the next request
	require.ErrorIs(t, Burn(v, mint, id("holding"), 11, Identity(delegate)), ErrInsufficientFunds)
}

func TestBurnWrongMint(t *testing.T) {
	v := ledger.NewMemoryView()
	owner := id("owner")
	putMint(t, v, id("other-mint"), 1_000)
	putTokenAccount(t, v, &TokenAccount{Address: id("holding"), Mint: id("lp-mint"), Owner: owner, Amount: 100})

	require.ErrorIs(t, Burn(v, id("other-mint"), id("holding"), 1, Identity(owner)), ErrWrongMint)
}

func TestEntryRoundTrip(t *testing.T) {
	acc := &TokenAccount{
		Address:    id("holding"),
		Mint:       id("mint"),
		Owner:      id("owner"),
		Amount:     42,
		Delegation: &Delegation{Authority: id("delegate"), Remaining: 7},
	}
	data, err := SerializeTokenAccount(acc)
	require.NoError(t, err)
	back, err := ParseTokenAccount(data)
	require.NoError(t, err)
	require.Equal(t, acc, back)
}
