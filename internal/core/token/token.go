// Package token is the ledger/token service: mints, token holdings and
// native-currency accounts stored as ledger entries, plus the transfer and
// burn primitives that move value between them.
//
// Every mutating primitive takes an Authority. For user holdings this is the
// pre-authenticated caller identity supplied by the host; for protocol
// custody accounts it is a crypto.SeedAuthority capability whose derived
// address must match the account being moved. No signatures are verified
// here: the host authenticates identities, this package enforces ownership
// and allowances.
package token

import (
	"errors"
	"fmt"

	"github.com/solkeen/marinade-anchor/internal/core/calc"
	"github.com/solkeen/marinade-anchor/internal/core/ledger"
	"github.com/solkeen/marinade-anchor/internal/core/ledger/keylet"
	"github.com/solkeen/marinade-anchor/internal/crypto"
)

var (
	// ErrUnauthorized is returned when the presented authority is neither the
	// owner nor a registered delegate of the account.
	ErrUnauthorized = errors.New("token: authority not permitted")

	// ErrInsufficientFunds is returned when a balance or a delegated
	// allowance cannot cover the requested amount.
	ErrInsufficientFunds = errors.New("token: insufficient funds")

	// ErrWrongMint is returned when source and destination holdings belong to
	// different mints.
	ErrWrongMint = errors.New("token: mint mismatch")
)

// Authority proves the right to move funds out of an account.
type Authority interface {
	Address() crypto.AccountID
}

// Identity is the authority of a host-authenticated caller.
type Identity crypto.AccountID

// Address returns the caller's account ID.
func (i Identity) Address() crypto.AccountID { return crypto.AccountID(i) }

// Role classifies an authority against a token account.
type Role int

const (
	// RoleNone means the authority has no rights over the account.
	RoleNone Role = iota
	// RoleOwner means the authority is the account owner.
	RoleOwner
	// RoleDelegate means the authority holds a bounded allowance.
	RoleDelegate
)

// ClassifyAuthority resolves an authority to its role on the account. For
// RoleDelegate the remaining allowance is returned alongside.
func (a *TokenAccount) ClassifyAuthority(authority crypto.AccountID) (Role, uint64) {
	if authority == a.Owner {
		return RoleOwner, 0
	}
	if a.Delegation != nil && a.Delegation.Authority == authority {
		return RoleDelegate, a.Delegation.Remaining
	}
	return RoleNone, 0
}

// CheckAuthority verifies that the authority may remove amount tokens from
// the account. Owners are bounded by the balance, delegates by the remaining
// allowance; anyone else is unauthorized. Pure check, no mutation.
func CheckAuthority(a *TokenAccount, authority crypto.AccountID, amount uint64) error {
	switch role, remaining := a.ClassifyAuthority(authority); role {
	case RoleOwner:
		if a.Amount < amount {
			return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, a.Amount, amount)
		}
	case RoleDelegate:
		if remaining < amount {
			return fmt.Errorf("%w: delegated %d, need %d", ErrInsufficientFunds, remaining, amount)
		}
	default:
		return ErrUnauthorized
	}
	return nil
}

// Transfer moves native currency between system accounts. The authority must
// control the source address itself; custody accounts are controlled by
// reproducing their seed derivation.
func Transfer(v ledger.View, from, to crypto.AccountID, amount uint64, auth Authority) error {
	if auth.Address() != from {
		return ErrUnauthorized
	}

	fromKey := keylet.SystemAccount(from)
	data, err := v.Read(fromKey)
	if err != nil {
		return fmt.Errorf("read source account %s: %w", from, err)
	}
	src, err := ParseSystemAccount(data)
	if err != nil {
		return err
	}

	toKey := keylet.SystemAccount(to)
	data, err = v.Read(toKey)
	if err != nil {
		return fmt.Errorf("read destination account %s: %w", to, err)
	}
	dst, err := ParseSystemAccount(data)
	if err != nil {
		return err
	}

	debited, err := calc.CheckedSub(src.Lamports, amount)
	if err != nil {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, src.Lamports, amount)
	}
	src.Lamports = debited
	dst.Lamports, err = calc.CheckedAdd(dst.Lamports, amount)
	if err != nil {
		return err
	}

	if err := writeSystemAccount(v, fromKey, src); err != nil {
		return err
	}
	return writeSystemAccount(v, toKey, dst)
}

// TransferTokens moves tokens between two holdings of the same mint. The
// authority must be the source owner or a delegate with sufficient remaining
// allowance; delegated transfers consume allowance.
func TransferTokens(v ledger.View, from, to crypto.AccountID, amount uint64, auth Authority) error {
	fromKey := keylet.TokenAccount(from)
	data, err := v.Read(fromKey)
	if err != nil {
		return fmt.Errorf("read source holding %s: %w", from, err)
	}
	src, err := ParseTokenAccount(data)
	if err != nil {
		return err
	}

	if err := debitAuthorized(src, auth.Address(), amount); err != nil {
		return err
	}

	toKey := keylet.TokenAccount(to)
	data, err = v.Read(toKey)
	if err != nil {
		return fmt.Errorf("read destination holding %s: %w", to, err)
	}
	dst, err := ParseTokenAccount(data)
	if err != nil {
		return err
	}
	if dst.Mint != src.Mint {
		return ErrWrongMint
	}
	dst.Amount, err = calc.CheckedAdd(dst.Amount, amount)
	if err != nil {
		return err
	}

	if err := writeTokenAccount(v, fromKey, src); err != nil {
		return err
	}
	return writeTokenAccount(v, toKey, dst)
}

// Burn destroys tokens held by an account and shrinks the mint supply.
// Authorization follows the same owner-or-delegate rules as TransferTokens.
func Burn(v ledger.View, mint, from crypto.AccountID, amount uint64, auth Authority) error {
	fromKey := keylet.TokenAccount(from)
	data, err := v.Read(fromKey)
	if err != nil {
		return fmt.Errorf("read holding %s: %w", from, err)
	}
	src, err := ParseTokenAccount(data)
	if err != nil {
		return err
	}
	if src.Mint != mint {
		return ErrWrongMint
	}

	mintKey := keylet.Mint(mint)
	data, err = v.Read(mintKey)
	if err != nil {
		return fmt.Errorf("read mint %s: %w", mint, err)
	}
	m, err := ParseMint(data)
	if err != nil {
		return err
	}

	if err := debitAuthorized(src, auth.Address(), amount); err != nil {
		return err
	}
	m.Supply, err = calc.CheckedSub(m.Supply, amount)
	if err != nil {
		return fmt.Errorf("mint supply below burn amount: %w", err)
	}

	if err := writeTokenAccount(v, fromKey, src); err != nil {
		return err
	}
	mintData, err := SerializeMint(m)
	if err != nil {
		return err
	}
	return v.Update(mintKey, mintData)
}

// debitAuthorized checks the authority, removes amount from the holding and
// consumes delegated allowance when spending under a delegation.
func debitAuthorized(src *TokenAccount, authority crypto.AccountID, amount uint64) error {
	role, _ := src.ClassifyAuthority(authority)
	if err := CheckAuthority(src, authority, amount); err != nil {
		return err
	}
	debited, err := calc.CheckedSub(src.Amount, amount)
	if err != nil {
		// delegates may hold an allowance larger than the balance
		return fmt.Errorf("%w: balance %d below %d", ErrInsufficientFunds, src.Amount, amount)
	}
	src.Amount = debited
	if role == RoleDelegate {
		src.Delegation.Remaining -= amount
	}
	return nil
}

func writeSystemAccount(v ledger.View, k keylet.Keylet, a *SystemAccount) error {
	data, err := SerializeSystemAccount(a)
	if err != nil {
		return err
	}
	return v.Update(k, data)
}

func writeTokenAccount(v ledger.View, k keylet.Keylet, a *TokenAccount) error {
	data, err := SerializeTokenAccount(a)
	if err != nil {
		return err
	}
	return v.Update(k, data)
}
