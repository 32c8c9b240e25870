// Package keylet computes the keys under which ledger entries are stored.
// A keylet binds a 256-bit key to the entry type expected at that key, so a
// lookup cannot silently return an entry of the wrong kind.
package keylet

import (
	"crypto/sha256"

	"github.com/solkeen/marinade-anchor/internal/crypto"
)

// Type identifies the kind of ledger entry stored under a key.
type Type uint16

const (
	TypeSystemAccount Type = 0x0001
	TypeTokenAccount  Type = 0x0002
	TypeMint          Type = 0x0003
	TypeState         Type = 0x0010
)

// Keylet is the typed key of a ledger entry.
type Keylet struct {
	Key  [32]byte
	Type Type
}

// stateKeySpace tags the singleton protocol state entry.
var stateKeySpace = []byte("protocol_state")

func indexed(space Type, id crypto.AccountID) Keylet {
	h := sha256.New()
	h.Write([]byte{byte(space >> 8), byte(space)})
	h.Write(id[:])

	var key [32]byte
	copy(key[:], h.Sum(nil))
	return Keylet{Key: key, Type: space}
}

// SystemAccount returns the keylet of a native-currency account.
func SystemAccount(id crypto.AccountID) Keylet {
	return indexed(TypeSystemAccount, id)
}

// TokenAccount returns the keylet of a token holding.
func TokenAccount(id crypto.AccountID) Keylet {
	return indexed(TypeTokenAccount, id)
}

// Mint returns the keylet of a token mint.
func Mint(id crypto.AccountID) Keylet {
	return indexed(TypeMint, id)
}

// State returns the keylet of the singleton protocol state entry.
func State() Keylet {
	var key [32]byte
	sum := sha256.Sum256(stateKeySpace)
	copy(key[:], sum[:])
	return Keylet{Key: key, Type: TypeState}
}
