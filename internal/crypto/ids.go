// Package crypto provides keyless account identifiers for protocol-owned
// addresses. Custody accounts and transfer authorities are not backed by a
// private key; their addresses are derived deterministically from seed
// material, and control is proven by reproducing the derivation.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/crypto/ripemd160"
)

// AccountIDSize is the size of an account identifier in bytes.
const AccountIDSize = 20

// AccountID is a 160-bit account identifier.
type AccountID [AccountIDSize]byte

// DeriveAuthority computes the address controlled by the given seed material.
// The address is RIPEMD160(SHA256(seed0 || seed1 || ...)).
//
// The two-hash construction follows Bitcoin's address derivation: it avoids
// length extension issues, and RIPEMD160 is the only hash generally considered
// safe at 160 bits.
func DeriveAuthority(seeds ...[]byte) AccountID {
	h := sha256.New()
	for _, s := range seeds {
		h.Write(s)
	}
	digest := h.Sum(nil)

	r := ripemd160.New()
	r.Write(digest)

	var id AccountID
	copy(id[:], r.Sum(nil))
	return id
}

// AccountIDFromBytes creates an account ID from a byte slice.
// Returns a zero account ID if the slice is not exactly 20 bytes.
func AccountIDFromBytes(b []byte) AccountID {
	var id AccountID
	if len(b) == AccountIDSize {
		copy(id[:], b)
	}
	return id
}

// IsZero returns true if the account ID is all zeros.
func (id AccountID) IsZero() bool {
	for _, b := range id {
		if b != 0 {
			return false
		}
	}
	return true
}

// String returns the hex rendering of the account ID.
func (id AccountID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText renders the account ID as hex.
func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses a hex-encoded account ID.
func (id *AccountID) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid account id %q: %w", text, err)
	}
	if len(b) != AccountIDSize {
		return fmt.Errorf("invalid account id %q: got %d bytes, want %d", text, len(b), AccountIDSize)
	}
	copy(id[:], b)
	return nil
}

// SeedAuthority is a capability proof for a keyless address: whoever can name
// the seed material controls the address. Settlement code reconstructs the
// proof from stored seeds plus a bump nonce and presents it to the token
// service, which checks Address() against the account being moved.
type SeedAuthority struct {
	seeds [][]byte
}

// NewSeedAuthority builds a capability proof from seed material.
func NewSeedAuthority(seeds ...[]byte) SeedAuthority {
	return SeedAuthority{seeds: seeds}
}

// Address returns the address this proof controls.
func (a SeedAuthority) Address() AccountID {
	return DeriveAuthority(a.seeds...)
}
