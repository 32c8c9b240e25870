package token

import (
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/solkeen/marinade-anchor/internal/crypto"
)

// cborHandle is the shared codec handle for ledger entry encoding.
var cborHandle codec.CborHandle

// SystemAccount is a native-currency account identified by its address.
type SystemAccount struct {
	Address  crypto.AccountID `codec:"address"`
	Lamports uint64           `codec:"lamports"`
}

// Mint describes a fungible token and its actual minted supply.
type Mint struct {
	Address crypto.AccountID `codec:"address"`
	Supply  uint64           `codec:"supply"`

	// Authority may mint new tokens; zero means minting is disabled.
	Authority crypto.AccountID `codec:"authority"`
}

// Delegation is a bounded pre-approval for a third party to move funds out
// of a token account. Remaining is decremented as the delegate spends.
type Delegation struct {
	Authority crypto.AccountID `codec:"authority"`
	Remaining uint64           `codec:"remaining"`
}

// TokenAccount is a holding of one mint's tokens.
type TokenAccount struct {
	Address crypto.AccountID `codec:"address"`
	Mint    crypto.AccountID `codec:"mint"`
	Owner   crypto.AccountID `codec:"owner"`
	Amount  uint64           `codec:"amount"`

	// Delegation, when set, grants a bounded allowance to a second authority.
	Delegation *Delegation `codec:"delegation,omitempty"`
}

func serialize(v any) ([]byte, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, &cborHandle).Encode(v); err != nil {
		return nil, fmt.Errorf("encode ledger entry: %w", err)
	}
	return b, nil
}

func parse(data []byte, v any) error {
	if err := codec.NewDecoderBytes(data, &cborHandle).Decode(v); err != nil {
		return fmt.Errorf("decode ledger entry: %w", err)
	}
	return nil
}

// SerializeSystemAccount encodes a system account entry.
func SerializeSystemAccount(a *SystemAccount) ([]byte, error) { return serialize(a) }

// ParseSystemAccount decodes a system account entry.
func ParseSystemAccount(data []byte) (*SystemAccount, error) {
	var a SystemAccount
	if err := parse(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// SerializeMint encodes a mint entry.
func SerializeMint(m *Mint) ([]byte, error) { return serialize(m) }

// ParseMint decodes a mint entry.
func ParseMint(data []byte) (*Mint, error) {
	var m Mint
	if err := parse(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SerializeTokenAccount encodes a token account entry.
func SerializeTokenAccount(a *TokenAccount) ([]byte, error) { return serialize(a) }

// ParseTokenAccount decodes a token account entry.
func ParseTokenAccount(data []byte) (*TokenAccount, error) {
	var a TokenAccount
	if err := parse(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
