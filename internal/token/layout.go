// =============================
// File: internal/token/layout.go
// =============================
package token

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	tokenprog "github.com/gagliardetto/solana-go/programs/token"
)

// AccountSize is the packed length of a token account.
const AccountSize = 165

// Account is a token account as laid out by the token program.
type Account = tokenprog.Account

const (
	StateUninitialized = tokenprog.Uninitialized
	StateInitialized   = tokenprog.Initialized
	StateFrozen        = tokenprog.Frozen
)

func isFrozen(a *Account) bool {
	return a.State == StateFrozen
}

// Pack writes a into dst, which must be exactly AccountSize bytes.
func Pack(a *Account, dst []byte) error {
	if len(dst) != AccountSize {
		return fmt.Errorf("pack token account into %d bytes", len(dst))
	}
	buf := new(bytes.Buffer)
	buf.Grow(AccountSize)
	if err := bin.NewBinEncoder(buf).Encode(a); err != nil {
		return err
	}
	copy(dst, buf.Bytes())
	return nil
}

// Unpack decodes a token account. Uninitialized accounts are rejected.
func Unpack(src []byte) (*Account, error) {
	if len(src) != AccountSize {
		return nil, fmt.Errorf("unpack token account from %d bytes", len(src))
	}
	var a Account
	if err := bin.NewBinDecoder(src).Decode(&a); err != nil {
		return nil, fmt.Errorf("unpack token account: %w", err)
	}
	switch a.State {
	case StateUninitialized:
		return nil, ErrUninitializedState
	case StateInitialized, StateFrozen:
		return &a, nil
	default:
		return nil, fmt.Errorf("invalid account state %d", a.State)
	}
}

// Encode returns the packed form of a.
func Encode(a *Account) ([]byte, error) {
	buf := make([]byte, AccountSize)
	if err := Pack(a, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
