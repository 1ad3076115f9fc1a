// =============================
// File: internal/token/account.go
// =============================
package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-router/internal/errcode"
	"github.com/rovshanmuradov/solana-router/internal/runtime"
)

// LoadAccount reads a token account that must be owned by tokenProgramID.
// Errors are router codes: IncorrectTokenProgramId for a foreign owner and
// ExpectedAccount for anything that does not decode.
func LoadAccount(info *runtime.AccountInfo, tokenProgramID solana.PublicKey) (*Account, error) {
	if !info.Owner().Equals(tokenProgramID) {
		return nil, fmt.Errorf("token account %s owned by %s: %w",
			info.Key, info.Owner(), errcode.IncorrectTokenProgramId)
	}

	var acc *Account
	err := info.Data(func(data []byte) error {
		var err error
		acc, err = Unpack(data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("token account %s: %v: %w", info.Key, err, errcode.ExpectedAccount)
	}
	return acc, nil
}

// Balance returns the amount held by a token account.
func Balance(info *runtime.AccountInfo, tokenProgramID solana.PublicKey) (uint64, error) {
	acc, err := LoadAccount(info, tokenProgramID)
	if err != nil {
		return 0, err
	}
	return acc.Amount, nil
}

// NewAccountRecord builds a ledger record for an initialized token account.
func NewAccountRecord(programID, mint, owner solana.PublicKey, amount uint64) *runtime.Account {
	data, err := Encode(&Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  StateInitialized,
	})
	if err != nil {
		panic(err)
	}
	return &runtime.Account{
		Lamports: 2039280,
		Data:     data,
		Owner:    programID,
	}
}
