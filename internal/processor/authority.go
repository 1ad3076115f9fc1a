// =============================
// File: internal/processor/authority.go
// =============================
package processor

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-router/internal/errcode"
	"github.com/rovshanmuradov/solana-router/internal/runtime"
	"github.com/rovshanmuradov/solana-router/internal/token"
)

// AuthorityID derives the pool authority from the pool key and nonce.
func AuthorityID(programID, pool solana.PublicKey, nonce uint8) (solana.PublicKey, error) {
	addr, err := solana.CreateProgramAddress(authoritySeeds(pool, nonce), programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive authority: %v: %w", err, errcode.InvalidProgramAddress)
	}
	return addr, nil
}

// FindAuthority searches for the nonce that yields a valid authority.
func FindAuthority(programID, pool solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{pool.Bytes()}, programID)
}

func authoritySeeds(pool solana.PublicKey, nonce uint8) [][]byte {
	return [][]byte{pool.Bytes(), {nonce}}
}

// tokenTransfer moves amount from source to destination with the pool
// authority signing through its seeds.
func tokenTransfer(
	ic *runtime.InvokeContext,
	pool solana.PublicKey,
	tokenProgram, source, destination, authority *runtime.AccountInfo,
	nonce uint8,
	amount uint64,
) error {
	ix, err := token.NewTransferInstruction(tokenProgram.Key, amount, source.Key, destination.Key, authority.Key)
	if err != nil {
		return fmt.Errorf("build transfer: %w", err)
	}
	return ic.InvokeSigned(ix,
		[]*runtime.AccountInfo{source, destination, authority, tokenProgram},
		authoritySeeds(pool, nonce))
}
