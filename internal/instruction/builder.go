// =============================
// File: internal/instruction/builder.go
// =============================
package instruction

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-router/internal/errcode"
)

// InitializeAccounts lists the accounts of an Initialize instruction.
type InitializeAccounts struct {
	Pool         solana.PublicKey
	Authority    solana.PublicKey
	Token        solana.PublicKey
	TokenProgram solana.PublicKey
}

// SwapAccounts lists the fixed accounts of a Swap instruction.
type SwapAccounts struct {
	Pool                  solana.PublicKey
	PoolAuthority         solana.PublicKey
	UserTransferAuthority solana.PublicKey
	PoolToken             solana.PublicKey
	Source                solana.PublicKey
	Destination           solana.PublicKey
	TokenProgram          solana.PublicKey
}

// NewInitializeInstruction builds a client-side Initialize instruction.
func NewInitializeInstruction(programID solana.PublicKey, nonce uint8, accounts InitializeAccounts) (solana.Instruction, error) {
	data, err := Encode(&Initialize{Nonce: nonce})
	if err != nil {
		return nil, err
	}

	metas := []*solana.AccountMeta{
		solana.NewAccountMeta(accounts.Pool, true, false),
		solana.NewAccountMeta(accounts.Authority, false, false),
		solana.NewAccountMeta(accounts.Token, false, false),
		solana.NewAccountMeta(accounts.TokenProgram, false, false),
	}
	return solana.NewInstruction(programID, metas, data), nil
}

// NewSwapInstruction builds a client-side Swap instruction. dexAccounts holds
// one slice per dex config, each exactly AccountSize long.
func NewSwapInstruction(
	programID solana.PublicKey,
	swap *Swap,
	accounts SwapAccounts,
	dexAccounts ...[]*solana.AccountMeta,
) (solana.Instruction, error) {
	if len(dexAccounts) != len(swap.DexConfigs) {
		return nil, fmt.Errorf("swap instruction: %d account groups for %d dex configs: %w",
			len(dexAccounts), len(swap.DexConfigs), errcode.InvalidInput)
	}

	data, err := Encode(swap)
	if err != nil {
		return nil, err
	}

	metas := make([]*solana.AccountMeta, 0, 7+swap.TotalAccounts())
	metas = append(metas,
		solana.NewAccountMeta(accounts.Pool, false, false),
		solana.NewAccountMeta(accounts.PoolAuthority, false, false),
		solana.NewAccountMeta(accounts.UserTransferAuthority, false, true),
		solana.NewAccountMeta(accounts.PoolToken, true, false),
		solana.NewAccountMeta(accounts.Source, true, false),
		solana.NewAccountMeta(accounts.Destination, true, false),
		solana.NewAccountMeta(accounts.TokenProgram, false, false),
	)

	for i, group := range dexAccounts {
		if len(group) != swap.DexConfigs[i].AccountSize {
			return nil, fmt.Errorf("swap instruction: dex config %d expects %d accounts, got %d: %w",
				i, swap.DexConfigs[i].AccountSize, len(group), errcode.InvalidInput)
		}
		metas = append(metas, group...)
	}

	return solana.NewInstruction(programID, metas, data), nil
}
