// =============================
// File: internal/token/builder.go
// =============================
package token

import (
	"github.com/gagliardetto/solana-go"
	tokenprog "github.com/gagliardetto/solana-go/programs/token"
)

// NewTransferInstruction builds a Transfer addressed to programID, which may
// differ from the mainnet token program.
func NewTransferInstruction(programID solana.PublicKey, amount uint64, source, destination, authority solana.PublicKey) (solana.Instruction, error) {
	ix, err := tokenprog.NewTransferInstruction(amount, source, destination, authority, nil).ValidateAndBuild()
	if err != nil {
		return nil, err
	}
	return rebind(programID, ix)
}

// NewApproveInstruction builds an Approve addressed to programID.
func NewApproveInstruction(programID solana.PublicKey, amount uint64, source, delegate, owner solana.PublicKey) (solana.Instruction, error) {
	ix, err := tokenprog.NewApproveInstruction(amount, source, delegate, owner, nil).ValidateAndBuild()
	if err != nil {
		return nil, err
	}
	return rebind(programID, ix)
}

func rebind(programID solana.PublicKey, ix solana.Instruction) (solana.Instruction, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, ix.Accounts(), data), nil
}
