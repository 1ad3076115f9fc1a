// =============================
// File: internal/dex/tokenswap/instructions.go
// =============================
package tokenswap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// InstructionSwap is the token-swap program tag for Swap.
const InstructionSwap uint8 = 1

// SwapArgs is the payload of a Swap instruction after the tag.
type SwapArgs struct {
	AmountIn         uint64
	MinimumAmountOut uint64
}

func (a SwapArgs) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(InstructionSwap); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.AmountIn, binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteUint64(a.MinimumAmountOut, binary.LittleEndian)
}

func (a *SwapArgs) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	tag, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if tag != InstructionSwap {
		return fmt.Errorf("%w: tag %d", ErrInvalidInstruction, tag)
	}
	if a.AmountIn, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	a.MinimumAmountOut, err = dec.ReadUint64(binary.LittleEndian)
	return err
}

// DecodeSwap parses a token-swap Swap payload.
func DecodeSwap(data []byte) (*SwapArgs, error) {
	var args SwapArgs
	if err := args.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		if errors.Is(err, ErrInvalidInstruction) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
	}
	return &args, nil
}

// SwapInstructionParams holds the accounts and amounts of a Swap.
type SwapInstructionParams struct {
	ProgramID             solana.PublicKey
	Swap                  solana.PublicKey
	Authority             solana.PublicKey
	UserTransferAuthority solana.PublicKey
	Source                solana.PublicKey
	SwapSource            solana.PublicKey
	SwapDestination       solana.PublicKey
	Destination           solana.PublicKey
	PoolMint              solana.PublicKey
	FeeAccount            solana.PublicKey
	TokenProgram          solana.PublicKey
	// HostFeeAccount is optional.
	HostFeeAccount *solana.PublicKey

	AmountIn         uint64
	MinimumAmountOut uint64
}

// NewSwapInstruction builds the token-swap Swap instruction.
func NewSwapInstruction(params *SwapInstructionParams) (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	args := SwapArgs{AmountIn: params.AmountIn, MinimumAmountOut: params.MinimumAmountOut}
	if err := args.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return nil, err
	}

	accountMetas := []*solana.AccountMeta{
		solana.NewAccountMeta(params.Swap, false, false),
		solana.NewAccountMeta(params.Authority, false, false),
		solana.NewAccountMeta(params.UserTransferAuthority, false, true),
		solana.NewAccountMeta(params.Source, true, false),
		solana.NewAccountMeta(params.SwapSource, true, false),
		solana.NewAccountMeta(params.SwapDestination, true, false),
		solana.NewAccountMeta(params.Destination, true, false),
		solana.NewAccountMeta(params.PoolMint, true, false),
		solana.NewAccountMeta(params.FeeAccount, true, false),
		solana.NewAccountMeta(params.TokenProgram, false, false),
	}
	if params.HostFeeAccount != nil {
		accountMetas = append(accountMetas, solana.NewAccountMeta(*params.HostFeeAccount, true, false))
	}

	return solana.NewInstruction(params.ProgramID, accountMetas, buf.Bytes()), nil
}

// AuthorityAddress derives the pool authority of a swap account.
func AuthorityAddress(programID, swap solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{swap.Bytes()}, programID)
}
