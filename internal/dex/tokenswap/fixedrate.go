// =============================
// File: internal/dex/tokenswap/fixedrate.go
// =============================
package tokenswap

import (
	"fmt"
	"math/bits"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-router/internal/runtime"
	"github.com/rovshanmuradov/solana-router/internal/token"
)

// Indexes into the Swap account list.
const (
	accSwap = iota
	accAuthority
	accUserTransferAuthority
	accSource
	accSwapSource
	accSwapDestination
	accDestination
	accPoolMint
	accFeeAccount
	accTokenProgram
	accHostFee

	minSwapAccounts = accTokenProgram + 1
)

// FixedRateProgram is a token-swap compatible program that quotes every swap
// at Numerator/Denominator with no fees. The pool authority is the program
// address derived from the swap account key.
type FixedRateProgram struct {
	Numerator   uint64
	Denominator uint64

	logger *zap.Logger
}

func NewFixedRateProgram(logger *zap.Logger, numerator, denominator uint64) *FixedRateProgram {
	return &FixedRateProgram{
		Numerator:   numerator,
		Denominator: denominator,
		logger:      logger.Named("fixed-rate-swap"),
	}
}

// Quote returns the output for amountIn.
func (p *FixedRateProgram) Quote(amountIn uint64) (uint64, error) {
	if p.Denominator == 0 {
		return 0, ErrCalculationFailure
	}
	hi, lo := bits.Mul64(amountIn, p.Numerator)
	if hi >= p.Denominator {
		return 0, ErrCalculationFailure
	}
	out, _ := bits.Div64(hi, lo, p.Denominator)
	return out, nil
}

func (p *FixedRateProgram) Process(ic *runtime.InvokeContext, programID solana.PublicKey, accounts []*runtime.AccountInfo, data []byte) error {
	args, err := DecodeSwap(data)
	if err != nil {
		return err
	}
	if len(accounts) < minSwapAccounts {
		return runtime.ErrNotEnoughAccountKeys
	}
	ic.Log("Instruction: Swap")

	swap := accounts[accSwap]
	if !swap.Owner().Equals(programID) {
		return fmt.Errorf("%w: swap %s", runtime.ErrIncorrectProgramID, swap.Key)
	}
	authority, bump, err := AuthorityAddress(programID, swap.Key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProgramAddress, err)
	}
	if !accounts[accAuthority].Key.Equals(authority) {
		return ErrInvalidProgramAddress
	}

	out, err := p.Quote(args.AmountIn)
	if err != nil {
		return err
	}
	if out == 0 {
		return ErrZeroTradingTokens
	}
	if out < args.MinimumAmountOut {
		return &SlippageExceededError{AmountOut: out, MinimumAmountOut: args.MinimumAmountOut}
	}

	tokenProgram := accounts[accTokenProgram].Key

	in, err := token.NewTransferInstruction(tokenProgram, args.AmountIn,
		accounts[accSource].Key, accounts[accSwapSource].Key, accounts[accUserTransferAuthority].Key)
	if err != nil {
		return err
	}
	if err := ic.Invoke(in, accounts); err != nil {
		return err
	}

	outIx, err := token.NewTransferInstruction(tokenProgram, out,
		accounts[accSwapDestination].Key, accounts[accDestination].Key, authority)
	if err != nil {
		return err
	}
	if err := ic.InvokeSigned(outIx, accounts, [][]byte{swap.Key.Bytes(), {bump}}); err != nil {
		return err
	}

	p.logger.Debug("Swap executed",
		zap.String("swap", swap.Key.String()),
		zap.Uint64("amount_in", args.AmountIn),
		zap.Uint64("amount_out", out),
		zap.Bool("host_fee", len(accounts) > accHostFee))
	return nil
}
