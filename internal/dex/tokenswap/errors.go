// =============================
// File: internal/dex/tokenswap/errors.go
// =============================
package tokenswap

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInstruction    = errors.New("token-swap: invalid instruction")
	ErrInvalidProgramAddress = errors.New("token-swap: invalid program address generated from swap key")
	ErrExceededSlippage      = errors.New("token-swap: swap instruction exceeds desired slippage limit")
	ErrZeroTradingTokens     = errors.New("token-swap: given amount results in zero trading tokens")
	ErrCalculationFailure    = errors.New("token-swap: general calculation failure")
)

// SlippageExceededError carries the amounts of a rejected swap.
type SlippageExceededError struct {
	AmountOut        uint64
	MinimumAmountOut uint64
}

func (e *SlippageExceededError) Error() string {
	return fmt.Sprintf("%v: amount out %d below minimum %d",
		ErrExceededSlippage, e.AmountOut, e.MinimumAmountOut)
}

func (e *SlippageExceededError) Unwrap() error {
	return ErrExceededSlippage
}

// IsSlippageExceededError reports whether err was caused by the slippage limit.
func IsSlippageExceededError(err error) bool {
	return errors.Is(err, ErrExceededSlippage)
}
