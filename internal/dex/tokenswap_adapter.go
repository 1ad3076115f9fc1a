// =============================
// File: internal/dex/tokenswap_adapter.go
// =============================
package dex

import (
	"fmt"

	"github.com/rovshanmuradov/solana-router/internal/dex/tokenswap"
	"github.com/rovshanmuradov/solana-router/internal/errcode"
	"github.com/rovshanmuradov/solana-router/internal/runtime"
)

// TokenSwapAccounts is the minimum account count of a token-swap leg:
// swap, authority, swap source, swap destination, pool mint, fee account and
// the token-swap program. An eighth account is the host fee account.
const TokenSwapAccounts = 7

// tokenSwapAdapter – адаптер для пулов token-swap.
type tokenSwapAdapter struct {
	env Env

	swap            *runtime.AccountInfo
	authority       *runtime.AccountInfo
	swapSource      *runtime.AccountInfo
	swapDestination *runtime.AccountInfo
	poolMint        *runtime.AccountInfo
	feeAccount      *runtime.AccountInfo
	program         *runtime.AccountInfo
	hostFee         *runtime.AccountInfo
}

// NewTokenSwapAdapter is the Builder for TypeTokenSwap.
func NewTokenSwapAdapter(env Env, accounts []*runtime.AccountInfo) (Adapter, error) {
	if len(accounts) < TokenSwapAccounts {
		return nil, fmt.Errorf("token-swap needs %d accounts, got %d: %w",
			TokenSwapAccounts, len(accounts), errcode.ExpectedAccount)
	}

	a := &tokenSwapAdapter{
		env:             env,
		swap:            accounts[0],
		authority:       accounts[1],
		swapSource:      accounts[2],
		swapDestination: accounts[3],
		poolMint:        accounts[4],
		feeAccount:      accounts[5],
		program:         accounts[6],
	}
	if len(accounts) > TokenSwapAccounts {
		a.hostFee = accounts[7]
	}
	return a, nil
}

func (a *tokenSwapAdapter) Name() string {
	return TypeTokenSwap.String()
}

func (a *tokenSwapAdapter) ExecuteSwap(amountIn, minimumAmountOut uint64) error {
	params := &tokenswap.SwapInstructionParams{
		ProgramID:             a.program.Key,
		Swap:                  a.swap.Key,
		Authority:             a.authority.Key,
		UserTransferAuthority: a.env.UserTransferAuthority.Key,
		Source:                a.env.Source.Key,
		SwapSource:            a.swapSource.Key,
		SwapDestination:       a.swapDestination.Key,
		Destination:           a.env.Destination.Key,
		PoolMint:              a.poolMint.Key,
		FeeAccount:            a.feeAccount.Key,
		TokenProgram:          a.env.TokenProgram.Key,
		AmountIn:              amountIn,
		MinimumAmountOut:      minimumAmountOut,
	}
	accounts := []*runtime.AccountInfo{
		a.swap,
		a.authority,
		a.env.UserTransferAuthority,
		a.env.Source,
		a.swapSource,
		a.swapDestination,
		a.env.Destination,
		a.poolMint,
		a.feeAccount,
		a.env.TokenProgram,
		a.program,
	}
	if a.hostFee != nil {
		key := a.hostFee.Key
		params.HostFeeAccount = &key
		accounts = append(accounts, a.hostFee)
	}

	ix, err := tokenswap.NewSwapInstruction(params)
	if err != nil {
		return err
	}
	return a.env.Context.Invoke(ix, accounts)
}

