// =============================
// File: internal/dex/adapter.go
// =============================
package dex

import (
	"fmt"

	"github.com/rovshanmuradov/solana-router/internal/runtime"
)

// Type is the dex_type byte of a swap leg.
type Type uint8

const (
	// TypeTokenSwap is the standard token-swap pool.
	TypeTokenSwap Type = 0
)

func (t Type) String() string {
	switch t {
	case TypeTokenSwap:
		return "token-swap"
	default:
		return fmt.Sprintf("dex(%d)", uint8(t))
	}
}

// Adapter executes one leg of a routed swap.
type Adapter interface {
	// Name is used in program logs.
	Name() string
	// ExecuteSwap trades amountIn from the user source into the pool token
	// account. Errors are returned as produced by the exchange.
	ExecuteSwap(amountIn, minimumAmountOut uint64) error
}

// Env is what every adapter shares with the router for one invocation.
type Env struct {
	Context               *runtime.InvokeContext
	TokenProgram          *runtime.AccountInfo
	UserTransferAuthority *runtime.AccountInfo
	Source                *runtime.AccountInfo
	// Destination is the pool token account receiving the leg's output.
	Destination *runtime.AccountInfo
}

// Builder constructs an adapter from its slice of the instruction accounts.
type Builder func(env Env, accounts []*runtime.AccountInfo) (Adapter, error)
