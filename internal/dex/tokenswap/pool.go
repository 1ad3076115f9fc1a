// =============================
// File: internal/dex/tokenswap/pool.go
// =============================
package tokenswap

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-router/internal/runtime"
	"github.com/rovshanmuradov/solana-router/internal/token"
)

// Pool is the account set of one token-swap pool.
type Pool struct {
	ProgramID       solana.PublicKey
	Swap            solana.PublicKey
	Authority       solana.PublicKey
	SwapSource      solana.PublicKey
	SwapDestination solana.PublicKey
	PoolMint        solana.PublicKey
	FeeAccount      solana.PublicKey
	HostFeeAccount  *solana.PublicKey
}

// PoolConfig describes a pool to seed into a runtime.
type PoolConfig struct {
	ProgramID       solana.PublicKey
	TokenProgramID  solana.PublicKey
	SourceMint      solana.PublicKey
	DestinationMint solana.PublicKey
	// Liquidity is the destination-side vault balance.
	Liquidity       uint64
	WithHostFee     bool
}

// SeedPool creates the accounts of a fresh pool in rt under random keys.
func SeedPool(rt *runtime.Runtime, cfg PoolConfig) (*Pool, error) {
	swap := solana.NewWallet().PublicKey()
	authority, _, err := AuthorityAddress(cfg.ProgramID, swap)
	if err != nil {
		return nil, fmt.Errorf("derive pool authority: %w", err)
	}

	p := &Pool{
		ProgramID:       cfg.ProgramID,
		Swap:            swap,
		Authority:       authority,
		SwapSource:      solana.NewWallet().PublicKey(),
		SwapDestination: solana.NewWallet().PublicKey(),
		PoolMint:        solana.NewWallet().PublicKey(),
		FeeAccount:      solana.NewWallet().PublicKey(),
	}

	rt.SetAccount(p.Swap, &runtime.Account{Owner: cfg.ProgramID, Data: make([]byte, 1)})
	rt.SetAccount(p.SwapSource, token.NewAccountRecord(cfg.TokenProgramID, cfg.SourceMint, authority, 0))
	rt.SetAccount(p.SwapDestination, token.NewAccountRecord(cfg.TokenProgramID, cfg.DestinationMint, authority, cfg.Liquidity))
	rt.SetAccount(p.PoolMint, &runtime.Account{Owner: cfg.TokenProgramID})
	rt.SetAccount(p.FeeAccount, token.NewAccountRecord(cfg.TokenProgramID, p.PoolMint, authority, 0))

	if cfg.WithHostFee {
		host := solana.NewWallet().PublicKey()
		rt.SetAccount(host, token.NewAccountRecord(cfg.TokenProgramID, p.PoolMint, solana.NewWallet().PublicKey(), 0))
		p.HostFeeAccount = &host
	}
	return p, nil
}

// AccountMetas returns the pool accounts in the order a router leg expects.
func (p *Pool) AccountMetas() []*solana.AccountMeta {
	metas := []*solana.AccountMeta{
		solana.NewAccountMeta(p.Swap, false, false),
		solana.NewAccountMeta(p.Authority, false, false),
		solana.NewAccountMeta(p.SwapSource, true, false),
		solana.NewAccountMeta(p.SwapDestination, true, false),
		solana.NewAccountMeta(p.PoolMint, true, false),
		solana.NewAccountMeta(p.FeeAccount, true, false),
		solana.NewAccountMeta(p.ProgramID, false, false),
	}
	if p.HostFeeAccount != nil {
		metas = append(metas, solana.NewAccountMeta(*p.HostFeeAccount, true, false))
	}
	return metas
}
