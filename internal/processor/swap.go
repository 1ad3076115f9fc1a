// =============================
// File: internal/processor/swap.go
// =============================
package processor

import (
	"fmt"
	"math/bits"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-router/internal/dex"
	"github.com/rovshanmuradov/solana-router/internal/errcode"
	"github.com/rovshanmuradov/solana-router/internal/instruction"
	"github.com/rovshanmuradov/solana-router/internal/runtime"
	"github.com/rovshanmuradov/solana-router/internal/state"
	"github.com/rovshanmuradov/solana-router/internal/token"
)

// swapFixedAccounts precede the per-dex accounts: pool, pool authority, user
// transfer authority, pool token account, source, destination, token program.
const swapFixedAccounts = 7

// Leg is one executed adapter call.
type Leg struct {
	Index            int
	Dex              string
	AmountIn         uint64
	MinimumAmountOut uint64
}

// SwapOutcome summarises a successful swap.
type SwapOutcome struct {
	AmountOut uint64
	Legs      []Leg
}

type route struct {
	index   int
	ratio   uint8
	adapter dex.Adapter
}

// ProcessSwap routes amountIn through the configured adapters and releases the
// aggregated output to the destination.
func (p *Processor) ProcessSwap(
	ic *runtime.InvokeContext,
	programID solana.PublicKey,
	amountIn, minimumAmountOut uint64,
	configs []instruction.DexConfig,
	accounts []*runtime.AccountInfo,
) (*SwapOutcome, error) {
	ic.Log("start process swap")
	if amountIn < 1 {
		return nil, fmt.Errorf("amount_in is zero: %w", errcode.InvalidInput)
	}

	it := runtime.NewAccountIter(accounts)
	fixed, err := it.NextN(swapFixedAccounts)
	if err != nil {
		return nil, err
	}
	pool, poolAuthority, userAuthority := fixed[0], fixed[1], fixed[2]
	poolToken, source, destination, tokenProgram := fixed[3], fixed[4], fixed[5], fixed[6]

	if !pool.Owner().Equals(programID) {
		return nil, fmt.Errorf("pool %s: %w", pool.Key, runtime.ErrIncorrectProgramID)
	}
	st, err := state.Load(pool)
	if err != nil {
		return nil, err
	}

	authority, err := AuthorityID(programID, pool.Key, st.Nonce)
	if err != nil {
		return nil, err
	}
	if !poolAuthority.Key.Equals(authority) {
		return nil, fmt.Errorf("pool authority %s: %w", poolAuthority.Key, errcode.InvalidProgramAddress)
	}

	if destination.Key.Equals(st.Token) || source.Key.Equals(st.Token) {
		return nil, fmt.Errorf("user account is the pool token account: %w", errcode.IncorrectSwapAccount)
	}
	if source.Key.Equals(destination.Key) {
		return nil, fmt.Errorf("source equals destination: %w", errcode.InvalidInput)
	}

	poolTokenAccount, err := token.LoadAccount(poolToken, tokenProgram.Key)
	if err != nil {
		return nil, err
	}
	destinationAccount, err := token.LoadAccount(destination, tokenProgram.Key)
	if err != nil {
		return nil, err
	}
	if !poolTokenAccount.Mint.Equals(destinationAccount.Mint) {
		return nil, fmt.Errorf("pool token mint %s differs from destination mint %s: %w",
			poolTokenAccount.Mint, destinationAccount.Mint, errcode.InvalidInput)
	}

	env := dex.Env{
		Context:               ic,
		TokenProgram:          tokenProgram,
		UserTransferAuthority: userAuthority,
		Source:                source,
		Destination:           poolToken,
	}
	routes, err := p.buildRoutes(ic, env, configs, it)
	if err != nil {
		return nil, err
	}

	before, err := token.Balance(poolToken, tokenProgram.Key)
	if err != nil {
		return nil, err
	}

	outcome := &SwapOutcome{}
	for _, r := range routes {
		ratio := uint64(r.ratio)
		legIn, err := mulRatio(amountIn, ratio)
		if err != nil {
			return nil, err
		}
		legMin, err := mulRatio(minimumAmountOut, ratio)
		if err != nil {
			return nil, err
		}
		if legIn == 0 {
			p.metrics.RecordLeg(r.adapter.Name(), "zero")
			continue
		}

		ic.Logf("swap using %s[%d], amount_in: %d, minimum_amount_out: %d",
			r.adapter.Name(), r.index, legIn, legMin)
		if err := r.adapter.ExecuteSwap(legIn, legMin); err != nil {
			p.metrics.RecordLeg(r.adapter.Name(), "failed")
			return nil, err
		}
		p.metrics.RecordLeg(r.adapter.Name(), "executed")

		outcome.Legs = append(outcome.Legs, Leg{
			Index:            r.index,
			Dex:              r.adapter.Name(),
			AmountIn:         legIn,
			MinimumAmountOut: legMin,
		})
	}

	after, err := token.Balance(poolToken, tokenProgram.Key)
	if err != nil {
		return nil, err
	}
	if after < before {
		return nil, fmt.Errorf("pool token balance fell from %d to %d: %w", before, after, errcode.InternalError)
	}
	result := after - before

	if result < minimumAmountOut {
		return nil, fmt.Errorf("output %d below minimum %d: %w", result, minimumAmountOut, errcode.ExceededSlippage)
	}

	ic.Logf("transfer pool token -> destination, amount: %d", result)
	if err := tokenTransfer(ic, pool.Key, tokenProgram, poolToken, destination, poolAuthority, st.Nonce, result); err != nil {
		return nil, err
	}

	outcome.AmountOut = result
	p.logger.Debug("Swap routed",
		zap.String("pool", pool.Key.String()),
		zap.Uint64("amount_in", amountIn),
		zap.Uint64("amount_out", result),
		zap.Int("legs", len(outcome.Legs)))
	return outcome, nil
}

// buildRoutes constructs one adapter per supported config. Under PolicySkip
// an unsupported config consumes no accounts and ratios are taken by adapter
// position, so the n-th built adapter runs with configs[n].Ratio.
func (p *Processor) buildRoutes(ic *runtime.InvokeContext, env dex.Env, configs []instruction.DexConfig, it *runtime.AccountIter) ([]route, error) {
	routes := make([]route, 0, len(configs))
	for i, cfg := range configs {
		t := dex.Type(cfg.DexType)
		if _, ok := p.registry.Name(t); !ok {
			switch p.policy {
			case PolicyReject:
				return nil, fmt.Errorf("dex config %d: %w: %d: %w", i, dex.ErrUnsupportedDex, uint8(t), errcode.InvalidInput)
			case PolicySkipAligned:
				if _, err := it.NextN(cfg.AccountSize); err != nil {
					return nil, err
				}
			}
			ic.Logf("skip unsupported %s at config %d", t, i)
			p.metrics.RecordLeg(t.String(), "skipped")
			continue
		}

		dexAccounts, err := it.NextN(cfg.AccountSize)
		if err != nil {
			return nil, err
		}
		adapter, err := p.registry.Build(t, env, dexAccounts)
		if err != nil {
			return nil, err
		}

		ratio := configs[len(routes)].Ratio
		if p.policy == PolicySkipAligned {
			ratio = cfg.Ratio
		}
		routes = append(routes, route{index: len(routes), ratio: ratio, adapter: adapter})
	}
	return routes, nil
}

// mulRatio scales an amount by a leg ratio.
func mulRatio(amount, ratio uint64) (uint64, error) {
	hi, lo := bits.Mul64(amount, ratio)
	if hi != 0 {
		return 0, fmt.Errorf("%d * %d overflows: %w", amount, ratio, errcode.ConversionFailure)
	}
	return lo, nil
}
