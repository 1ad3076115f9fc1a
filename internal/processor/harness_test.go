package processor

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-router/internal/dex"
	"github.com/rovshanmuradov/solana-router/internal/dex/tokenswap"
	"github.com/rovshanmuradov/solana-router/internal/instruction"
	"github.com/rovshanmuradov/solana-router/internal/runtime"
	"github.com/rovshanmuradov/solana-router/internal/state"
	"github.com/rovshanmuradov/solana-router/internal/token"
	"github.com/rovshanmuradov/solana-router/internal/utils/metrics"
)

const (
	userBalance      = 1_000
	poolTokenBalance = 7
	poolLiquidity    = 1_000_000
)

// harness is an initialized router pool plus a funded user.
type harness struct {
	t         *testing.T
	rt        *runtime.Runtime
	registry  *dex.Registry
	metrics   *metrics.Collector
	programID solana.PublicKey

	srcMint solana.PublicKey
	dstMint solana.PublicKey

	pool          solana.PublicKey
	poolAuthority solana.PublicKey
	nonce         uint8
	poolToken     solana.PublicKey

	user        solana.PublicKey
	source      solana.PublicKey
	destination solana.PublicKey
}

func newHarness(t *testing.T, opts ...Option) *harness {
	logger := zaptest.NewLogger(t)
	h := &harness{
		t:           t,
		rt:          runtime.New(logger),
		registry:    dex.NewDefaultRegistry(logger),
		metrics:     metrics.NewCollector(),
		programID:   solana.NewWallet().PublicKey(),
		srcMint:     solana.NewWallet().PublicKey(),
		dstMint:     solana.NewWallet().PublicKey(),
		pool:        solana.NewWallet().PublicKey(),
		poolToken:   solana.NewWallet().PublicKey(),
		user:        solana.NewWallet().PublicKey(),
		source:      solana.NewWallet().PublicKey(),
		destination: solana.NewWallet().PublicKey(),
	}

	opts = append([]Option{WithMetrics(h.metrics)}, opts...)
	h.rt.RegisterProgram(solana.TokenProgramID, token.NewProgram(logger))
	h.rt.RegisterProgram(h.programID, New(h.registry, logger, opts...))

	authority, nonce, err := FindAuthority(h.programID, h.pool)
	require.NoError(t, err)
	h.poolAuthority, h.nonce = authority, nonce

	data := make([]byte, state.Size)
	require.NoError(t, state.Pack(&state.ProtocolState{
		Version:        state.CurrentVersion,
		Nonce:          nonce,
		TokenProgramID: solana.TokenProgramID,
		Token:          h.poolToken,
		TokenMint:      h.dstMint,
	}, data))
	h.rt.SetAccount(h.pool, &runtime.Account{Owner: h.programID, Data: data})
	h.rt.SetAccount(h.poolToken, token.NewAccountRecord(solana.TokenProgramID, h.dstMint, authority, poolTokenBalance))

	h.rt.SetAccount(h.source, token.NewAccountRecord(solana.TokenProgramID, h.srcMint, h.user, userBalance))
	h.rt.SetAccount(h.destination, token.NewAccountRecord(solana.TokenProgramID, h.dstMint, h.user, 0))
	return h
}

// addExchange registers a fixed-rate exchange and seeds one pool on it.
func (h *harness) addExchange(numerator, denominator uint64) *tokenswap.Pool {
	logger := zaptest.NewLogger(h.t)
	programID := solana.NewWallet().PublicKey()
	h.rt.RegisterProgram(programID, tokenswap.NewFixedRateProgram(logger, numerator, denominator))

	pool, err := tokenswap.SeedPool(h.rt, tokenswap.PoolConfig{
		ProgramID:       programID,
		TokenProgramID:  solana.TokenProgramID,
		SourceMint:      h.srcMint,
		DestinationMint: h.dstMint,
		Liquidity:       poolLiquidity,
	})
	require.NoError(h.t, err)
	return pool
}

func (h *harness) swapAccounts() instruction.SwapAccounts {
	return instruction.SwapAccounts{
		Pool:                  h.pool,
		PoolAuthority:         h.poolAuthority,
		UserTransferAuthority: h.user,
		PoolToken:             h.poolToken,
		Source:                h.source,
		Destination:           h.destination,
		TokenProgram:          solana.TokenProgramID,
	}
}

func (h *harness) swapInstruction(amountIn, minOut uint64, configs []instruction.DexConfig, groups ...[]*solana.AccountMeta) solana.Instruction {
	return h.swapInstructionWith(h.swapAccounts(), amountIn, minOut, configs, groups...)
}

func (h *harness) swapInstructionWith(accounts instruction.SwapAccounts, amountIn, minOut uint64, configs []instruction.DexConfig, groups ...[]*solana.AccountMeta) solana.Instruction {
	ix, err := instruction.NewSwapInstruction(h.programID, &instruction.Swap{
		AmountIn:         amountIn,
		MinimumAmountOut: minOut,
		DexConfigs:       configs,
	}, accounts, groups...)
	require.NoError(h.t, err)
	return ix
}

func (h *harness) execute(ix solana.Instruction) *runtime.Result {
	return h.rt.Execute(context.Background(), runtime.Transaction{
		Instructions: []solana.Instruction{ix},
		Signers:      []solana.PublicKey{h.user},
	})
}

func (h *harness) balance(key solana.PublicKey) uint64 {
	acc, ok := h.rt.Account(key)
	require.True(h.t, ok)
	tok, err := token.Unpack(acc.Data)
	require.NoError(h.t, err)
	return tok.Amount
}

// assertUntouched checks that the user and pool balances are at their seeds.
func (h *harness) assertUntouched() {
	require.Equal(h.t, uint64(userBalance), h.balance(h.source))
	require.Equal(h.t, uint64(0), h.balance(h.destination))
	require.Equal(h.t, uint64(poolTokenBalance), h.balance(h.poolToken))
}

func tokenSwapConfig(ratio uint8) instruction.DexConfig {
	return instruction.NewDexConfig(uint8(dex.TypeTokenSwap), dex.TokenSwapAccounts, ratio)
}
