package scenario

import (
	"bytes"
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-router/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-router/internal/processor"
	"github.com/rovshanmuradov/solana-router/internal/utils/metrics"
)

func run(t *testing.T, path string, opts ...RunnerOption) *Report {
	t.Helper()
	f, err := LoadFile(path)
	require.NoError(t, err)

	report, err := NewRunner(zaptest.NewLogger(t), opts...).Run(context.Background(), f)
	require.NoError(t, err)
	return report
}

func TestRunSplitAcrossExchanges(t *testing.T) {
	m := metrics.NewCollector()
	report := run(t, "testdata/split_two_exchanges.yaml", WithMetrics(m))

	require.NoError(t, report.Err)
	assert.True(t, report.Passed(), report.Mismatches)
	assert.NotEmpty(t, report.RunID)

	sol, ok := report.Balance("alice_sol")
	require.True(t, ok)
	assert.Equal(t, "0.00000003", sol.Delta().String())

	usdc, ok := report.Balance("alice_usdc")
	require.True(t, ok)
	assert.Equal(t, "0.001", usdc.BeforeUI().String())
	assert.Equal(t, "-0.00003", usdc.Delta().String())

	assert.Contains(t, report.Logs, "Program log: Instruction: Initialize")
	assert.Contains(t, report.Logs, "Program log: swap using token-swap[1], amount_in: 20, minimum_amount_out: 20")
	assert.Contains(t, report.Logs, "Program log: transfer pool token -> destination, amount: 30")

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf))
	assert.Contains(t, buf.String(), "scenario split-two-exchanges [PASS]")
	assert.Contains(t, buf.String(), "(+0.00000003)")

	var metricsText bytes.Buffer
	require.NoError(t, m.WriteText(&metricsText))
	assert.Contains(t, metricsText.String(), `solana_router_instructions_total{instruction="Initialize",result="success"} 1`)
}

func TestRunLegSlippage(t *testing.T) {
	report := run(t, "testdata/slippage.yaml")

	require.Error(t, report.Err)
	assert.True(t, report.Passed(), report.Mismatches)
}

func TestRunUnknownDexPolicy(t *testing.T) {
	report := run(t, "testdata/unknown_dex.yaml")
	require.NoError(t, report.Err)
	assert.True(t, report.Passed(), report.Mismatches)
	assert.Contains(t, report.Logs, "Program log: skip unsupported dex(7) at config 1")

	aligned := run(t, "testdata/unknown_dex.yaml",
		WithProcessorOptions(processor.WithUnknownDexPolicy(processor.PolicySkipAligned)))
	require.NoError(t, aligned.Err)
	assert.True(t, aligned.Passed(), aligned.Mismatches)

	rejected := run(t, "testdata/unknown_dex.yaml",
		WithProcessorOptions(processor.WithUnknownDexPolicy(processor.PolicyReject)))
	assert.Error(t, rejected.Err)
	assert.False(t, rejected.Passed())
}

func TestRunReportsMismatches(t *testing.T) {
	f, err := LoadFile("testdata/split_two_exchanges.yaml")
	require.NoError(t, err)
	f.Expect.Balances["alice_sol"] = 31
	f.Expect.Balances["nobody"] = 0

	report, err := NewRunner(zaptest.NewLogger(t)).Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"balance alice_sol: want 31, got 30",
		"balance nobody: not tracked",
	}, report.Mismatches)

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf))
	assert.Contains(t, buf.String(), "[FAIL]")
}

type stubFetcher struct {
	accounts map[solana.PublicKey]*rpc.Account
}

func (s stubFetcher) GetMultipleAccountsWithOpts(_ context.Context, keys []solana.PublicKey, _ *rpc.GetMultipleAccountsOpts) (*rpc.GetMultipleAccountsResult, error) {
	res := &rpc.GetMultipleAccountsResult{Value: make([]*rpc.Account, len(keys))}
	for i, k := range keys {
		res.Value[i] = s.accounts[k]
	}
	return res, nil
}

func TestRunFetchesAccounts(t *testing.T) {
	f, err := LoadFile("testdata/unknown_dex.yaml")
	require.NoError(t, err)

	market := solana.NewWallet().PublicKey()
	f.Accounts[0] = RawAccount{Name: "serum_market", Key: market.String(), Fetch: true}

	_, err = NewRunner(zaptest.NewLogger(t)).Run(context.Background(), f)
	assert.ErrorContains(t, err, "no rpc is configured")

	logger := zaptest.NewLogger(t)
	client := solbc.NewClientWithFetcher(stubFetcher{accounts: map[solana.PublicKey]*rpc.Account{
		market: {Lamports: 1, Owner: solana.SystemProgramID},
	}}, logger, nil)
	loader := solbc.NewLoader(client, logger, 0, 1)

	report, err := NewRunner(logger, WithLoader(loader)).Run(context.Background(), f)
	require.NoError(t, err)
	assert.True(t, report.Passed(), report.Mismatches)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing router token", "swap: {user: a, source: b, destination: c, routes: [{exchange: x}]}"},
		{"missing swap accounts", "router: {token: t}\nswap: {user: a, routes: [{exchange: x}]}"},
		{"no routes", "router: {token: t}\nswap: {user: a, source: b, destination: c}"},
		{"route with both kinds", "router: {token: t}\nswap: {user: a, source: b, destination: c, routes: [{exchange: x, dex_type: 1}]}"},
		{"zero denominator", "router: {token: t}\nexchanges: [{name: x}]\nswap: {user: a, source: b, destination: c, routes: [{exchange: x}]}"},
		{"not yaml", "router: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestRunFixtureErrors(t *testing.T) {
	base := func(t *testing.T) *File {
		f, err := LoadFile("testdata/split_two_exchanges.yaml")
		require.NoError(t, err)
		return f
	}

	tests := []struct {
		name   string
		mutate func(f *File)
		want   string
	}{
		{"unknown mint", func(f *File) { f.TokenAccounts[1].Mint = "btc" }, `unknown account "btc"`},
		{"duplicate name", func(f *File) { f.Wallets = append(f.Wallets, "alice") }, `"alice" defined twice`},
		{"bad data encoding", func(f *File) {
			f.Accounts = []RawAccount{{Name: "blob", Data: "xx", Encoding: "hex"}}
		}, "unknown data encoding"},
		{"router token owned by user", func(f *File) { f.TokenAccounts[0].Owner = "alice" }, "initialize router pool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base(t)
			tt.mutate(f)
			_, err := NewRunner(zaptest.NewLogger(t)).Run(context.Background(), f)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDecodeData(t *testing.T) {
	b, err := decodeData("AQID", "")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)

	b, err = decodeData("Ldp", "base58")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)
}
