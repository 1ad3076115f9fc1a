// =============================
// File: internal/scenario/run.go
// =============================
package scenario

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-router/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-router/internal/dex"
	"github.com/rovshanmuradov/solana-router/internal/dex/tokenswap"
	"github.com/rovshanmuradov/solana-router/internal/instruction"
	"github.com/rovshanmuradov/solana-router/internal/processor"
	"github.com/rovshanmuradov/solana-router/internal/runtime"
	"github.com/rovshanmuradov/solana-router/internal/state"
	"github.com/rovshanmuradov/solana-router/internal/token"
	"github.com/rovshanmuradov/solana-router/internal/utils/metrics"
)

// Runner executes scenarios against a fresh runtime each time.
type Runner struct {
	logger         *zap.Logger
	metrics        *metrics.Collector
	loader         *solbc.Loader
	tokenProgramID solana.PublicKey
	processorOpts  []processor.Option
}

type RunnerOption func(*Runner)

// WithLoader lets accounts marked fetch be loaded from a cluster.
func WithLoader(l *solbc.Loader) RunnerOption {
	return func(r *Runner) { r.loader = l }
}

func WithMetrics(m *metrics.Collector) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

func WithTokenProgram(id solana.PublicKey) RunnerOption {
	return func(r *Runner) { r.tokenProgramID = id }
}

func WithProcessorOptions(opts ...processor.Option) RunnerOption {
	return func(r *Runner) { r.processorOpts = append(r.processorOpts, opts...) }
}

func NewRunner(logger *zap.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:         logger.Named("scenario"),
		tokenProgramID: solana.TokenProgramID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// session is the per-run state: the runtime and the address book.
type session struct {
	rt       *runtime.Runtime
	book     map[string]solana.PublicKey
	decimals map[solana.PublicKey]int32
	pools    map[string]*tokenswap.Pool
	tracked  []Balance
	logs     []string
}

func (s *session) resolve(name string) (solana.PublicKey, error) {
	if key, ok := s.book[name]; ok {
		return key, nil
	}
	key, err := solana.PublicKeyFromBase58(name)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("unknown account %q", name)
	}
	return key, nil
}

// define binds name to key, or to a fresh key when key is empty.
func (s *session) define(name, key string) (solana.PublicKey, error) {
	if _, dup := s.book[name]; dup {
		return solana.PublicKey{}, fmt.Errorf("account %q defined twice", name)
	}
	pk := solana.NewWallet().PublicKey()
	if key != "" {
		var err error
		if pk, err = solana.PublicKeyFromBase58(key); err != nil {
			return solana.PublicKey{}, fmt.Errorf("account %q: %w", name, err)
		}
	}
	s.book[name] = pk
	return pk, nil
}

func (s *session) track(name string, key solana.PublicKey, mint solana.PublicKey, mintName string) {
	s.tracked = append(s.tracked, Balance{
		Name:     name,
		Key:      key,
		Mint:     mintName,
		Decimals: s.decimals[mint],
	})
}

func (s *session) balance(key solana.PublicKey) uint64 {
	acc, ok := s.rt.Account(key)
	if !ok {
		return 0
	}
	tok, err := token.Unpack(acc.Data)
	if err != nil {
		return 0
	}
	return tok.Amount
}

// Run builds the fixture, initializes the router pool and executes the swap.
// Fixture errors are returned; a failing swap is reported in Report.Err.
func (r *Runner) Run(ctx context.Context, f *File) (*Report, error) {
	runID := uuid.New().String()
	log := r.logger.With(zap.String("scenario", f.Name), zap.String("run_id", runID))

	s := &session{
		rt:       runtime.New(log),
		book:     make(map[string]solana.PublicKey),
		decimals: make(map[solana.PublicKey]int32),
		pools:    make(map[string]*tokenswap.Pool),
	}
	s.book[NameTokenProgram] = r.tokenProgramID
	s.book[NameSystemProgram] = solana.SystemProgramID

	programID, err := s.define(NameRouter, f.ProgramID)
	if err != nil {
		return nil, err
	}
	opts := append([]processor.Option{processor.WithMetrics(r.metrics)}, r.processorOpts...)
	s.rt.RegisterProgram(r.tokenProgramID, token.NewProgram(log))
	s.rt.RegisterProgram(programID, processor.New(dex.NewDefaultRegistry(log), log, opts...))

	if err := r.setup(ctx, s, f, programID, log); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", f.Name, err)
	}

	for i := range s.tracked {
		s.tracked[i].Before = s.balance(s.tracked[i].Key)
	}

	ix, signers, err := r.buildSwap(s, f, programID)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", f.Name, err)
	}
	res := s.rt.Execute(ctx, runtime.Transaction{
		Instructions: []solana.Instruction{ix},
		Signers:      signers,
	})

	for i := range s.tracked {
		s.tracked[i].After = s.balance(s.tracked[i].Key)
	}

	report := &Report{
		Scenario: f.Name,
		RunID:    runID,
		Err:      res.Err,
		Logs:     append(s.logs, res.Logs...),
		Balances: s.tracked,
	}
	report.Mismatches = checkExpectations(f.Expect, report)

	log.Info("Scenario finished",
		zap.Bool("passed", report.Passed()),
		zap.Bool("swap_failed", res.Failed()))
	return report, nil
}

func (r *Runner) setup(ctx context.Context, s *session, f *File, programID solana.PublicKey, log *zap.Logger) error {
	for _, w := range f.Wallets {
		if _, err := s.define(w, ""); err != nil {
			return err
		}
	}
	for _, m := range f.Mints {
		key, err := s.define(m.Name, m.Key)
		if err != nil {
			return err
		}
		s.decimals[key] = m.Decimals
	}

	pool, err := s.define(NameRouterPool, "")
	if err != nil {
		return err
	}
	authority, nonce, err := processor.FindAuthority(programID, pool)
	if err != nil {
		return fmt.Errorf("derive router authority: %w", err)
	}
	s.book[NameRouterAuthority] = authority
	s.rt.SetAccount(pool, &runtime.Account{Owner: programID, Data: make([]byte, state.Size)})

	for _, ex := range f.Exchanges {
		if err := r.seedExchange(s, ex, log); err != nil {
			return err
		}
	}

	for _, ta := range f.TokenAccounts {
		if err := r.seedTokenAccount(s, ta); err != nil {
			return err
		}
	}

	if err := r.seedRawAccounts(ctx, s, f.Accounts); err != nil {
		return err
	}

	return r.initializeRouter(ctx, s, f, programID, pool, authority, nonce)
}

func (r *Runner) seedExchange(s *session, ex Exchange, log *zap.Logger) error {
	srcMint, err := s.resolve(ex.SourceMint)
	if err != nil {
		return fmt.Errorf("exchange %s: %w", ex.Name, err)
	}
	dstMint, err := s.resolve(ex.DestinationMint)
	if err != nil {
		return fmt.Errorf("exchange %s: %w", ex.Name, err)
	}

	exProgram, err := s.define(ex.Name+".program", "")
	if err != nil {
		return err
	}
	s.rt.RegisterProgram(exProgram, tokenswap.NewFixedRateProgram(log, ex.Numerator, ex.Denominator))

	p, err := tokenswap.SeedPool(s.rt, tokenswap.PoolConfig{
		ProgramID:       exProgram,
		TokenProgramID:  r.tokenProgramID,
		SourceMint:      srcMint,
		DestinationMint: dstMint,
		Liquidity:       ex.Liquidity,
		WithHostFee:     ex.HostFee,
	})
	if err != nil {
		return fmt.Errorf("exchange %s: %w", ex.Name, err)
	}

	s.book[ex.Name] = p.Swap
	s.book[ex.Name+".authority"] = p.Authority
	s.book[ex.Name+".source"] = p.SwapSource
	s.book[ex.Name+".destination"] = p.SwapDestination
	s.track(ex.Name+".source", p.SwapSource, srcMint, ex.SourceMint)
	s.track(ex.Name+".destination", p.SwapDestination, dstMint, ex.DestinationMint)
	s.pools[ex.Name] = p
	return nil
}

func (r *Runner) seedTokenAccount(s *session, ta TokenAccount) error {
	mint, err := s.resolve(ta.Mint)
	if err != nil {
		return fmt.Errorf("token account %s: %w", ta.Name, err)
	}
	owner, err := s.resolve(ta.Owner)
	if err != nil {
		return fmt.Errorf("token account %s: %w", ta.Name, err)
	}
	key, err := s.define(ta.Name, ta.Key)
	if err != nil {
		return err
	}

	acc := &token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: ta.Amount,
		State:  token.StateInitialized,
	}
	if ta.Delegate != "" {
		delegate, err := s.resolve(ta.Delegate)
		if err != nil {
			return fmt.Errorf("token account %s: %w", ta.Name, err)
		}
		acc.Delegate = &delegate
	}
	data, err := token.Encode(acc)
	if err != nil {
		return fmt.Errorf("token account %s: %w", ta.Name, err)
	}

	s.rt.SetAccount(key, &runtime.Account{Owner: r.tokenProgramID, Data: data})
	s.track(ta.Name, key, mint, ta.Mint)
	return nil
}

func (r *Runner) seedRawAccounts(ctx context.Context, s *session, raws []RawAccount) error {
	var fetch []solana.PublicKey
	for _, ra := range raws {
		key, err := s.define(ra.Name, ra.Key)
		if err != nil {
			return err
		}
		if ra.Fetch {
			if ra.Key == "" {
				return fmt.Errorf("account %s: fetch needs an explicit key", ra.Name)
			}
			fetch = append(fetch, key)
			continue
		}

		owner := solana.SystemProgramID
		if ra.Owner != "" {
			if owner, err = s.resolve(ra.Owner); err != nil {
				return fmt.Errorf("account %s: %w", ra.Name, err)
			}
		}
		data, err := decodeData(ra.Data, ra.Encoding)
		if err != nil {
			return fmt.Errorf("account %s: %w", ra.Name, err)
		}
		s.rt.SetAccount(key, &runtime.Account{
			Lamports:   ra.Lamports,
			Data:       data,
			Owner:      owner,
			Executable: ra.Executable,
		})
	}

	if len(fetch) == 0 {
		return nil
	}
	if r.loader == nil {
		return fmt.Errorf("%d accounts need fetching but no rpc is configured", len(fetch))
	}
	missing, err := r.loader.LoadInto(ctx, s.rt, fetch)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	if len(missing) > 0 {
		r.logger.Warn("Accounts not found on cluster", zap.Int("count", len(missing)))
	}
	return nil
}

func (r *Runner) initializeRouter(ctx context.Context, s *session, f *File, programID, pool, authority solana.PublicKey, nonce uint8) error {
	tokenKey, err := s.resolve(f.Router.Token)
	if err != nil {
		return fmt.Errorf("router token: %w", err)
	}
	ix, err := instruction.NewInitializeInstruction(programID, nonce, instruction.InitializeAccounts{
		Pool:         pool,
		Authority:    authority,
		Token:        tokenKey,
		TokenProgram: r.tokenProgramID,
	})
	if err != nil {
		return err
	}

	res := s.rt.Execute(ctx, runtime.Transaction{Instructions: []solana.Instruction{ix}})
	s.logs = append(s.logs, res.Logs...)
	if res.Err != nil {
		return fmt.Errorf("initialize router pool: %w", res.Err)
	}
	return nil
}

func (r *Runner) buildSwap(s *session, f *File, programID solana.PublicKey) (solana.Instruction, []solana.PublicKey, error) {
	sw := f.Swap
	keys := make(map[string]solana.PublicKey, 4)
	for _, name := range []string{sw.User, sw.Source, sw.Destination, f.Router.Token} {
		key, err := s.resolve(name)
		if err != nil {
			return nil, nil, fmt.Errorf("swap: %w", err)
		}
		keys[name] = key
	}

	configs := make([]instruction.DexConfig, 0, len(sw.Routes))
	groups := make([][]*solana.AccountMeta, 0, len(sw.Routes))
	for i, route := range sw.Routes {
		var metas []*solana.AccountMeta
		dexType := uint8(dex.TypeTokenSwap)

		if route.Exchange != "" {
			p, ok := s.pools[route.Exchange]
			if !ok {
				return nil, nil, fmt.Errorf("route %d: unknown exchange %q", i, route.Exchange)
			}
			metas = p.AccountMetas()
		} else {
			dexType = *route.DexType
			for _, name := range route.Accounts {
				key, err := s.resolve(name)
				if err != nil {
					return nil, nil, fmt.Errorf("route %d: %w", i, err)
				}
				metas = append(metas, solana.NewAccountMeta(key, true, false))
			}
		}

		configs = append(configs, instruction.NewDexConfig(dexType, len(metas), route.Ratio))
		groups = append(groups, metas)
	}

	ix, err := instruction.NewSwapInstruction(programID, &instruction.Swap{
		AmountIn:         sw.AmountIn,
		MinimumAmountOut: sw.MinimumAmountOut,
		DexConfigs:       configs,
	}, instruction.SwapAccounts{
		Pool:                  s.book[NameRouterPool],
		PoolAuthority:         s.book[NameRouterAuthority],
		UserTransferAuthority: keys[sw.User],
		PoolToken:             keys[f.Router.Token],
		Source:                keys[sw.Source],
		Destination:           keys[sw.Destination],
		TokenProgram:          r.tokenProgramID,
	}, groups...)
	if err != nil {
		return nil, nil, err
	}
	return ix, []solana.PublicKey{keys[sw.User]}, nil
}

func checkExpectations(e Expect, r *Report) []string {
	var mismatches []string
	switch {
	case e.Error == "" && r.Err != nil:
		mismatches = append(mismatches, fmt.Sprintf("unexpected error: %v", r.Err))
	case e.Error != "" && r.Err == nil:
		mismatches = append(mismatches, fmt.Sprintf("expected error %q, swap succeeded", e.Error))
	case e.Error != "" && !strings.Contains(r.Err.Error(), e.Error) && !containsLog(r.Logs, e.Error):
		mismatches = append(mismatches, fmt.Sprintf("expected error %q, got %v", e.Error, r.Err))
	}

	names := make([]string, 0, len(e.Balances))
	for name := range e.Balances {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		want := e.Balances[name]
		b, ok := r.Balance(name)
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("balance %s: not tracked", name))
			continue
		}
		if b.After != want {
			mismatches = append(mismatches, fmt.Sprintf("balance %s: want %d, got %d", name, want, b.After))
		}
	}
	return mismatches
}

func containsLog(logs []string, s string) bool {
	for _, l := range logs {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}
