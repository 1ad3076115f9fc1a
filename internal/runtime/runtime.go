// =============================
// File: internal/runtime/runtime.go
// =============================
package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Transaction is an ordered list of instructions executed atomically.
type Transaction struct {
	Instructions []solana.Instruction
	Signers      []solana.PublicKey
}

// Result of Execute. Err is nil when the transaction committed.
type Result struct {
	Logs []string
	Err  error
}

func (r *Result) Failed() bool {
	return r.Err != nil
}

// LoaderID owns executable program accounts.
var LoaderID = solana.MustPublicKeyFromBase58("BPFLoader2111111111111111111111111111111111")

// Runtime is an in-process ledger: an account store and a program registry.
type Runtime struct {
	mu       sync.Mutex
	logger   *zap.Logger
	programs map[solana.PublicKey]Program
	accounts map[solana.PublicKey]*Account
}

func New(logger *zap.Logger) *Runtime {
	return &Runtime{
		logger:   logger.Named("runtime"),
		programs: make(map[solana.PublicKey]Program),
		accounts: make(map[solana.PublicKey]*Account),
	}
}

// RegisterProgram installs p under id and stores an executable account for it.
func (r *Runtime) RegisterProgram(id solana.PublicKey, p Program) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.programs[id] = p
	if _, ok := r.accounts[id]; !ok {
		r.accounts[id] = &Account{Owner: LoaderID, Executable: true}
	}
	r.logger.Debug("Registered program", zap.String("program_id", id.String()))
}

// SetAccount stores a copy of acc under key.
func (r *Runtime) SetAccount(key solana.PublicKey, acc *Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[key] = acc.Clone()
}

// Account returns a copy of the stored account.
func (r *Runtime) Account(key solana.PublicKey) (*Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[key]
	if !ok {
		return nil, false
	}
	return acc.Clone(), true
}

// Execute runs tx against a working copy of the referenced accounts and
// commits it only if every instruction succeeds.
func (r *Runtime) Execute(ctx context.Context, tx Transaction) *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := &txState{
		rt:       r,
		accounts: make(map[solana.PublicKey]*record),
		signers:  make(map[solana.PublicKey]bool, len(tx.Signers)),
	}
	for _, s := range tx.Signers {
		ts.signers[s] = true
	}

	for i, ix := range tx.Instructions {
		if err := ctx.Err(); err != nil {
			return &Result{Logs: ts.logs, Err: &InstructionError{Index: i, Err: err}}
		}
		if err := ts.processTop(ctx, ix); err != nil {
			r.logger.Debug("Transaction failed",
				zap.Int("instruction", i),
				zap.Error(err))
			return &Result{Logs: ts.logs, Err: &InstructionError{Index: i, Err: err}}
		}
	}

	for key, rec := range ts.accounts {
		r.accounts[key] = rec.account
	}
	r.logger.Debug("Transaction committed",
		zap.Int("instructions", len(tx.Instructions)),
		zap.Int("accounts", len(ts.accounts)))

	return &Result{Logs: ts.logs}
}

type txState struct {
	rt       *Runtime
	accounts map[solana.PublicKey]*record
	signers  map[solana.PublicKey]bool
	stack    []*frame
	logs     []string
}

func (ts *txState) record(key solana.PublicKey) *record {
	if rec, ok := ts.accounts[key]; ok {
		return rec
	}
	acc, ok := ts.rt.accounts[key]
	if ok {
		acc = acc.Clone()
	} else {
		acc = &Account{Owner: solana.SystemProgramID}
	}
	rec := &record{account: acc}
	ts.accounts[key] = rec
	return rec
}

func (ts *txState) log(line string) {
	ts.logs = append(ts.logs, line)
	ts.rt.logger.Debug(line)
}

func (ts *txState) processTop(ctx context.Context, ix solana.Instruction) error {
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("instruction data: %w", err)
	}

	metas := ix.Accounts()
	infos := make([]*AccountInfo, 0, len(metas))
	for _, meta := range metas {
		signer := ts.signers[meta.PublicKey]
		if meta.IsSigner && !signer {
			return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, meta.PublicKey)
		}
		infos = append(infos, &AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   signer,
			IsWritable: meta.IsWritable,
			rec:        ts.record(meta.PublicKey),
		})
	}

	return ts.run(ctx, ix.ProgramID(), infos, data)
}

func (ts *txState) run(ctx context.Context, programID solana.PublicKey, accounts []*AccountInfo, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ts.stack) >= MaxInvokeDepth {
		return ErrCallDepth
	}
	for i, f := range ts.stack {
		if f.programID.Equals(programID) && i != len(ts.stack)-1 {
			return fmt.Errorf("%w: %s", ErrReentrancyNotAllowed, programID)
		}
	}

	program, ok := ts.rt.programs[programID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProgramNotFound, programID)
	}

	f := newFrame(programID, accounts)
	ts.stack = append(ts.stack, f)
	depth := len(ts.stack)
	ts.log(fmt.Sprintf("Program %s invoke [%d]", programID, depth))

	err := program.Process(&InvokeContext{ctx: ctx, tx: ts, frame: f}, programID, accounts, data)
	if err == nil {
		err = f.verify()
	}
	ts.stack = ts.stack[:depth-1]

	if err != nil {
		ts.log(fmt.Sprintf("Program %s failed: %v", programID, err))
		return err
	}
	ts.log(fmt.Sprintf("Program %s success", programID))
	return nil
}
