// =============================
// File: internal/runtime/invoke.go
// =============================
package runtime

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// MaxInvokeDepth bounds the instruction stack, the top-level call included.
const MaxInvokeDepth = 4

// frame is one entry of the instruction stack. The snapshot is what the
// program saw when it gained control; any difference at the end must be
// explained by ownership and writability.
type frame struct {
	programID solana.PublicKey
	accounts  []*AccountInfo
	snapshot  map[solana.PublicKey][]byte
	writable  map[solana.PublicKey]bool
}

func newFrame(programID solana.PublicKey, accounts []*AccountInfo) *frame {
	f := &frame{programID: programID, accounts: accounts}
	f.capture()
	return f
}

func (f *frame) capture() {
	f.snapshot = make(map[solana.PublicKey][]byte, len(f.accounts))
	f.writable = make(map[solana.PublicKey]bool, len(f.accounts))
	for _, a := range f.accounts {
		if _, ok := f.snapshot[a.Key]; !ok {
			f.snapshot[a.Key] = append([]byte(nil), a.rec.account.Data...)
		}
		if a.IsWritable {
			f.writable[a.Key] = true
		}
	}
}

func (f *frame) verify() error {
	for key, before := range f.snapshot {
		a := f.find(key)
		if bytes.Equal(before, a.rec.account.Data) {
			continue
		}
		if !f.writable[key] {
			return fmt.Errorf("%w: %s", ErrReadonlyDataModified, key)
		}
		if !a.rec.account.Owner.Equals(f.programID) {
			return fmt.Errorf("%w: %s", ErrExternalAccountDataModified, key)
		}
	}
	return nil
}

func (f *frame) find(key solana.PublicKey) *AccountInfo {
	return findAccount(f.accounts, key)
}

func findAccount(accounts []*AccountInfo, key solana.PublicKey) *AccountInfo {
	for _, a := range accounts {
		if a.Key.Equals(key) {
			return a
		}
	}
	return nil
}

// InvokeContext is handed to a program for one invocation.
type InvokeContext struct {
	ctx   context.Context
	tx    *txState
	frame *frame
}

func (ic *InvokeContext) Context() context.Context {
	return ic.ctx
}

// ProgramID is the id of the currently executing program.
func (ic *InvokeContext) ProgramID() solana.PublicKey {
	return ic.frame.programID
}

// Depth is the current instruction stack height, starting at 1.
func (ic *InvokeContext) Depth() int {
	return len(ic.tx.stack)
}

// Log appends a program log line.
func (ic *InvokeContext) Log(msg string) {
	ic.tx.log("Program log: " + msg)
}

func (ic *InvokeContext) Logf(format string, args ...any) {
	ic.Log(fmt.Sprintf(format, args...))
}

// Invoke calls another program with the caller's privileges.
func (ic *InvokeContext) Invoke(ix solana.Instruction, accounts []*AccountInfo) error {
	return ic.InvokeSigned(ix, accounts)
}

// InvokeSigned calls another program. Each seed set derives an address of the
// calling program that is treated as a signer for this call.
func (ic *InvokeContext) InvokeSigned(ix solana.Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error {
	caller := ic.frame
	if err := caller.verify(); err != nil {
		return err
	}

	signed := make(map[solana.PublicKey]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := solana.CreateProgramAddress(seeds, caller.programID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
		}
		signed[addr] = true
	}

	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("instruction data: %w", err)
	}

	metas := ix.Accounts()
	callee := make([]*AccountInfo, 0, len(metas))
	for _, meta := range metas {
		info := findAccount(accounts, meta.PublicKey)
		if info == nil {
			return fmt.Errorf("%w: %s", ErrMissingAccount, meta.PublicKey)
		}
		if info.rec.borrowed() {
			return fmt.Errorf("%w: %s", ErrAccountBorrowFailed, meta.PublicKey)
		}
		if meta.IsSigner && !info.IsSigner && !signed[meta.PublicKey] {
			return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, meta.PublicKey)
		}
		if meta.IsWritable && !info.IsWritable {
			return fmt.Errorf("%w: %s", ErrPrivilegeEscalation, meta.PublicKey)
		}
		callee = append(callee, &AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			rec:        info.rec,
		})
	}

	if err := ic.tx.run(ic.ctx, ix.ProgramID(), callee, data); err != nil {
		return err
	}

	caller.capture()
	return nil
}
