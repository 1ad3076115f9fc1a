// =============================
// File: internal/token/processor.go
// =============================
package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	tokenprog "github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-router/internal/runtime"
)

// Program is the subset of the token program the router depends on:
// Transfer and Approve.
type Program struct {
	logger *zap.Logger
}

func NewProgram(logger *zap.Logger) *Program {
	return &Program{logger: logger.Named("token-program")}
}

func (p *Program) Process(ic *runtime.InvokeContext, programID solana.PublicKey, accounts []*runtime.AccountInfo, data []byte) error {
	metas := make([]*solana.AccountMeta, len(accounts))
	for i, a := range accounts {
		metas[i] = solana.NewAccountMeta(a.Key, a.IsWritable, a.IsSigner)
	}

	inst, err := tokenprog.DecodeInstruction(metas, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
	}

	switch v := inst.Impl.(type) {
	case *tokenprog.Transfer:
		if len(accounts) < 3 || v.Amount == nil {
			return runtime.ErrNotEnoughAccountKeys
		}
		ic.Log("Instruction: Transfer")
		return p.transfer(programID, accounts[0], accounts[1], accounts[2], *v.Amount)

	case *tokenprog.Approve:
		if len(accounts) < 3 || v.Amount == nil {
			return runtime.ErrNotEnoughAccountKeys
		}
		ic.Log("Instruction: Approve")
		return p.approve(programID, accounts[0], accounts[1], accounts[2], *v.Amount)

	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidInstruction, inst.Impl)
	}
}

func (p *Program) load(programID solana.PublicKey, info *runtime.AccountInfo) (*Account, error) {
	if !info.Owner().Equals(programID) {
		return nil, fmt.Errorf("%w: %s", runtime.ErrIncorrectProgramID, info.Key)
	}
	var acc *Account
	err := info.Data(func(data []byte) error {
		var err error
		acc, err = Unpack(data)
		return err
	})
	return acc, err
}

func store(info *runtime.AccountInfo, acc *Account) error {
	return info.DataMut(func(data []byte) error {
		return Pack(acc, data)
	})
}

// authorize checks that authority may move amount out of source and
// consumes delegated allowance when the delegate signs.
func authorize(source *Account, authority *runtime.AccountInfo, amount uint64) error {
	if !authority.IsSigner {
		return runtime.ErrMissingRequiredSignature
	}
	if source.Owner.Equals(authority.Key) {
		return nil
	}
	if source.Delegate != nil && source.Delegate.Equals(authority.Key) {
		if source.DelegatedAmount < amount {
			return ErrInsufficientFunds
		}
		source.DelegatedAmount -= amount
		if source.DelegatedAmount == 0 {
			source.Delegate = nil
		}
		return nil
	}
	return ErrOwnerMismatch
}

func (p *Program) transfer(programID solana.PublicKey, src, dst, authority *runtime.AccountInfo, amount uint64) error {
	source, err := p.load(programID, src)
	if err != nil {
		return err
	}
	dest, err := p.load(programID, dst)
	if err != nil {
		return err
	}

	if isFrozen(source) || isFrozen(dest) {
		return ErrAccountFrozen
	}
	if !source.Mint.Equals(dest.Mint) {
		return ErrMintMismatch
	}
	if source.Amount < amount {
		return ErrInsufficientFunds
	}
	if err := authorize(source, authority, amount); err != nil {
		return err
	}

	if src.Key.Equals(dst.Key) {
		return store(src, source)
	}

	if dest.Amount+amount < dest.Amount {
		return ErrOverflow
	}
	source.Amount -= amount
	dest.Amount += amount

	if err := store(src, source); err != nil {
		return err
	}
	if err := store(dst, dest); err != nil {
		return err
	}

	p.logger.Debug("Transfer",
		zap.String("source", src.Key.String()),
		zap.String("destination", dst.Key.String()),
		zap.Uint64("amount", amount))
	return nil
}

func (p *Program) approve(programID solana.PublicKey, src, delegate, owner *runtime.AccountInfo, amount uint64) error {
	source, err := p.load(programID, src)
	if err != nil {
		return err
	}
	if isFrozen(source) {
		return ErrAccountFrozen
	}
	if !owner.IsSigner {
		return runtime.ErrMissingRequiredSignature
	}
	if !source.Owner.Equals(owner.Key) {
		return ErrOwnerMismatch
	}

	key := delegate.Key
	source.Delegate = &key
	source.DelegatedAmount = amount
	return store(src, source)
}
