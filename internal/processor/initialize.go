// =============================
// File: internal/processor/initialize.go
// =============================
package processor

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-router/internal/errcode"
	"github.com/rovshanmuradov/solana-router/internal/runtime"
	"github.com/rovshanmuradov/solana-router/internal/state"
	"github.com/rovshanmuradov/solana-router/internal/token"
)

// ProcessInitialize writes a new ProtocolState into the pool account.
// Accounts: pool, authority, token account, token program.
func (p *Processor) ProcessInitialize(ic *runtime.InvokeContext, programID solana.PublicKey, nonce uint8, accounts []*runtime.AccountInfo) error {
	it := runtime.NewAccountIter(accounts)
	fixed, err := it.NextN(4)
	if err != nil {
		return err
	}
	pool, authority, tokenInfo, tokenProgram := fixed[0], fixed[1], fixed[2], fixed[3]

	if !pool.Owner().Equals(programID) {
		return fmt.Errorf("pool %s: %w", pool.Key, runtime.ErrIncorrectProgramID)
	}
	if err := ensureUninitialized(pool); err != nil {
		return err
	}

	expected, err := AuthorityID(programID, pool.Key, nonce)
	if err != nil {
		return err
	}
	if !authority.Key.Equals(expected) {
		return fmt.Errorf("authority %s: %w", authority.Key, errcode.InvalidProgramAddress)
	}

	tok, err := token.LoadAccount(tokenInfo, tokenProgram.Key)
	if err != nil {
		return err
	}
	if tok.Delegate != nil {
		if !tok.Delegate.Equals(authority.Key) {
			return fmt.Errorf("delegate %s: %w", *tok.Delegate, errcode.InvalidDelegate)
		}
	} else if !tok.Owner.Equals(authority.Key) {
		return fmt.Errorf("owner %s: %w", tok.Owner, errcode.InvalidOwner)
	}

	st := &state.ProtocolState{
		Version:        state.CurrentVersion,
		Nonce:          nonce,
		TokenProgramID: tokenProgram.Key,
		Token:          tokenInfo.Key,
		TokenMint:      tok.Mint,
	}
	if err := pool.DataMut(func(data []byte) error {
		return state.Pack(st, data)
	}); err != nil {
		return err
	}

	p.logger.Debug("Pool initialized",
		zap.String("pool", pool.Key.String()),
		zap.String("token", tokenInfo.Key.String()),
		zap.Uint8("nonce", nonce))
	return nil
}

func ensureUninitialized(pool *runtime.AccountInfo) error {
	return pool.Data(func(data []byte) error {
		st, err := state.UnpackUnchecked(data)
		if err != nil {
			return err
		}
		if st.IsInitialized() {
			return fmt.Errorf("pool %s: %w", pool.Key, runtime.ErrAccountAlreadyInitialized)
		}
		return nil
	})
}
