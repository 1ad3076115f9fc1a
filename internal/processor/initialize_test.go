package processor

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-router/internal/dex"
	"github.com/rovshanmuradov/solana-router/internal/errcode"
	"github.com/rovshanmuradov/solana-router/internal/instruction"
	"github.com/rovshanmuradov/solana-router/internal/runtime"
	"github.com/rovshanmuradov/solana-router/internal/state"
	"github.com/rovshanmuradov/solana-router/internal/token"
)

type initFixture struct {
	rt        *runtime.Runtime
	programID solana.PublicKey
	pool      solana.PublicKey
	authority solana.PublicKey
	nonce     uint8
	token     solana.PublicKey
	mint      solana.PublicKey
}

func newInitFixture(t *testing.T) *initFixture {
	logger := zaptest.NewLogger(t)
	f := &initFixture{
		rt:        runtime.New(logger),
		programID: solana.NewWallet().PublicKey(),
		pool:      solana.NewWallet().PublicKey(),
		token:     solana.NewWallet().PublicKey(),
		mint:      solana.NewWallet().PublicKey(),
	}
	f.rt.RegisterProgram(f.programID, New(dex.NewDefaultRegistry(logger), logger))

	var err error
	f.authority, f.nonce, err = FindAuthority(f.programID, f.pool)
	require.NoError(t, err)

	f.rt.SetAccount(f.pool, &runtime.Account{Owner: f.programID, Data: make([]byte, state.Size)})
	f.rt.SetAccount(f.token, token.NewAccountRecord(solana.TokenProgramID, f.mint, f.authority, 0))
	return f
}

func (f *initFixture) setToken(t *testing.T, acc *token.Account) {
	data, err := token.Encode(acc)
	require.NoError(t, err)
	f.rt.SetAccount(f.token, &runtime.Account{Owner: solana.TokenProgramID, Data: data})
}

func (f *initFixture) run(t *testing.T, nonce uint8, authority solana.PublicKey) *runtime.Result {
	ix, err := instruction.NewInitializeInstruction(f.programID, nonce, instruction.InitializeAccounts{
		Pool:         f.pool,
		Authority:    authority,
		Token:        f.token,
		TokenProgram: solana.TokenProgramID,
	})
	require.NoError(t, err)
	return f.rt.Execute(context.Background(), runtime.Transaction{Instructions: []solana.Instruction{ix}})
}

func (f *initFixture) poolState(t *testing.T) *state.ProtocolState {
	acc, ok := f.rt.Account(f.pool)
	require.True(t, ok)
	st, err := state.UnpackUnchecked(acc.Data)
	require.NoError(t, err)
	return st
}

func TestInitialize(t *testing.T) {
	f := newInitFixture(t)

	res := f.run(t, f.nonce, f.authority)
	require.NoError(t, res.Err)
	assert.Contains(t, res.Logs, "Program log: Instruction: Initialize")

	st := f.poolState(t)
	assert.Equal(t, &state.ProtocolState{
		Version:        state.CurrentVersion,
		Nonce:          f.nonce,
		TokenProgramID: solana.TokenProgramID,
		Token:          f.token,
		TokenMint:      f.mint,
	}, st)
}

func TestInitializeDelegateToAuthority(t *testing.T) {
	f := newInitFixture(t)
	authority := f.authority
	f.setToken(t, &token.Account{
		Mint:     f.mint,
		Owner:    solana.NewWallet().PublicKey(),
		Delegate: &authority,
		State:    token.StateInitialized,
	})

	res := f.run(t, f.nonce, f.authority)
	require.NoError(t, res.Err)
	assert.True(t, f.poolState(t).IsInitialized())
}

func TestInitializeErrors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T, f *initFixture)
		authority func(f *initFixture) solana.PublicKey
		wantErr   error
		wantLog   string
	}{
		{
			name: "delegate is not the authority",
			setup: func(t *testing.T, f *initFixture) {
				other := solana.NewWallet().PublicKey()
				f.setToken(t, &token.Account{Mint: f.mint, Owner: f.authority, Delegate: &other, State: token.StateInitialized})
			},
			wantErr: errcode.InvalidDelegate,
			wantLog: "Program log: Error: InvalidDelegate",
		},
		{
			name: "owner is not the authority",
			setup: func(t *testing.T, f *initFixture) {
				f.setToken(t, &token.Account{Mint: f.mint, Owner: solana.NewWallet().PublicKey(), State: token.StateInitialized})
			},
			wantErr: errcode.InvalidOwner,
			wantLog: "Program log: Error: InvalidOwner",
		},
		{
			name: "authority does not match nonce",
			authority: func(*initFixture) solana.PublicKey {
				return solana.NewWallet().PublicKey()
			},
			wantErr: errcode.InvalidProgramAddress,
			wantLog: "Program log: Error: InvalidProgramAddress",
		},
		{
			name: "token account owned by another program",
			setup: func(t *testing.T, f *initFixture) {
				acc := token.NewAccountRecord(solana.TokenProgramID, f.mint, f.authority, 0)
				acc.Owner = solana.SystemProgramID
				f.rt.SetAccount(f.token, acc)
			},
			wantErr: errcode.IncorrectTokenProgramId,
		},
		{
			name: "pool owned by another program",
			setup: func(t *testing.T, f *initFixture) {
				f.rt.SetAccount(f.pool, &runtime.Account{Owner: solana.SystemProgramID, Data: make([]byte, state.Size)})
			},
			wantErr: runtime.ErrIncorrectProgramID,
		},
		{
			name: "pool already initialized",
			setup: func(t *testing.T, f *initFixture) {
				require.NoError(t, f.run(t, f.nonce, f.authority).Err)
			},
			wantErr: runtime.ErrAccountAlreadyInitialized,
		},
		{
			name: "pool account has wrong size",
			setup: func(t *testing.T, f *initFixture) {
				f.rt.SetAccount(f.pool, &runtime.Account{Owner: f.programID, Data: make([]byte, state.Size-1)})
			},
			wantErr: runtime.ErrInvalidAccountData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInitFixture(t)
			if tt.setup != nil {
				tt.setup(t, f)
			}
			authority := f.authority
			if tt.authority != nil {
				authority = tt.authority(f)
			}

			before, _ := f.rt.Account(f.pool)
			res := f.run(t, f.nonce, authority)
			require.Error(t, res.Err)
			assert.ErrorIs(t, res.Err, tt.wantErr)
			if tt.wantLog != "" {
				assert.Contains(t, res.Logs, tt.wantLog)
			}

			after, _ := f.rt.Account(f.pool)
			assert.Equal(t, before.Data, after.Data)
		})
	}
}
