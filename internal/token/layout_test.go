package token

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/solana-router/internal/errcode"
	"github.com/rovshanmuradov/solana-router/internal/runtime"
)

func TestAccountLayout(t *testing.T) {
	delegate := solana.NewWallet().PublicKey()
	native := uint64(2039280)
	acc := &Account{
		Mint:            solana.NewWallet().PublicKey(),
		Owner:           solana.NewWallet().PublicKey(),
		Amount:          500,
		Delegate:        &delegate,
		State:           StateInitialized,
		IsNative:        &native,
		DelegatedAmount: 20,
	}

	data, err := Encode(acc)
	require.NoError(t, err)
	require.Len(t, data, AccountSize)
	assert.Equal(t, acc.Mint[:], data[0:32])
	assert.Equal(t, acc.Owner[:], data[32:64])
	assert.Equal(t, byte(1), data[72], "delegate option tag")
	assert.Equal(t, byte(1), data[108], "state")

	got, err := Unpack(data)
	require.NoError(t, err)
	assert.Equal(t, acc, got)
}

func TestUnpackRejects(t *testing.T) {
	_, err := Unpack(make([]byte, 10))
	assert.Error(t, err)

	_, err = Unpack(make([]byte, AccountSize))
	assert.ErrorIs(t, err, ErrUninitializedState)

	data, err := Encode(&Account{State: StateInitialized})
	require.NoError(t, err)
	data[108] = 9
	_, err = Unpack(data)
	assert.ErrorContains(t, err, "invalid account state 9")

	data[108] = byte(StateFrozen)
	acc, err := Unpack(data)
	require.NoError(t, err)
	assert.True(t, isFrozen(acc))
}

func TestLoadAccount(t *testing.T) {
	programID := solana.TokenProgramID
	mint := solana.NewWallet().PublicKey()

	tests := []struct {
		name    string
		account *runtime.Account
		want    errcode.Code
	}{
		{"foreign owner", &runtime.Account{Owner: solana.SystemProgramID, Data: make([]byte, AccountSize)}, errcode.IncorrectTokenProgramId},
		{"wrong size", &runtime.Account{Owner: programID, Data: make([]byte, 20)}, errcode.ExpectedAccount},
		{"uninitialized", &runtime.Account{Owner: programID, Data: make([]byte, AccountSize)}, errcode.ExpectedAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := runtime.NewAccountInfo(solana.NewWallet().PublicKey(), false, false, tt.account)
			_, err := LoadAccount(info, programID)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	info := runtime.NewAccountInfo(solana.NewWallet().PublicKey(), false, false,
		NewAccountRecord(programID, mint, solana.NewWallet().PublicKey(), 42))
	balance, err := Balance(info, programID)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), balance)
}
