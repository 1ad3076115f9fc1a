package instruction

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/solana-router/internal/errcode"
)

func swapPayload(amountIn, minOut uint64, count byte, configs ...byte) []byte {
	buf := []byte{byte(TagSwap)}
	buf = binary.LittleEndian.AppendUint64(buf, amountIn)
	buf = binary.LittleEndian.AppendUint64(buf, minOut)
	buf = append(buf, count)
	return append(buf, configs...)
}

func TestDecodeInitialize(t *testing.T) {
	ix, err := Decode([]byte{0x00, 0x05})
	require.NoError(t, err)

	init, ok := ix.(*Initialize)
	require.True(t, ok)
	assert.Equal(t, uint8(5), init.Nonce)
	assert.Equal(t, TagInitialize, ix.Tag())
}

func TestDecodeSwapSingleConfig(t *testing.T) {
	data := swapPayload(100, 90, 1, 0, 1, 1)

	ix, err := Decode(data)
	require.NoError(t, err)

	swap, ok := ix.(*Swap)
	require.True(t, ok)
	assert.Equal(t, uint64(100), swap.AmountIn)
	assert.Equal(t, uint64(90), swap.MinimumAmountOut)
	assert.Equal(t, []DexConfig{{DexType: 0, AccountSize: 1, Ratio: 1}}, swap.DexConfigs)
	assert.Equal(t, 1, swap.TotalAccounts())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want errcode.Code
	}{
		{"empty", nil, errcode.InvalidInput},
		{"unknown tag", []byte{0x02}, errcode.InvalidInstruction},
		{"initialize without nonce", []byte{0x00}, errcode.InvalidInput},
		{"short amount_in", []byte{0x01, 0xE8, 0x03}, errcode.InvalidInstruction},
		{"short minimum_amount_out", append(swapPayload(1000, 0, 0)[:9], 0x01, 0x02), errcode.InvalidInstruction},
		{"missing count", swapPayload(1000, 900, 0)[:17], errcode.InvalidInput},
		{"zero configs", swapPayload(1000, 900, 0), errcode.InvalidInput},
		{"truncated configs", swapPayload(1000, 900, 2, 0, 7, 1, 0, 7), errcode.InvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := Decode(tt.data)
			require.Error(t, err)
			assert.Nil(t, ix)
			assert.ErrorIs(t, err, tt.want)

			var decErr *DecodeError
			assert.True(t, errors.As(err, &decErr))
		})
	}
}

func TestDecodeManyConfigsDoesNotWrap(t *testing.T) {
	// 86 * 3 = 258 would wrap to 2 in a byte
	configs := bytes.Repeat([]byte{0, 7, 1}, 86)
	data := swapPayload(1, 1, 86, configs[:6]...)

	_, err := Decode(data)
	assert.ErrorIs(t, err, errcode.InvalidInput)

	data = swapPayload(1, 1, 86, configs...)
	ix, err := Decode(data)
	require.NoError(t, err)
	assert.Len(t, ix.(*Swap).DexConfigs, 86)
}

func TestDecodeTrailingBytes(t *testing.T) {
	data := append(swapPayload(10, 10, 1, 0, 7, 1), 0xAA, 0xBB)

	ix, err := Decode(data)
	require.NoError(t, err)
	assert.Len(t, ix.(*Swap).DexConfigs, 1)

	_, err = DecodeStrict(data)
	assert.ErrorIs(t, err, errcode.InvalidInstruction)

	_, err = DecodeStrict(data[:len(data)-2])
	assert.NoError(t, err)
}

func TestEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ix   Instruction
	}{
		{"initialize", &Initialize{Nonce: 7}},
		{"swap one leg", &Swap{
			AmountIn:         1000,
			MinimumAmountOut: 900,
			DexConfigs:       []DexConfig{NewDexConfig(0, 7, 1)},
		}},
		{"swap two legs", &Swap{
			AmountIn:         10,
			MinimumAmountOut: 30,
			DexConfigs:       []DexConfig{NewDexConfig(0, 7, 1), NewDexConfig(0, 8, 2)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.ix)
			require.NoError(t, err)

			got, err := DecodeStrict(data)
			require.NoError(t, err)
			assert.Equal(t, tt.ix, got)

			again, err := Encode(got)
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}
}

func TestEncodeCanonicalBytes(t *testing.T) {
	data := swapPayload(1000, 900, 1, 0, 7, 1)
	ix, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, data, MustEncode(ix))
}

func TestEncodeRejectsInvalidSwap(t *testing.T) {
	_, err := Encode(&Swap{AmountIn: 1})
	assert.ErrorIs(t, err, errcode.InvalidInput)

	_, err = Encode(&Swap{AmountIn: 1, DexConfigs: []DexConfig{NewDexConfig(0, 300, 1)}})
	assert.ErrorIs(t, err, errcode.InvalidInput)
}
