// =============================
// File: internal/instruction/codec.go
// =============================
package instruction

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	bin "github.com/gagliardetto/binary"

	"github.com/rovshanmuradov/solana-router/internal/errcode"
)

const (
	// dexConfigSize is the width of one (dex_type, account_size, ratio) record.
	dexConfigSize = 3
	// MaxDexConfigs is the largest count the one-byte prefix can carry.
	MaxDexConfigs = math.MaxUint8
)

// Decode parses an instruction payload. Bytes after the consumed prefix are
// ignored.
func Decode(data []byte) (Instruction, error) {
	return decode(data, false)
}

// DecodeStrict is Decode that also rejects trailing bytes with InvalidInstruction.
func DecodeStrict(data []byte) (Instruction, error) {
	return decode(data, true)
}

func decode(data []byte, strict bool) (Instruction, error) {
	dec := bin.NewBinDecoder(data)
	if dec.Remaining() < 1 {
		return nil, decodeErr("tag", 0, errcode.InvalidInput)
	}
	tag, err := dec.ReadUint8()
	if err != nil {
		return nil, decodeErr("tag", 0, errcode.InvalidInput)
	}

	var ix Instruction
	switch Tag(tag) {
	case TagInitialize:
		if dec.Remaining() < 1 {
			return nil, decodeErr("nonce", offset(data, dec), errcode.InvalidInput)
		}
		nonce, err := dec.ReadUint8()
		if err != nil {
			return nil, decodeErr("nonce", offset(data, dec), errcode.InvalidInput)
		}
		ix = &Initialize{Nonce: nonce}

	case TagSwap:
		swap, err := decodeSwap(data, dec)
		if err != nil {
			return nil, err
		}
		ix = swap

	default:
		return nil, decodeErr("tag", 0, errcode.InvalidInstruction)
	}

	if strict && dec.Remaining() > 0 {
		return nil, decodeErr("trailing bytes", offset(data, dec), errcode.InvalidInstruction)
	}
	return ix, nil
}

func decodeSwap(data []byte, dec *bin.Decoder) (*Swap, error) {
	amountIn, err := readUint64(data, dec, "amount_in")
	if err != nil {
		return nil, err
	}
	minimumAmountOut, err := readUint64(data, dec, "minimum_amount_out")
	if err != nil {
		return nil, err
	}

	if dec.Remaining() < 1 {
		return nil, decodeErr("dex config count", offset(data, dec), errcode.InvalidInput)
	}
	count, err := dec.ReadUint8()
	if err != nil {
		return nil, decodeErr("dex config count", offset(data, dec), errcode.InvalidInput)
	}
	if count < 1 {
		return nil, decodeErr("dex config count", offset(data, dec)-1, errcode.InvalidInput)
	}

	// computed in int so that 86+ configs do not wrap
	need := int(count) * dexConfigSize
	if dec.Remaining() < need {
		return nil, decodeErr("dex configs", offset(data, dec), errcode.InvalidInput)
	}

	raw, err := dec.ReadNBytes(need)
	if err != nil {
		return nil, decodeErr("dex configs", offset(data, dec), errcode.InvalidInput)
	}

	configs := make([]DexConfig, 0, count)
	for i := 0; i < need; i += dexConfigSize {
		configs = append(configs, DexConfig{
			DexType:     raw[i],
			AccountSize: int(raw[i+1]),
			Ratio:       raw[i+2],
		})
	}

	return &Swap{
		AmountIn:         amountIn,
		MinimumAmountOut: minimumAmountOut,
		DexConfigs:       configs,
	}, nil
}

// readUint64 fails with InvalidInstruction on a short read, matching the
// deployed program.
func readUint64(data []byte, dec *bin.Decoder, field string) (uint64, error) {
	if dec.Remaining() < 8 {
		return 0, decodeErr(field, offset(data, dec), errcode.InvalidInstruction)
	}
	v, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		return 0, decodeErr(field, offset(data, dec), errcode.InvalidInstruction)
	}
	return v, nil
}

func offset(data []byte, dec *bin.Decoder) int {
	return len(data) - dec.Remaining()
}

// Encode produces the canonical payload for ix.
func Encode(ix Instruction) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)

	switch v := ix.(type) {
	case *Initialize:
		if err := enc.WriteUint8(uint8(TagInitialize)); err != nil {
			return nil, err
		}
		if err := enc.WriteUint8(v.Nonce); err != nil {
			return nil, err
		}

	case *Swap:
		if err := encodeSwap(enc, v); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("encode: unsupported instruction %T", ix)
	}

	return buf.Bytes(), nil
}

func encodeSwap(enc *bin.Encoder, s *Swap) error {
	if len(s.DexConfigs) == 0 {
		return fmt.Errorf("encode swap: %w", errcode.InvalidInput)
	}
	if len(s.DexConfigs) > MaxDexConfigs {
		return fmt.Errorf("encode swap: %d dex configs exceed %d: %w",
			len(s.DexConfigs), MaxDexConfigs, errcode.InvalidInput)
	}

	if err := enc.WriteUint8(uint8(TagSwap)); err != nil {
		return err
	}
	if err := enc.WriteUint64(s.AmountIn, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteUint64(s.MinimumAmountOut, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteUint8(uint8(len(s.DexConfigs))); err != nil {
		return err
	}

	for i, c := range s.DexConfigs {
		if c.AccountSize < 0 || c.AccountSize > math.MaxUint8 {
			return fmt.Errorf("encode swap: dex config %d account size %d out of range: %w",
				i, c.AccountSize, errcode.InvalidInput)
		}
		if err := enc.WriteBytes([]byte{c.DexType, uint8(c.AccountSize), c.Ratio}, false); err != nil {
			return err
		}
	}
	return nil
}

// MustEncode is Encode for values known to be valid.
func MustEncode(ix Instruction) []byte {
	data, err := Encode(ix)
	if err != nil {
		panic(err)
	}
	return data
}
