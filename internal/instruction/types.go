// =============================
// File: internal/instruction/types.go
// =============================
package instruction

import (
	"fmt"

	"github.com/rovshanmuradov/solana-router/internal/errcode"
)

// Tag is the first byte of every instruction payload.
type Tag uint8

const (
	TagInitialize Tag = 0
	TagSwap       Tag = 1
)

func (t Tag) String() string {
	switch t {
	case TagInitialize:
		return "Initialize"
	case TagSwap:
		return "Swap"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Instruction is one of *Initialize or *Swap.
type Instruction interface {
	Tag() Tag
	isInstruction()
}

// Initialize sets up a new pool state record.
type Initialize struct {
	// Nonce used to derive the pool authority.
	Nonce uint8
}

func (*Initialize) Tag() Tag       { return TagInitialize }
func (*Initialize) isInstruction() {}

// Swap routes AmountIn across the configured dexes.
type Swap struct {
	AmountIn         uint64
	MinimumAmountOut uint64
	DexConfigs       []DexConfig
}

func (*Swap) Tag() Tag       { return TagSwap }
func (*Swap) isInstruction() {}

// TotalAccounts is the number of adapter accounts the swap expects after the
// seven fixed ones.
func (s *Swap) TotalAccounts() int {
	n := 0
	for _, c := range s.DexConfigs {
		n += c.AccountSize
	}
	return n
}

// DexConfig selects an adapter, the number of accounts it consumes and the
// multiplier applied to both amounts for its leg.
type DexConfig struct {
	DexType     uint8
	AccountSize int
	Ratio       uint8
}

// NewDexConfig builds a DexConfig.
func NewDexConfig(dexType uint8, accountSize int, ratio uint8) DexConfig {
	return DexConfig{
		DexType:     dexType,
		AccountSize: accountSize,
		Ratio:       ratio,
	}
}

// DecodeError describes where decoding stopped. It unwraps to the error kind.
type DecodeError struct {
	Field  string
	Offset int
	Code   errcode.Code
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s at offset %d: %s", e.Field, e.Offset, e.Code.Error())
}

func (e *DecodeError) Unwrap() error {
	return e.Code
}

func decodeErr(field string, offset int, code errcode.Code) error {
	return &DecodeError{Field: field, Offset: offset, Code: code}
}
