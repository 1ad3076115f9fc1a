// =============================
// File: internal/state/state.go
// =============================
package state

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-router/internal/runtime"
)

const (
	// Size is the packed length of ProtocolState.
	Size = 1 + 1 + 32 + 32 + 32
	// CurrentVersion is written by Initialize. Version 0 means uninitialized.
	CurrentVersion uint8 = 1
)

// ProtocolState is the pool record owned by the router program.
type ProtocolState struct {
	Version        uint8
	Nonce          uint8
	TokenProgramID solana.PublicKey
	Token          solana.PublicKey
	TokenMint      solana.PublicKey
}

func (s *ProtocolState) IsInitialized() bool {
	return s.Version != 0
}

func (s ProtocolState) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(s.Version); err != nil {
		return err
	}
	if err := enc.WriteUint8(s.Nonce); err != nil {
		return err
	}
	for _, key := range []solana.PublicKey{s.TokenProgramID, s.Token, s.TokenMint} {
		if err := enc.WriteBytes(key[:], false); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProtocolState) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if s.Version, err = dec.ReadUint8(); err != nil {
		return err
	}
	if s.Nonce, err = dec.ReadUint8(); err != nil {
		return err
	}
	for _, key := range []*solana.PublicKey{&s.TokenProgramID, &s.Token, &s.TokenMint} {
		raw, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return err
		}
		*key = solana.PublicKeyFromBytes(raw)
	}
	return nil
}

// Pack writes s into dst, which must be exactly Size bytes.
func Pack(s *ProtocolState, dst []byte) error {
	if len(dst) != Size {
		return fmt.Errorf("pack protocol state into %d bytes: %w", len(dst), runtime.ErrInvalidAccountData)
	}
	buf := new(bytes.Buffer)
	buf.Grow(Size)
	if err := s.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return fmt.Errorf("pack protocol state: %w", err)
	}
	copy(dst, buf.Bytes())
	return nil
}

// Unpack decodes an initialized record.
func Unpack(src []byte) (*ProtocolState, error) {
	s, err := UnpackUnchecked(src)
	if err != nil {
		return nil, err
	}
	if !s.IsInitialized() {
		return nil, runtime.ErrUninitializedAccount
	}
	return s, nil
}

// UnpackUnchecked decodes a record without looking at its version.
func UnpackUnchecked(src []byte) (*ProtocolState, error) {
	if len(src) != Size {
		return nil, fmt.Errorf("unpack protocol state from %d bytes: %w", len(src), runtime.ErrInvalidAccountData)
	}
	var s ProtocolState
	if err := s.UnmarshalWithDecoder(bin.NewBinDecoder(src)); err != nil {
		return nil, fmt.Errorf("unpack protocol state: %v: %w", err, runtime.ErrInvalidAccountData)
	}
	return &s, nil
}

// Load reads the record held by an account.
func Load(info *runtime.AccountInfo) (*ProtocolState, error) {
	var s *ProtocolState
	err := info.Data(func(data []byte) error {
		var err error
		s, err = Unpack(data)
		return err
	})
	return s, err
}
