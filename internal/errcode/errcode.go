// =============================
// File: internal/errcode/errcode.go
// =============================
package errcode

import "fmt"

// Code is a router error kind. The numeric value is what the host reports as the
// custom program error, so the order below is part of the wire contract.
type Code uint32

const (
	InvalidInput Code = iota
	InvalidInstruction
	InvalidProgramAddress
	InvalidDelegate
	InvalidOwner
	IncorrectSwapAccount
	ExceededSlippage
	IncorrectTokenProgramId
	ExpectedAccount
	ConversionFailure
	ZeroTradingTokens
	InternalError
	Unknown
)

var names = [...]string{
	InvalidInput:            "InvalidInput",
	InvalidInstruction:      "InvalidInstruction",
	InvalidProgramAddress:   "InvalidProgramAddress",
	InvalidDelegate:         "InvalidDelegate",
	InvalidOwner:            "InvalidOwner",
	IncorrectSwapAccount:    "IncorrectSwapAccount",
	ExceededSlippage:        "ExceededSlippage",
	IncorrectTokenProgramId: "IncorrectTokenProgramId",
	ExpectedAccount:         "ExpectedAccount",
	ConversionFailure:       "ConversionFailure",
	ZeroTradingTokens:       "ZeroTradingTokens",
	InternalError:           "InternalError",
	Unknown:                 "Unknown",
}

var descriptions = [...]string{
	InvalidInput:            "invalid input",
	InvalidInstruction:      "invalid instruction",
	InvalidProgramAddress:   "invalid program address generated from nonce and key",
	InvalidDelegate:         "token account delegate does not match the authority",
	InvalidOwner:            "token account owner does not match the authority",
	IncorrectSwapAccount:    "address of the provided swap token account is incorrect",
	ExceededSlippage:        "swap instruction exceeds desired slippage limit",
	IncorrectTokenProgramId: "the provided token program does not match the token program expected",
	ExpectedAccount:         "deserialized account is not an spl token account",
	ConversionFailure:       "conversion to or from u64 failed",
	ZeroTradingTokens:       "given pool token amount results in zero trading tokens",
	InternalError:           "internal error",
	Unknown:                 "unknown error",
}

// Name returns the identifier of the code, or "Unknown" for values outside the enum.
func (c Code) Name() string {
	if int(c) < len(names) {
		return names[c]
	}
	return names[Unknown]
}

// Label is the diagnostic line emitted before a failure propagates.
func (c Code) Label() string {
	return "Error: " + c.Name()
}

func (c Code) Error() string {
	if int(c) < len(descriptions) {
		return descriptions[c]
	}
	return fmt.Sprintf("custom program error: %#x", uint32(c))
}

// Valid reports whether c is one of the declared kinds.
func (c Code) Valid() bool {
	return int(c) < len(names)
}
