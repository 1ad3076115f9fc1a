// =============================
// File: internal/token/errors.go
// =============================
package token

import "errors"

var (
	ErrInvalidInstruction = errors.New("token: invalid instruction")
	ErrUninitializedState = errors.New("token: state is uninitialized")
	ErrInsufficientFunds  = errors.New("token: insufficient funds")
	ErrMintMismatch       = errors.New("token: account not associated with this mint")
	ErrOwnerMismatch      = errors.New("token: owner does not match")
	ErrAccountFrozen      = errors.New("token: account is frozen")
	ErrOverflow           = errors.New("token: operation overflowed")
)
