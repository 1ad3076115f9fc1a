// =============================
// File: internal/runtime/errors.go
// =============================
package runtime

import (
	"errors"
	"fmt"
)

// Host errors. Programs return them (wrapped or not) and callers match them
// with errors.Is.
var (
	ErrIncorrectProgramID          = errors.New("incorrect program id for instruction")
	ErrInvalidAccountData          = errors.New("invalid account data for instruction")
	ErrUninitializedAccount        = errors.New("instruction requires an initialized account")
	ErrAccountAlreadyInitialized   = errors.New("instruction requires an uninitialized account")
	ErrNotEnoughAccountKeys        = errors.New("insufficient account keys for instruction")
	ErrAccountBorrowFailed         = errors.New("account data already borrowed")
	ErrMissingRequiredSignature    = errors.New("missing required signature for instruction")
	ErrPrivilegeEscalation         = errors.New("cross-program invocation with unauthorized signer or writable account")
	ErrExternalAccountDataModified = errors.New("instruction modified data of an account it does not own")
	ErrReadonlyDataModified        = errors.New("instruction modified data of a read-only account")
	ErrProgramNotFound             = errors.New("program not found")
	ErrCallDepth                   = errors.New("cross-program invocation call depth too deep")
	ErrReentrancyNotAllowed        = errors.New("cross-program invocation reentrancy not allowed")
	ErrInvalidSeeds                = errors.New("invalid seeds for program address")
	ErrMissingAccount              = errors.New("account required by the instruction is missing")
)

// InstructionError records which top-level instruction of a transaction failed.
type InstructionError struct {
	Index int
	Err   error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %d: %v", e.Index, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}
