// =============================
// File: internal/runtime/program.go
// =============================
package runtime

import (
	"github.com/gagliardetto/solana-go"
)

// Program is an on-chain program the runtime can dispatch to.
type Program interface {
	Process(ic *InvokeContext, programID solana.PublicKey, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc adapts a function to Program.
type ProgramFunc func(ic *InvokeContext, programID solana.PublicKey, accounts []*AccountInfo, data []byte) error

func (f ProgramFunc) Process(ic *InvokeContext, programID solana.PublicKey, accounts []*AccountInfo, data []byte) error {
	return f(ic, programID, accounts, data)
}
