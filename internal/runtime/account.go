// =============================
// File: internal/runtime/account.go
// =============================
package runtime

import (
	"github.com/gagliardetto/solana-go"
)

// Account is a ledger record.
type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      solana.PublicKey
	Executable bool
}

// Clone returns a deep copy of a.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

// record is the working copy of an account shared by every AccountInfo that
// refers to the same key within one transaction.
type record struct {
	account   *Account
	shared    int
	exclusive bool
}

func (r *record) borrow() error {
	if r.exclusive {
		return ErrAccountBorrowFailed
	}
	r.shared++
	return nil
}

func (r *record) release() {
	r.shared--
}

func (r *record) borrowMut() error {
	if r.exclusive || r.shared > 0 {
		return ErrAccountBorrowFailed
	}
	r.exclusive = true
	return nil
}

func (r *record) releaseMut() {
	r.exclusive = false
}

func (r *record) borrowed() bool {
	return r.exclusive || r.shared > 0
}

// AccountInfo is a program's handle to an account for the duration of one
// invocation. Borrow tracking is not goroutine safe; a transaction runs on a
// single goroutine.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool

	rec *record
}

// NewAccountInfo wraps account in a standalone handle. The account is used in
// place, not copied.
func NewAccountInfo(key solana.PublicKey, isSigner, isWritable bool, account *Account) *AccountInfo {
	if account == nil {
		account = &Account{Owner: solana.SystemProgramID}
	}
	return &AccountInfo{
		Key:        key,
		IsSigner:   isSigner,
		IsWritable: isWritable,
		rec:        &record{account: account},
	}
}

func (a *AccountInfo) Owner() solana.PublicKey {
	return a.rec.account.Owner
}

func (a *AccountInfo) Lamports() uint64 {
	return a.rec.account.Lamports
}

func (a *AccountInfo) Executable() bool {
	return a.rec.account.Executable
}

func (a *AccountInfo) DataLen() int {
	return len(a.rec.account.Data)
}

// Data lends the account data to fn for reading. fn must not retain the slice.
func (a *AccountInfo) Data(fn func(data []byte) error) error {
	if err := a.rec.borrow(); err != nil {
		return err
	}
	defer a.rec.release()
	return fn(a.rec.account.Data)
}

// DataMut lends the account data to fn for in-place modification. The borrow
// is exclusive and requires a writable handle.
func (a *AccountInfo) DataMut(fn func(data []byte) error) error {
	if !a.IsWritable {
		return ErrReadonlyDataModified
	}
	if err := a.rec.borrowMut(); err != nil {
		return err
	}
	defer a.rec.releaseMut()
	return fn(a.rec.account.Data)
}

// CopyData returns a copy of the account data.
func (a *AccountInfo) CopyData() ([]byte, error) {
	var out []byte
	err := a.Data(func(data []byte) error {
		out = append([]byte(nil), data...)
		return nil
	})
	return out, err
}

// AccountIter hands out accounts in order.
type AccountIter struct {
	accounts []*AccountInfo
	pos      int
}

func NewAccountIter(accounts []*AccountInfo) *AccountIter {
	return &AccountIter{accounts: accounts}
}

// Next returns the next account or ErrNotEnoughAccountKeys.
func (it *AccountIter) Next() (*AccountInfo, error) {
	if it.pos >= len(it.accounts) {
		return nil, ErrNotEnoughAccountKeys
	}
	a := it.accounts[it.pos]
	it.pos++
	return a, nil
}

// NextN returns the next n accounts. On a short list nothing is consumed.
func (it *AccountIter) NextN(n int) ([]*AccountInfo, error) {
	if n < 0 || it.Remaining() < n {
		return nil, ErrNotEnoughAccountKeys
	}
	out := it.accounts[it.pos : it.pos+n]
	it.pos += n
	return out, nil
}

func (it *AccountIter) Remaining() int {
	return len(it.accounts) - it.pos
}
