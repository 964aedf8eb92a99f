package custodytest

import (
	"github.com/iov-one/custody"
)

// Account is a builder of account views.
type Account struct {
	info custody.AccountInfo
}

// NewAccount starts building a system owned account.
func NewAccount(key custody.Pubkey) *Account {
	return &Account{info: custody.AccountInfo{Key: key, Owner: custody.SystemProgramID}}
}

// Signer marks the account as signer.
func (a *Account) Signer() *Account {
	a.info.IsSigner = true
	return a
}

// Writable marks the account as writable.
func (a *Account) Writable() *Account {
	a.info.IsWritable = true
	return a
}

// Lamports sets the balance.
func (a *Account) Lamports(n uint64) *Account {
	a.info.Lamports = n
	return a
}

// Owner sets the owning program.
func (a *Account) Owner(p custody.Pubkey) *Account {
	a.info.Owner = p
	return a
}

// Data sets the account data. The slice is copied.
func (a *Account) Data(b []byte) *Account {
	a.info.Data = append([]byte(nil), b...)
	return a
}

// Info returns a fresh copy of the built account.
func (a *Account) Info() *custody.AccountInfo {
	info := a.info
	info.Data = append([]byte(nil), a.info.Data...)
	return &info
}
