package custody

import (
	"github.com/iov-one/custody/errors"
)

// SystemProgramID is the id of the native value transfer program. Freshly
// created accounts are owned by it.
var SystemProgramID = Pubkey{}

// AccountInfo is the view of an account handed to a program for the duration
// of one instruction. Lamports and Data are mutated in place; the runtime
// checks and persists the changes once the program returns.
type AccountInfo struct {
	Key        Pubkey
	IsSigner   bool
	IsWritable bool
	Lamports   uint64
	Data       []byte
	Owner      Pubkey
	Executable bool
}

// AccountMeta describes how an instruction uses an account.
type AccountMeta struct {
	Pubkey     Pubkey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta returns a writable meta.
func NewAccountMeta(key Pubkey, signer bool) AccountMeta {
	return AccountMeta{Pubkey: key, IsSigner: signer, IsWritable: true}
}

// NewReadonlyAccountMeta returns a meta that does not allow modification.
func NewReadonlyAccountMeta(key Pubkey, signer bool) AccountMeta {
	return AccountMeta{Pubkey: key, IsSigner: signer, IsWritable: false}
}

// Instruction is a single call into a program.
type Instruction struct {
	ProgramID Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// AccountIter hands out accounts in the positional order an instruction
// declares them.
type AccountIter struct {
	accounts []*AccountInfo
	pos      int
}

// NewAccountIter returns an iterator over the given accounts.
func NewAccountIter(accounts []*AccountInfo) *AccountIter {
	return &AccountIter{accounts: accounts}
}

// Next returns the next account or ErrNotEnoughAccountKeys when all accounts
// were consumed.
func (it *AccountIter) Next() (*AccountInfo, error) {
	if it.pos >= len(it.accounts) {
		return nil, errors.Wrapf(errors.ErrNotEnoughAccountKeys, "want account %d", it.pos)
	}
	acc := it.accounts[it.pos]
	it.pos++
	return acc, nil
}

// FindAccount returns the account with the given key, or nil.
func FindAccount(accounts []*AccountInfo, key Pubkey) *AccountInfo {
	for _, a := range accounts {
		if a.Key == key {
			return a
		}
	}
	return nil
}
