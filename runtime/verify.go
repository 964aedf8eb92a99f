package runtime

import (
	"bytes"

	"github.com/chain/txvm/math/checked"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// preAccount is the state of an account when a program got control of it,
// together with the privileges it was granted.
type preAccount struct {
	key        custody.Pubkey
	isSigner   bool
	isWritable bool
	lamports   uint64
	data       []byte
	owner      custody.Pubkey
	executable bool
}

func snapshot(accounts []*custody.AccountInfo) []preAccount {
	res := make([]preAccount, len(accounts))
	for i, a := range accounts {
		res[i] = preAccount{
			key:        a.Key,
			isSigner:   a.IsSigner,
			isWritable: a.IsWritable,
			lamports:   a.Lamports,
			data:       append([]byte(nil), a.Data...),
			owner:      a.Owner,
			executable: a.Executable,
		}
	}
	return res
}

// refresh accepts the current state of the accounts as the new baseline,
// keeping the privileges.
func refresh(pre []preAccount, accounts []*custody.AccountInfo) {
	for i, a := range accounts {
		pre[i].lamports = a.Lamports
		pre[i].data = append(pre[i].data[:0], a.Data...)
		pre[i].owner = a.Owner
		pre[i].executable = a.Executable
	}
}

// verify checks the changes programID made to a single account.
func (p preAccount) verify(programID custody.Pubkey, post *custody.AccountInfo) error {
	if post.Owner != p.owner {
		if p.owner != programID || !p.isWritable || !isZeroed(post.Data) {
			return errors.Wrapf(errors.ErrModifiedProgramID, "account %s", p.key)
		}
	}
	if post.Executable != p.executable {
		return errors.Wrapf(errors.ErrModifiedProgramID, "executable flag of %s", p.key)
	}

	if post.Lamports != p.lamports {
		if !p.isWritable {
			return errors.Wrapf(errors.ErrReadonlyLamportChange, "account %s", p.key)
		}
		if post.Lamports < p.lamports && p.owner != programID {
			return errors.Wrapf(errors.ErrExternalAccountLamportSpend, "account %s", p.key)
		}
	}

	if !bytes.Equal(post.Data, p.data) {
		if !p.isWritable {
			return errors.Wrapf(errors.ErrReadonlyDataModified, "account %s", p.key)
		}
		if p.owner != programID {
			return errors.Wrapf(errors.ErrExternalAccountDataModified, "account %s", p.key)
		}
		if len(post.Data) > custody.MaxAccountDataLength {
			return errors.Wrapf(errors.ErrInvalidAccountData, "account %s grew to %d bytes", p.key, len(post.Data))
		}
	}
	return nil
}

// verifyAll checks every account touched by programID and that no lamports
// were created or destroyed.
func verifyAll(programID custody.Pubkey, pre []preAccount, post []*custody.AccountInfo) error {
	var before, after uint64
	for i, p := range pre {
		if err := p.verify(programID, post[i]); err != nil {
			return err
		}
		var ok bool
		if before, ok = checked.AddUint64(before, p.lamports); !ok {
			return errors.Wrap(errors.ErrUnbalancedInstruction, "balance overflow before")
		}
		if after, ok = checked.AddUint64(after, post[i].Lamports); !ok {
			return errors.Wrap(errors.ErrUnbalancedInstruction, "balance overflow after")
		}
	}
	if before != after {
		return errors.Wrapf(errors.ErrUnbalancedInstruction, "%d before, %d after", before, after)
	}
	return nil
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
