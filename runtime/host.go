package runtime

import (
	"context"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// MaxInvokeDepth limits how deep nested invocations may go. A top level
// instruction runs at depth 1.
const MaxInvokeDepth = 4

// host is the custody.Host given to a single program call. It owns the
// accounts of that call and the state they had when control was handed over.
type host struct {
	rt        *Runtime
	rent      custody.Rent
	programID custody.Pubkey
	accounts  []*custody.AccountInfo
	pre       []preAccount
	depth     int
}

var _ custody.Host = (*host)(nil)

func (h *host) Rent() custody.Rent {
	return h.rent
}

func (h *host) Invoke(ctx context.Context, ix custody.Instruction, accounts []*custody.AccountInfo) error {
	return h.InvokeSigned(ctx, ix, accounts)
}

func (h *host) InvokeSigned(ctx context.Context, ix custody.Instruction, accounts []*custody.AccountInfo, signers ...custody.SignerSeeds) error {
	if h.depth >= MaxInvokeDepth {
		return errors.Wrapf(errors.ErrCallDepth, "depth %d", h.depth)
	}
	prog, err := h.rt.program(ix.ProgramID)
	if err != nil {
		return err
	}

	derived := make(map[custody.Pubkey]bool, len(signers))
	for _, s := range signers {
		key, err := s.Derive(h.programID)
		if err != nil {
			return errors.Wrap(err, "signer seeds")
		}
		derived[key] = true
	}

	// Whatever the caller did so far must hold before the callee sees it.
	if err := verifyAll(h.programID, h.pre, h.accounts); err != nil {
		return err
	}
	refresh(h.pre, h.accounts)

	callee, unique, origin, err := h.calleeAccounts(ix, accounts, derived)
	if err != nil {
		return err
	}

	custody.Logger(ctx).Debug("invoke", "caller", h.programID, "program", ix.ProgramID, "depth", h.depth+1)
	if err := h.rt.run(ctx, prog, ix.ProgramID, callee, unique, ix.Data, h.rent, h.depth+1); err != nil {
		return err
	}

	for i, acc := range unique {
		dst := h.accounts[origin[i]]
		dst.Lamports = acc.Lamports
		dst.Data = acc.Data
		dst.Owner = acc.Owner
	}
	refresh(h.pre, h.accounts)
	return nil
}

// calleeAccounts builds the account views of a nested call. Privileges are
// taken from what the caller was granted, never from the views it passes.
// origin maps every unique callee account to the index of the caller
// account it was copied from.
func (h *host) calleeAccounts(ix custody.Instruction, passed []*custody.AccountInfo, derived map[custody.Pubkey]bool) (callee, unique []*custody.AccountInfo, origin []int, err error) {
	byKey := make(map[custody.Pubkey]*custody.AccountInfo, len(ix.Accounts))
	callee = make([]*custody.AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		if custody.FindAccount(passed, meta.Pubkey) == nil {
			return nil, nil, nil, errors.Wrapf(errors.ErrNotEnoughAccountKeys, "account %s not passed", meta.Pubkey)
		}
		idx := h.index(meta.Pubkey)
		if idx < 0 {
			return nil, nil, nil, errors.Wrapf(errors.ErrNotEnoughAccountKeys, "account %s not available to caller", meta.Pubkey)
		}
		granted := h.pre[idx]
		if meta.IsSigner && !granted.isSigner && !derived[meta.Pubkey] {
			return nil, nil, nil, errors.Wrapf(errors.ErrPrivilegeEscalation, "signer %s", meta.Pubkey)
		}
		if meta.IsWritable && !granted.isWritable {
			return nil, nil, nil, errors.Wrapf(errors.ErrPrivilegeEscalation, "writable %s", meta.Pubkey)
		}

		acc, ok := byKey[meta.Pubkey]
		if !ok {
			src := h.accounts[idx]
			acc = &custody.AccountInfo{
				Key:        granted.key,
				Lamports:   src.Lamports,
				Data:       append([]byte(nil), src.Data...),
				Owner:      src.Owner,
				Executable: src.Executable,
			}
			byKey[meta.Pubkey] = acc
			unique = append(unique, acc)
			origin = append(origin, idx)
		}
		acc.IsSigner = acc.IsSigner || meta.IsSigner
		acc.IsWritable = acc.IsWritable || meta.IsWritable
		callee[i] = acc
	}
	return callee, unique, origin, nil
}

func (h *host) index(key custody.Pubkey) int {
	for i, p := range h.pre {
		if p.key == key {
			return i
		}
	}
	return -1
}
