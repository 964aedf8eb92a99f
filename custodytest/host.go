package custodytest

import (
	"context"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Call records a single nested invocation done through Host.
type Call struct {
	Instruction custody.Instruction
	// Signers holds the keys the call was allowed to treat as signers
	// through SignerSeeds.
	Signers []custody.Pubkey
}

// Host is an in-memory custody.Host. Nested invocations are dispatched to
// the registered programs with signer and writable privileges checked, but
// without the full set of post-execution checks the runtime does.
type Host struct {
	RentParams custody.Rent
	Programs   map[custody.Pubkey]custody.Program
	// Caller is the program id used to validate SignerSeeds.
	Caller custody.Pubkey
	Calls  []Call
}

var _ custody.Host = (*Host)(nil)

// NewHost returns a host for programs executing as caller.
func NewHost(caller custody.Pubkey, programs map[custody.Pubkey]custody.Program) *Host {
	return &Host{
		RentParams: custody.DefaultRent(),
		Programs:   programs,
		Caller:     caller,
	}
}

// Rent implements custody.Host.
func (h *Host) Rent() custody.Rent {
	return h.RentParams
}

// Invoke implements custody.Host.
func (h *Host) Invoke(ctx context.Context, ix custody.Instruction, accounts []*custody.AccountInfo) error {
	return h.InvokeSigned(ctx, ix, accounts)
}

// InvokeSigned implements custody.Host.
func (h *Host) InvokeSigned(ctx context.Context, ix custody.Instruction, accounts []*custody.AccountInfo, signers ...custody.SignerSeeds) error {
	derived := make([]custody.Pubkey, 0, len(signers))
	for _, s := range signers {
		key, err := s.Derive(h.Caller)
		if err != nil {
			return err
		}
		derived = append(derived, key)
	}
	h.Calls = append(h.Calls, Call{Instruction: ix, Signers: derived})

	prog, ok := h.Programs[ix.ProgramID]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownProgram, "program %s", ix.ProgramID)
	}

	callee := make([]*custody.AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		src := custody.FindAccount(accounts, meta.Pubkey)
		if src == nil {
			return errors.Wrapf(errors.ErrNotEnoughAccountKeys, "account %s not passed", meta.Pubkey)
		}
		signer := src.IsSigner || contains(derived, meta.Pubkey)
		if meta.IsSigner && !signer {
			return errors.Wrapf(errors.ErrPrivilegeEscalation, "signer %s", meta.Pubkey)
		}
		if meta.IsWritable && !src.IsWritable {
			return errors.Wrapf(errors.ErrPrivilegeEscalation, "writable %s", meta.Pubkey)
		}
		cp := *src
		cp.IsSigner = meta.IsSigner
		cp.IsWritable = meta.IsWritable
		cp.Data = append([]byte(nil), src.Data...)
		callee[i] = &cp
	}

	if err := prog.Process(ctx, h, ix.ProgramID, callee, ix.Data); err != nil {
		return err
	}

	for i, meta := range ix.Accounts {
		if !meta.IsWritable {
			continue
		}
		dst := custody.FindAccount(accounts, meta.Pubkey)
		dst.Lamports = callee[i].Lamports
		dst.Data = callee[i].Data
		dst.Owner = callee[i].Owner
	}
	return nil
}

func contains(keys []custody.Pubkey, k custody.Pubkey) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}
