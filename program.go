package custody

import (
	"context"
)

// Program is the entry point of on-ledger code. Process is called once per
// instruction with the accounts listed by the instruction, in order. Any
// returned error aborts the whole transaction and the runtime discards every
// mutation done so far.
type Program interface {
	Process(ctx context.Context, host Host, programID Pubkey, accounts []*AccountInfo, input []byte) error
}

// ProgramFunc is an adapter to allow the use of ordinary functions as
// programs.
type ProgramFunc func(ctx context.Context, host Host, programID Pubkey, accounts []*AccountInfo, input []byte) error

func (fn ProgramFunc) Process(ctx context.Context, host Host, programID Pubkey, accounts []*AccountInfo, input []byte) error {
	return fn(ctx, host, programID, accounts, input)
}

// Host is the set of runtime services a program may call during one
// instruction.
type Host interface {
	// Rent returns the rent parameters the ledger is configured with.
	Rent() Rent

	// Invoke calls another program. Every account referenced by the
	// instruction must be present in accounts. Changes done by the
	// callee are visible in accounts when Invoke returns.
	Invoke(ctx context.Context, ix Instruction, accounts []*AccountInfo) error

	// InvokeSigned is Invoke with additional signing authority for
	// program derived addresses. Every SignerSeeds must derive, under
	// the calling program id, a key that is then treated as a signer
	// for this single call.
	InvokeSigned(ctx context.Context, ix Instruction, accounts []*AccountInfo, signers ...SignerSeeds) error
}

// SignerSeeds is a capability token: the seed preimage (bump included) of a
// program derived address. Presenting it to InvokeSigned proves that the
// calling program controls the address. It is valid for one call only and
// must never be persisted.
type SignerSeeds [][]byte

// Derive returns the address the seeds produce under the given program.
func (s SignerSeeds) Derive(programID Pubkey) (Pubkey, error) {
	return CreateProgramAddress(s, programID)
}
