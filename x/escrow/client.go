package escrow

import (
	"github.com/iov-one/custody"
)

// NewInitialize builds an Initialize instruction and returns it together with
// the escrow address it will create.
func NewInitialize(programID, initializer, taker custody.Pubkey, amount uint64, seed *uint8) (custody.Instruction, custody.Pubkey, error) {
	escrow, _, err := Address(programID, initializer, seed)
	if err != nil {
		return custody.Instruction{}, custody.Pubkey{}, err
	}
	ix := custody.Instruction{
		ProgramID: programID,
		Accounts: []custody.AccountMeta{
			custody.NewAccountMeta(initializer, true),
			custody.NewReadonlyAccountMeta(taker, false),
			custody.NewAccountMeta(escrow, false),
			custody.NewReadonlyAccountMeta(custody.SystemProgramID, false),
		},
		Data: EncodeInstruction(Initialize{Amount: amount, Seed: seed}),
	}
	return ix, escrow, nil
}

// NewDeposit builds a Deposit instruction.
func NewDeposit(programID, initializer, taker, escrow custody.Pubkey) custody.Instruction {
	return custody.Instruction{
		ProgramID: programID,
		Accounts: []custody.AccountMeta{
			custody.NewAccountMeta(initializer, true),
			custody.NewReadonlyAccountMeta(taker, false),
			custody.NewAccountMeta(escrow, false),
			custody.NewReadonlyAccountMeta(custody.SystemProgramID, false),
		},
		Data: EncodeInstruction(Deposit{}),
	}
}

// NewWithdraw builds a Withdraw instruction.
func NewWithdraw(programID, initializer, taker, escrow custody.Pubkey) custody.Instruction {
	return custody.Instruction{
		ProgramID: programID,
		Accounts: []custody.AccountMeta{
			custody.NewReadonlyAccountMeta(initializer, true),
			custody.NewAccountMeta(taker, true),
			custody.NewAccountMeta(escrow, false),
		},
		Data: EncodeInstruction(Withdraw{}),
	}
}
