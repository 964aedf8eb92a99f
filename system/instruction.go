package system

import (
	"encoding/binary"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const (
	tagCreateAccount uint32 = 0
	tagAssign        uint32 = 1
	tagTransfer      uint32 = 2
)

// Request is implemented by every instruction understood by the system
// program.
type Request interface {
	isRequest()
}

// CreateAccount funds a new account, allocates Space bytes of zeroed data and
// assigns it to Owner. Accounts: [funder(s,w), new account(s,w)].
type CreateAccount struct {
	Lamports uint64
	Space    uint64
	Owner    custody.Pubkey
}

// Assign changes the owner of an empty system account.
// Accounts: [account(s,w)].
type Assign struct {
	Owner custody.Pubkey
}

// Transfer moves lamports. Accounts: [from(s,w), to(w)].
type Transfer struct {
	Lamports uint64
}

func (CreateAccount) isRequest() {}
func (Assign) isRequest()        {}
func (Transfer) isRequest()      {}

// Encode serializes a request into instruction data.
func Encode(r Request) []byte {
	switch r := r.(type) {
	case CreateAccount:
		b := make([]byte, 4+8+8+custody.PubkeyLength)
		binary.LittleEndian.PutUint32(b, tagCreateAccount)
		binary.LittleEndian.PutUint64(b[4:], r.Lamports)
		binary.LittleEndian.PutUint64(b[12:], r.Space)
		copy(b[20:], r.Owner[:])
		return b
	case Assign:
		b := make([]byte, 4+custody.PubkeyLength)
		binary.LittleEndian.PutUint32(b, tagAssign)
		copy(b[4:], r.Owner[:])
		return b
	case Transfer:
		b := make([]byte, 4+8)
		binary.LittleEndian.PutUint32(b, tagTransfer)
		binary.LittleEndian.PutUint64(b[4:], r.Lamports)
		return b
	default:
		panic("unknown system request")
	}
}

// Decode parses instruction data. Trailing bytes are rejected.
func Decode(data []byte) (Request, error) {
	if len(data) < 4 {
		return nil, errors.Wrap(errors.ErrInvalidInstructionData, "missing tag")
	}
	tag, rest := binary.LittleEndian.Uint32(data), data[4:]
	switch tag {
	case tagCreateAccount:
		if len(rest) != 8+8+custody.PubkeyLength {
			return nil, errors.Wrapf(errors.ErrInvalidInstructionData, "create account: %d bytes", len(rest))
		}
		var r CreateAccount
		r.Lamports = binary.LittleEndian.Uint64(rest)
		r.Space = binary.LittleEndian.Uint64(rest[8:])
		copy(r.Owner[:], rest[16:])
		return r, nil
	case tagAssign:
		if len(rest) != custody.PubkeyLength {
			return nil, errors.Wrapf(errors.ErrInvalidInstructionData, "assign: %d bytes", len(rest))
		}
		var r Assign
		copy(r.Owner[:], rest)
		return r, nil
	case tagTransfer:
		if len(rest) != 8 {
			return nil, errors.Wrapf(errors.ErrInvalidInstructionData, "transfer: %d bytes", len(rest))
		}
		return Transfer{Lamports: binary.LittleEndian.Uint64(rest)}, nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInstructionData, "unknown tag %d", tag)
	}
}

// NewCreateAccount builds a CreateAccount instruction.
func NewCreateAccount(from, to custody.Pubkey, lamports, space uint64, owner custody.Pubkey) custody.Instruction {
	return custody.Instruction{
		ProgramID: custody.SystemProgramID,
		Accounts: []custody.AccountMeta{
			custody.NewAccountMeta(from, true),
			custody.NewAccountMeta(to, true),
		},
		Data: Encode(CreateAccount{Lamports: lamports, Space: space, Owner: owner}),
	}
}

// NewAssign builds an Assign instruction.
func NewAssign(account, owner custody.Pubkey) custody.Instruction {
	return custody.Instruction{
		ProgramID: custody.SystemProgramID,
		Accounts: []custody.AccountMeta{
			custody.NewAccountMeta(account, true),
		},
		Data: Encode(Assign{Owner: owner}),
	}
}

// NewTransfer builds a Transfer instruction.
func NewTransfer(from, to custody.Pubkey, lamports uint64) custody.Instruction {
	return custody.Instruction{
		ProgramID: custody.SystemProgramID,
		Accounts: []custody.AccountMeta{
			custody.NewAccountMeta(from, true),
			custody.NewAccountMeta(to, false),
		},
		Data: Encode(Transfer{Lamports: lamports}),
	}
}
