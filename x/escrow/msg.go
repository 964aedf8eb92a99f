package escrow

import (
	"encoding/binary"

	"github.com/iov-one/custody/errors"
)

const (
	tagInitialize byte = 0
	tagDeposit    byte = 1
	tagWithdraw   byte = 2
)

// Instruction is a decoded escrow request. It is one of Initialize, Deposit
// or Withdraw.
type Instruction interface {
	isInstruction()
}

// Initialize creates the escrow record. When Seed is set it is used as the
// bump of the escrow address instead of searching for one.
type Initialize struct {
	Amount uint64
	Seed   *uint8
}

// Deposit moves the escrowed amount from the initializer into the escrow.
type Deposit struct{}

// Withdraw releases the escrowed amount to the taker.
type Withdraw struct{}

func (Initialize) isInstruction() {}
func (Deposit) isInstruction()    {}
func (Withdraw) isInstruction()   {}

// DecodeInstruction parses instruction data. Every input either decodes to
// exactly one instruction or fails with ErrInvalidInstructionData.
func DecodeInstruction(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInstructionData, "empty")
	}
	tag, rest := data[0], data[1:]
	switch tag {
	case tagInitialize:
		switch len(rest) {
		case 8:
			return Initialize{Amount: binary.LittleEndian.Uint64(rest)}, nil
		case 9:
			seed := rest[8]
			return Initialize{Amount: binary.LittleEndian.Uint64(rest), Seed: &seed}, nil
		default:
			return nil, errors.Wrapf(errors.ErrInvalidInstructionData, "initialize: %d bytes", len(rest))
		}
	case tagDeposit:
		if len(rest) != 0 {
			return nil, errors.Wrapf(errors.ErrInvalidInstructionData, "deposit: %d trailing bytes", len(rest))
		}
		return Deposit{}, nil
	case tagWithdraw:
		if len(rest) != 0 {
			return nil, errors.Wrapf(errors.ErrInvalidInstructionData, "withdraw: %d trailing bytes", len(rest))
		}
		return Withdraw{}, nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInstructionData, "unknown tag %d", tag)
	}
}

// EncodeInstruction is the inverse of DecodeInstruction.
func EncodeInstruction(ix Instruction) []byte {
	switch ix := ix.(type) {
	case Initialize:
		b := make([]byte, 9, 10)
		b[0] = tagInitialize
		binary.LittleEndian.PutUint64(b[1:], ix.Amount)
		if ix.Seed != nil {
			b = append(b, *ix.Seed)
		}
		return b
	case Deposit:
		return []byte{tagDeposit}
	case Withdraw:
		return []byte{tagWithdraw}
	default:
		panic("unknown escrow instruction")
	}
}
