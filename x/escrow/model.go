package escrow

import (
	"encoding/binary"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// RecordLen is the size of an encoded Escrow. It is also the size of the
// escrow account data.
const RecordLen = 1 + custody.PubkeyLength + custody.PubkeyLength + 8 + 1

// Escrow is the state kept in the escrow account.
type Escrow struct {
	IsInitialized bool
	Initializer   custody.Pubkey
	Taker         custody.Pubkey
	Amount        uint64
	Bump          uint8
}

// MarshalBinary encodes the record into its fixed layout.
func (e *Escrow) MarshalBinary() ([]byte, error) {
	b := make([]byte, RecordLen)
	if e.IsInitialized {
		b[0] = 1
	}
	copy(b[1:33], e.Initializer[:])
	copy(b[33:65], e.Taker[:])
	binary.LittleEndian.PutUint64(b[65:73], e.Amount)
	b[73] = e.Bump
	return b, nil
}

// UnmarshalBinary decodes a record. Anything but exactly RecordLen bytes
// with a 0 or 1 flag byte is rejected.
func (e *Escrow) UnmarshalBinary(raw []byte) error {
	if len(raw) != RecordLen {
		return errors.Wrapf(errors.ErrInvalidAccountData, "record of %d bytes", len(raw))
	}
	switch raw[0] {
	case 0:
		e.IsInitialized = false
	case 1:
		e.IsInitialized = true
	default:
		return errors.Wrapf(errors.ErrInvalidAccountData, "flag byte %d", raw[0])
	}
	copy(e.Initializer[:], raw[1:33])
	copy(e.Taker[:], raw[33:65])
	e.Amount = binary.LittleEndian.Uint64(raw[65:73])
	e.Bump = raw[73]
	return nil
}

// loadEscrow reads the initialized record held by acc.
func loadEscrow(acc *custody.AccountInfo, programID custody.Pubkey) (*Escrow, error) {
	if len(acc.Data) == 0 {
		return nil, errors.Wrapf(errors.ErrUninitializedAccount, "escrow %s", acc.Key)
	}
	var e Escrow
	if err := e.UnmarshalBinary(acc.Data); err != nil {
		return nil, err
	}
	if !e.IsInitialized {
		return nil, errors.Wrapf(errors.ErrUninitializedAccount, "escrow %s", acc.Key)
	}
	if acc.Owner != programID {
		return nil, errors.Wrapf(errors.ErrIncorrectProgramID, "escrow %s owned by %s", acc.Key, acc.Owner)
	}
	return &e, nil
}

// saveEscrow writes the record into acc.
func saveEscrow(acc *custody.AccountInfo, e *Escrow) error {
	if len(acc.Data) < RecordLen {
		return errors.Wrapf(errors.ErrAccountDataTooSmall, "escrow %s has %d bytes", acc.Key, len(acc.Data))
	}
	raw, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	copy(acc.Data, raw)
	return nil
}
