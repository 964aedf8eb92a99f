package escrow

import (
	"context"
	"crypto/sha256"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// ProgramID is the id the escrow program is registered under by default.
var ProgramID = custody.Pubkey(sha256.Sum256([]byte("custody/escrow")))

// Program is the escrow program. All state lives in the escrow accounts.
type Program struct{}

var _ custody.Program = Program{}

// Process decodes the instruction and dispatches it to its handler.
func (Program) Process(ctx context.Context, host custody.Host, programID custody.Pubkey, accounts []*custody.AccountInfo, input []byte) error {
	ix, err := DecodeInstruction(input)
	if err != nil {
		return err
	}
	ctrl := controller{host: host, programID: programID}

	switch ix := ix.(type) {
	case Initialize:
		custody.Msg(ctx, "Escrow: Initialize", "amount", ix.Amount)
		return initialize(ctx, ctrl, accounts, ix)
	case Deposit:
		custody.Msg(ctx, "Escrow: Deposit")
		return deposit(ctx, ctrl, accounts)
	case Withdraw:
		custody.Msg(ctx, "Escrow: Withdraw")
		return withdraw(ctx, ctrl, accounts)
	default:
		return errors.Wrapf(errors.ErrHuman, "unhandled instruction %T", ix)
	}
}

// nextAccounts takes n accounts from the front of the list.
func nextAccounts(accounts []*custody.AccountInfo, n int) ([]*custody.AccountInfo, error) {
	iter := custody.NewAccountIter(accounts)
	res := make([]*custody.AccountInfo, n)
	for i := range res {
		acc, err := iter.Next()
		if err != nil {
			return nil, err
		}
		res[i] = acc
	}
	return res, nil
}

// initialize expects [initializer(s,w), taker, escrow(w), system].
func initialize(ctx context.Context, ctrl controller, accounts []*custody.AccountInfo, ix Initialize) error {
	accs, err := nextAccounts(accounts, 4)
	if err != nil {
		return err
	}
	initializer, taker, escrow := accs[0], accs[1], accs[2]

	if err := requireSigners(initializer); err != nil {
		return err
	}

	addr, bump, err := Address(ctrl.programID, initializer.Key, ix.Seed)
	if err != nil {
		return err
	}
	if addr != escrow.Key {
		return errors.Wrapf(errors.ErrInvalidSeeds, "escrow %s, want %s", escrow.Key, addr)
	}
	if _, err := loadEscrow(escrow, ctrl.programID); err == nil {
		return errors.Wrapf(errors.ErrAccountAlreadyInitialized, "escrow %s", escrow.Key)
	}

	if err := ctrl.Create(ctx, initializer, escrow, signerSeeds(initializer.Key, bump), accounts); err != nil {
		return err
	}

	record := Escrow{
		IsInitialized: true,
		Initializer:   initializer.Key,
		Taker:         taker.Key,
		Amount:        ix.Amount,
		Bump:          bump,
	}
	if err := saveEscrow(escrow, &record); err != nil {
		return err
	}
	custody.Msg(ctx, "initialized escrow", "address", escrow.Key, "amount", ix.Amount)
	return nil
}

// deposit expects [initializer(s,w), taker, escrow(w), system].
func deposit(ctx context.Context, ctrl controller, accounts []*custody.AccountInfo) error {
	accs, err := nextAccounts(accounts, 4)
	if err != nil {
		return err
	}
	initializer, taker, escrow := accs[0], accs[1], accs[2]

	if err := requireSigners(initializer); err != nil {
		return err
	}
	record, err := loadEscrow(escrow, ctrl.programID)
	if err != nil {
		return err
	}
	if err := requireParties(record, initializer, taker); err != nil {
		return err
	}
	if err := requireAddress(ctrl.programID, escrow, record.Initializer, record.Bump); err != nil {
		return err
	}

	if err := ctrl.Deposit(ctx, initializer, escrow, record.Amount, accounts); err != nil {
		return err
	}
	custody.Msg(ctx, "deposited into escrow", "amount", record.Amount, "escrow", escrow.Key)
	return nil
}

// withdraw expects [initializer(s), taker(s,w), escrow(w)].
func withdraw(ctx context.Context, ctrl controller, accounts []*custody.AccountInfo) error {
	accs, err := nextAccounts(accounts, 3)
	if err != nil {
		return err
	}
	initializer, taker, escrow := accs[0], accs[1], accs[2]

	if err := requireSigners(initializer, taker); err != nil {
		return err
	}
	record, err := loadEscrow(escrow, ctrl.programID)
	if err != nil {
		return err
	}
	if err := requireParties(record, initializer, taker); err != nil {
		return err
	}
	if err := requireAddress(ctrl.programID, escrow, record.Initializer, record.Bump); err != nil {
		return err
	}

	if err := ctrl.Withdraw(escrow, taker, record.Amount); err != nil {
		return err
	}
	custody.Msg(ctx, "withdrew from escrow", "amount", record.Amount, "escrow", escrow.Key, "taker", taker.Key)
	return nil
}
