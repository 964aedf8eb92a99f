package system

import (
	"context"

	"github.com/chain/txvm/math/checked"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Program is the system program. It is stateless.
type Program struct{}

var _ custody.Program = Program{}

// Process executes a single system instruction.
func (Program) Process(ctx context.Context, host custody.Host, programID custody.Pubkey, accounts []*custody.AccountInfo, input []byte) error {
	req, err := Decode(input)
	if err != nil {
		return err
	}
	iter := custody.NewAccountIter(accounts)

	switch req := req.(type) {
	case CreateAccount:
		from, err := iter.Next()
		if err != nil {
			return err
		}
		to, err := iter.Next()
		if err != nil {
			return err
		}
		return createAccount(ctx, from, to, req)
	case Assign:
		acc, err := iter.Next()
		if err != nil {
			return err
		}
		return assign(ctx, acc, req.Owner)
	case Transfer:
		from, err := iter.Next()
		if err != nil {
			return err
		}
		to, err := iter.Next()
		if err != nil {
			return err
		}
		return transfer(ctx, from, to, req.Lamports)
	default:
		return errors.Wrapf(errors.ErrHuman, "unhandled request %T", req)
	}
}

func createAccount(ctx context.Context, from, to *custody.AccountInfo, req CreateAccount) error {
	if !to.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "create account %s", to.Key)
	}
	if to.Lamports != 0 || len(to.Data) != 0 || to.Owner != custody.SystemProgramID {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "create account %s", to.Key)
	}
	if req.Space > custody.MaxAccountDataLength {
		return errors.Wrapf(errors.ErrInvalidArgument, "space %d exceeds %d", req.Space, custody.MaxAccountDataLength)
	}
	if err := transfer(ctx, from, to, req.Lamports); err != nil {
		return err
	}
	to.Data = make([]byte, req.Space)
	to.Owner = req.Owner
	custody.Msg(ctx, "create account", "account", to.Key, "space", req.Space, "owner", req.Owner)
	return nil
}

func assign(ctx context.Context, acc *custody.AccountInfo, owner custody.Pubkey) error {
	if acc.Owner == owner {
		return nil
	}
	if !acc.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "assign %s", acc.Key)
	}
	if acc.Owner != custody.SystemProgramID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "assign %s owned by %s", acc.Key, acc.Owner)
	}
	acc.Owner = owner
	custody.Msg(ctx, "assign", "account", acc.Key, "owner", owner)
	return nil
}

func transfer(ctx context.Context, from, to *custody.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "transfer from %s", from.Key)
	}
	if len(from.Data) != 0 {
		return errors.Wrap(errors.ErrInvalidArgument, "transfer source must not carry data")
	}
	if from.Owner != custody.SystemProgramID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "transfer source owned by %s", from.Owner)
	}
	if lamports == 0 {
		return nil
	}
	debited, ok := checked.SubUint64(from.Lamports, lamports)
	if !ok {
		return errors.Wrapf(errors.ErrInsufficientFunds, "need %d, have %d", lamports, from.Lamports)
	}
	credited, ok := checked.AddUint64(to.Lamports, lamports)
	if !ok {
		return errors.Wrapf(errors.ErrInvalidArgument, "credit %d overflows %s", lamports, to.Key)
	}
	from.Lamports = debited
	to.Lamports = credited
	return nil
}
