package escrow

import (
	"context"

	"github.com/chain/txvm/math/checked"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/system"
)

// controller moves funds in and out of escrow accounts.
type controller struct {
	host      custody.Host
	programID custody.Pubkey
}

// Create funds and allocates the escrow account and hands it over to the
// program. The account must be signed for with its seeds.
func (c controller) Create(ctx context.Context, payer, escrow *custody.AccountInfo, seeds custody.SignerSeeds, accounts []*custody.AccountInfo) error {
	lamports := c.host.Rent().MinimumBalance(RecordLen)
	ix := system.NewCreateAccount(payer.Key, escrow.Key, lamports, RecordLen, c.programID)
	if err := c.host.InvokeSigned(ctx, ix, accounts, seeds); err != nil {
		return errors.Wrap(err, "create escrow account")
	}
	return nil
}

// Deposit transfers amount from the initializer to the escrow account.
func (c controller) Deposit(ctx context.Context, from, escrow *custody.AccountInfo, amount uint64, accounts []*custody.AccountInfo) error {
	ix := system.NewTransfer(from.Key, escrow.Key, amount)
	return c.host.Invoke(ctx, ix, accounts)
}

// Withdraw pays amount out of the escrow account to dest. The rent reserve
// of the escrow account cannot be paid out.
func (c controller) Withdraw(escrow, dest *custody.AccountInfo, amount uint64) error {
	reserve := c.host.Rent().MinimumBalance(RecordLen)
	spendable, ok := checked.SubUint64(escrow.Lamports, reserve)
	if !ok || spendable < amount {
		return errors.Wrapf(errors.ErrInsufficientFunds, "escrow holds %d, reserve %d, want %d", escrow.Lamports, reserve, amount)
	}
	debited, ok := checked.SubUint64(escrow.Lamports, amount)
	if !ok {
		return errors.Wrapf(errors.ErrInsufficientFunds, "escrow holds %d, want %d", escrow.Lamports, amount)
	}
	credited, ok := checked.AddUint64(dest.Lamports, amount)
	if !ok {
		return errors.Wrapf(errors.ErrInvalidAccountData, "crediting %d overflows %s", amount, dest.Key)
	}
	escrow.Lamports = debited
	dest.Lamports = credited
	return nil
}
