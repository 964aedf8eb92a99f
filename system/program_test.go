package system_test

import (
	"context"
	"math"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/system"
)

func process(t testing.TB, ix custody.Instruction, accounts ...*custody.AccountInfo) error {
	t.Helper()
	host := custodytest.NewHost(custody.SystemProgramID, nil)
	return system.Program{}.Process(context.Background(), host, custody.SystemProgramID, accounts, ix.Data)
}

func TestTransfer(t *testing.T) {
	alice, bob := custody.Pubkey{1}, custody.Pubkey{2}

	cases := map[string]struct {
		from     *custody.AccountInfo
		to       *custody.AccountInfo
		amount   uint64
		wantErr  *errors.Error
		wantFrom uint64
		wantTo   uint64
	}{
		"move funds": {
			from:     custodytest.NewAccount(alice).Signer().Writable().Lamports(5000).Info(),
			to:       custodytest.NewAccount(bob).Writable().Lamports(10).Info(),
			amount:   1000,
			wantFrom: 4000,
			wantTo:   1010,
		},
		"whole balance": {
			from:     custodytest.NewAccount(alice).Signer().Writable().Lamports(1000).Info(),
			to:       custodytest.NewAccount(bob).Writable().Info(),
			amount:   1000,
			wantFrom: 0,
			wantTo:   1000,
		},
		"insufficient funds": {
			from:     custodytest.NewAccount(alice).Signer().Writable().Lamports(999).Info(),
			to:       custodytest.NewAccount(bob).Writable().Info(),
			amount:   1000,
			wantErr:  errors.ErrInsufficientFunds,
			wantFrom: 999,
		},
		"missing signature": {
			from:     custodytest.NewAccount(alice).Writable().Lamports(5000).Info(),
			to:       custodytest.NewAccount(bob).Writable().Info(),
			amount:   1,
			wantErr:  errors.ErrMissingRequiredSignature,
			wantFrom: 5000,
		},
		"source owned by a program": {
			from:     custodytest.NewAccount(alice).Signer().Writable().Lamports(5000).Owner(custody.Pubkey{7}).Info(),
			to:       custodytest.NewAccount(bob).Writable().Info(),
			amount:   1,
			wantErr:  errors.ErrIncorrectProgramID,
			wantFrom: 5000,
		},
		"source with data": {
			from:     custodytest.NewAccount(alice).Signer().Writable().Lamports(5000).Data([]byte{1}).Info(),
			to:       custodytest.NewAccount(bob).Writable().Info(),
			amount:   1,
			wantErr:  errors.ErrInvalidArgument,
			wantFrom: 5000,
		},
		"credit overflow": {
			from:     custodytest.NewAccount(alice).Signer().Writable().Lamports(5).Info(),
			to:       custodytest.NewAccount(bob).Writable().Lamports(math.MaxUint64).Info(),
			amount:   5,
			wantErr:  errors.ErrInvalidArgument,
			wantFrom: 5,
			wantTo:   math.MaxUint64,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := process(t, system.NewTransfer(alice, bob, tc.amount), tc.from, tc.to)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Balance(t, tc.wantFrom, tc.from.Lamports)
			assert.Balance(t, tc.wantTo, tc.to.Lamports)
		})
	}
}

func TestCreateAccount(t *testing.T) {
	payer, fresh, owner := custody.Pubkey{1}, custody.Pubkey{2}, custody.Pubkey{3}

	cases := map[string]struct {
		to      *custody.AccountInfo
		space   uint64
		wantErr *errors.Error
	}{
		"create": {
			to:    custodytest.NewAccount(fresh).Signer().Writable().Info(),
			space: 74,
		},
		"already funded": {
			to:      custodytest.NewAccount(fresh).Signer().Writable().Lamports(1).Info(),
			space:   74,
			wantErr: errors.ErrAccountAlreadyInUse,
		},
		"already has data": {
			to:      custodytest.NewAccount(fresh).Signer().Writable().Data([]byte{0}).Info(),
			space:   74,
			wantErr: errors.ErrAccountAlreadyInUse,
		},
		"new account must sign": {
			to:      custodytest.NewAccount(fresh).Writable().Info(),
			space:   74,
			wantErr: errors.ErrMissingRequiredSignature,
		},
		"too large": {
			to:      custodytest.NewAccount(fresh).Signer().Writable().Info(),
			space:   custody.MaxAccountDataLength + 1,
			wantErr: errors.ErrInvalidArgument,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			from := custodytest.NewAccount(payer).Signer().Writable().Lamports(1e9).Info()
			ix := system.NewCreateAccount(payer, fresh, 1405920, tc.space, owner)
			err := process(t, ix, from, tc.to)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			assert.Balance(t, 1e9-1405920, from.Lamports)
			assert.Balance(t, 1405920, tc.to.Lamports)
			assert.Equal(t, make([]byte, 74), tc.to.Data)
			assert.Equal(t, owner, tc.to.Owner)
		})
	}
}

func TestAssign(t *testing.T) {
	key, owner := custody.Pubkey{1}, custody.Pubkey{3}

	acc := custodytest.NewAccount(key).Signer().Writable().Info()
	assert.Nil(t, process(t, system.NewAssign(key, owner), acc))
	assert.Equal(t, owner, acc.Owner)

	// assigning to the current owner is a noop
	assert.Nil(t, process(t, system.NewAssign(key, owner), acc))

	other := custodytest.NewAccount(key).Signer().Writable().Owner(owner).Info()
	err := process(t, system.NewAssign(key, custody.Pubkey{4}), other)
	assert.IsErr(t, errors.ErrIncorrectProgramID, err)

	unsigned := custodytest.NewAccount(key).Writable().Info()
	err = process(t, system.NewAssign(key, owner), unsigned)
	assert.IsErr(t, errors.ErrMissingRequiredSignature, err)
}

func TestNotEnoughAccounts(t *testing.T) {
	alice := custodytest.NewAccount(custody.Pubkey{1}).Signer().Writable().Lamports(10).Info()
	err := process(t, system.NewTransfer(custody.Pubkey{1}, custody.Pubkey{2}, 1), alice)
	assert.IsErr(t, errors.ErrNotEnoughAccountKeys, err)
}
