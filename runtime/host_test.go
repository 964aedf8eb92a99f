package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/runtime"
	"github.com/iov-one/custody/system"
)

const (
	modeInvoke byte = iota
	modeVaultSeeds
	modeOtherSeeds
	modeRecurse
	modeMintThenInvoke
)

// forwarder moves 100 lamports from its first account to its second
// through the system program, in the way selected by the first input byte.
func forwarder(vaultBump, otherBump byte) custody.Program {
	return custody.ProgramFunc(func(ctx context.Context, host custody.Host, programID custody.Pubkey, accounts []*custody.AccountInfo, input []byte) error {
		from, to := accounts[0], accounts[1]
		ix := system.NewTransfer(from.Key, to.Key, 100)
		switch input[0] {
		case modeInvoke:
			return host.Invoke(ctx, ix, accounts)
		case modeVaultSeeds:
			return host.InvokeSigned(ctx, ix, accounts, custody.SignerSeeds{[]byte("vault"), {vaultBump}})
		case modeOtherSeeds:
			return host.InvokeSigned(ctx, ix, accounts, custody.SignerSeeds{[]byte("other"), {otherBump}})
		case modeRecurse:
			self := custody.Instruction{
				ProgramID: programID,
				Accounts: []custody.AccountMeta{
					custody.NewReadonlyAccountMeta(from.Key, false),
					custody.NewReadonlyAccountMeta(to.Key, false),
				},
				Data: input,
			}
			return host.Invoke(ctx, self, accounts)
		case modeMintThenInvoke:
			to.Lamports++
			return host.Invoke(ctx, ix, accounts)
		}
		return errors.ErrInvalidInstructionData
	})
}

func TestInvokePrivileges(t *testing.T) {
	alice, bob := custodytest.KeyFromName("alice"), custodytest.KeyFromName("bob")
	vault, vaultBump, err := custody.FindProgramAddress([][]byte{[]byte("vault")}, testProgramID)
	require.NoError(t, err)
	_, otherBump, err := custody.FindProgramAddress([][]byte{[]byte("other")}, testProgramID)
	require.NoError(t, err)

	cases := map[string]struct {
		mode     byte
		from     custody.AccountMeta
		to       custody.AccountMeta
		signers  []crypto.Signer
		wantErr  *errors.Error
		wantFrom uint64
	}{
		"signer privilege is passed on": {
			mode:     modeInvoke,
			from:     custody.NewAccountMeta(alice.PublicKey(), true),
			to:       custody.NewAccountMeta(bob.PublicKey(), false),
			signers:  []crypto.Signer{alice},
			wantFrom: 900,
		},
		"signer privilege cannot be made up": {
			mode:     modeInvoke,
			from:     custody.NewAccountMeta(alice.PublicKey(), false),
			to:       custody.NewAccountMeta(bob.PublicKey(), false),
			wantErr:  errors.ErrPrivilegeEscalation,
			wantFrom: 1000,
		},
		"writable privilege cannot be made up": {
			mode:     modeInvoke,
			from:     custody.NewAccountMeta(alice.PublicKey(), true),
			to:       custody.NewReadonlyAccountMeta(bob.PublicKey(), false),
			signers:  []crypto.Signer{alice},
			wantErr:  errors.ErrPrivilegeEscalation,
			wantFrom: 1000,
		},
		"derived address signs with its seeds": {
			mode:     modeVaultSeeds,
			from:     custody.NewAccountMeta(vault, false),
			to:       custody.NewAccountMeta(bob.PublicKey(), false),
			wantFrom: 900,
		},
		"seeds of another address do not sign": {
			mode:     modeOtherSeeds,
			from:     custody.NewAccountMeta(vault, false),
			to:       custody.NewAccountMeta(bob.PublicKey(), false),
			wantErr:  errors.ErrPrivilegeEscalation,
			wantFrom: 1000,
		},
		"call depth is limited": {
			mode:     modeRecurse,
			from:     custody.NewAccountMeta(alice.PublicKey(), false),
			to:       custody.NewAccountMeta(bob.PublicKey(), false),
			wantErr:  errors.ErrCallDepth,
			wantFrom: 1000,
		},
		"caller changes are checked before the call": {
			mode:     modeMintThenInvoke,
			from:     custody.NewAccountMeta(alice.PublicKey(), true),
			to:       custody.NewAccountMeta(bob.PublicKey(), false),
			signers:  []crypto.Signer{alice},
			wantErr:  errors.ErrUnbalancedInstruction,
			wantFrom: 1000,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			rt := newRuntime(t,
				runtime.GenesisAccount{Pubkey: alice.PublicKey(), Lamports: 1000},
				runtime.GenesisAccount{Pubkey: vault, Lamports: 1000},
			)
			rt.Register(testProgramID, forwarder(vaultBump, otherBump))

			ix := custody.Instruction{
				ProgramID: testProgramID,
				Accounts:  []custody.AccountMeta{tc.from, tc.to},
				Data:      []byte{tc.mode},
			}
			tx := runtime.NewTransaction(1, ix)
			require.NoError(t, tx.Sign(tc.signers...))

			_, err := rt.Execute(context.Background(), tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Equal(t, tc.wantFrom, balance(t, rt, tc.from.Pubkey))
			assert.Equal(t, 1000-tc.wantFrom, balance(t, rt, bob.PublicKey()))
		})
	}
}
