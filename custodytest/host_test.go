package custodytest

import (
	"context"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
)

func TestHostInvokePrivileges(t *testing.T) {
	caller := custody.Pubkey{9}
	callee := custody.Pubkey{8}
	pda, bump, err := custody.FindProgramAddress([][]byte{[]byte("vault")}, caller)
	assert.Nil(t, err)

	// touch bumps the balance of every account it gets
	touch := custody.ProgramFunc(func(ctx context.Context, host custody.Host, programID custody.Pubkey, accounts []*custody.AccountInfo, input []byte) error {
		for _, a := range accounts {
			a.Lamports++
		}
		return nil
	})

	cases := map[string]struct {
		meta    custody.AccountMeta
		account *custody.AccountInfo
		seeds   []custody.SignerSeeds
		wantErr *errors.Error
		want    uint64
	}{
		"writable signer passes through": {
			meta:    custody.NewAccountMeta(custody.Pubkey{1}, true),
			account: NewAccount(custody.Pubkey{1}).Signer().Writable().Info(),
			want:    1,
		},
		"signer escalation": {
			meta:    custody.NewAccountMeta(custody.Pubkey{1}, true),
			account: NewAccount(custody.Pubkey{1}).Writable().Info(),
			wantErr: errors.ErrPrivilegeEscalation,
		},
		"writable escalation": {
			meta:    custody.NewAccountMeta(custody.Pubkey{1}, false),
			account: NewAccount(custody.Pubkey{1}).Info(),
			wantErr: errors.ErrPrivilegeEscalation,
		},
		"derived signer": {
			meta:    custody.NewAccountMeta(pda, true),
			account: NewAccount(pda).Writable().Info(),
			seeds:   []custody.SignerSeeds{{[]byte("vault"), {bump}}},
			want:    1,
		},
		"readonly changes are not copied back": {
			meta:    custody.NewReadonlyAccountMeta(custody.Pubkey{1}, false),
			account: NewAccount(custody.Pubkey{1}).Info(),
			want:    0,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			host := NewHost(caller, map[custody.Pubkey]custody.Program{callee: touch})
			ix := custody.Instruction{ProgramID: callee, Accounts: []custody.AccountMeta{tc.meta}}
			err := host.InvokeSigned(context.Background(), ix, []*custody.AccountInfo{tc.account}, tc.seeds...)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, tc.account.Lamports)
				assert.Equal(t, 1, len(host.Calls))
			}
		})
	}
}

func TestHostUnknownProgram(t *testing.T) {
	host := NewHost(custody.Pubkey{1}, nil)
	err := host.Invoke(context.Background(), custody.Instruction{ProgramID: custody.Pubkey{2}}, nil)
	assert.IsErr(t, errors.ErrUnknownProgram, err)
}

func TestKeyFromName(t *testing.T) {
	assert.Equal(t, KeyFromName("alice").PublicKey(), KeyFromName("alice").PublicKey())
	if KeyFromName("alice").PublicKey() == KeyFromName("bob").PublicKey() {
		t.Fatal("different names produce the same key")
	}
}
