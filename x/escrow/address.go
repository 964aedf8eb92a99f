package escrow

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Seed is the constant prefix of every escrow address derivation.
var Seed = []byte("escrow")

// Address returns the escrow address of initializer and its bump. Without
// an explicit bump the canonical one is searched for.
func Address(programID, initializer custody.Pubkey, bump *uint8) (custody.Pubkey, uint8, error) {
	if bump == nil {
		return custody.FindProgramAddress([][]byte{Seed, initializer[:]}, programID)
	}
	addr, err := custody.CreateProgramAddress(signerSeeds(initializer, *bump), programID)
	if err != nil {
		return custody.Pubkey{}, 0, err
	}
	return addr, *bump, nil
}

// signerSeeds is the full preimage of the escrow address. It proves control
// of the address for the duration of a single invocation and must not be
// kept.
func signerSeeds(initializer custody.Pubkey, bump uint8) custody.SignerSeeds {
	return custody.SignerSeeds{Seed, initializer.Bytes(), {bump}}
}

// requireAddress ensures escrow is the address derived from initializer and
// bump.
func requireAddress(programID custody.Pubkey, escrow *custody.AccountInfo, initializer custody.Pubkey, bump uint8) error {
	want, err := custody.CreateProgramAddress(signerSeeds(initializer, bump), programID)
	if err != nil {
		return err
	}
	if want != escrow.Key {
		return errors.Wrapf(errors.ErrInvalidSeeds, "escrow %s, want %s", escrow.Key, want)
	}
	return nil
}

// requireSigners ensures every given account signed the transaction.
func requireSigners(accounts ...*custody.AccountInfo) error {
	for _, a := range accounts {
		if !a.IsSigner {
			return errors.Wrapf(errors.ErrMissingRequiredSignature, "account %s", a.Key)
		}
	}
	return nil
}

// requireParties ensures the supplied identities are the recorded ones.
func requireParties(e *Escrow, initializer, taker *custody.AccountInfo) error {
	if e.Initializer != initializer.Key {
		return errors.Wrapf(errors.ErrInvalidAccountData, "initializer %s, recorded %s", initializer.Key, e.Initializer)
	}
	if e.Taker != taker.Key {
		return errors.Wrapf(errors.ErrInvalidAccountData, "taker %s, recorded %s", taker.Key, e.Taker)
	}
	return nil
}
