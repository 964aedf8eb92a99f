package custodytest

import (
	"crypto/sha256"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
)

// NewKey returns a random signing key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// KeyFromName returns a deterministic key derived from name, so tests can
// refer to the same identity across runs.
func KeyFromName(name string) *crypto.PrivateKey {
	seed := sha256.Sum256([]byte(name))
	key, err := crypto.PrivKeyEd25519FromSeed(seed[:])
	if err != nil {
		panic(err)
	}
	return key
}

// NewPubkey returns a random identity.
func NewPubkey() custody.Pubkey {
	return NewKey().PublicKey()
}

// ParsePubkey decodes a textual key and fails the test on error.
func ParsePubkey(t testing.TB, enc string) custody.Pubkey {
	t.Helper()

	key, err := custody.ParsePubkey(enc)
	if err != nil {
		t.Fatalf("cannot parse %q key: %s", enc, err)
	}
	return key
}
