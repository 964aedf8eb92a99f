package crypto

import (
	"testing"

	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
)

func TestEd25519Signing(t *testing.T) {
	private := GenPrivKeyEd25519()
	public := private.PublicKey()

	msg := []byte("foobar")
	msg2 := []byte("dingbooms")

	sig, err := private.Sign(msg)
	assert.Nil(t, err)
	sig2, err := private.Sign(msg2)
	assert.Nil(t, err)

	if sig == sig2 {
		t.Fatal("different messages produce the same signature")
	}

	if !Verify(public, msg, sig) {
		t.Fatal("cannot verify a message signed with this public key")
	}
	if !Verify(public, msg2, sig2) {
		t.Fatal("cannot verify a message signed with this public key")
	}

	if Verify(public, msg, sig2) {
		t.Fatal("verified message signature of the wrong message")
	}
	if Verify(public, msg, Signature{}) {
		t.Fatal("verified an empty signature of a message")
	}
	if Verify(GenPrivKeyEd25519().PublicKey(), msg, sig) {
		t.Fatal("verified a signature with the wrong key")
	}

	var empty PrivateKey
	_, err = empty.Sign(msg)
	assert.IsErr(t, errors.ErrInvalidInput, err)
}

func TestPrivKeyFromSeed(t *testing.T) {
	seed := make([]byte, 32)
	seed[0] = 7

	a, err := PrivKeyEd25519FromSeed(seed)
	assert.Nil(t, err)
	b, err := PrivKeyEd25519FromSeed(seed)
	assert.Nil(t, err)
	assert.Equal(t, a.PublicKey(), b.PublicKey())
	assert.Equal(t, seed, a.Seed())

	_, err = PrivKeyEd25519FromSeed(seed[:31])
	assert.IsErr(t, errors.ErrInvalidInput, err)
}

func TestMnemonic(t *testing.T) {
	mnemonic, err := NewMnemonic()
	assert.Nil(t, err)

	a, err := PrivKeyFromMnemonic(mnemonic, "")
	assert.Nil(t, err)
	b, err := PrivKeyFromMnemonic(mnemonic, "")
	assert.Nil(t, err)
	assert.Equal(t, a.PublicKey(), b.PublicKey())

	c, err := PrivKeyFromMnemonic(mnemonic, "other")
	assert.Nil(t, err)
	if a.PublicKey() == c.PublicKey() {
		t.Fatal("passphrase does not change the key")
	}

	_, err = PrivKeyFromMnemonic("not a valid phrase", "")
	assert.IsErr(t, errors.ErrInvalidInput, err)
}
