// Package crypto provides the ed25519 keys that sign ledger transactions.
package crypto

import (
	"crypto/rand"

	bip39 "github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ed25519"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// SignatureLength is the size of an ed25519 signature.
const SignatureLength = ed25519.SignatureSize

// Signature is a detached ed25519 signature.
type Signature [SignatureLength]byte

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (Signature, error)
	PublicKey() custody.Pubkey
}

// PrivateKey is an ed25519 key pair.
type PrivateKey struct {
	key ed25519.PrivateKey
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) (Signature, error) {
	var sig Signature
	if len(p.key) != ed25519.PrivateKeySize {
		return sig, errors.Wrap(errors.ErrInvalidInput, "empty private key")
	}
	copy(sig[:], ed25519.Sign(p.key, message))
	return sig, nil
}

// PublicKey returns the corresponding ledger identity
func (p *PrivateKey) PublicKey() custody.Pubkey {
	var pub custody.Pubkey
	copy(pub[:], p.key.Public().(ed25519.PublicKey))
	return pub
}

// Seed returns the 32 byte seed the key was generated from.
func (p *PrivateKey) Seed() []byte {
	return p.key.Seed()
}

// Verify checks that sig was created by the owner of pub over message.
func Verify(pub custody.Pubkey, message []byte, sig Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), message, sig[:])
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{key: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// NewMnemonic returns a fresh 24 word BIP39 phrase.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return mnemonic, nil
}

// PrivKeyFromMnemonic derives a key from a BIP39 phrase. The first 32 bytes
// of the BIP39 seed become the ed25519 seed.
func PrivKeyFromMnemonic(mnemonic, passphrase string) (*PrivateKey, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return PrivKeyEd25519FromSeed(seed[:ed25519.SeedSize])
}
