package custody

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/iov-one/custody/errors"
)

const (
	// MaxSeeds is the maximum number of seeds that can be used to derive
	// a program address, including the bump.
	MaxSeeds = 16

	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

// CreateProgramAddress derives an address from the seeds and the owning
// program id. The result is valid only when it does not lie on the ed25519
// curve, which guarantees that no private key exists for it.
//
// The hash is sha256(seed_0 || ... || seed_n || programID || marker).
func CreateProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, error) {
	if len(seeds) > MaxSeeds {
		return Pubkey{}, errors.Wrapf(errors.ErrMaxSeedLengthExceeded, "%d seeds", len(seeds))
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return Pubkey{}, errors.Wrapf(errors.ErrMaxSeedLengthExceeded, "seed %d is %d bytes", i, len(s))
		}
		h.Write(s)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var addr Pubkey
	copy(addr[:], h.Sum(nil))
	if IsOnCurve(addr) {
		return Pubkey{}, errors.Wrap(errors.ErrInvalidSeeds, "address on curve")
	}
	return addr, nil
}

// FindProgramAddress searches for the first bump, starting at 255 and going
// down, for which CreateProgramAddress(seeds || bump) succeeds. The bump is
// returned so that later calls can re-derive the address with a single hash.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Pubkey{}, 0, errors.Wrapf(errors.ErrMaxSeedLengthExceeded, "%d seeds", len(seeds))
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		switch {
		case err == nil:
			return addr, uint8(bump), nil
		case errors.ErrInvalidSeeds.Is(err):
			continue
		default:
			return Pubkey{}, 0, err
		}
	}
	return Pubkey{}, 0, errors.Wrap(errors.ErrInvalidSeeds, "no viable bump")
}

// IsOnCurve returns true if the key decodes to a point on the ed25519 curve.
func IsOnCurve(p Pubkey) bool {
	_, err := new(edwards25519.Point).SetBytes(p[:])
	return err == nil
}
