package custody_test

import (
	"bytes"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Vectors produced by the reference ledger implementation.
func TestCreateProgramAddressVectors(t *testing.T) {
	programID := custody.MustParsePubkey("BPFLoaderUpgradeab1e11111111111111111111111")

	cases := map[string]struct {
		seeds [][]byte
		want  string
	}{
		"empty seed with bump": {
			seeds: [][]byte{[]byte(""), {1}},
			want:  "BwqrghZA2htAcqq8dzP1WDAhTXYTYWj7CHxF5j7TDBAe",
		},
		"two words": {
			seeds: [][]byte{[]byte("Talking"), []byte("Squirrels")},
			want:  "2fnQrngrQT4SeLcdToJAD96phoEjNL2man2kfRLCASVk",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := custody.CreateProgramAddress(tc.seeds, programID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestCreateProgramAddressLimits(t *testing.T) {
	programID := custody.MustParsePubkey("BPFLoaderUpgradeab1e11111111111111111111111")

	_, err := custody.CreateProgramAddress([][]byte{bytes.Repeat([]byte{1}, custody.MaxSeedLength+1)}, programID)
	assert.True(t, errors.ErrMaxSeedLengthExceeded.Is(err))

	tooMany := make([][]byte, custody.MaxSeeds+1)
	_, err = custody.CreateProgramAddress(tooMany, programID)
	assert.True(t, errors.ErrMaxSeedLengthExceeded.Is(err))

	_, _, err = custody.FindProgramAddress(make([][]byte, custody.MaxSeeds), programID)
	assert.True(t, errors.ErrMaxSeedLengthExceeded.Is(err))
}

func TestFindProgramAddress(t *testing.T) {
	var programID custody.Pubkey
	programID[0] = 0x77

	for i := 0; i < 64; i++ {
		var initializer custody.Pubkey
		initializer[0] = byte(i)
		initializer[31] = byte(255 - i)
		seeds := [][]byte{[]byte("escrow"), initializer[:]}

		addr, bump, err := custody.FindProgramAddress(seeds, programID)
		require.NoError(t, err)
		assert.False(t, custody.IsOnCurve(addr), "derived address must be off curve")

		// Deterministic.
		again, againBump, err := custody.FindProgramAddress(seeds, programID)
		require.NoError(t, err)
		assert.Equal(t, addr, again)
		assert.Equal(t, bump, againBump)

		// The bump re-derives the same address in a single hash.
		re, err := custody.CreateProgramAddress(append(seeds, []byte{bump}), programID)
		require.NoError(t, err)
		assert.Equal(t, addr, re)

		// Every higher bump was rejected.
		for b := int(bump) + 1; b <= 255; b++ {
			_, err := custody.CreateProgramAddress(append(seeds, []byte{byte(b)}), programID)
			assert.True(t, errors.ErrInvalidSeeds.Is(err))
		}
	}
}

func TestSignerSeedsDerive(t *testing.T) {
	var programID custody.Pubkey
	programID[3] = 3

	addr, bump, err := custody.FindProgramAddress([][]byte{[]byte("vault")}, programID)
	require.NoError(t, err)

	seeds := custody.SignerSeeds{[]byte("vault"), {bump}}
	got, err := seeds.Derive(programID)
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	var other custody.Pubkey
	other[3] = 4
	got, err = seeds.Derive(other)
	if err == nil {
		assert.NotEqual(t, addr, got)
	}
}

func TestIsOnCurve(t *testing.T) {
	// Every ed25519 public key lies on the curve.
	key := custody.MustParsePubkey("hex:d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a")
	assert.True(t, custody.IsOnCurve(key))
}
