package custody

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/iov-one/custody/errors"
)

// PubkeyLength is the length of every account identity.
const PubkeyLength = 32

// Pubkey is a 32 byte opaque account identity. It is either an ed25519
// public key of an external party or a program derived address that has no
// private key.
type Pubkey [PubkeyLength]byte

// PubkeyFromBytes copies raw into a Pubkey. It fails if raw is not exactly
// PubkeyLength long.
func PubkeyFromBytes(raw []byte) (Pubkey, error) {
	var p Pubkey
	if len(raw) != PubkeyLength {
		return p, errors.Wrapf(errors.ErrInvalidInput, "pubkey length %d", len(raw))
	}
	copy(p[:], raw)
	return p, nil
}

// ParsePubkey decodes a human readable identity. The default format is
// base58, a "hex:" prefix selects hexadecimal.
func ParsePubkey(enc string) (Pubkey, error) {
	chunks := strings.SplitN(enc, ":", 2)
	format := "base58"
	if len(chunks) == 2 {
		format, enc = chunks[0], chunks[1]
	}

	switch format {
	case "base58":
		raw := base58.Decode(enc)
		if len(raw) == 0 && len(enc) != 0 {
			return Pubkey{}, errors.Wrap(errors.ErrInvalidInput, "cannot decode base58")
		}
		return PubkeyFromBytes(raw)
	case "hex":
		raw, err := hex.DecodeString(enc)
		if err != nil {
			return Pubkey{}, errors.Wrap(errors.ErrInvalidInput, "cannot decode hex")
		}
		return PubkeyFromBytes(raw)
	default:
		return Pubkey{}, errors.Wrapf(errors.ErrInvalidInput, "unknown format %q", format)
	}
}

// MustParsePubkey is ParsePubkey that panics on failure. Use it only for
// constants.
func MustParsePubkey(enc string) Pubkey {
	p, err := ParsePubkey(enc)
	if err != nil {
		panic(err)
	}
	return p
}

// Bytes returns a copy of the key as a slice.
func (p Pubkey) Bytes() []byte {
	b := make([]byte, PubkeyLength)
	copy(b, p[:])
	return b
}

// Equals checks if two keys are the same
func (p Pubkey) Equals(o Pubkey) bool {
	return bytes.Equal(p[:], o[:])
}

// IsZero returns true for the all zero key, which is the system program id.
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// String returns the base58 representation.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// MarshalJSON provides a base58 representation for JSON.
func (p Pubkey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Pubkey) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	key, err := ParsePubkey(enc)
	if err != nil {
		return err
	}
	*p = key
	return nil
}

// MarshalText allows a Pubkey to be used in text based formats and as a map
// key.
func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pubkey) UnmarshalText(raw []byte) error {
	key, err := ParsePubkey(string(raw))
	if err != nil {
		return err
	}
	*p = key
	return nil
}
