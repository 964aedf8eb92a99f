package custody

import (
	"github.com/chain/txvm/math/checked"
	"github.com/iov-one/custody/errors"
)

const (
	// AccountStorageOverhead is the number of bytes every account is
	// charged for on top of its data.
	AccountStorageOverhead = 128

	// DefaultLamportsPerByteYear is the default rent price.
	DefaultLamportsPerByteYear = 3480

	// DefaultExemptionThreshold is the default number of years of rent an
	// account must hold to be exempt.
	DefaultExemptionThreshold = 2
)

// Rent holds the parameters of the minimum balance computation.
type Rent struct {
	LamportsPerByteYear uint64 `json:"lamports_per_byte_year"`
	ExemptionThreshold  uint64 `json:"exemption_threshold_years"`
}

// DefaultRent returns the rent configured on a fresh ledger.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
	}
}

// Validate returns an error if the configuration cannot be used.
func (r Rent) Validate() error {
	if r.ExemptionThreshold == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "exemption threshold must be positive")
	}
	// Make sure the largest account we accept can be priced.
	if _, err := r.minimumBalance(MaxAccountDataLength); err != nil {
		return err
	}
	return nil
}

// MaxAccountDataLength is the largest data buffer an account can hold.
const MaxAccountDataLength = 10 * 1024 * 1024

// MinimumBalance returns the balance an account of the given data size must
// hold to be exempt from rent. Sizes above MaxAccountDataLength are clamped.
func (r Rent) MinimumBalance(size int) uint64 {
	if size > MaxAccountDataLength {
		size = MaxAccountDataLength
	}
	if size < 0 {
		size = 0
	}
	v, err := r.minimumBalance(size)
	if err != nil {
		// Validate guarantees that the maximum size fits.
		panic(err)
	}
	return v
}

func (r Rent) minimumBalance(size int) (uint64, error) {
	bytes := uint64(AccountStorageOverhead + size)
	perYear, ok := checked.MulUint64(bytes, r.LamportsPerByteYear)
	if !ok {
		return 0, errors.Wrap(errors.ErrInvalidInput, "rent price overflow")
	}
	total, ok := checked.MulUint64(perYear, r.ExemptionThreshold)
	if !ok {
		return 0, errors.Wrap(errors.ErrInvalidInput, "rent exemption overflow")
	}
	return total, nil
}
