package runtime

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

// Options are the genesis options.
// Each component can look up its key and parse the json as desired.
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal([]byte(msg), obj); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "%s: %s", key, err)
	}
	return nil
}

// LoadOptions reads a genesis file.
func LoadOptions(path string) (Options, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "reading genesis: %s", err)
	}
	var opts Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "parsing genesis: %s", err)
	}
	return opts, nil
}

// GenesisAccount is an account created at genesis.
type GenesisAccount struct {
	Pubkey   custody.Pubkey `json:"pubkey"`
	Lamports uint64         `json:"lamports"`
	Owner    custody.Pubkey `json:"owner"`
	Data     []byte         `json:"data,omitempty"`
}

// Validate returns an error if the account cannot be created.
func (a GenesisAccount) Validate() error {
	if len(a.Data) > custody.MaxAccountDataLength {
		return errors.Wrapf(errors.ErrInvalidInput, "account %s data too large", a.Pubkey)
	}
	return nil
}

// InitGenesis stores the rent parameters and accounts found in opts. It is
// all or nothing.
//
//   {
//     "rent": {"lamports_per_byte_year": 3480, "exemption_threshold_years": 2},
//     "accounts": [{"pubkey": "...", "lamports": 10000000}]
//   }
func (r *Runtime) InitGenesis(opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rent := custody.DefaultRent()
	if err := opts.ReadOptions("rent", &rent); err != nil {
		return err
	}
	if err := rent.Validate(); err != nil {
		return errors.Wrap(err, "rent")
	}

	var accounts []GenesisAccount
	if err := opts.ReadOptions("accounts", &accounts); err != nil {
		return err
	}
	seen := make(map[custody.Pubkey]bool, len(accounts))
	for _, a := range accounts {
		if err := a.Validate(); err != nil {
			return err
		}
		if seen[a.Pubkey] {
			return errors.Wrapf(errors.ErrInvalidInput, "duplicate account %s", a.Pubkey)
		}
		seen[a.Pubkey] = true
	}

	return savepoint(r.kv, func(kv store.KVStore) error {
		if err := saveRent(kv, rent); err != nil {
			return err
		}
		for _, a := range accounts {
			acc := &custody.AccountInfo{
				Key:      a.Pubkey,
				Lamports: a.Lamports,
				Data:     a.Data,
				Owner:    a.Owner,
			}
			if err := saveAccount(kv, a.Pubkey, acc); err != nil {
				return err
			}
		}
		r.logger.Info("genesis loaded", "accounts", len(accounts))
		return nil
	})
}
