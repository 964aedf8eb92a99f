package runtime

import (
	amino "github.com/tendermint/go-amino"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

var cdc = amino.NewCodec()

var (
	accountPrefix = []byte("acct:")
	rentKey       = []byte("_c:rent")
	seqPrefix     = []byte("_s:")
)

// accountRecord is the persisted form of an account.
type accountRecord struct {
	Lamports   uint64
	Data       []byte
	Owner      []byte
	Executable bool
}

// sequenceRecord holds the last nonce a signer used.
type sequenceRecord struct {
	Sequence uint64
}

type rentRecord struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64
}

func accountKey(key custody.Pubkey) []byte {
	return append(append([]byte(nil), accountPrefix...), key[:]...)
}

// loadAccount returns the account stored under key. Missing accounts are
// returned as empty system accounts.
func loadAccount(kv store.ReadOnlyKVStore, key custody.Pubkey) (*custody.AccountInfo, error) {
	raw, err := kv.Get(accountKey(key))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return &custody.AccountInfo{Key: key, Owner: custody.SystemProgramID}, nil
	}
	return decodeAccount(key, raw)
}

func decodeAccount(key custody.Pubkey, raw []byte) (*custody.AccountInfo, error) {
	var rec accountRecord
	if err := cdc.UnmarshalBinaryBare(raw, &rec); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "account %s: %s", key, err)
	}
	owner, err := custody.PubkeyFromBytes(rec.Owner)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "account %s owner: %s", key, err)
	}
	return &custody.AccountInfo{
		Key:        key,
		Lamports:   rec.Lamports,
		Data:       rec.Data,
		Owner:      owner,
		Executable: rec.Executable,
	}, nil
}

// accountsByOwner walks all stored accounts in key order and returns those
// owned by owner.
func accountsByOwner(kv store.ReadOnlyKVStore, owner custody.Pubkey) ([]*custody.AccountInfo, error) {
	start, end := store.PrefixRange(accountPrefix)
	it, err := kv.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	defer it.Close()

	var res []*custody.AccountInfo
	for it.Valid() {
		key, err := custody.PubkeyFromBytes(it.Key()[len(accountPrefix):])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrDatabase, "account key %X: %s", it.Key(), err)
		}
		acc, err := decodeAccount(key, it.Value())
		if err != nil {
			return nil, err
		}
		if acc.Owner == owner {
			res = append(res, acc)
		}
		if err := it.Next(); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}
	return res, nil
}

// saveAccount persists the account under key. Accounts left without
// lamports, data and owner are removed.
func saveAccount(kv store.KVStore, key custody.Pubkey, acc *custody.AccountInfo) error {
	if acc.Lamports == 0 && len(acc.Data) == 0 && acc.Owner == custody.SystemProgramID && !acc.Executable {
		return kv.Delete(accountKey(key))
	}
	rec := accountRecord{
		Lamports:   acc.Lamports,
		Data:       acc.Data,
		Owner:      acc.Owner.Bytes(),
		Executable: acc.Executable,
	}
	raw, err := cdc.MarshalBinaryBare(rec)
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	return kv.Set(accountKey(key), raw)
}

func loadRent(kv store.ReadOnlyKVStore) (custody.Rent, error) {
	raw, err := kv.Get(rentKey)
	if err != nil {
		return custody.Rent{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return custody.DefaultRent(), nil
	}
	var rec rentRecord
	if err := cdc.UnmarshalBinaryBare(raw, &rec); err != nil {
		return custody.Rent{}, errors.Wrapf(errors.ErrDatabase, "rent: %s", err)
	}
	return custody.Rent{
		LamportsPerByteYear: rec.LamportsPerByteYear,
		ExemptionThreshold:  rec.ExemptionThreshold,
	}, nil
}

func saveRent(kv store.KVStore, rent custody.Rent) error {
	raw, err := cdc.MarshalBinaryBare(rentRecord{
		LamportsPerByteYear: rent.LamportsPerByteYear,
		ExemptionThreshold:  rent.ExemptionThreshold,
	})
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	return kv.Set(rentKey, raw)
}

func sequenceKey(key custody.Pubkey) []byte {
	return append(append([]byte(nil), seqPrefix...), key[:]...)
}

func loadSequence(kv store.ReadOnlyKVStore, key custody.Pubkey) (uint64, error) {
	raw, err := kv.Get(sequenceKey(key))
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return 0, nil
	}
	var rec sequenceRecord
	if err := cdc.UnmarshalBinaryBare(raw, &rec); err != nil {
		return 0, errors.Wrapf(errors.ErrDatabase, "sequence %s: %s", key, err)
	}
	return rec.Sequence, nil
}

func saveSequence(kv store.KVStore, key custody.Pubkey, seq uint64) error {
	raw, err := cdc.MarshalBinaryBare(sequenceRecord{Sequence: seq})
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	return kv.Set(sequenceKey(key), raw)
}
