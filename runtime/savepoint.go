package runtime

import (
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

// savepoint isolates all writes done by fn and commits them only if fn
// succeeds.
func savepoint(kv store.CacheableKVStore, fn func(store.KVStore) error) error {
	cache := kv.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "writing savepoint")
	}
	return nil
}
