package store

import (
	"bytes"

	"github.com/google/btree"
)

// degree of every btree node. Caches live for a single transaction and stay
// small, so a low degree keeps inserts cheap.
const degree = 8

// MemStore returns a store kept entirely in memory. Nothing is persisted.
func MemStore() CacheableKVStore {
	return NewBTreeCache(EmptyKVStore{})
}

// BTreeCache holds changes made on top of a parent store. Reads see the
// changes first and fall back to the parent. Write applies all changes to the
// parent in key order, Discard forgets them.
type BTreeCache struct {
	tree   *btree.BTree
	free   *btree.FreeList
	parent KVStore
}

var _ KVCacheWrap = (*BTreeCache)(nil)

// NewBTreeCache returns an empty cache over parent.
func NewBTreeCache(parent KVStore) *BTreeCache {
	return newBTreeCache(parent, btree.NewFreeList(btree.DefaultFreeListSize))
}

func newBTreeCache(parent KVStore, free *btree.FreeList) *BTreeCache {
	return &BTreeCache{
		tree:   btree.NewWithFreeList(degree, free),
		free:   free,
		parent: parent,
	}
}

// CacheWrap layers another cache on top of this one. Nested caches share the
// node free list.
func (c *BTreeCache) CacheWrap() KVCacheWrap {
	return newBTreeCache(c, c.free)
}

// Write applies every change to the parent and empties the cache.
func (c *BTreeCache) Write() error {
	var err error
	c.tree.Ascend(func(i btree.Item) bool {
		e := i.(entry)
		if e.deleted {
			err = c.parent.Delete(e.key)
		} else {
			err = c.parent.Set(e.key, e.value)
		}
		return err == nil
	})
	if err != nil {
		return err
	}
	c.Discard()
	return nil
}

// Discard drops every change.
func (c *BTreeCache) Discard() {
	c.tree.Clear(true)
}

// Set records the new value of key.
func (c *BTreeCache) Set(key, value []byte) error {
	c.tree.ReplaceOrInsert(entry{key: key, value: value})
	return nil
}

// Delete records the removal of key.
func (c *BTreeCache) Delete(key []byte) error {
	c.tree.ReplaceOrInsert(entry{key: key, deleted: true})
	return nil
}

// Get returns the cached value of key, or the parent's if key was not
// changed.
func (c *BTreeCache) Get(key []byte) ([]byte, error) {
	if i := c.tree.Get(entry{key: key}); i != nil {
		e := i.(entry)
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return c.parent.Get(key)
}

// Has reports whether key holds a value.
func (c *BTreeCache) Has(key []byte) (bool, error) {
	if i := c.tree.Get(entry{key: key}); i != nil {
		return !i.(entry).deleted, nil
	}
	return c.parent.Has(key)
}

// Iterator returns the keys in [start, end) in ascending order, changes
// included.
func (c *BTreeCache) Iterator(start, end []byte) (Iterator, error) {
	parent, err := c.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer parent.Close()
	return merge(c.pending(start, end), parent)
}

// entry is a single change: a new value, or a deletion marker.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = entry{}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}
