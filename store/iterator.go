package store

import (
	"bytes"

	"github.com/google/btree"
)

// pending returns the changes of keys in [start, end).
func (c *BTreeCache) pending(start, end []byte) []entry {
	var res []entry
	collect := func(i btree.Item) bool {
		res = append(res, i.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		c.tree.Ascend(collect)
	case start == nil:
		c.tree.AscendLessThan(entry{key: end}, collect)
	case end == nil:
		c.tree.AscendGreaterOrEqual(entry{key: start}, collect)
	default:
		c.tree.AscendRange(entry{key: start}, entry{key: end}, collect)
	}
	return res
}

// merge lays the changes over the parent iterator. A change shadows the
// parent value of the same key and a deletion hides it.
func merge(changes []entry, parent Iterator) (Iterator, error) {
	var res []Model
	emit := func(e entry) {
		if !e.deleted {
			res = append(res, Model{Key: e.key, Value: e.value})
		}
	}

	for parent.Valid() {
		key := parent.Key()
		for len(changes) > 0 && bytes.Compare(changes[0].key, key) < 0 {
			emit(changes[0])
			changes = changes[1:]
		}
		if len(changes) > 0 && bytes.Equal(changes[0].key, key) {
			emit(changes[0])
			changes = changes[1:]
		} else {
			res = append(res, Model{Key: key, Value: parent.Value()})
		}
		if err := parent.Next(); err != nil {
			return nil, err
		}
	}
	for _, e := range changes {
		emit(e)
	}
	return NewSliceIterator(res), nil
}
