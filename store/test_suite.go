package store

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/iov-one/custody/custodytest/assert"
)

// TestSuite checks the behaviour every CacheableKVStore must have. Store
// implementations run it from their own tests with a constructor of a fresh
// store.
type TestSuite struct {
	open func(t testing.TB) CacheableKVStore
}

// NewTestSuite returns a suite that creates stores with open. Any cleanup
// must be registered with t.Cleanup.
func NewTestSuite(open func(t testing.TB) CacheableKVStore) *TestSuite {
	return &TestSuite{open: open}
}

// Run executes all checks as subtests.
func (s *TestSuite) Run(t *testing.T) {
	t.Run("savepoints", s.Savepoints)
	t.Run("nested caches", s.NestedCaches)
	t.Run("iterator ranges", s.IteratorRanges)
	t.Run("random changes", s.RandomChanges)
}

// Savepoints checks that a cache is invisible to its parent until written.
func (s *TestSuite) Savepoints(t *testing.T) {
	base := s.open(t)

	k, v := []byte("acct:alice"), []byte("100")
	AssertGetHas(t, base, k, nil)
	assert.Nil(t, base.Set(k, v))
	AssertGetHas(t, base, k, v)

	cache := base.CacheWrap()
	AssertGetHas(t, cache, k, v)

	k2, v2 := []byte("acct:bob"), []byte("5")
	assert.Nil(t, cache.Set(k2, v2))
	assert.Nil(t, cache.Delete(k))
	AssertGetHas(t, cache, k2, v2)
	AssertGetHas(t, cache, k, nil)
	AssertGetHas(t, base, k2, nil)
	AssertGetHas(t, base, k, v)

	cache.Discard()
	AssertGetHas(t, base, k, v)
	AssertGetHas(t, base, k2, nil)
	// a discarded cache reads through again
	AssertGetHas(t, cache, k, v)

	cache = base.CacheWrap()
	assert.Nil(t, cache.Set(k2, v2))
	assert.Nil(t, cache.Delete(k))
	assert.Nil(t, cache.Write())
	AssertGetHas(t, base, k2, v2)
	AssertGetHas(t, base, k, nil)
}

// NestedCaches checks that changes travel one layer per Write.
func (s *TestSuite) NestedCaches(t *testing.T) {
	cases := map[string]struct {
		base  []Model
		outer []Model
		inner []Model
		// a nil Value means the key must not exist
		want []Model
	}{
		"inner overrides outer": {
			base:  []Model{Pair("a", "1")},
			outer: []Model{Pair("a", "2")},
			inner: []Model{Pair("a", "3")},
			want:  []Model{Pair("a", "3")},
		},
		"inner deletes base value": {
			base:  []Model{Pair("a", "1"), Pair("b", "1")},
			inner: []Model{Deletion("a")},
			want:  []Model{{Key: []byte("a")}, Pair("b", "1")},
		},
		"inner restores what outer deleted": {
			base:  []Model{Pair("a", "1")},
			outer: []Model{Deletion("a")},
			inner: []Model{Pair("a", "4")},
			want:  []Model{Pair("a", "4")},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base := s.open(t)
			apply(t, base, tc.base)
			outer := base.CacheWrap()
			apply(t, outer, tc.outer)
			inner := outer.CacheWrap()
			apply(t, inner, tc.inner)

			assert.Nil(t, inner.Write())
			for _, m := range tc.base {
				AssertGetHas(t, base, m.Key, m.Value)
			}
			for _, m := range tc.want {
				AssertGetHas(t, outer, m.Key, m.Value)
			}

			assert.Nil(t, outer.Write())
			for _, m := range tc.want {
				AssertGetHas(t, base, m.Key, m.Value)
			}
		})
	}
}

// IteratorRanges checks bounds and ordering of iteration over a cache with
// changes on top of stored values.
func (s *TestSuite) IteratorRanges(t *testing.T) {
	base := s.open(t)
	apply(t, base, []Model{Pair("acct:a", "1"), Pair("acct:c", "3"), Pair("acct:e", "5"), Pair("rent", "r")})
	cache := base.CacheWrap()
	apply(t, cache, []Model{Pair("acct:b", "2"), Deletion("acct:c"), Pair("acct:e", "55")})

	start, end := PrefixRange([]byte("acct:"))
	cases := map[string]struct {
		start, end []byte
		want       []Model
	}{
		"everything": {
			want: []Model{Pair("acct:a", "1"), Pair("acct:b", "2"), Pair("acct:e", "55"), Pair("rent", "r")},
		},
		"prefix": {
			start: start,
			end:   end,
			want:  []Model{Pair("acct:a", "1"), Pair("acct:b", "2"), Pair("acct:e", "55")},
		},
		"from b": {
			start: []byte("acct:b"),
			want:  []Model{Pair("acct:b", "2"), Pair("acct:e", "55"), Pair("rent", "r")},
		},
		"before e": {
			end:  []byte("acct:e"),
			want: []Model{Pair("acct:a", "1"), Pair("acct:b", "2")},
		},
		"only deleted": {
			start: []byte("acct:c"),
			end:   []byte("acct:d"),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, collect(t, cache, tc.start, tc.end))
		})
	}
}

// RandomChanges applies random writes to a cache and compares the result
// with a plain map, before and after writing the cache.
func (s *TestSuite) RandomChanges(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	base := s.open(t)
	want := make(map[string]string)

	for i := 0; i < 50; i++ {
		k, v := fmt.Sprintf("key-%02d", rnd.Intn(40)), fmt.Sprintf("base-%d", i)
		assert.Nil(t, base.Set([]byte(k), []byte(v)))
		want[k] = v
	}

	cache := base.CacheWrap()
	for i := 0; i < 200; i++ {
		k := fmt.Sprintf("key-%02d", rnd.Intn(60))
		if rnd.Intn(3) == 0 {
			assert.Nil(t, cache.Delete([]byte(k)))
			delete(want, k)
			continue
		}
		v := fmt.Sprintf("cache-%d", i)
		assert.Nil(t, cache.Set([]byte(k), []byte(v)))
		want[k] = v
	}

	expected := make([]Model, 0, len(want))
	for k, v := range want {
		expected = append(expected, Pair(k, v))
	}
	sort.Slice(expected, func(i, j int) bool {
		return bytes.Compare(expected[i].Key, expected[j].Key) < 0
	})

	assert.Equal(t, expected, collect(t, cache, nil, nil))
	assert.Nil(t, cache.Write())
	assert.Equal(t, expected, collect(t, base, nil, nil))
}

// AssertGetHas fails the test if kv does not hold val under key. A nil val
// means the key must be absent.
func AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	has, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, val != nil, has)
}

// Pair builds a model from strings.
func Pair(key, value string) Model {
	return Model{Key: []byte(key), Value: []byte(value)}
}

// Deletion builds a model that apply turns into a delete.
func Deletion(key string) Model {
	return Model{Key: []byte(key)}
}

func apply(t testing.TB, kv SetDeleter, models []Model) {
	t.Helper()
	for _, m := range models {
		if m.Value == nil {
			assert.Nil(t, kv.Delete(m.Key))
		} else {
			assert.Nil(t, kv.Set(m.Key, m.Value))
		}
	}
}

func collect(t testing.TB, kv ReadOnlyKVStore, start, end []byte) []Model {
	t.Helper()
	it, err := kv.Iterator(start, end)
	assert.Nil(t, err)
	defer it.Close()

	var res []Model
	for it.Valid() {
		res = append(res, Model{Key: it.Key(), Value: it.Value()})
		assert.Nil(t, it.Next())
	}
	return res
}
