package kv

import (
	"bytes"
	"sort"
)

// table is an unsynchronized ordered byte-string table. MemStore and
// FileStore each wrap one behind their own locking strategy so the ordering
// and mutation logic isn't duplicated between the two.
type table struct {
	keys   [][]byte
	values map[string][]byte
}

func newTable() *table {
	return &table{values: make(map[string][]byte)}
}

func (t *table) get(key []byte) ([]byte, bool) {
	v, ok := t.values[string(key)]
	return v, ok
}

func (t *table) search(key []byte) int {
	return sort.Search(len(t.keys), func(i int) bool {
		return bytes.Compare(t.keys[i], key) >= 0
	})
}

func (t *table) insertKey(key []byte) {
	i := t.search(key)
	if i < len(t.keys) && bytes.Equal(t.keys[i], key) {
		return
	}
	t.keys = append(t.keys, nil)
	copy(t.keys[i+1:], t.keys[i:])
	t.keys[i] = append([]byte(nil), key...)
}

func (t *table) removeKey(key []byte) {
	i := t.search(key)
	if i < len(t.keys) && bytes.Equal(t.keys[i], key) {
		t.keys = append(t.keys[:i], t.keys[i+1:]...)
	}
}

func (t *table) put(key, value []byte) {
	t.values[string(key)] = append([]byte(nil), value...)
	t.insertKey(key)
}

func (t *table) delete(key []byte) bool {
	if _, ok := t.values[string(key)]; !ok {
		return false
	}
	delete(t.values, string(key))
	t.removeKey(key)
	return true
}

func (t *table) scan(from, to []byte, limit int) []KeyValue {
	var out []KeyValue
	start := t.search(from)
	for i := start; i < len(t.keys); i++ {
		k := t.keys[i]
		if to != nil && bytes.Compare(k, to) >= 0 {
			break
		}
		out = append(out, KeyValue{
			Key:   append([]byte(nil), k...),
			Value: append([]byte(nil), t.values[string(k)]...),
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (t *table) each(fn func(key, value []byte)) {
	for _, k := range t.keys {
		fn(k, t.values[string(k)])
	}
}

func (t *table) len() int { return len(t.keys) }
