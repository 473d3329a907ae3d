package nosql

import (
	"hash/fnv"

	"github.com/elastic/go-freelru"
)

// cacheSize fixes the per-accessor LRU at 64 entries, enough to avoid a
// round-trip when the caller writes back a row it just scanned.
const cacheSize = 64

func hashPKString(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}

// rowCache is a single-threaded, per-accessor LRU of encoded data-row
// bytes keyed by primary-key bytes. It is single-threaded: callers must
// own one Accessor per goroutine.
type rowCache struct {
	lru *freelru.LRU[string, []byte]
}

func newRowCacheWrapper() (*rowCache, error) {
	lru, err := freelru.New[string, []byte](cacheSize, hashPKString)
	if err != nil {
		return nil, err
	}
	return &rowCache{lru: lru}, nil
}

func (c *rowCache) get(pk []byte) ([]byte, bool) {
	return c.lru.Get(string(pk))
}

func (c *rowCache) add(pk, data []byte) {
	c.lru.Add(string(pk), data)
}

func (c *rowCache) remove(pk []byte) {
	c.lru.Remove(string(pk))
}
