package kv

import (
	"context"
	"errors"
)

// ErrDuplicateKey is returned by Insert when key already exists.
var ErrDuplicateKey = errors.New("kv: duplicate key")

// KeyValue is one row returned from Scan or FetchRows.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// UpdateFunc is the read-modify-write closure AtomicUpdate invokes under
// the store's per-key critical section. old and exists describe the
// current row; the function returns the new value to store and whether to
// delete the key instead. Any error aborts the update: nothing is
// persisted, and the error is returned to the AtomicUpdate caller
// unchanged.
type UpdateFunc func(old []byte, exists bool) (newValue []byte, del bool, err error)

// Store is the minimum ordered key/value contract the core consumes.
// Keys sort bytewise; Scan and FetchRows return rows in key order when
// preserveOrder is requested, but implementations may return any order
// otherwise.
type Store interface {
	// Get performs a point read. A nil, nil return means key is absent.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Scan returns up to limit rows with keys in the half-open range
	// [from, to). limit == 0 means unlimited.
	Scan(ctx context.Context, from, to []byte, limit int, preserveOrder bool) ([]KeyValue, error)

	// FetchRows is an optional batched multi-get; the default
	// implementations here simply loop Get.
	FetchRows(ctx context.Context, keys [][]byte) ([]KeyValue, error)

	// Insert fails with ErrDuplicateKey if key already exists.
	Insert(ctx context.Context, key, value []byte) error

	// Upsert creates or replaces the row at key.
	Upsert(ctx context.Context, key, value []byte) error

	// Delete is idempotent; deleting an absent key is not an error.
	Delete(ctx context.Context, key []byte) error

	// AtomicUpdate performs an atomic read-modify-write on a single key,
	// serializing concurrent updaters of the same key.
	AtomicUpdate(ctx context.Context, key []byte, fn UpdateFunc) error

	// Flush blocks until prior writes are durable.
	Flush(ctx context.Context) error
}
