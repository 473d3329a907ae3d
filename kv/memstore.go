package kv

import (
	"bytes"
	"context"
	"sync"
)

// MemStore is a process-local, in-memory ordered table guarded by a single
// mutex: one lock covers the whole table, and every operation except
// AtomicUpdate holds it for the duration of the call (AtomicUpdate releases
// it while fn runs). There is no persistence; it exists for tests and for small,
// ephemeral deployments.
type MemStore struct {
	mu sync.Mutex
	t  *table
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{t: newTable()}
}

func (s *MemStore) Get(_ context.Context, key []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.t.get(key)
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *MemStore) Scan(_ context.Context, from, to []byte, limit int, _ bool) ([]KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.scan(from, to, limit), nil
}

func (s *MemStore) FetchRows(ctx context.Context, keys [][]byte) ([]KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]KeyValue, 0, len(keys))
	for _, k := range keys {
		if v, ok := s.t.get(k); ok {
			rows = append(rows, KeyValue{Key: append([]byte(nil), k...), Value: append([]byte(nil), v...)})
		}
	}
	return rows, nil
}

func (s *MemStore) Insert(_ context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.t.get(key); ok {
		return ErrDuplicateKey
	}
	s.t.put(key, value)
	return nil
}

func (s *MemStore) Upsert(_ context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.put(key, value)
	return nil
}

func (s *MemStore) Delete(_ context.Context, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.delete(key)
	return nil
}

// AtomicUpdate runs fn without holding the table lock, then applies its
// result only if nothing changed the key in the meantime, retrying
// otherwise. Releasing the lock around fn (rather than holding it for the
// call's whole duration) is what lets callers safely touch other keys of
// the same store — e.g. index-row writes — from inside fn.
func (s *MemStore) AtomicUpdate(_ context.Context, key []byte, fn UpdateFunc) error {
	for {
		s.mu.Lock()
		old, exists := s.t.get(key)
		snapshot := append([]byte(nil), old...)
		s.mu.Unlock()

		newValue, del, err := fn(snapshot, exists)
		if err != nil {
			return err
		}

		s.mu.Lock()
		cur, curExists := s.t.get(key)
		if curExists != exists || !bytes.Equal(cur, snapshot) {
			s.mu.Unlock()
			continue
		}
		if del {
			s.t.delete(key)
		} else {
			s.t.put(key, newValue)
		}
		s.mu.Unlock()
		return nil
	}
}

func (s *MemStore) Flush(_ context.Context) error { return nil }
