// Package sequence implements the engine's id allocator: a counter
// pair {current, max} stored under ".sequence.<name>" and advanced with
// KvStore.AtomicUpdate, so concurrent callers never observe the same id
// twice.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/syssam/ormcore/kv"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/recordcodec"
)

var errExhausted = errors.New("sequence: no more values")

type counter struct {
	Current int64 `col:"1"`
	Max     int64 `col:"2"`
}

// Allocator hands out a monotonically increasing stream of int64 ids backed
// by a single counter key.
type Allocator struct {
	store kv.Store
	name  string
}

// New returns an allocator for name, lazily initialized to {1, MaxInt64} on
// its first Next call.
func New(store kv.Store, name string) *Allocator {
	return &Allocator{store: store, name: name}
}

func counterKey(name string) []byte {
	return []byte(".sequence." + name)
}

// Next returns the next id and advances the counter. It fails with a
// SchemaError wrapping "out of values" once current reaches max.
func (a *Allocator) Next(ctx context.Context) (int64, error) {
	var next int64
	err := a.store.AtomicUpdate(ctx, counterKey(a.name), func(old []byte, exists bool) ([]byte, bool, error) {
		c := counter{Current: 1, Max: math.MaxInt64}
		if exists {
			if err := recordcodec.Decode(old, &c); err != nil {
				return nil, false, fmt.Errorf("sequence: decoding counter %q: %w", a.name, err)
			}
		}
		if c.Current == c.Max {
			return nil, false, errExhausted
		}
		next = c.Current
		c.Current++
		buf, err := recordcodec.Encode(&c)
		if err != nil {
			return nil, false, err
		}
		return buf, false, nil
	})
	if errors.Is(err, errExhausted) {
		return 0, ormerr.NewSchemaError("Counter '%s' out of values", a.name)
	}
	if err != nil {
		return 0, ormerr.NewStorageFailure(a.name, err)
	}
	return next, nil
}

// ShardedAllocator spreads allocation across several independent counters
// so that concurrent callers on different shards never contend for the
// same key. Shards are fully independent (no replenishment from a master
// shard); when the randomly chosen shard is exhausted the remaining shards
// are tried in random order. See DESIGN.md for why replenishment was left
// out.
type ShardedAllocator struct {
	shards []*Allocator
}

// NewShardedAllocator returns an allocator spread across n independent
// counters named "<name>.0".."<name>.(n-1)".
func NewShardedAllocator(store kv.Store, name string, n int) *ShardedAllocator {
	shards := make([]*Allocator, n)
	for i := range shards {
		shards[i] = New(store, fmt.Sprintf("%s.%d", name, i))
	}
	return &ShardedAllocator{shards: shards}
}

// Next picks a random shard and returns its next id, trying the remaining
// shards in random order if the first choice is exhausted.
func (s *ShardedAllocator) Next(ctx context.Context) (int64, error) {
	order := rand.Perm(len(s.shards))
	var lastErr error
	for _, i := range order {
		id, err := s.shards[i].Next(ctx)
		if err == nil {
			return id, nil
		}
		lastErr = err
		if !ormerr.Is(err, ormerr.SchemaError) {
			return 0, err
		}
	}
	return 0, lastErr
}
