package sequence_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/syssam/ormcore/kv"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/recordcodec"
	"github.com/syssam/ormcore/sequence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocator_NextIsMonotonic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewMemStore()
	alloc := sequence.New(store, "orders")

	first, err := alloc.Next(ctx)
	require.NoError(t, err)
	second, err := alloc.Next(ctx)
	require.NoError(t, err)
	third, err := alloc.Next(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, int64(3), third)
}

func TestAllocator_SeparateNamesAreIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewMemStore()

	orders := sequence.New(store, "orders")
	users := sequence.New(store, "users")

	o1, err := orders.Next(ctx)
	require.NoError(t, err)
	u1, err := users.Next(ctx)
	require.NoError(t, err)
	o2, err := orders.Next(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), o1)
	assert.Equal(t, int64(1), u1)
	assert.Equal(t, int64(2), o2)
}

func TestAllocator_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewMemStore()

	first := sequence.New(store, "orders")
	_, err := first.Next(ctx)
	require.NoError(t, err)

	second := sequence.New(store, "orders")
	id, err := second.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestShardedAllocator_AllocatesAcrossShards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewMemStore()
	alloc := sequence.NewShardedAllocator(store, "orders", 4)

	seen := map[int64]bool{}
	for i := 0; i < 20; i++ {
		id, err := alloc.Next(ctx)
		require.NoError(t, err)
		seen[id] = true
	}
	assert.True(t, len(seen) > 1, "expected more than one distinct id")

	shardsUsed := 0
	for i := 0; i < 4; i++ {
		v, err := store.Get(ctx, []byte(fmt.Sprintf(".sequence.orders.%d", i)))
		require.NoError(t, err)
		if v != nil {
			shardsUsed++
		}
	}
	assert.Greater(t, shardsUsed, 1, "expected ids from more than one shard's sequence")
}

func TestAllocator_OutOfValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewMemStore()
	alloc := sequence.New(store, "orders")

	require.NoError(t, store.Upsert(ctx, []byte(".sequence.orders"), mustEncodeExhausted(t)))

	_, err := alloc.Next(ctx)
	assert.True(t, ormerr.Is(err, ormerr.SchemaError))
}

type testCounter struct {
	Current int64 `col:"1"`
	Max     int64 `col:"2"`
}

func mustEncodeExhausted(t *testing.T) []byte {
	t.Helper()
	buf, err := recordcodec.Encode(&testCounter{Current: 5, Max: 5})
	require.NoError(t, err)
	return buf
}
