package nosql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/ormcore/kv"
	"github.com/syssam/ormcore/querycompiler"
	"github.com/syssam/ormcore/schema"
)

type fossilPerson struct {
	Name       string `col:"1"`
	Registered bool   `col:"3"`
}

func (p *fossilPerson) Field(name string) any {
	switch name {
	case "name":
		return p.Name
	case "registered":
		if !p.Registered {
			return nil
		}
		return p.Registered
	default:
		return nil
	}
}

func fossilRelation() *schema.Relation {
	name := schema.String(1, "name")
	registered := schema.Bool(3, "registered")
	return schema.NewRelation("FossilPerson", 1, schema.PrimaryKey(name), name, registered).
		WithSecondaryKey(schema.SecondaryKey("byRegistered", registered))
}

// After deleting the data row but leaving the index row in place with
// timestamp_ms = now-10min and maxFossilAge=5min, the next ScanIndex
// removes the index row and returns no result.
func TestScanIndex_HealsFossilPastMaxAge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewMemStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	acc, err := NewAccessor[fossilPerson, *fossilPerson](store, fossilRelation(),
		WithMaxFossilAge(5*time.Minute),
		WithClock(func() time.Time { return base }),
	)
	require.NoError(t, err)

	obj := &fossilPerson{Name: "Karl", Registered: true}
	require.NoError(t, acc.Insert(ctx, obj))

	pk, err := acc.pkBytes(obj)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, dataKey(acc.rel.Name, pk)))

	rel := fossilRelation()
	key, _ := rel.SecondaryKey("byRegistered")
	fn := querycompiler.ForKey(key)

	// 10 minutes later: the fossil is older than maxFossilAge and must heal.
	acc.now = func() time.Time { return base.Add(10 * time.Minute) }

	results, err := acc.ScanIndex(ctx, fn, nil, []byte{0xFF, 0xFF}, 0, false)
	require.NoError(t, err)
	assert.Empty(t, results)

	idxKey, err := indexRowKey(acc.rel.Name, fn, obj, pk)
	require.NoError(t, err)
	v, err := store.Get(ctx, idxKey)
	require.NoError(t, err)
	assert.Nil(t, v, "stale index row should have been deleted by fossil collection")
}

// A stale row younger than maxFossilAge must survive: a transient write
// in flight must not be mistaken for a fossil.
func TestScanIndex_NeverHealsYoungFossil(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewMemStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	acc, err := NewAccessor[fossilPerson, *fossilPerson](store, fossilRelation(),
		WithMaxFossilAge(5*time.Minute),
		WithClock(func() time.Time { return base }),
	)
	require.NoError(t, err)

	obj := &fossilPerson{Name: "Karl", Registered: true}
	require.NoError(t, acc.Insert(ctx, obj))

	pk, err := acc.pkBytes(obj)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, dataKey(acc.rel.Name, pk)))

	rel := fossilRelation()
	key, _ := rel.SecondaryKey("byRegistered")
	fn := querycompiler.ForKey(key)

	// Only 1 minute later: younger than maxFossilAge, must survive.
	acc.now = func() time.Time { return base.Add(1 * time.Minute) }

	results, err := acc.ScanIndex(ctx, fn, nil, []byte{0xFF, 0xFF}, 0, false)
	require.NoError(t, err)
	assert.Empty(t, results, "the data row is still gone so it shouldn't be returned")

	idxKey, err := indexRowKey(acc.rel.Name, fn, obj, pk)
	require.NoError(t, err)
	v, err := store.Get(ctx, idxKey)
	require.NoError(t, err)
	assert.NotNil(t, v, "a fossil younger than maxFossilAge must not be deleted")
}
