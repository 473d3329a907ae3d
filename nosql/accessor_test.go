package nosql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/ormcore/kv"
	"github.com/syssam/ormcore/nosql"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/querycompiler"
	"github.com/syssam/ormcore/querylang"
	"github.com/syssam/ormcore/schema"
)

// person is the fixture row type: a string primary key and a secondary
// key over the registered flag.
type person struct {
	Name       string `col:"1"`
	Age        int32  `col:"2"`
	Registered bool   `col:"3"`
}

func (p *person) Field(name string) any {
	switch name {
	case "name":
		return p.Name
	case "age":
		return p.Age
	case "registered":
		if !p.Registered {
			return nil // unregistered people are absent from the byRegisteredName index
		}
		return p.Registered
	default:
		return nil
	}
}

func personRelation() *schema.Relation {
	name := schema.String(1, "name")
	age := schema.Int32(2, "age")
	registered := schema.Bool(3, "registered")
	return schema.NewRelation("Person", 1, schema.PrimaryKey(name), name, age, registered).
		WithSecondaryKey(schema.SecondaryKey("byRegisteredName", registered))
}

func newTestAccessor(t *testing.T, opts ...nosql.Option) (*nosql.Accessor[person, *person], kv.Store) {
	t.Helper()
	store := kv.NewMemStore()
	acc, err := nosql.NewAccessor[person, *person](store, personRelation(), opts...)
	require.NoError(t, err)
	return acc, store
}

// Insert then get returns an equal object.
func TestAccessor_InsertGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	acc, _ := newTestAccessor(t)

	bob := &person{Name: "Bob", Age: 18, Registered: true}
	require.NoError(t, acc.Insert(ctx, bob))

	got, err := acc.Get(ctx, &person{Name: "Bob"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, bob, got)
}

// TestAccessor_InsertDuplicateFails checks the DuplicateKey taxonomy path.
func TestAccessor_InsertDuplicateFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	acc, _ := newTestAccessor(t)

	require.NoError(t, acc.Insert(ctx, &person{Name: "Bob", Age: 18}))
	err := acc.Insert(ctx, &person{Name: "Bob", Age: 19})
	assert.True(t, ormerr.Is(err, ormerr.DuplicateKey))
}

// Updating a never-inserted person raises Concurrency.
func TestAccessor_UpdateOfMissingRowFailsConcurrency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	acc, _ := newTestAccessor(t)

	err := acc.Update(ctx, &person{Name: "Ghost", Age: 1})
	assert.True(t, ormerr.Is(err, ormerr.Concurrency))
}

// Update persists the new field values.
func TestAccessor_UpdatePersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	acc, _ := newTestAccessor(t)

	require.NoError(t, acc.Insert(ctx, &person{Name: "Bob", Age: 18}))
	require.NoError(t, acc.Update(ctx, &person{Name: "Bob", Age: 19}))

	got, err := acc.Get(ctx, &person{Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, int32(19), got.Age)
}

// A person with registered=false is absent from the index; registering
// them makes the index row appear in the next scan.
func TestAccessor_IndexFlipsOnRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	acc, _ := newTestAccessor(t)
	rel := personRelation()
	key, ok := rel.SecondaryKey("byRegisteredName")
	require.True(t, ok)
	fn := querycompiler.ForKey(key)

	require.NoError(t, acc.Insert(ctx, &person{Name: "Ann", Age: 30, Registered: false}))

	results, err := acc.ScanIndex(ctx, fn, nil, []byte{0xFF, 0xFF}, 0, false)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, acc.Update(ctx, &person{Name: "Ann", Age: 30, Registered: true}))

	results, err = acc.ScanIndex(ctx, fn, nil, []byte{0xFF, 0xFF}, 0, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ann", results[0].Name)
}

// After a sequence of insert/update/upsert/delete from a single thread,
// scanning the secondary index returns exactly the set of live objects for
// which the index's membership predicate is true.
func TestAccessor_IndexConsistencyAfterWorkload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	acc, _ := newTestAccessor(t)
	rel := personRelation()
	key, _ := rel.SecondaryKey("byRegisteredName")
	fn := querycompiler.ForKey(key)

	require.NoError(t, acc.Insert(ctx, &person{Name: "Ann", Age: 30, Registered: true}))
	require.NoError(t, acc.Insert(ctx, &person{Name: "Bob", Age: 40, Registered: false}))
	require.NoError(t, acc.Upsert(ctx, &person{Name: "Bob", Age: 41, Registered: true}))
	require.NoError(t, acc.Update(ctx, &person{Name: "Ann", Age: 31, Registered: false}))
	require.NoError(t, acc.Insert(ctx, &person{Name: "Cid", Age: 20, Registered: true}))
	require.NoError(t, acc.Delete(ctx, &person{Name: "Cid"}))

	results, err := acc.ScanIndex(ctx, fn, nil, []byte{0xFF, 0xFF}, 0, false)
	require.NoError(t, err)

	names := make(map[string]bool, len(results))
	for _, r := range results {
		names[r.Name] = r.Registered
	}
	assert.Equal(t, map[string]bool{"Bob": true}, names)
}

// A query that orders its index descending must get its rows back in
// descending order end to end: the accessor writes index rows with the
// query's own DESC encoding, so the scan's key validation and range bounds
// line up with what is on disk.
func TestAccessor_QueryDescendingIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewMemStore()

	name := schema.String(1, "name")
	age := schema.Int32(2, "age")
	registered := schema.Bool(3, "registered")
	q := querylang.New("byAgeDesc", querylang.Ge("age", querylang.Placeholder("min"))).
		OrderByClause(querylang.Desc("age"))
	rel := schema.NewRelation("Person", 1, schema.PrimaryKey(name), name, age, registered).
		WithSecondaryKey(schema.SecondaryKey("byAgeDesc", age)).
		WithQuery(q)

	acc, err := nosql.NewAccessor[person, *person](store, rel)
	require.NoError(t, err)

	require.NoError(t, acc.Insert(ctx, &person{Name: "Ann", Age: 30}))
	require.NoError(t, acc.Insert(ctx, &person{Name: "Bob", Age: 40}))
	require.NoError(t, acc.Insert(ctx, &person{Name: "Cid", Age: 20}))

	key, ok := rel.SecondaryKey("byAgeDesc")
	require.True(t, ok)
	cq, err := querycompiler.Compile(rel, key, q)
	require.NoError(t, err)

	got, err := acc.Query(ctx, cq, map[string]any{"min": int32(25)})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bob", got[0].Name)
	assert.Equal(t, "Ann", got[1].Name)

	// Updating an indexed row must keep the descending index consistent.
	require.NoError(t, acc.Update(ctx, &person{Name: "Cid", Age: 45}))
	got, err = acc.Query(ctx, cq, map[string]any{"min": int32(25)})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Cid", got[0].Name)
	assert.Equal(t, "Bob", got[1].Name)
	assert.Equal(t, "Ann", got[2].Name)
}

// TestAccessor_AtomicUpdate exercises the read-modify-write path,
// including index maintenance inside the critical section.
func TestAccessor_AtomicUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	acc, _ := newTestAccessor(t)

	require.NoError(t, acc.Insert(ctx, &person{Name: "Bob", Age: 18, Registered: false}))

	err := acc.AtomicUpdate(ctx, &person{Name: "Bob"}, func(obj *person) error {
		obj.Age++
		obj.Registered = true
		return nil
	})
	require.NoError(t, err)

	got, err := acc.Get(ctx, &person{Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, int32(19), got.Age)
	assert.True(t, got.Registered)

	// AtomicUpdate on an absent row never invokes fn and leaves no trace.
	called := false
	err = acc.AtomicUpdate(ctx, &person{Name: "Ghost"}, func(obj *person) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}
