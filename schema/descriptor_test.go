package schema_test

import (
	"testing"

	"github.com/syssam/ormcore/querylang"
	"github.com/syssam/ormcore/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personColumns() (name, age, registered schema.Column) {
	return schema.String(1, "name"), schema.Int32(2, "age"), schema.Bool(3, "registered")
}

func TestRelationValidate(t *testing.T) {
	t.Parallel()

	name, age, registered := personColumns()
	rel := schema.NewRelation("Person", 1, schema.PrimaryKey(name), name, age, registered).
		WithSecondaryKey(schema.SecondaryKey("byRegisteredName", registered))
	require.NoError(t, rel.Validate())

	col, ok := rel.Column("age")
	require.True(t, ok)
	assert.Equal(t, age, col)

	key, ok := rel.SecondaryKey("byRegisteredName")
	require.True(t, ok)
	assert.Equal(t, registered, key.Column)
}

func TestRelationValidate_UnknownPrimaryKeyColumn(t *testing.T) {
	t.Parallel()

	name, _, _ := personColumns()
	orphan := schema.String(99, "ghost")
	rel := schema.NewRelation("Person", 1, schema.PrimaryKey(orphan), name)
	assert.Error(t, rel.Validate())
}

func TestRelationValidate_DuplicateColumnID(t *testing.T) {
	t.Parallel()

	a := schema.String(1, "a")
	b := schema.Int32(1, "b")
	rel := schema.NewRelation("X", 1, schema.PrimaryKey(a), a, b)
	assert.Error(t, rel.Validate())
}

func TestRelationValidate_DuplicateSecondaryKeyName(t *testing.T) {
	t.Parallel()

	name, age, _ := personColumns()
	rel := schema.NewRelation("Person", 1, schema.PrimaryKey(name), name, age).
		WithSecondaryKey(schema.SecondaryKey("idx", age)).
		WithSecondaryKey(schema.SecondaryKey("idx", name))
	assert.Error(t, rel.Validate())
}

func TestNestedColumnLeaves(t *testing.T) {
	t.Parallel()

	city := schema.String(1, "city")
	zip := schema.String(2, "zip")
	home := schema.Nested(3, "home", city, zip)

	assert.False(t, city.IsNested())
	assert.True(t, home.IsNested())
	assert.Equal(t, []schema.Column{city, zip}, home.Leaves())
}

func TestRelationWithQuery(t *testing.T) {
	t.Parallel()

	name, age, registered := personColumns()
	q := querylang.New("byRegisteredName",
		querylang.Eq("registered", querylang.Placeholder("registered")),
	).OrderByClause(querylang.Asc("name"))

	rel := schema.NewRelation("Person", 1, schema.PrimaryKey(name), name, age, registered).
		WithQuery(q)
	require.Len(t, rel.Queries, 1)
	assert.Equal(t, "byRegisteredName", rel.Queries[0].Name)
}
