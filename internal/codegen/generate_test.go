package codegen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/ormcore/internal/codegen"
	"github.com/syssam/ormcore/schema"
)

func personRelation() *schema.Relation {
	name := schema.String(1, "name")
	age := schema.Int32(2, "age")
	registered := schema.Bool(3, "registered")
	return schema.NewRelation("Person", 1, schema.PrimaryKey(name), name, age, registered).
		WithSecondaryKey(schema.SecondaryKey("byRegisteredName", registered))
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	f, err := codegen.Generate("accessors", personRelation(), "github.com/syssam/ormcore/schema")
	require.NoError(t, err)

	code := f.GoString()
	assert.Contains(t, code, "type Person struct")
	assert.Contains(t, code, "Name       string")
	assert.Contains(t, code, "Age        int32")
	assert.Contains(t, code, "func (r *Person) Field(name string) any")
	assert.Contains(t, code, "func (r *Person) SetField(name string, v any) error")
	assert.Contains(t, code, "func PersonRelation() *schema.Relation")
	assert.Contains(t, code, "WithSecondaryKey")
	assert.Contains(t, code, "Code generated by internal/codegen. DO NOT EDIT.")
}

func TestGenerateRejectsNestedColumn(t *testing.T) {
	t.Parallel()

	addr := schema.Nested(2, "address", schema.String(3, "city"))
	rel := schema.NewRelation("Place", 1, schema.PrimaryKey(schema.String(1, "id")), schema.String(1, "id"), addr)

	_, err := codegen.Generate("accessors", rel, "github.com/syssam/ormcore/schema")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "nested column"))
}

func TestFileName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "people_accessor.go", codegen.FileName(personRelation()))
}
