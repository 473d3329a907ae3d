package querylang_test

import (
	"testing"

	"github.com/syssam/ormcore/querylang"

	"github.com/stretchr/testify/assert"
)

func TestFieldBuildsComparisons(t *testing.T) {
	t.Parallel()

	name := querylang.StringField("name")
	age := querylang.Int64Field("age")

	assert.Equal(t, "name", name.Name())

	c := name.Eq("hm")
	assert.Equal(t, "name", c.Column)
	assert.Equal(t, querylang.EQ, c.Op)
	v, ok := c.Value.LiteralValue()
	assert.True(t, ok)
	assert.Equal(t, "hm", v)

	p := age.GtParam("min")
	assert.Equal(t, querylang.GT, p.Op)
	assert.True(t, p.Value.IsParam())
	assert.Equal(t, "min", p.Value.Param)
}

func TestFieldBuildsOrderTerms(t *testing.T) {
	t.Parallel()

	name := querylang.StringField("name")
	assert.Equal(t, querylang.OrderTerm{Column: "name"}, name.Asc())
	assert.Equal(t, querylang.OrderTerm{Column: "name", Desc: true}, name.Desc())
}

// TestFieldComposesIntoQuery pins the end-to-end shape: a query assembled
// from typed fields renders identically to one assembled from bare
// column-name strings.
func TestFieldComposesIntoQuery(t *testing.T) {
	t.Parallel()

	name := querylang.StringField("name")
	age := querylang.Int64Field("age")

	q := querylang.New("byNameAndAge",
		name.EqParam("name"),
		age.Gt(30),
	).OrderByClause(name.Asc(), age.Desc()).
		WithLimit(querylang.LimitValue(10))

	assert.Equal(t, `byNameAndAge: WHERE name = ?name AND age > 30 ORDER BY name ASC, age DESC LIMIT 10`, q.String())
}
