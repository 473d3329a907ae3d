package sqlstore_test

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/querylang"
	"github.com/syssam/ormcore/sqlstore"
)

func TestCompileQuery_Text(t *testing.T) {
	t.Parallel()
	conn, _ := newMockConn(t)
	acc := sqlstore.NewAccess[person, *person](conn, personRelation(), countingDialect{})

	q := querylang.New("adultsByName",
		querylang.Eq("name", querylang.Placeholder("name")),
		querylang.Ge("age", querylang.Literal(int32(18))),
	).OrderByClause(querylang.Asc("name"), querylang.Desc("age")).
		WithLimit(querylang.LimitParam("n"))

	cq, err := acc.CompileQuery(q)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT name, age FROM Person WHERE name = ? AND age >= ? ORDER BY name ASC, age DESC LIMIT ?",
		cq.SQL())
}

func TestCompileQuery_RejectsUnknownColumn(t *testing.T) {
	t.Parallel()
	conn, _ := newMockConn(t)
	acc := sqlstore.NewAccess[person, *person](conn, personRelation(), countingDialect{})

	q := querylang.New("bad", querylang.Eq("ghost", querylang.Placeholder("x")))
	_, err := acc.CompileQuery(q)
	assert.True(t, ormerr.Is(err, ormerr.SchemaError))
}

func TestQuery_BindsParamsAndLiteralsInOrder(t *testing.T) {
	t.Parallel()
	conn, mock := newMockConn(t)
	acc := sqlstore.NewAccess[person, *person](conn, personRelation(), countingDialect{})

	q := querylang.New("adultsByName",
		querylang.Eq("name", querylang.Placeholder("name")),
		querylang.Ge("age", querylang.Literal(int32(18))),
	).WithLimit(querylang.LimitValue(5))
	cq, err := acc.CompileQuery(q)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"name", "age"}).AddRow("Ann", int64(30))
	mock.ExpectQuery(regexp.QuoteMeta(cq.SQL())).
		WithArgs("Ann", int64(18)).
		WillReturnRows(rows)

	got, err := acc.Query(context.Background(), cq, map[string]any{"name": "Ann"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ann", got[0].Name)
	assert.Equal(t, int32(30), got[0].Age)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_MissingParamIsSchemaError(t *testing.T) {
	t.Parallel()
	conn, _ := newMockConn(t)
	acc := sqlstore.NewAccess[person, *person](conn, personRelation(), countingDialect{})

	q := querylang.New("byName", querylang.Eq("name", querylang.Placeholder("name")))
	cq, err := acc.CompileQuery(q)
	require.NoError(t, err)

	_, err = acc.Query(context.Background(), cq, nil)
	assert.True(t, ormerr.Is(err, ormerr.SchemaError))
}
