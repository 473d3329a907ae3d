package sqlstore_test

import (
	"context"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/ormcore/dialect"
	dsql "github.com/syssam/ormcore/dialect/sql"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/schema"
	"github.com/syssam/ormcore/sqlstore"
)

type person struct {
	Name string
	Age  int32
}

func (p *person) Field(name string) any {
	switch name {
	case "name":
		return p.Name
	case "age":
		return p.Age
	default:
		return nil
	}
}

func (p *person) SetField(name string, v any) error {
	switch name {
	case "name":
		switch s := v.(type) {
		case string:
			p.Name = s
		case []byte:
			p.Name = string(s)
		}
	case "age":
		switch n := v.(type) {
		case int64:
			p.Age = int32(n)
		case int32:
			p.Age = n
		}
	default:
		return fmt.Errorf("person: unknown column %q", name)
	}
	return nil
}

func personRelation() *schema.Relation {
	name := schema.String(1, "name")
	age := schema.Int32(2, "age")
	return schema.NewRelation("Person", 1, schema.PrimaryKey(name), name, age)
}

// countingDialect is a test-only dialect whose capability flags are set
// explicitly, so both branches of the batch/per-row decision can be
// exercised deterministically against a scripted sqlmock connection.
type countingDialect struct {
	canTotal, canIndividual bool
}

func (countingDialect) Name() string                                    { return "mock" }
func (countingDialect) Placeholder(int) string                          { return "?" }
func (d countingDialect) CanDetermineTotalBatchUpdateCount() bool       { return d.canTotal }
func (d countingDialect) CanDetermineIndividualBatchUpdateCounts() bool { return d.canIndividual }
func (countingDialect) NextSequenceSQL(name string) string              { return "SELECT 1" }

func (countingDialect) ExecuteBatch(ctx context.Context, execer dialect.ExecQuerier, stmts []sqlstore.Statement) (sqlstore.BatchResult, error) {
	return sqlstore.ExecuteSequential(ctx, execer, stmts)
}

func (countingDialect) ConvertError(op sqlstore.Op, entity string, err error) error {
	if err == nil {
		return nil
	}
	return ormerr.NewStorageFailure(entity, err)
}

func newMockConn(t *testing.T) (*dsql.Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return dsql.OpenDB("mock", db), mock
}

// An insert whose batch's total affected count != input count raises
// Concurrency.
func TestAccess_Insert_TotalBatchMismatchRaisesConcurrency(t *testing.T) {
	t.Parallel()
	conn, mock := newMockConn(t)
	dlct := countingDialect{canTotal: true}
	acc := sqlstore.NewAccess[person, *person](conn, personRelation(), dlct)

	mock.ExpectExec("INSERT INTO Person").WithArgs("Ann", int64(30)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO Person").WithArgs("Bob", int64(40)).WillReturnResult(sqlmock.NewResult(2, 0))

	err := acc.Insert(context.Background(), []*person{{Name: "Ann", Age: 30}, {Name: "Bob", Age: 40}})
	assert.True(t, ormerr.Is(err, ormerr.Concurrency))
	require.NoError(t, mock.ExpectationsWereMet())
}

// An update whose underlying DML affects 0 rows raises Concurrency.
func TestAccess_Update_ZeroRowsAffectedRaisesConcurrency(t *testing.T) {
	t.Parallel()
	conn, mock := newMockConn(t)
	dlct := countingDialect{canIndividual: true}
	acc := sqlstore.NewAccess[person, *person](conn, personRelation(), dlct)

	mock.ExpectExec("UPDATE Person").WithArgs(int64(31), "Ghost").WillReturnResult(sqlmock.NewResult(0, 0))

	err := acc.Update(context.Background(), []*person{{Name: "Ghost", Age: 31}})
	assert.True(t, ormerr.Is(err, ormerr.Concurrency))
	require.NoError(t, mock.ExpectationsWereMet())
}

// An upsert of N rows where M updates succeed produces exactly N-M insert
// binds, in input order.
func TestAccess_Upsert_PartialUpdateInsertsRemainder(t *testing.T) {
	t.Parallel()
	conn, mock := newMockConn(t)
	dlct := countingDialect{canIndividual: true}
	acc := sqlstore.NewAccess[person, *person](conn, personRelation(), dlct)

	// Ann already exists (updates); Bob and Cid don't (need insert).
	mock.ExpectExec("UPDATE Person").WithArgs(int64(31), "Ann").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE Person").WithArgs(int64(41), "Bob").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE Person").WithArgs(int64(21), "Cid").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO Person").WithArgs("Bob", int64(41)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO Person").WithArgs("Cid", int64(21)).WillReturnResult(sqlmock.NewResult(2, 1))

	err := acc.Upsert(context.Background(), []*person{
		{Name: "Ann", Age: 31},
		{Name: "Bob", Age: 41},
		{Name: "Cid", Age: 21},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A row whose batch update count comes back unknown (modeled here as a
// RowsAffected error) is treated as missing and passed to insert, rather
// than being guessed as a successful update.
func TestAccess_Upsert_UnknownCountsTreatAllAsMissing(t *testing.T) {
	t.Parallel()
	conn, mock := newMockConn(t)
	dlct := countingDialect{canIndividual: true}
	acc := sqlstore.NewAccess[person, *person](conn, personRelation(), dlct)

	mock.ExpectExec("UPDATE Person").WithArgs(int64(31), "Ann").
		WillReturnResult(sqlmock.NewErrorResult(fmt.Errorf("driver: no affected-rows info available")))
	mock.ExpectExec("INSERT INTO Person").WithArgs("Ann", int64(31)).WillReturnResult(sqlmock.NewResult(1, 1))

	err := acc.Upsert(context.Background(), []*person{{Name: "Ann", Age: 31}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A get whose query matched more than one row raises a domain error,
// never silently returning the first.
func TestAccess_Get_MultipleRowsIsRuntimeError(t *testing.T) {
	t.Parallel()
	conn, mock := newMockConn(t)
	dlct := countingDialect{canTotal: true, canIndividual: true}
	acc := sqlstore.NewAccess[person, *person](conn, personRelation(), dlct)

	rows := sqlmock.NewRows([]string{"name", "age"}).
		AddRow("Ann", int64(30)).
		AddRow("Ann", int64(31))
	mock.ExpectQuery("SELECT name, age FROM Person").WithArgs("Ann").WillReturnRows(rows)

	_, err := acc.Get(context.Background(), &person{Name: "Ann"})
	assert.True(t, ormerr.Is(err, ormerr.Runtime))
	require.NoError(t, mock.ExpectationsWereMet())
}
