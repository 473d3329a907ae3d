package postgres_test

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/syssam/ormcore/dialect"
	"github.com/syssam/ormcore/dialect/postgres"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/sqlstore"
)

func TestDialect_Name(t *testing.T) {
	t.Parallel()
	assert.Equal(t, dialect.Postgres, postgres.New().Name())
}

func TestDialect_Placeholder(t *testing.T) {
	t.Parallel()
	d := postgres.New()
	assert.Equal(t, "$1", d.Placeholder(1))
	assert.Equal(t, "$2", d.Placeholder(2))
}

func TestDialect_Capabilities(t *testing.T) {
	t.Parallel()
	d := postgres.New()
	assert.True(t, d.CanDetermineTotalBatchUpdateCount())
	assert.True(t, d.CanDetermineIndividualBatchUpdateCounts())
}

func TestDialect_ConvertError_UniqueViolation(t *testing.T) {
	t.Parallel()
	d := postgres.New()
	err := d.ConvertError(sqlstore.OpInsert, "Person", &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	assert.True(t, ormerr.Is(err, ormerr.DuplicateKey))
}

func TestDialect_ConvertError_OtherFailure(t *testing.T) {
	t.Parallel()
	d := postgres.New()
	err := d.ConvertError(sqlstore.OpInsert, "Person", &pq.Error{Code: "53300", Message: "too many connections"})
	assert.True(t, ormerr.Is(err, ormerr.StorageFailure))
}
