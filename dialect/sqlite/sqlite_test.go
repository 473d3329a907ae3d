package sqlite_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/ormcore/dialect"
	"github.com/syssam/ormcore/dialect/sqlite"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/sqlstore"
)

func TestDialect_Name(t *testing.T) {
	t.Parallel()
	assert.Equal(t, dialect.SQLite, sqlite.New().Name())
}

func TestDialect_Placeholder(t *testing.T) {
	t.Parallel()
	d := sqlite.New()
	assert.Equal(t, "?", d.Placeholder(1))
}

func TestDialect_ConvertError_UniqueConstraint(t *testing.T) {
	t.Parallel()
	d := sqlite.New()
	err := d.ConvertError(sqlstore.OpInsert, "Person", errors.New("UNIQUE constraint failed: person.name"))
	assert.True(t, ormerr.Is(err, ormerr.DuplicateKey))
}

func TestDialect_ConvertError_OtherFailure(t *testing.T) {
	t.Parallel()
	d := sqlite.New()
	err := d.ConvertError(sqlstore.OpInsert, "Person", errors.New("database is locked"))
	assert.True(t, ormerr.Is(err, ormerr.StorageFailure))
}
