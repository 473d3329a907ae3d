package mysql_test

import (
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/syssam/ormcore/dialect"
	"github.com/syssam/ormcore/dialect/mysql"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/sqlstore"
)

func TestDialect_Name(t *testing.T) {
	t.Parallel()
	assert.Equal(t, dialect.MySQL, mysql.New().Name())
}

func TestDialect_Placeholder(t *testing.T) {
	t.Parallel()
	d := mysql.New()
	assert.Equal(t, "?", d.Placeholder(1))
	assert.Equal(t, "?", d.Placeholder(2))
}

func TestDialect_Capabilities(t *testing.T) {
	t.Parallel()
	d := mysql.New()
	assert.True(t, d.CanDetermineTotalBatchUpdateCount())
	assert.True(t, d.CanDetermineIndividualBatchUpdateCounts())
}

func TestDialect_ConvertError_DuplicateEntry(t *testing.T) {
	t.Parallel()
	d := mysql.New()
	err := d.ConvertError(sqlstore.OpInsert, "Person", &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"})
	assert.True(t, ormerr.Is(err, ormerr.DuplicateKey))
}

func TestDialect_ConvertError_OtherFailure(t *testing.T) {
	t.Parallel()
	d := mysql.New()
	err := d.ConvertError(sqlstore.OpInsert, "Person", &mysqldriver.MySQLError{Number: 1146, Message: "Table doesn't exist"})
	assert.True(t, ormerr.Is(err, ormerr.StorageFailure))
}

func TestDialect_ConvertError_Nil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, mysql.New().ConvertError(sqlstore.OpInsert, "Person", nil))
}
