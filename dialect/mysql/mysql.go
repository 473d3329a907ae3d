// Package mysql implements sqlstore.Dialect for MySQL/MariaDB over
// github.com/go-sql-driver/mysql.
package mysql

import (
	"context"
	"errors"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/syssam/ormcore/dialect"
	"github.com/syssam/ormcore/dialect/sql/sqlerr"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/sqlstore"
)

// sequenceTable is where Dialect.NextSequenceSQL allocates ids, one row per
// named sequence, mirroring the KV side's ".sequence.<name>" row.
const sequenceTable = "ormcore_sequence"

// Dialect targets MySQL/MariaDB. database/sql's RowsAffected is reliable
// for this driver, so both batch-count capability flags are true.
type Dialect struct{}

// New returns the MySQL dialect.
func New() Dialect { return Dialect{} }

func (Dialect) Name() string { return dialect.MySQL }

// Placeholder always renders "?": MySQL does not use positional markers.
func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) CanDetermineTotalBatchUpdateCount() bool      { return true }
func (Dialect) CanDetermineIndividualBatchUpdateCounts() bool { return true }

func (Dialect) ExecuteBatch(ctx context.Context, execer dialect.ExecQuerier, stmts []sqlstore.Statement) (sqlstore.BatchResult, error) {
	return sqlstore.ExecuteSequential(ctx, execer, stmts)
}

// NextSequenceSQL uses MySQL's LAST_INSERT_ID(expr) trick to read back the
// post-increment value of a single UPDATE in the same round trip.
func (Dialect) NextSequenceSQL(name string) string {
	return fmt.Sprintf("UPDATE %s SET id = LAST_INSERT_ID(id + 1) WHERE name = %q", sequenceTable, name)
}

// ConvertError recognizes MySQL error 1062 (duplicate entry) ahead of the
// driver-agnostic sqlerr fallback.
func (Dialect) ConvertError(op sqlstore.Op, entity string, err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return ormerr.NewDuplicateKey(entity, err)
	}
	if sqlerr.IsUniqueConstraintError(err) {
		return ormerr.NewDuplicateKey(entity, err)
	}
	return ormerr.NewStorageFailure(entity, err)
}

var _ sqlstore.Dialect = Dialect{}
