// Package sqlite implements sqlstore.Dialect for SQLite over
// modernc.org/sqlite, a pure-Go driver with no cgo dependency.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/syssam/ormcore/dialect"
	"github.com/syssam/ormcore/dialect/sql/sqlerr"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/sqlstore"
)

const sequenceTable = "ormcore_sequence"

// Dialect targets SQLite. database/sql's RowsAffected is reliable for this
// driver, so both batch-count capability flags are true.
type Dialect struct{}

// New returns the SQLite dialect.
func New() Dialect { return Dialect{} }

func (Dialect) Name() string { return dialect.SQLite }

// Placeholder always renders "?": SQLite does not use positional markers.
func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) CanDetermineTotalBatchUpdateCount() bool       { return true }
func (Dialect) CanDetermineIndividualBatchUpdateCounts() bool { return true }

func (Dialect) ExecuteBatch(ctx context.Context, execer dialect.ExecQuerier, stmts []sqlstore.Statement) (sqlstore.BatchResult, error) {
	return sqlstore.ExecuteSequential(ctx, execer, stmts)
}

func (Dialect) NextSequenceSQL(name string) string {
	return fmt.Sprintf("UPDATE %s SET id = id + 1 WHERE name = %q RETURNING id", sequenceTable, name)
}

// ConvertError has no typed error from modernc.org/sqlite to extract a
// result code from here, so it falls back entirely to sqlerr's
// string-matching classifier ("UNIQUE constraint failed").
func (Dialect) ConvertError(op sqlstore.Op, entity string, err error) error {
	if err == nil {
		return nil
	}
	if sqlerr.IsUniqueConstraintError(err) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ormerr.NewDuplicateKey(entity, err)
	}
	return ormerr.NewStorageFailure(entity, err)
}

var _ sqlstore.Dialect = Dialect{}
