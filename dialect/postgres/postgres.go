// Package postgres implements sqlstore.Dialect for PostgreSQL over
// github.com/lib/pq.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/syssam/ormcore/dialect"
	"github.com/syssam/ormcore/dialect/sql/sqlerr"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/sqlstore"
)

const sequenceTable = "ormcore_sequence"

// uniqueViolation is the SQLSTATE pq reports for a unique constraint.
const uniqueViolation = "23505"

// Dialect targets PostgreSQL. database/sql's RowsAffected is reliable for
// this driver, so both batch-count capability flags are true.
type Dialect struct{}

// New returns the Postgres dialect.
func New() Dialect { return Dialect{} }

func (Dialect) Name() string { return dialect.Postgres }

// Placeholder renders Postgres's 1-indexed "$n" positional markers.
func (Dialect) Placeholder(pos int) string { return fmt.Sprintf("$%d", pos) }

func (Dialect) CanDetermineTotalBatchUpdateCount() bool       { return true }
func (Dialect) CanDetermineIndividualBatchUpdateCounts() bool { return true }

func (Dialect) ExecuteBatch(ctx context.Context, execer dialect.ExecQuerier, stmts []sqlstore.Statement) (sqlstore.BatchResult, error) {
	return sqlstore.ExecuteSequential(ctx, execer, stmts)
}

// NextSequenceSQL uses a real SQL sequence object, named after the row it
// allocates for.
func (Dialect) NextSequenceSQL(name string) string {
	return fmt.Sprintf("SELECT nextval(%q)", sequenceTable+"_"+name)
}

// ConvertError recognizes SQLSTATE 23505 (unique_violation) ahead of the
// driver-agnostic sqlerr fallback.
func (Dialect) ConvertError(op sqlstore.Op, entity string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return ormerr.NewDuplicateKey(entity, err)
	}
	if sqlerr.IsUniqueConstraintError(err) {
		return ormerr.NewDuplicateKey(entity, err)
	}
	return ormerr.NewStorageFailure(entity, err)
}

var _ sqlstore.Dialect = Dialect{}
