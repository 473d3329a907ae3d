package sqlstore

import (
	"context"
	"database/sql"

	"github.com/syssam/ormcore/dialect"
)

// Op identifies which write path produced a SQL error, passed to
// Dialect.ConvertError so it can shape the resulting domain error.
type Op int

const (
	OpInsert Op = iota
	OpUpdate
	OpUpsert
	OpDelete
	OpGet
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpUpsert:
		return "upsert"
	case OpDelete:
		return "delete"
	case OpGet:
		return "get"
	default:
		return "unknown"
	}
}

// Statement is one bound SQL statement: text plus positional args, in the
// order its placeholders appear.
type Statement struct {
	SQL  string
	Args []any
}

// BatchResult is what ExecuteBatch reports about a set of statements it
// ran. Total is -1 when the dialect cannot determine it. Counts is nil when
// the dialect cannot determine individual counts; when non-nil, a -1 entry
// means "unknown", which the engine treats identically to "this row did
// not update".
type BatchResult struct {
	Total  int64
	Counts []int64
}

// Dialect is the contract SqlAccess consumes: capability
// flags that decide which write path runs, SQL generation for placeholders
// and sequence allocation, and classification of a raw driver error into
// the engine's error taxonomy.
type Dialect interface {
	// Name identifies the dialect, one of the dialect package's constants.
	Name() string
	// Placeholder renders the pos'th (1-indexed) bind-parameter marker.
	Placeholder(pos int) string
	// CanDetermineTotalBatchUpdateCount reports whether ExecuteBatch can
	// return a trustworthy BatchResult.Total for a set of statements.
	CanDetermineTotalBatchUpdateCount() bool
	// CanDetermineIndividualBatchUpdateCounts reports whether ExecuteBatch
	// can return a trustworthy BatchResult.Counts.
	CanDetermineIndividualBatchUpdateCounts() bool
	// ExecuteBatch runs stmts against execer and reports what it could
	// determine about the outcome.
	ExecuteBatch(ctx context.Context, execer dialect.ExecQuerier, stmts []Statement) (BatchResult, error)
	// ConvertError classifies a raw driver error from op against entity
	// into the engine's error taxonomy (ormerr).
	ConvertError(op Op, entity string, err error) error
	// NextSequenceSQL returns the statement that advances and returns the
	// next value of the named SQL-side sequence.
	NextSequenceSQL(name string) string
}

// ExecuteSequential is the reference ExecuteBatch body shared by the
// bundled dialects (mysql, postgres, sqlite): database/sql has no native
// multi-statement batch protocol, so it runs each statement in turn against
// execer and collects sql.Result.RowsAffected() per statement. A driver
// whose RowsAffected call fails contributes an unknown (-1) count for that
// row and makes the total unknown too.
func ExecuteSequential(ctx context.Context, execer dialect.ExecQuerier, stmts []Statement) (BatchResult, error) {
	counts := make([]int64, len(stmts))
	var total int64
	totalKnown := true
	for i, st := range stmts {
		var res sql.Result
		if err := execer.Exec(ctx, st.SQL, st.Args, &res); err != nil {
			return BatchResult{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			counts[i] = -1
			totalKnown = false
			continue
		}
		counts[i] = n
		total += n
	}
	if !totalKnown {
		total = -1
	}
	return BatchResult{Total: total, Counts: counts}, nil
}
