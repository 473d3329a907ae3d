// Package sql adapts database/sql to the dialect.Driver contract the
// engine's SQL accessors execute against.
//
// Driver wraps a *sql.DB (or, inside a transaction, a *sql.Tx) behind the
// dialect.ExecQuerier pair; Rows wraps *sql.Rows so results can be passed
// through the any-typed Query method without copying locks. Session
// variables attached to a context with WithVar are applied before each
// statement and reset when the connection returns to the pool.
//
// Opening a connection:
//
//	import (
//	    "github.com/syssam/ormcore/dialect"
//	    "github.com/syssam/ormcore/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// The package also ships two observability wrappers that compose with any
// Driver: StatsDriver (query counters, durations, slow-query detection)
// and DebugDriver (statement logging). See stats.go.
//
// SQL text generation itself lives with the accessor that owns the
// statement shape (sqlstore); this package only executes.
package sql
