package dialect

import "context"

// Dialect identifiers consumed by SqlAccess/SqlDialect capability lookups
// and by session-variable handling in dialect/sql.Conn.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite3"
)

// Driver is the interface all dialect drivers must implement.
type Driver interface {
	ExecQuerier
	Tx(ctx context.Context) (Tx, error)
	Close() error
	Dialect() string
}

// ExecQuerier wraps the two query methods used to execute code against a
// dialect. Implemented by both Driver and Tx.
type ExecQuerier interface {
	// Exec executes a query that returns no rows. The args are used to
	// fill in the placeholders of the query; v, if non-nil, receives the
	// driver-specific result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows. v receives the
	// driver-specific rows value.
	Query(ctx context.Context, query string, args, v any) error
}

// Tx is a transaction. Tx is not goroutine-safe.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}
