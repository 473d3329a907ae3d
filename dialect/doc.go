// Package dialect defines the execution contract the engine's SQL side is
// written against: Driver for a connection, Tx for a transaction, and
// ExecQuerier for the Exec/Query pair both implement.
//
// Three dialects are supported, identified by constants:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite3"
//
// The concrete database/sql-backed implementation lives in dialect/sql;
// the per-dialect capability flags and error classification SqlAccess
// consumes live one layer up, in sqlstore.Dialect and its implementations
// under dialect/mysql, dialect/postgres, and dialect/sqlite.
package dialect
