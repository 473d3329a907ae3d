// Package sqlstore implements SqlAccess: a per-entity accessor over a SQL
// connection. It chooses, for each write path, between a single
// batched round trip and a per-row loop depending on what its Dialect can
// report about affected-row counts, and raises a Concurrency error either
// way when the counts don't line up. Upsert follows attempt-update-then-
// insert, preserving input order into the insert fallback.
//
// Named queries run through the same querylang grammar the KV side
// compiles to range scans: CompileQuery pre-computes the SELECT text once
// per query, and Query binds runtime parameters into it positionally.
//
// SqlAccess is the SQL-side counterpart to the nosql package: both consume
// the same schema.Relation descriptor and the same querycompiler.Record
// reading convention, so an application's generated accessor type can
// satisfy both.
package sqlstore
