// Package nosql implements NoSqlAccess: the write and read
// paths that sit on top of a kv.Store and keep data rows and secondary
// index rows consistent.
//
// Every accessor is built for one schema.Relation. Write paths
// (Insert/Upsert/Update/Delete/AtomicUpdate) maintain invariant I1 — every
// secondary index row that should exist for the current object does, and
// no stale ones are left pointing at a superseded object — by writing
// index rows before the data row and pruning stale ones after. Read paths
// (ScanPrimaryKey/ScanIndex) tolerate index rows the write path's own prune
// step raced with a concurrent reader and left behind: ScanIndex verifies
// each candidate against the live data row and fossil-collects anything
// that no longer matches, bounded by a minimum age so an in-flight write
// is never mistaken for a fossil.
package nosql
