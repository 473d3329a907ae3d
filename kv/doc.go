// Package kv defines the ordered key/value contract the NoSQL storage layer
// is built on, and ships two reference implementations: MemStore, a
// process-local in-memory ordered table, and FileStore, which adds an
// append-only log and a periodically rewritten snapshot file.
//
// Both are single-process, single-binary reference stores for tests and
// small deployments; production backends (CockroachDB, FoundationDB,
// TiKV, …) implement the same Store interface.
package kv
