// Package querycompiler reduces a parsed querylang.Query into an
// IndexFunction (membership predicate plus key encoder) and a CompiledQuery
// (a plan that turns runtime parameter values into a [fromKey, toKey) range
// and a limit).
//
// Neither the IndexFunction's encode output nor the CompiledQuery's range
// bounds carry the relation-name/index-name prefix: that prefix is common
// to every key family (data rows, index rows, and primary-key point
// lookups alike) and is prepended once by the NoSqlAccess layer, not
// duplicated here.
package querycompiler
