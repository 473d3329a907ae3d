// Package keyenc implements the order-preserving binary key encoding used
// to lay out data rows and secondary-index rows over an ordered key/value
// store.
//
// A Builder accumulates an append-only byte buffer. For any two values a, b
// encoded with the same sequence of appender calls, lexicographic order of
// the encoded bytes matches tuple order of the original values. This lets a
// range predicate over typed columns compile down to a pair of byte-string
// bounds that a plain ordered-scan primitive can serve directly.
package keyenc
