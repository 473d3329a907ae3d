// Package querylang defines the small WHERE / ORDER BY / LIMIT grammar the
// query compiler consumes. The grammar supports only AND-joined column
// comparisons at the top level: the engine compiles each query to a single
// contiguous KV range scan, and an arbitrary boolean tree (Or/Not) has no
// such compilation.
package querylang
