package sqlstore

import "github.com/syssam/ormcore/querycompiler"

// Record is the capability Access needs from a relation's row type: reading
// a named column (querycompiler.Record, shared with the nosql package) plus
// writing one back when decoding a row returned by a SELECT.
type Record interface {
	querycompiler.Record
	SetField(name string, v any) error
}
