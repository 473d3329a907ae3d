package querycompiler

import (
	"fmt"
	"reflect"

	"github.com/syssam/ormcore/keyenc"
	"github.com/syssam/ormcore/querylang"
	"github.com/syssam/ormcore/schema"
)

type planColumn struct {
	name string
	kind schema.Kind
	desc bool
}

// IndexFunction is the compiled, per-query representation of a secondary
// index: a membership predicate plus a deterministic key encoder.
type IndexFunction struct {
	indexName string
	columns   []planColumn
	literalEq []querylang.Comparison
}

// Name returns the stable string used as the index-row key component.
func (f *IndexFunction) Name() string { return f.indexName }

// ForKey builds the fallback IndexFunction for a secondary key: every leaf
// column, in declared order, ascending. NoSqlAccess maintains index rows
// with this form only when no relation query defines the key's shape; a
// query sharing the key's name supplies the IndexFunction instead, so that
// write-side row keys match the query's scan bounds and DESC encodings.
func ForKey(key schema.Key) *IndexFunction {
	leaves := key.Leaves()
	columns := make([]planColumn, len(leaves))
	for i, c := range leaves {
		columns[i] = planColumn{name: c.Name, kind: c.Kind}
	}
	return &IndexFunction{indexName: key.Name, columns: columns}
}

// Includes reports whether rec belongs in this index: every encoded column
// must be non-null, and every literal equality from the original WHERE
// clause must hold against rec.
func (f *IndexFunction) Includes(rec Record) bool {
	for _, c := range f.columns {
		if rec.Field(c.name) == nil {
			return false
		}
	}
	for _, cmp := range f.literalEq {
		lit, _ := cmp.Value.LiteralValue()
		v := rec.Field(cmp.Column)
		if v == nil || !valuesEqual(v, lit) {
			return false
		}
	}
	return true
}

// Encode appends the indexed columns to b in declared order, separated by
// delimiters, each using its ascending or descending encoding per the
// query's ORDER BY. Calling Encode twice on the same rec yields identical
// bytes.
func (f *IndexFunction) Encode(b *keyenc.Builder, rec Record) error {
	for i, c := range f.columns {
		v := rec.Field(c.name)
		if v == nil {
			return fmt.Errorf("querycompiler: column %q is null", c.name)
		}
		if err := encodeColumn(b, c.kind, v, c.desc); err != nil {
			return err
		}
		if i < len(f.columns)-1 {
			b.Delimiter()
		}
	}
	return nil
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	if reflect.TypeOf(a) == reflect.TypeOf(b) {
		return a == b
	}
	av, aerr := toFloat64(a)
	bv, berr := toFloat64(b)
	if aerr == nil && berr == nil {
		return av == bv
	}
	ai, aerr := toInt64(a)
	bi, berr := toInt64(b)
	if aerr == nil && berr == nil {
		return ai == bi
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
