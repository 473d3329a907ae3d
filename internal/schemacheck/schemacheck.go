// Package schemacheck validates that a schema.Relation's column kinds are
// representable in a target SQL dialect before a sqlstore.Access is built
// against it. It is a thin safety check built on ariga.io/atlas's
// sql/schema type vocabulary (schema.Table, schema.Column, schema.*Type) —
// not a DDL emitter: schema migration is out of scope for this engine, and
// this package never builds or issues a CREATE TABLE statement. It only
// asks: "if someone were to migrate this relation onto dialect D, would
// every column have a type to migrate it as?"
package schemacheck

import (
	"fmt"

	atlas "ariga.io/atlas/sql/schema"

	"github.com/syssam/ormcore/dialect"
	"github.com/syssam/ormcore/schema"
)

// Table builds an atlas *schema.Table describing rel's leaf columns. The
// table is never executed against a real connection; callers use it to
// feed atlas's own validators or simply to inspect the mapping this package
// chose for a given column kind.
func Table(rel *schema.Relation, dialectName string) (*atlas.Table, error) {
	t := &atlas.Table{Name: rel.Name}
	for _, c := range rel.Columns {
		for _, leaf := range c.Leaves() {
			col, err := column(leaf, dialectName)
			if err != nil {
				return nil, fmt.Errorf("schemacheck: relation %q: %w", rel.Name, err)
			}
			t.Columns = append(t.Columns, col)
		}
	}
	return t, nil
}

// Validate reports an error naming the first column of rel (after
// flattening nested composites to their leaves) that has no
// representation on dialectName. A nil return means every column can be
// migrated onto that dialect by some future DDL layer — it says nothing
// about whether such a migration has actually been run.
func Validate(rel *schema.Relation, dialectName string) error {
	_, err := Table(rel, dialectName)
	return err
}

func column(c schema.Column, dialectName string) (*atlas.Column, error) {
	if c.IsNested() {
		// Unreachable via Leaves(); a caller that hands column() a composite
		// directly instead of going through Table must not get a Column with
		// a nil Type back.
		return nil, fmt.Errorf("column %q: nested columns have no flat SQL representation", c.Name)
	}
	typ, err := columnType(c, dialectName)
	if err != nil {
		return nil, err
	}
	return &atlas.Column{
		Name: c.Name,
		Type: &atlas.ColumnType{Type: typ, Null: c.Nullable},
	}, nil
}

func columnType(c schema.Column, dialectName string) (atlas.Type, error) {
	switch c.Kind {
	case schema.KindBool:
		return &atlas.BoolType{T: boolTypeName(dialectName)}, nil
	case schema.KindInt8, schema.KindInt16, schema.KindInt32, schema.KindInt64:
		return &atlas.IntegerType{T: intTypeName(c.Kind, dialectName)}, nil
	case schema.KindChar:
		return &atlas.StringType{T: charTypeName(dialectName), Size: 1}, nil
	case schema.KindFloat32:
		return &atlas.FloatType{T: floatTypeName(dialectName), Precision: 24}, nil
	case schema.KindFloat64:
		return &atlas.FloatType{T: floatTypeName(dialectName), Precision: 53}, nil
	case schema.KindString:
		return &atlas.StringType{T: textTypeName(dialectName)}, nil
	case schema.KindBytes:
		return &atlas.BinaryType{T: blobTypeName(dialectName)}, nil
	case schema.KindTimestamp:
		return &atlas.TimeType{T: "timestamp"}, nil
	case schema.KindEnum:
		values := enumValues(c.Annotations["enum_values"])
		if len(values) == 0 {
			return nil, fmt.Errorf("column %q: enum column has no \"enum_values\" annotation to migrate as a SQL ENUM/CHECK", c.Name)
		}
		return &atlas.EnumType{T: "enum", Values: values}, nil
	default:
		return nil, fmt.Errorf("column %q: kind %s has no SQL representation", c.Name, c.Kind)
	}
}

// enumValues accepts the annotation both as []string (a relation built in
// Go) and as []any of strings (a relation decoded from JSON).
func enumValues(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, e := range vs {
			s, ok := e.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}

func boolTypeName(dialectName string) string {
	if dialectName == dialect.MySQL {
		return "tinyint"
	}
	return "boolean"
}

func intTypeName(k schema.Kind, dialectName string) string {
	if dialectName == dialect.SQLite {
		// SQLite has one integer storage class regardless of declared
		// width; the declared type name is advisory only.
		return "integer"
	}
	switch k {
	case schema.KindInt8, schema.KindInt16:
		return "smallint"
	case schema.KindInt32:
		return "int"
	default:
		return "bigint"
	}
}

func charTypeName(dialectName string) string {
	if dialectName == dialect.SQLite {
		return "text"
	}
	return "char"
}

func floatTypeName(dialectName string) string {
	if dialectName == dialect.Postgres {
		return "double precision"
	}
	return "double"
}

func textTypeName(dialectName string) string {
	if dialectName == dialect.MySQL {
		return "longtext"
	}
	return "text"
}

func blobTypeName(dialectName string) string {
	switch dialectName {
	case dialect.MySQL:
		return "longblob"
	case dialect.Postgres:
		return "bytea"
	default:
		return "blob"
	}
}
