package schema

import (
	"fmt"

	"github.com/syssam/ormcore/querylang"
)

// Kind is a column's primitive storage kind.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindChar
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindTimestamp
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindChar:
		return "char"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTimestamp:
		return "timestamp"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Column describes one entity column: a stable small integer id (unique
// within the entity), a name, a primitive kind, nullability, and an
// optional default. A column may be nested — itself a composite of leaf
// columns — in which case Nested is non-empty and Kind is ignored.
type Column struct {
	ID       uint32         `json:"id"`
	Name     string         `json:"name"`
	Kind     Kind           `json:"kind,omitempty"`
	Nullable bool           `json:"nullable,omitempty"`
	Default  any            `json:"default,omitempty"`
	Nested   []Column       `json:"nested,omitempty"`
	Annotations map[string]any `json:"annotations,omitempty"`
}

// IsNested reports whether c is a composite column.
func (c Column) IsNested() bool { return len(c.Nested) > 0 }

// Leaves returns the ordered leaf columns underneath c: c itself for a
// scalar column, or the depth-first flattening of Nested for a composite
// one. This is the "field vector" a key built over c encodes.
func (c Column) Leaves() []Column {
	if !c.IsNested() {
		return []Column{c}
	}
	var out []Column
	for _, n := range c.Nested {
		out = append(out, n.Leaves()...)
	}
	return out
}

// Key is a primary or secondary key: a reference to one column (possibly
// nested) plus, for secondary keys, a stable name distinguishing it from
// other indexes on the same relation.
type Key struct {
	Name   string `json:"name,omitempty"`
	Column Column `json:"column"`
}

// Leaves returns the ordered leaf columns the key encodes.
func (k Key) Leaves() []Column { return k.Column.Leaves() }

// PrimaryKey builds the primary key reference for column c. Its Name is
// always empty — data rows never carry an index name component.
func PrimaryKey(c Column) Key { return Key{Column: c} }

// SecondaryKey builds a named secondary key reference for column c.
func SecondaryKey(name string, c Column) Key { return Key{Name: name, Column: c} }

// Relation is the immutable metadata for one entity type: name, stable
// relation id, primary key, secondary keys, and named queries.
type Relation struct {
	Name          string             `json:"name"`
	ID            uint32             `json:"id"`
	Columns       []Column           `json:"columns"`
	PrimaryKey    Key                `json:"primary_key"`
	SecondaryKeys []Key              `json:"secondary_keys,omitempty"`
	Queries       []*querylang.Query `json:"-"`
}

// NewRelation builds a Relation. cols must include every column referenced
// by pk, by any later-attached secondary key, and by any attached query.
func NewRelation(name string, id uint32, pk Key, cols ...Column) *Relation {
	return &Relation{Name: name, ID: id, Columns: cols, PrimaryKey: pk}
}

// WithSecondaryKey attaches a secondary key and returns r for chaining.
func (r *Relation) WithSecondaryKey(k Key) *Relation {
	r.SecondaryKeys = append(r.SecondaryKeys, k)
	return r
}

// WithQuery attaches a named query and returns r for chaining.
func (r *Relation) WithQuery(q *querylang.Query) *Relation {
	r.Queries = append(r.Queries, q)
	return r
}

// Column looks up a top-level column by name.
func (r *Relation) Column(name string) (Column, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// SecondaryKey looks up a secondary key by name.
func (r *Relation) SecondaryKey(name string) (Key, bool) {
	for _, k := range r.SecondaryKeys {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

// NamedQuery looks up an attached query by name, or nil if none matches. A
// query sharing a secondary key's name defines that index's column shape
// (see nosql.NewAccessor).
func (r *Relation) NamedQuery(name string) *querylang.Query {
	for _, q := range r.Queries {
		if q.Name == name {
			return q
		}
	}
	return nil
}

// Validate checks the structural invariants NewRelation's caller must
// satisfy: unique column ids, a primary key whose column is declared, and
// secondary keys whose columns are declared and whose names are unique.
func (r *Relation) Validate() error {
	seen := make(map[uint32]bool, len(r.Columns))
	byName := make(map[string]bool, len(r.Columns))
	for _, c := range r.Columns {
		if seen[c.ID] {
			return fmt.Errorf("schema: relation %q: duplicate column id %d", r.Name, c.ID)
		}
		seen[c.ID] = true
		byName[c.Name] = true
	}
	if !byName[r.PrimaryKey.Column.Name] {
		return fmt.Errorf("schema: relation %q: primary key column %q not declared", r.Name, r.PrimaryKey.Column.Name)
	}
	names := make(map[string]bool, len(r.SecondaryKeys))
	for _, k := range r.SecondaryKeys {
		if k.Name == "" {
			return fmt.Errorf("schema: relation %q: secondary key must have a name", r.Name)
		}
		if names[k.Name] {
			return fmt.Errorf("schema: relation %q: duplicate secondary key name %q", r.Name, k.Name)
		}
		names[k.Name] = true
		if !byName[k.Column.Name] {
			return fmt.Errorf("schema: relation %q: secondary key %q column %q not declared", r.Name, k.Name, k.Column.Name)
		}
	}
	return nil
}
