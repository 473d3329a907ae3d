package querycompiler

import (
	"fmt"
	"reflect"

	"github.com/syssam/ormcore/keyenc"
	"github.com/syssam/ormcore/querylang"
	"github.com/syssam/ormcore/schema"
)

type boundSpec struct {
	kind  schema.Kind
	op    querylang.Op
	value querylang.Value
	desc  bool
}

// CompiledQuery is QueryCompiler's output for one named query: an
// IndexFunction plus a plan that turns runtime parameter values into a
// [fromKey, toKey) range, a limit, and an order-preservation flag.
type CompiledQuery struct {
	indexFn       *IndexFunction
	bounds        []boundSpec
	preserveOrder bool
	hasLimit      bool
	limitIsParam  bool
	limitParam    string
	staticLimit   int
}

// IndexFunction returns the query's compiled IndexFunction.
func (q *CompiledQuery) IndexFunction() *IndexFunction { return q.indexFn }

// Compile reduces q, which must reference only columns declared on rel, to
// an IndexFunction and range plan for key (the secondary key, or rel's
// primary key for a primary-key range scan).
func Compile(rel *schema.Relation, key schema.Key, q *querylang.Query) (*CompiledQuery, error) {
	sawInequality := false
	for _, c := range q.Where {
		if sawInequality {
			return nil, fmt.Errorf("querycompiler: schema error: query %q: comparison on %q follows an inequality", q.Name, c.Column)
		}
		if c.Op.IsInequality() {
			sawInequality = true
		}
	}

	order, err := planColumns(rel, q)
	if err != nil {
		return nil, err
	}

	var literalEq []querylang.Comparison
	for _, c := range q.Where {
		if c.Op == querylang.EQ {
			if _, isLit := c.Value.LiteralValue(); isLit {
				literalEq = append(literalEq, c)
			}
		}
	}

	desc := make(map[string]bool, len(order))
	for _, pc := range order {
		desc[pc.name] = pc.desc
	}
	bounds := make([]boundSpec, len(q.Where))
	for i, c := range q.Where {
		col, ok := rel.Column(c.Column)
		if !ok {
			return nil, fmt.Errorf("querycompiler: schema error: query %q: column %q not declared on relation %q", q.Name, c.Column, rel.Name)
		}
		bounds[i] = boundSpec{kind: col.Kind, op: c.Op, value: c.Value, desc: desc[c.Column]}
	}

	cq := &CompiledQuery{
		indexFn:       &IndexFunction{indexName: key.Name, columns: order, literalEq: literalEq},
		bounds:        bounds,
		preserveOrder: len(q.OrderBy) > 0,
	}
	if q.Limit != nil {
		cq.hasLimit = true
		if q.Limit.IsParam() {
			cq.limitIsParam = true
			cq.limitParam = q.Limit.Param
		} else {
			cq.staticLimit = q.Limit.Static
		}
	}
	return cq, nil
}

// planColumns builds the IndexFunction's ordered column list: the unique
// set of WHERE parameter columns in first-appearance order, followed by
// ORDER BY columns not already included, each carrying its ASC/DESC mark.
func planColumns(rel *schema.Relation, q *querylang.Query) ([]planColumn, error) {
	var order []planColumn
	index := make(map[string]int, len(q.Where)+len(q.OrderBy))

	for _, c := range q.Where {
		if _, ok := index[c.Column]; ok {
			continue
		}
		col, ok := rel.Column(c.Column)
		if !ok {
			return nil, fmt.Errorf("querycompiler: schema error: query %q: column %q not declared on relation %q", q.Name, c.Column, rel.Name)
		}
		index[c.Column] = len(order)
		order = append(order, planColumn{name: c.Column, kind: col.Kind})
	}
	for _, ob := range q.OrderBy {
		if i, ok := index[ob.Column]; ok {
			order[i].desc = ob.Desc
			continue
		}
		col, ok := rel.Column(ob.Column)
		if !ok {
			return nil, fmt.Errorf("querycompiler: schema error: query %q: ORDER BY column %q not declared on relation %q", q.Name, ob.Column, rel.Name)
		}
		index[ob.Column] = len(order)
		order = append(order, planColumn{name: ob.Column, kind: col.Kind, desc: ob.Desc})
	}
	return order, nil
}

// Bind substitutes params into the compiled plan, producing the parameter
// portion of the [fromKey, toKey) range (the relation/index name prefix is
// not included; see the package doc comment), the effective limit, and
// whether scan order must be preserved.
func (q *CompiledQuery) Bind(params map[string]any) (from, to []byte, limit int, preserveOrder bool, err error) {
	fromB := keyenc.NewBuilder()
	toB := keyenc.NewBuilder()

	for i, bs := range q.bounds {
		v, rerr := resolveValue(bs.value, params)
		if rerr != nil {
			return nil, nil, 0, false, rerr
		}
		last := i == len(q.bounds)-1
		if !last {
			if err := encodeColumn(fromB, bs.kind, v, bs.desc); err != nil {
				return nil, nil, 0, false, err
			}
			if err := encodeColumn(toB, bs.kind, v, bs.desc); err != nil {
				return nil, nil, 0, false, err
			}
			fromB.Delimiter()
			toB.Delimiter()
			continue
		}
		// A column the index stores descending inverts byte order relative
		// to value order, so the boundary transform swaps sides: a lower
		// bound in value space is an upper bound in key space.
		op := bs.op
		if bs.desc {
			switch op {
			case querylang.GE:
				op = querylang.LE
			case querylang.GT:
				op = querylang.LT
			case querylang.LE:
				op = querylang.GE
			case querylang.LT:
				op = querylang.GT
			}
		}
		switch op {
		case querylang.EQ:
			if err := encodeColumn(fromB, bs.kind, v, bs.desc); err != nil {
				return nil, nil, 0, false, err
			}
			fromB.Delimiter()
			if err := encodeColumn(toB, bs.kind, v, bs.desc); err != nil {
				return nil, nil, 0, false, err
			}
			toB.Delimiter()
		case querylang.GE:
			if err := encodeColumn(fromB, bs.kind, v, bs.desc); err != nil {
				return nil, nil, 0, false, err
			}
		case querylang.GT:
			if err := encodeColumn(fromB, bs.kind, v, bs.desc); err != nil {
				return nil, nil, 0, false, err
			}
			fromB.Delimiter()
			fromB.Infinity()
		case querylang.LE:
			if err := encodeColumn(toB, bs.kind, v, bs.desc); err != nil {
				return nil, nil, 0, false, err
			}
		case querylang.LT:
			if err := encodeColumn(toB, bs.kind, v, bs.desc); err != nil {
				return nil, nil, 0, false, err
			}
			toB.Delimiter()
			toB.NUL()
		}
	}
	toB.Infinity()

	limit = q.staticLimit
	if q.hasLimit && q.limitIsParam {
		raw, ok := params[q.limitParam]
		if !ok {
			return nil, nil, 0, false, fmt.Errorf("querycompiler: missing limit parameter %q", q.limitParam)
		}
		n, err := toInt(raw)
		if err != nil {
			return nil, nil, 0, false, err
		}
		limit = n
	}
	return fromB.Bytes(), toB.Bytes(), limit, q.preserveOrder, nil
}

func resolveValue(v querylang.Value, params map[string]any) (any, error) {
	if lit, ok := v.LiteralValue(); ok {
		return lit, nil
	}
	val, ok := params[v.Param]
	if !ok {
		return nil, fmt.Errorf("querycompiler: missing parameter %q", v.Param)
	}
	return val, nil
}

func toInt(v any) (int, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), nil
	default:
		return 0, fmt.Errorf("querycompiler: limit value %v is not an integer", v)
	}
}

// EncodePrimaryKey appends the primary key's leaf columns, in order,
// separated by delimiters: the pk encoding that suffixes every data-row
// key and serves a primary-key point lookup.
func EncodePrimaryKey(b *keyenc.Builder, pk schema.Key, rec Record) error {
	leaves := pk.Leaves()
	for i, leaf := range leaves {
		v := rec.Field(leaf.Name)
		if v == nil {
			return fmt.Errorf("querycompiler: primary key column %q is null", leaf.Name)
		}
		if err := encodeColumn(b, leaf.Kind, v, false); err != nil {
			return err
		}
		if i < len(leaves)-1 {
			b.Delimiter()
		}
	}
	return nil
}
