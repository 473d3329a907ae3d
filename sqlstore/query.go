package sqlstore

import (
	"context"
	"fmt"
	"strings"

	dsql "github.com/syssam/ormcore/dialect/sql"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/querylang"
)

// Query is the SQL variant of a compiled named query: the statement text is
// computed once, at compile time, and each run binds runtime parameters
// into it positionally. The KV side compiles the same querylang.Query into
// a range scan instead (querycompiler.CompiledQuery); the two sides share
// the grammar, not the plan.
//
// Unlike the KV plan, a SQL query has no single-inequality restriction:
// the database serves any AND chain, so none is imposed here.
type Query struct {
	text       string
	binds      []querylang.Value
	limitParam string
}

// SQL returns the compiled statement text.
func (q *Query) SQL() string { return q.text }

// CompileQuery pre-computes the SELECT statement for q against the
// accessor's relation and dialect. Every WHERE column and ORDER BY column
// must be declared on the relation.
func (a *Access[T, PT]) CompileQuery(q *querylang.Query) (*Query, error) {
	cols := a.leafColumns()
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", columnList(cols), a.rel.Name)

	var binds []querylang.Value
	pos := 1
	if len(q.Where) > 0 {
		parts := make([]string, len(q.Where))
		for i, c := range q.Where {
			if _, ok := a.rel.Column(c.Column); !ok {
				return nil, ormerr.NewSchemaError("relation %q: query %q: column %q not declared", a.rel.Name, q.Name, c.Column)
			}
			parts[i] = fmt.Sprintf("%s %s %s", c.Column, c.Op, a.dlct.Placeholder(pos))
			binds = append(binds, c.Value)
			pos++
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	if len(q.OrderBy) > 0 {
		terms := make([]string, len(q.OrderBy))
		for i, ob := range q.OrderBy {
			if _, ok := a.rel.Column(ob.Column); !ok {
				return nil, ormerr.NewSchemaError("relation %q: query %q: ORDER BY column %q not declared", a.rel.Name, q.Name, ob.Column)
			}
			dir := "ASC"
			if ob.Desc {
				dir = "DESC"
			}
			terms[i] = ob.Column + " " + dir
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}

	limitParam := ""
	if q.Limit != nil {
		if q.Limit.IsParam() {
			sb.WriteString(" LIMIT " + a.dlct.Placeholder(pos))
			limitParam = q.Limit.Param
		} else {
			fmt.Fprintf(&sb, " LIMIT %d", q.Limit.Static)
		}
	}

	return &Query{text: sb.String(), binds: binds, limitParam: limitParam}, nil
}

// Query runs a compiled query, substituting params for its placeholders in
// order, and yields the decoded rows.
func (a *Access[T, PT]) Query(ctx context.Context, cq *Query, params map[string]any) ([]PT, error) {
	args := make([]any, 0, len(cq.binds)+1)
	for _, b := range cq.binds {
		if lit, ok := b.LiteralValue(); ok {
			args = append(args, lit)
			continue
		}
		v, ok := params[b.Param]
		if !ok {
			return nil, ormerr.NewSchemaError("relation %q: missing parameter %q", a.rel.Name, b.Param)
		}
		args = append(args, v)
	}
	if cq.limitParam != "" {
		v, ok := params[cq.limitParam]
		if !ok {
			return nil, ormerr.NewSchemaError("relation %q: missing limit parameter %q", a.rel.Name, cq.limitParam)
		}
		args = append(args, v)
	}

	var rows dsql.Rows
	if err := a.conn.Query(ctx, cq.text, args, &rows); err != nil {
		return nil, a.dlct.ConvertError(OpGet, a.rel.Name, err)
	}
	defer rows.Close()
	return a.scanAll(a.leafColumns(), &rows)
}
