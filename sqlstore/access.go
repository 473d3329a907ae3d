package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/syssam/ormcore/dialect"
	dsql "github.com/syssam/ormcore/dialect/sql"
	"github.com/syssam/ormcore/ormerr"
	"github.com/syssam/ormcore/schema"
)

// Access is SqlAccess for one relation. T is the relation's row type; PT
// constrains *T to implement Record, the minimum capability binding and
// decoding need from a row.
type Access[T any, PT interface {
	*T
	Record
}] struct {
	conn dialect.ExecQuerier
	rel  *schema.Relation
	dlct Dialect
}

// NewAccess builds an accessor for rel issuing statements against conn
// (typically a *dialect/sql.Driver or, inside a transaction, its *Tx)
// through dlct.
func NewAccess[T any, PT interface {
	*T
	Record
}](conn dialect.ExecQuerier, rel *schema.Relation, dlct Dialect) *Access[T, PT] {
	return &Access[T, PT]{conn: conn, rel: rel, dlct: dlct}
}

func (a *Access[T, PT]) newT() PT { return PT(new(T)) }

// leafColumns flattens the relation's columns, nested composites included,
// into the ordered list of SQL columns the underlying table has.
func (a *Access[T, PT]) leafColumns() []schema.Column {
	var out []schema.Column
	for _, c := range a.rel.Columns {
		out = append(out, c.Leaves()...)
	}
	return out
}

func (a *Access[T, PT]) nonPKLeafColumns() []schema.Column {
	pk := make(map[string]bool, len(a.rel.PrimaryKey.Leaves()))
	for _, c := range a.rel.PrimaryKey.Leaves() {
		pk[c.Name] = true
	}
	var out []schema.Column
	for _, c := range a.leafColumns() {
		if !pk[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

func columnList(cols []schema.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

// Insert writes every row via a single INSERT per row, routed through the
// shared batch/per-row decision.
func (a *Access[T, PT]) Insert(ctx context.Context, rows []PT) error {
	if len(rows) == 0 {
		return nil
	}
	cols := a.leafColumns()
	stmts := make([]Statement, len(rows))
	for i, row := range rows {
		args := make([]any, len(cols))
		placeholders := make([]string, len(cols))
		for j, c := range cols {
			args[j] = row.Field(c.Name)
			placeholders[j] = a.dlct.Placeholder(j + 1)
		}
		stmts[i] = Statement{
			SQL:  fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", a.rel.Name, columnList(cols), strings.Join(placeholders, ", ")),
			Args: args,
		}
	}
	return a.runBatch(ctx, OpInsert, stmts, len(rows))
}

// updateStatements builds one UPDATE per row: SET over every non-primary-key
// column, WHERE over the primary key's leaf columns.
func (a *Access[T, PT]) updateStatements(rows []PT) ([]Statement, error) {
	pkLeaves := a.rel.PrimaryKey.Leaves()
	setCols := a.nonPKLeafColumns()
	stmts := make([]Statement, len(rows))
	for i, row := range rows {
		sets := make([]string, len(setCols))
		args := make([]any, 0, len(setCols)+len(pkLeaves))
		pos := 1
		for j, c := range setCols {
			sets[j] = fmt.Sprintf("%s = %s", c.Name, a.dlct.Placeholder(pos))
			args = append(args, row.Field(c.Name))
			pos++
		}
		wheres := make([]string, len(pkLeaves))
		for j, c := range pkLeaves {
			v := row.Field(c.Name)
			if v == nil {
				return nil, ormerr.NewSchemaError("relation %q: primary key column %q is nil", a.rel.Name, c.Name)
			}
			wheres[j] = fmt.Sprintf("%s = %s", c.Name, a.dlct.Placeholder(pos))
			args = append(args, v)
			pos++
		}
		stmts[i] = Statement{
			SQL:  fmt.Sprintf("UPDATE %s SET %s WHERE %s", a.rel.Name, strings.Join(sets, ", "), strings.Join(wheres, " AND ")),
			Args: args,
		}
	}
	return stmts, nil
}

// Update runs one UPDATE per row, via the shared batch/per-row decision. A
// row that doesn't exist surfaces as a Concurrency error, same as any other
// row that fails to affect exactly one record.
func (a *Access[T, PT]) Update(ctx context.Context, rows []PT) error {
	if len(rows) == 0 {
		return nil
	}
	stmts, err := a.updateStatements(rows)
	if err != nil {
		return err
	}
	return a.runBatch(ctx, OpUpdate, stmts, len(rows))
}

// Delete runs one DELETE per row keyed by its primary key, via the shared
// batch/per-row decision.
func (a *Access[T, PT]) Delete(ctx context.Context, keys []PT) error {
	if len(keys) == 0 {
		return nil
	}
	pkLeaves := a.rel.PrimaryKey.Leaves()
	stmts := make([]Statement, len(keys))
	for i, key := range keys {
		wheres := make([]string, len(pkLeaves))
		args := make([]any, len(pkLeaves))
		for j, c := range pkLeaves {
			v := key.Field(c.Name)
			if v == nil {
				return ormerr.NewSchemaError("relation %q: primary key column %q is nil", a.rel.Name, c.Name)
			}
			wheres[j] = fmt.Sprintf("%s = %s", c.Name, a.dlct.Placeholder(j+1))
			args[j] = v
		}
		stmts[i] = Statement{
			SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s", a.rel.Name, strings.Join(wheres, " AND ")),
			Args: args,
		}
	}
	return a.runBatch(ctx, OpDelete, stmts, len(keys))
}

// Upsert follows attempt-update-then-insert: it first tries to
// update every row, then inserts exactly the rows whose update did not
// affect exactly one record, preserving their original relative order.
func (a *Access[T, PT]) Upsert(ctx context.Context, rows []PT) error {
	if len(rows) == 0 {
		return nil
	}
	stmts, err := a.updateStatements(rows)
	if err != nil {
		return err
	}

	var needInsert []PT
	if a.dlct.CanDetermineIndividualBatchUpdateCounts() {
		res, err := a.dlct.ExecuteBatch(ctx, a.conn, stmts)
		if err != nil {
			return a.dlct.ConvertError(OpUpsert, a.rel.Name, err)
		}
		for i, row := range rows {
			if res.Counts == nil || i >= len(res.Counts) || res.Counts[i] != 1 {
				needInsert = append(needInsert, row)
			}
		}
	} else {
		for i, st := range stmts {
			var result sql.Result
			if err := a.conn.Exec(ctx, st.SQL, st.Args, &result); err != nil {
				return a.dlct.ConvertError(OpUpsert, a.rel.Name, err)
			}
			n, err := result.RowsAffected()
			if err != nil || n != 1 {
				needInsert = append(needInsert, rows[i])
			}
		}
	}
	if len(needInsert) == 0 {
		return nil
	}
	return a.Insert(ctx, needInsert)
}

// runBatch implements the batch/per-row decision shared by Insert,
// Update, and Delete: when the dialect can determine a trustworthy total,
// one round trip suffices and a mismatch raises Concurrency (or, if the
// total exceeds want, a SchemaError — more rows matched than were
// submitted, meaning the primary key doesn't uniquely identify a row).
// Otherwise every statement runs individually and must affect exactly one
// row; the loop does not stop at the first mismatch, matching a
// per-statement JDBC batch's "process all, then report" semantics.
func (a *Access[T, PT]) runBatch(ctx context.Context, op Op, stmts []Statement, want int) error {
	if a.dlct.CanDetermineTotalBatchUpdateCount() {
		res, err := a.dlct.ExecuteBatch(ctx, a.conn, stmts)
		if err != nil {
			return a.dlct.ConvertError(op, a.rel.Name, err)
		}
		switch {
		case res.Total == int64(want):
			return nil
		case res.Total > int64(want):
			return ormerr.NewSchemaError("relation %q: %s affected %d rows, more than the %d submitted (primary key missing?)", a.rel.Name, op, res.Total, want)
		default:
			return ormerr.NewConcurrency(a.rel.Name, fmt.Sprintf("%s affected %d rows, expected %d", op, res.Total, want))
		}
	}

	allOK := true
	for _, st := range stmts {
		var result sql.Result
		if err := a.conn.Exec(ctx, st.SQL, st.Args, &result); err != nil {
			return a.dlct.ConvertError(op, a.rel.Name, err)
		}
		n, err := result.RowsAffected()
		if err != nil || n != 1 {
			allOK = false
		}
	}
	if !allOK {
		return ormerr.NewConcurrency(a.rel.Name, fmt.Sprintf("%s: not every row affected exactly one row", op))
	}
	return nil
}

// Get translates to a point SELECT WHERE pk_leaves = ?. Two matching
// rows is a Runtime error — a get must never silently return the first.
func (a *Access[T, PT]) Get(ctx context.Context, key PT) (PT, error) {
	pkLeaves := a.rel.PrimaryKey.Leaves()
	wheres := make([]string, len(pkLeaves))
	args := make([]any, len(pkLeaves))
	for i, c := range pkLeaves {
		v := key.Field(c.Name)
		if v == nil {
			return nil, ormerr.NewSchemaError("relation %q: primary key column %q is nil", a.rel.Name, c.Name)
		}
		wheres[i] = fmt.Sprintf("%s = %s", c.Name, a.dlct.Placeholder(i+1))
		args[i] = v
	}
	cols := a.leafColumns()
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", columnList(cols), a.rel.Name, strings.Join(wheres, " AND "))

	var rows dsql.Rows
	if err := a.conn.Query(ctx, query, args, &rows); err != nil {
		return nil, a.dlct.ConvertError(OpGet, a.rel.Name, err)
	}
	defer rows.Close()

	results, err := a.scanAll(cols, &rows)
	if err != nil {
		return nil, err
	}
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return nil, ormerr.NewRuntime("relation %q: get matched %d rows, expected at most 1 (multiple results)", a.rel.Name, len(results))
	}
}

// GetMany specializes on the key count: zero keys returns no rows,
// one key delegates to Get, and more than one builds a single
// WHERE pk IN (?, ?, ...) statement — which requires a single-column
// primary key.
func (a *Access[T, PT]) GetMany(ctx context.Context, keys []PT) ([]PT, error) {
	switch len(keys) {
	case 0:
		return nil, nil
	case 1:
		row, err := a.Get(ctx, keys[0])
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, nil
		}
		return []PT{row}, nil
	}

	pkLeaves := a.rel.PrimaryKey.Leaves()
	if len(pkLeaves) != 1 {
		return nil, ormerr.NewSchemaError("relation %q: get(iterable) requires a single-column primary key, has %d", a.rel.Name, len(pkLeaves))
	}
	pkCol := pkLeaves[0]
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		v := k.Field(pkCol.Name)
		if v == nil {
			return nil, ormerr.NewSchemaError("relation %q: primary key column %q is nil", a.rel.Name, pkCol.Name)
		}
		placeholders[i] = a.dlct.Placeholder(i + 1)
		args[i] = v
	}
	cols := a.leafColumns()
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s)", columnList(cols), a.rel.Name, pkCol.Name, strings.Join(placeholders, ", "))

	var rows dsql.Rows
	if err := a.conn.Query(ctx, query, args, &rows); err != nil {
		return nil, a.dlct.ConvertError(OpGet, a.rel.Name, err)
	}
	defer rows.Close()
	return a.scanAll(cols, &rows)
}

func (a *Access[T, PT]) scanAll(cols []schema.Column, rows *dsql.Rows) ([]PT, error) {
	var out []PT
	dest := make([]any, len(cols))
	vals := make([]any, len(cols))
	for i := range dest {
		dest[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, ormerr.NewStorageFailure(a.rel.Name, err)
		}
		obj := a.newT()
		for i, c := range cols {
			if err := obj.SetField(c.Name, vals[i]); err != nil {
				return nil, ormerr.NewSchemaError("relation %q: %v", a.rel.Name, err)
			}
		}
		out = append(out, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, ormerr.NewStorageFailure(a.rel.Name, err)
	}
	return out, nil
}

// NextSequence executes the dialect's NextSequenceSQL and scans the single
// returned value, the SQL-side counterpart to sequence.Allocator for
// callers using a SQL sequence/identity column instead of KvStore's
// atomicUpdate.
func NextSequence(ctx context.Context, execer dialect.ExecQuerier, dlct Dialect, name string) (int64, error) {
	var rows dsql.Rows
	if err := execer.Query(ctx, dlct.NextSequenceSQL(name), []any{}, &rows); err != nil {
		return 0, dlct.ConvertError(OpGet, name, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return 0, ormerr.NewRuntime("sqlstore: sequence %q returned no row", name)
	}
	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, ormerr.NewStorageFailure(name, err)
	}
	if err := rows.Err(); err != nil {
		return 0, ormerr.NewStorageFailure(name, err)
	}
	return id, nil
}
