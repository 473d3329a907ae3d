package querylang

import (
	"fmt"
	"strings"
)

// Op is a WHERE-clause comparison operator.
type Op uint8

const (
	EQ Op = iota
	LT
	LE
	GT
	GE
)

func (o Op) String() string {
	switch o {
	case EQ:
		return "="
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// IsInequality reports whether o is one of {<, <=, >, >=}; at most one of
// these may appear in a single WHERE chain, and nothing may follow
// it.
func (o Op) IsInequality() bool { return o != EQ }

// Value is the right-hand side of a Comparison: either a named runtime
// placeholder or a literal constant bound at compile time.
type Value struct {
	Param   string
	literal any
	isLit   bool
}

// Placeholder returns a Value bound to a named runtime parameter.
func Placeholder(name string) Value { return Value{Param: name} }

// Literal returns a Value fixed at compile time.
func Literal(v any) Value { return Value{literal: v, isLit: true} }

// IsParam reports whether v is a runtime placeholder rather than a literal.
func (v Value) IsParam() bool { return !v.isLit }

// LiteralValue returns the literal constant and true, or (nil, false) if v
// is a placeholder.
func (v Value) LiteralValue() (any, bool) { return v.literal, v.isLit }

func (v Value) String() string {
	if v.isLit {
		return fmt.Sprintf("%v", v.literal)
	}
	return "?" + v.Param
}

// Comparison is one LHS-column, operator, RHS-value clause of a WHERE chain.
type Comparison struct {
	Column string
	Op     Op
	Value  Value
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Column, c.Op, c.Value)
}

// Eq, Lt, Le, Gt, Ge build one WHERE comparison. Column is a leaf or nested
// column reference; value is usually built with Placeholder or Literal.
func Eq(column string, v Value) Comparison { return Comparison{Column: column, Op: EQ, Value: v} }
func Lt(column string, v Value) Comparison { return Comparison{Column: column, Op: LT, Value: v} }
func Le(column string, v Value) Comparison { return Comparison{Column: column, Op: LE, Value: v} }
func Gt(column string, v Value) Comparison { return Comparison{Column: column, Op: GT, Value: v} }
func Ge(column string, v Value) Comparison { return Comparison{Column: column, Op: GE, Value: v} }

// OrderTerm is one column of an ORDER BY clause.
type OrderTerm struct {
	Column string
	Desc   bool
}

// Asc and Desc build one ORDER BY term.
func Asc(column string) OrderTerm  { return OrderTerm{Column: column} }
func Desc(column string) OrderTerm { return OrderTerm{Column: column, Desc: true} }

func (t OrderTerm) String() string {
	if t.Desc {
		return t.Column + " DESC"
	}
	return t.Column + " ASC"
}

// Limit is the optional LIMIT clause: either a fixed value known at compile
// time or a named runtime placeholder (LIMIT ?).
type Limit struct {
	Param  string
	Static int
	isLit  bool
}

// LimitValue returns a static LIMIT n.
func LimitValue(n int) Limit { return Limit{Static: n, isLit: true} }

// LimitParam returns a LIMIT ? bound to a named runtime parameter.
func LimitParam(name string) Limit { return Limit{Param: name} }

func (l Limit) IsParam() bool { return !l.isLit }

// Query is a parsed WHERE/ORDER BY/LIMIT query tree, the input to
// QueryCompiler.Compile.
type Query struct {
	Name    string
	Where   []Comparison
	OrderBy []OrderTerm
	Limit   *Limit
}

// New builds a Query named name with the given AND-joined WHERE chain.
// Comparisons are evaluated in the order given; that order is also the
// first-appearance order the compiler uses to build the index's column
// list.
func New(name string, where ...Comparison) *Query {
	return &Query{Name: name, Where: where}
}

// OrderByClause appends ORDER BY terms and returns q for chaining.
func (q *Query) OrderByClause(terms ...OrderTerm) *Query {
	q.OrderBy = append(q.OrderBy, terms...)
	return q
}

// WithLimit attaches a LIMIT clause and returns q for chaining.
func (q *Query) WithLimit(l Limit) *Query {
	q.Limit = &l
	return q
}

func (q *Query) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: WHERE ", q.Name)
	parts := make([]string, len(q.Where))
	for i, c := range q.Where {
		parts[i] = c.String()
	}
	sb.WriteString(strings.Join(parts, " AND "))
	if len(q.OrderBy) > 0 {
		obs := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			obs[i] = o.String()
		}
		fmt.Fprintf(&sb, " ORDER BY %s", strings.Join(obs, ", "))
	}
	if q.Limit != nil {
		if q.Limit.IsParam() {
			fmt.Fprintf(&sb, " LIMIT ?%s", q.Limit.Param)
		} else {
			fmt.Fprintf(&sb, " LIMIT %d", q.Limit.Static)
		}
	}
	return sb.String()
}
