package querylang

// Field is a typed column reference that builds comparisons and order terms
// without repeating the column name (or risking a typo in it) at every call
// site. A generated accessor package declares one per column:
//
//	var (
//		PersonName = querylang.StringField("name")
//		PersonAge  = querylang.Int64Field("age")
//	)
//
//	q := querylang.New("adultsByName",
//		PersonAge.GeParam("min"),
//	).OrderByClause(PersonName.Asc())
type Field[T any] string

// Name returns the column name.
func (f Field[T]) Name() string { return string(f) }

// Eq builds "column = literal".
func (f Field[T]) Eq(v T) Comparison { return Eq(string(f), Literal(v)) }

// Lt builds "column < literal".
func (f Field[T]) Lt(v T) Comparison { return Lt(string(f), Literal(v)) }

// Le builds "column <= literal".
func (f Field[T]) Le(v T) Comparison { return Le(string(f), Literal(v)) }

// Gt builds "column > literal".
func (f Field[T]) Gt(v T) Comparison { return Gt(string(f), Literal(v)) }

// Ge builds "column >= literal".
func (f Field[T]) Ge(v T) Comparison { return Ge(string(f), Literal(v)) }

// EqParam builds "column = ?name" against a runtime parameter.
func (f Field[T]) EqParam(name string) Comparison { return Eq(string(f), Placeholder(name)) }

// LtParam builds "column < ?name".
func (f Field[T]) LtParam(name string) Comparison { return Lt(string(f), Placeholder(name)) }

// LeParam builds "column <= ?name".
func (f Field[T]) LeParam(name string) Comparison { return Le(string(f), Placeholder(name)) }

// GtParam builds "column > ?name".
func (f Field[T]) GtParam(name string) Comparison { return Gt(string(f), Placeholder(name)) }

// GeParam builds "column >= ?name".
func (f Field[T]) GeParam(name string) Comparison { return Ge(string(f), Placeholder(name)) }

// Asc builds an ascending ORDER BY term over the column.
func (f Field[T]) Asc() OrderTerm { return Asc(string(f)) }

// Desc builds a descending ORDER BY term over the column.
func (f Field[T]) Desc() OrderTerm { return Desc(string(f)) }

// Per-kind aliases, one per schema.Kind family a query can compare on.
type (
	BoolField    = Field[bool]
	Int64Field   = Field[int64]
	Float64Field = Field[float64]
	StringField  = Field[string]
	BytesField   = Field[[]byte]
)
