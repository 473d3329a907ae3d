package querycompiler

// Record is the minimal capability IndexFunction needs from an application
// object: reading a named column's current value. A nil return means the
// column is null or the object doesn't carry it.
type Record interface {
	Field(name string) any
}

// MapRecord adapts a plain map to Record, convenient for tests and for
// callers that haven't generated a concrete accessor type.
type MapRecord map[string]any

func (m MapRecord) Field(name string) any { return m[name] }
