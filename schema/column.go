package schema

// Column constructors follow the field.Int("age") idiom: a builder
// function taking (id, name) and returning a ready Column value. There is
// no fluent validator chain here; the column model has no validation
// concept beyond kind, nullability, and default.

func Bool(id uint32, name string) Column      { return Column{ID: id, Name: name, Kind: KindBool} }
func Int8(id uint32, name string) Column      { return Column{ID: id, Name: name, Kind: KindInt8} }
func Int16(id uint32, name string) Column     { return Column{ID: id, Name: name, Kind: KindInt16} }
func Int32(id uint32, name string) Column     { return Column{ID: id, Name: name, Kind: KindInt32} }
func Int64(id uint32, name string) Column     { return Column{ID: id, Name: name, Kind: KindInt64} }
func Char(id uint32, name string) Column      { return Column{ID: id, Name: name, Kind: KindChar} }
func Float32(id uint32, name string) Column   { return Column{ID: id, Name: name, Kind: KindFloat32} }
func Float64(id uint32, name string) Column   { return Column{ID: id, Name: name, Kind: KindFloat64} }
func String(id uint32, name string) Column    { return Column{ID: id, Name: name, Kind: KindString} }
func Bytes(id uint32, name string) Column     { return Column{ID: id, Name: name, Kind: KindBytes} }
func Timestamp(id uint32, name string) Column { return Column{ID: id, Name: name, Kind: KindTimestamp} }
func Enum(id uint32, name string) Column      { return Column{ID: id, Name: name, Kind: KindEnum} }

// Nested builds a composite column out of leaf (or further-nested) columns.
func Nested(id uint32, name string, leaves ...Column) Column {
	return Column{ID: id, Name: name, Nested: leaves}
}

// MarkNullable marks c nullable and returns it for chaining.
func (c Column) MarkNullable() Column {
	c.Nullable = true
	return c
}

// WithDefault attaches a default value and returns c for chaining.
func (c Column) WithDefault(v any) Column {
	c.Default = v
	return c
}
