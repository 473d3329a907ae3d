package recordcodec

// RawField is one tagged value read from a record without reference to any
// Go struct: the column id and wire kind from the tag, plus the payload in
// its least-interpreted form. DecodeRaw is what a generic inspector (a
// debug dump tool that only has a schema.Relation, not a compiled Go type)
// uses to walk a record it cannot Decode into a struct.
type RawField struct {
	ColumnID uint32
	Wire     WireKind
	// Uint holds the raw varint/fixed64/fixed32 bits for WireVarint,
	// WireFixed64, and WireFixed32 fields. Bytes holds the as-written
	// payload for WireLengthDelimited fields: still boxed for a scalar
	// string/byte column (pass through UnboxBytes), or a nested message's
	// own encoded body (pass to DecodeRaw again) for a composite column.
	Uint  uint64
	Bytes []byte
}

// UnboxBytes unwraps a WireLengthDelimited payload that DecodeRaw returned
// for a scalar string or byte-array column (see readBoxedBytes). Callers
// distinguish this case from a nested composite column using the
// schema.Column the field's id resolves to — DecodeRaw has no schema and so
// cannot unbox automatically.
func UnboxBytes(payload []byte) ([]byte, error) { return readBoxedBytes(payload) }

// DecodeRaw walks data and returns every tagged field it finds, in wire
// order, without consulting a struct's `col` tags. Decode skips a tag whose
// column id no struct field declares; DecodeRaw returns every tag it reads.
func DecodeRaw(data []byte) ([]RawField, error) {
	d := &decoder{buf: data}
	var out []RawField
	for !d.done() {
		id, wk, err := d.readTag()
		if err != nil {
			return nil, err
		}
		f := RawField{ColumnID: id, Wire: wk}
		switch wk {
		case WireVarint:
			f.Uint, err = d.readVarint()
		case WireFixed64:
			f.Uint, err = d.readFixed64()
		case WireFixed32:
			var v uint32
			v, err = d.readFixed32()
			f.Uint = uint64(v)
		case WireLengthDelimited:
			f.Bytes, err = d.readLengthDelimited()
		default:
			err = d.skip(wk)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
