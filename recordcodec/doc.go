// Package recordcodec implements the tagged, length-prefixed binary wire
// format used to encode entity values for storage.
//
// Every column is written as (tag, wire_value) where tag = (columnID << 3)
// | wireKind, mirroring the protobuf wire format: VARINT for bool, char,
// zig-zag signed integers, and enum ordinals; FIXED64/FIXED32 for
// timestamps and floating-point columns; LENGTH_DELIMITED for strings,
// byte arrays, and nested messages. A repeated (list or set) column is
// written as one tagged entry per element, each in its element's own wire
// kind; there is no packed form. Fields are emitted in
// ascending column-id order, fields absent from the stream leave their
// target slot at its zero value, and unknown tags are skipped using the
// wire kind to compute the skip length.
//
// Struct fields participate in the codec via a `col:"<id>"` tag:
//
//	type Person struct {
//		Name       string `col:"1"`
//		Age        int32  `col:"2"`
//		Registered bool   `col:"3"`
//	}
package recordcodec
