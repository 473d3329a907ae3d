package recordcodec

import "fmt"

// WireKind identifies how a tagged field's value is laid out on the wire.
type WireKind uint8

const (
	// WireVarint covers bool, char (as u32), zig-zag signed integers, and
	// enum ordinals (as a plain unsigned varint).
	WireVarint WireKind = 0
	// WireFixed64 covers timestamps (u64 milliseconds since epoch) and
	// float64 columns (raw IEEE-754 bits, little-endian).
	WireFixed64 WireKind = 1
	// WireLengthDelimited covers strings, byte arrays, and nested messages:
	// a varint length followed by that many bytes.
	WireLengthDelimited WireKind = 2
	// WireFixed32 covers float32 columns (raw IEEE-754 bits, little-endian).
	WireFixed32 WireKind = 5
)

func (k WireKind) String() string {
	switch k {
	case WireVarint:
		return "varint"
	case WireFixed64:
		return "fixed64"
	case WireLengthDelimited:
		return "length-delimited"
	case WireFixed32:
		return "fixed32"
	default:
		return fmt.Sprintf("wire(%d)", uint8(k))
	}
}

// MakeTag combines a column id and wire kind into the tag written ahead of
// every field value: tag = (columnID << 3) | wireKind.
func MakeTag(columnID uint32, kind WireKind) uint64 {
	return uint64(columnID)<<3 | uint64(kind)
}

// SplitTag recovers the column id and wire kind from a decoded tag.
func SplitTag(tag uint64) (columnID uint32, kind WireKind) {
	return uint32(tag >> 3), WireKind(tag & 0x7)
}

// appendVarint appends the standard LEB128 (protobuf-style) varint encoding
// of v: this is unrelated to keyenc's order-preserving scheme — RecordCodec
// only needs to store and recover values, never to compare keys.
func appendVarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

func sizeVarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}

// zigzagEncode maps a signed 64-bit value onto an unsigned space so that
// small-magnitude negatives encode compactly, same scheme protobuf uses for
// sint32/sint64.
func zigzagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
