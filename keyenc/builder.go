package keyenc

// Delimiter is the literal byte sequence placed between components of a
// composite key. Escaping (see Escape) guarantees it never occurs inside an
// encoded string or byte-sequence component.
var delimiterBytes = []byte{0x00, 0x01}

// Infinity is the sentinel appended to form an open-ended upper bound.
var infinityBytes = []byte{0xFF, 0xFF}

// NUL is the sentinel appended to form a half-open upper bound for a point
// lookup, or to step strictly past a previously observed key.
var nulByte = byte(0x00)

// Builder accumulates an append-only, order-preserving byte buffer.
//
// For any two values a, b encoded with the same sequence of calls against
// two Builders, Builder.Bytes() of the first sorts lexicographically before
// that of the second iff a precedes b under ordinary tuple comparison. This
// is the single invariant every method below must uphold; see the package
// doc comment for why that matters.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{buf: []byte{}}
}

// NewBuilderWithCap returns an empty Builder whose backing buffer is
// pre-sized to avoid reallocation for a key of roughly n bytes.
func NewBuilderWithCap(n int) *Builder {
	return &Builder{buf: make([]byte, 0, n)}
}

// Bytes returns the accumulated buffer. The returned slice aliases the
// Builder's internal storage and must not be mutated by the caller.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Reset empties the buffer for reuse.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// Raw appends p verbatim, with no escaping. Used internally to splice
// already-encoded key prefixes (e.g. a relation name that was encoded once
// and is reused as a prefix for many keys).
func (b *Builder) Raw(p []byte) *Builder {
	b.buf = append(b.buf, p...)
	return b
}

// Delimiter appends the literal component delimiter 0x00 0x01.
func (b *Builder) Delimiter() *Builder {
	b.buf = append(b.buf, delimiterBytes...)
	return b
}

// NUL appends the literal NUL sentinel 0x00, used to build a half-open
// upper bound that is exclusive of everything with the current prefix.
func (b *Builder) NUL() *Builder {
	b.buf = append(b.buf, nulByte)
	return b
}

// Infinity appends the literal positive-infinity sentinel 0xFF 0xFF, used
// to build an upper bound with no ceiling.
func (b *Builder) Infinity() *Builder {
	b.buf = append(b.buf, infinityBytes...)
	return b
}

// Escape appends s with the two-byte escaping rule that keeps 0x0001
// (Delimiter) and 0xFFFF (Infinity) from ever appearing inside an encoded
// string or byte-sequence component: every 0x00 becomes 0x00 0xFF, every
// 0xFF becomes 0xFF 0x00.
func Escape(dst, s []byte) []byte {
	for _, c := range s {
		switch c {
		case 0x00:
			dst = append(dst, 0x00, 0xFF)
		case 0xFF:
			dst = append(dst, 0xFF, 0x00)
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

// AddBytes appends the escaped bytes of p.
func (b *Builder) AddBytes(p []byte) *Builder {
	b.buf = Escape(b.buf, p)
	return b
}

// AddString appends the escaped UTF-8 bytes of s.
func (b *Builder) AddString(s string) *Builder {
	b.buf = Escape(b.buf, []byte(s))
	return b
}

// DescBytes appends the descending sibling of AddBytes: the ones-complement
// of the escaped byte sequence, used for a string or byte-array column
// marked DESC in an ORDER BY clause.
func (b *Builder) DescBytes(p []byte) *Builder {
	tmp := Escape(nil, p)
	b.buf = onesComplement(b.buf, tmp)
	return b
}

// DescString appends the descending sibling of AddString.
func (b *Builder) DescString(s string) *Builder {
	return b.DescBytes([]byte(s))
}

// AddBool appends b as the unsigned values 0 or 1.
func (b *Builder) AddBool(v bool) *Builder {
	if v {
		return b.AddUint(1)
	}
	return b.AddUint(0)
}

// bitLen returns the number of bytes needed to represent v, i.e.
// ceil(bit length / 8), or 0 for v == 0.
func bitLen(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 8
	}
	return n
}

// appendUint writes the self-describing unsigned encoding of v into dst:
// a single length byte n = ceil(bitlen(v)/8) (0 iff v == 0), followed by
// the n big-endian bytes of v. Because n is itself part of the encoded
// stream and monotonically tracks magnitude, byte-wise comparison of two
// such encodings agrees with numeric comparison of the values.
func appendUint(dst []byte, v uint64) []byte {
	n := bitLen(v)
	dst = append(dst, byte(n))
	for i := n - 1; i >= 0; i-- {
		dst = append(dst, byte(v>>(uint(i)*8)))
	}
	return dst
}

// AddUint appends the order-preserving unsigned encoding of v.
//
//	0   -> {0x00}
//	1   -> {0x01, 0x01}
//	256 -> {0x02, 0x01, 0x00}
func (b *Builder) AddUint(v uint64) *Builder {
	b.buf = appendUint(b.buf, v)
	return b
}

// onesComplement appends the bitwise complement of every byte in src.
func onesComplement(dst, src []byte) []byte {
	for _, c := range src {
		dst = append(dst, ^c)
	}
	return dst
}

// DescUint appends the descending sibling of AddUint: the ones-complement
// of the same byte sequence, so that lexicographic order of the result is
// the reverse of numeric order. Used to encode a column marked DESC in an
// ORDER BY clause, including a WHERE bound on such a column.
func (b *Builder) DescUint(v uint64) *Builder {
	tmp := appendUint(nil, v)
	b.buf = onesComplement(b.buf, tmp)
	return b
}

// AddInt64 appends the encoding of a signed 64-bit value: identical to the
// unsigned scheme. The scheme has no room for a value that sorts below the
// single 0x00 byte zero encodes to, so v must be non-negative; a negative
// input mis-sorts, and typed callers (querycompiler) reject it before
// appending.
func (b *Builder) AddInt64(v int64) *Builder {
	return b.AddUint(uint64(v))
}

// DescInt64 appends the descending sibling of AddInt64: the ones-complement
// of the same bytes. v must be non-negative, as with AddInt64.
func (b *Builder) DescInt64(v int64) *Builder {
	return b.DescUint(uint64(v))
}

// AddFloat64 appends an order-preserving encoding of a double by mapping it
// onto the unsigned space first: negatives have every bit flipped and
// non-negatives get the sign bit set, which linearizes IEEE-754's
// sign-magnitude layout into a single ascending uint64 range.
func (b *Builder) AddFloat64(f float64) *Builder {
	return b.AddUint(orderedFloatBits(f))
}

// DescFloat64 appends the descending sibling of AddFloat64.
func (b *Builder) DescFloat64(f float64) *Builder {
	return b.DescUint(orderedFloatBits(f))
}
