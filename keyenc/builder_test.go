package keyenc_test

import (
	"bytes"
	"math"
	"sort"
	"testing"

	"github.com/syssam/ormcore/keyenc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAddUintVectors pins the unsigned encoding byte for byte.
func TestAddUintVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    uint64
		want []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one", 1, []byte{0x01, 0x01}},
		{"two_fifty_six", 256, []byte{0x02, 0x01, 0x00}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := keyenc.NewBuilder()
			b.AddUint(tt.v)
			assert.Equal(t, tt.want, b.Bytes())
		})
	}
}

// TestEscapeVectors pins the string-escaping rule byte for byte.
func TestEscapeVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"empty", []byte(""), []byte{}},
		{"nul", []byte{0x00}, []byte{0x00, 0xFF}},
		{"ff", []byte{0xFF}, []byte{0xFF, 0x00}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := keyenc.NewBuilder()
			b.AddBytes(tt.in)
			assert.Equal(t, tt.want, b.Bytes())
		})
	}
}

func TestDelimiterAndInfinity(t *testing.T) {
	t.Parallel()

	b := keyenc.NewBuilder()
	b.Delimiter()
	assert.Equal(t, []byte{0x00, 0x01}, b.Bytes())

	b2 := keyenc.NewBuilder()
	b2.Infinity()
	assert.Equal(t, []byte{0xFF, 0xFF}, b2.Bytes())

	b3 := keyenc.NewBuilder()
	b3.NUL()
	assert.Equal(t, []byte{0x00}, b3.Bytes())
}

// TestIndexEncodingVector checks the WHERE name=? AND age=? index-key
// vector: (name="hm", age=42) -> "hm" 00 01 01 2A.
func TestIndexEncodingVector(t *testing.T) {
	t.Parallel()

	b := keyenc.NewBuilder()
	b.AddString("hm")
	b.Delimiter()
	b.AddUint(42)

	want := []byte{'h', 'm', 0x00, 0x01, 0x01, 0x2A}
	assert.Equal(t, want, b.Bytes())
}

// TestKeyOrderPreservation verifies property 1: for scalar tuples of the
// same schema, encode(a) <_lex encode(b) iff a <_tuple b.
func TestKeyOrderPreservation_Uint(t *testing.T) {
	t.Parallel()

	values := []uint64{0, 1, 2, 255, 256, 257, 65535, 65536, 1 << 40, math.MaxUint64}
	encoded := make([][]byte, len(values))
	for i, v := range values {
		b := keyenc.NewBuilder()
		b.AddUint(v)
		encoded[i] = b.Bytes()
	}
	assertLexOrderMatchesIndexOrder(t, encoded)
}

// TestKeyOrderPreservation_Int64 covers the signed appender over its
// supported (non-negative) domain; positive signed input shares the
// unsigned encoding exactly, which is what gives the "age 42 -> 01 2A"
// index vector its two-byte form.
func TestKeyOrderPreservation_Int64(t *testing.T) {
	t.Parallel()

	values := []int64{0, 1, 42, 255, 256, 257, 65536, 1 << 40, math.MaxInt64}
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	require.Equal(t, values, sorted, "fixture must already be in ascending order")

	encoded := make([][]byte, len(values))
	for i, v := range values {
		b := keyenc.NewBuilder()
		b.AddInt64(v)
		encoded[i] = b.Bytes()
	}
	assertLexOrderMatchesIndexOrder(t, encoded)

	b := keyenc.NewBuilder()
	b.AddInt64(42)
	assert.Equal(t, []byte{0x01, 0x2A}, b.Bytes())
}

func TestKeyOrderPreservation_Float64(t *testing.T) {
	t.Parallel()

	values := []float64{-1e300, -1.5, -1, -0.0001, 0, 0.0001, 1, 1.5, 1e300}
	encoded := make([][]byte, len(values))
	for i, v := range values {
		b := keyenc.NewBuilder()
		b.AddFloat64(v)
		encoded[i] = b.Bytes()
	}
	assertLexOrderMatchesIndexOrder(t, encoded)
}

func TestDescUint_InvertsOrder(t *testing.T) {
	t.Parallel()

	values := []uint64{0, 1, 256, 1 << 20}
	encoded := make([][]byte, len(values))
	for i, v := range values {
		b := keyenc.NewBuilder()
		b.DescUint(v)
		encoded[i] = b.Bytes()
	}
	// Ascending index order but descending values means lexicographic order
	// must be *descending* over values, i.e. encoded[i] > encoded[i+1].
	for i := 0; i < len(encoded)-1; i++ {
		assert.Equal(t, 1, bytes.Compare(encoded[i], encoded[i+1]), "DescUint(%d) should sort after DescUint(%d)", values[i], values[i+1])
	}
}

func TestDescInt64_InvertsOrder(t *testing.T) {
	t.Parallel()

	values := []int64{0, 1, 100, 256, 1 << 20}
	encoded := make([][]byte, len(values))
	for i, v := range values {
		b := keyenc.NewBuilder()
		b.DescInt64(v)
		encoded[i] = b.Bytes()
	}
	for i := 0; i < len(encoded)-1; i++ {
		assert.Equal(t, 1, bytes.Compare(encoded[i], encoded[i+1]), "DescInt64(%d) should sort after DescInt64(%d)", values[i], values[i+1])
	}
}

// TestEscapeRoundTrip_NoAmbiguity checks property 2: no escaped segment
// contains a bare delimiter or infinity sequence, for a range of byte
// strings that include the bytes special to the scheme.
func TestEscapeRoundTrip_NoAmbiguity(t *testing.T) {
	t.Parallel()

	inputs := [][]byte{
		{},
		{0x00},
		{0xFF},
		{0x00, 0x01},
		{0xFF, 0xFF},
		{0x00, 0xFF, 0x00, 0xFF},
		[]byte("hello world"),
		{0x01, 0x00, 0xFF, 0x02, 0x00, 0x00, 0xFF, 0xFF},
	}
	for _, in := range inputs {
		escaped := keyenc.Escape(nil, in)
		assert.False(t, bytes.Contains(escaped, []byte{0x00, 0x01}), "escaped %x must not contain delimiter", in)
		assert.False(t, bytes.Contains(escaped, []byte{0xFF, 0xFF}), "escaped %x must not contain infinity", in)
	}
}

func TestDescString_InvertsOrder(t *testing.T) {
	t.Parallel()

	values := []string{"a", "b", "hm", "z"}
	encoded := make([][]byte, len(values))
	for i, v := range values {
		b := keyenc.NewBuilder()
		b.DescString(v)
		encoded[i] = b.Bytes()
	}
	for i := 0; i < len(encoded)-1; i++ {
		assert.Equal(t, 1, bytes.Compare(encoded[i], encoded[i+1]), "DescString(%q) should sort after DescString(%q)", values[i], values[i+1])
	}
}

func assertLexOrderMatchesIndexOrder(t *testing.T, encoded [][]byte) {
	t.Helper()
	for i := 0; i < len(encoded)-1; i++ {
		assert.Equal(t, -1, bytes.Compare(encoded[i], encoded[i+1]),
			"encoded[%d]=%x should sort before encoded[%d]=%x", i, encoded[i], i+1, encoded[i+1])
	}
}
