package recordcodec_test

import (
	"testing"
	"time"

	"github.com/syssam/ormcore/recordcodec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name       string `col:"1"`
	Age        int32  `col:"2"`
	Registered bool   `col:"3"`
}

// TestEncodeSeedVector pins the wire format byte for byte: a Person with
// Name="testing", Age=75, Registered=true encodes to a fixed 16-byte
// sequence.
func TestEncodeSeedVector(t *testing.T) {
	t.Parallel()

	p := person{Name: "testing", Age: 75, Registered: true}
	got, err := recordcodec.Encode(&p)
	require.NoError(t, err)

	want := []byte{
		0x0a, 0x09, 0x0a, 0x07, 't', 'e', 's', 't', 'i', 'n', 'g',
		0x10, 0x96, 0x01,
		0x18, 0x01,
	}
	assert.Equal(t, want, got)
	assert.Len(t, got, 16)

	size, err := recordcodec.Size(&p)
	require.NoError(t, err)
	assert.Equal(t, 16, size)
}

func TestDecodeSeedVector(t *testing.T) {
	t.Parallel()

	data := []byte{
		0x0a, 0x09, 0x0a, 0x07, 't', 'e', 's', 't', 'i', 'n', 'g',
		0x10, 0x96, 0x01,
		0x18, 0x01,
	}
	var p person
	require.NoError(t, recordcodec.Decode(data, &p))
	assert.Equal(t, person{Name: "testing", Age: 75, Registered: true}, p)
}

func TestRoundTrip_ScalarKinds(t *testing.T) {
	t.Parallel()

	type wide struct {
		S  string    `col:"1"`
		B  []byte    `col:"2"`
		I  int64     `col:"3"`
		U  uint32    `col:"4"`
		F4 float32   `col:"5"`
		F8 float64   `col:"6"`
		Bl bool      `col:"7"`
		T  time.Time `col:"8"`
	}
	in := wide{
		S:  "hello",
		B:  []byte{1, 2, 3},
		I:  -12345,
		U:  99,
		F4: 1.5,
		F8: -2.25,
		Bl: true,
		T:  time.UnixMilli(1_700_000_000_000).UTC(),
	}
	data, err := recordcodec.Encode(&in)
	require.NoError(t, err)

	var out wide
	require.NoError(t, recordcodec.Decode(data, &out))
	assert.Equal(t, in, out)
}

func TestRoundTrip_NestedAndRepeated(t *testing.T) {
	t.Parallel()

	type addr struct {
		City string `col:"1"`
		Zip  string `col:"2"`
	}
	type withContainers struct {
		Home addr            `col:"1"`
		Tags []string        `col:"2"`
		Set  map[int32]bool  `col:"3"`
	}
	in := withContainers{
		Home: addr{City: "Springfield", Zip: "00000"},
		Tags: []string{"a", "b", "c"},
		Set:  map[int32]bool{1: true, 2: true},
	}
	data, err := recordcodec.Encode(&in)
	require.NoError(t, err)

	var out withContainers
	require.NoError(t, recordcodec.Decode(data, &out))
	assert.Equal(t, in, out)
}

func TestDecode_SkipsUnknownTags(t *testing.T) {
	t.Parallel()

	type full struct {
		A string `col:"1"`
		B int32  `col:"2"`
		C bool   `col:"3"`
	}
	type narrow struct {
		A string `col:"1"`
		C bool   `col:"3"`
	}
	data, err := recordcodec.Encode(&full{A: "x", B: 7, C: true})
	require.NoError(t, err)

	var out narrow
	require.NoError(t, recordcodec.Decode(data, &out))
	assert.Equal(t, narrow{A: "x", C: true}, out)
}

func TestEncode_AbsentPointerFieldOmitted(t *testing.T) {
	t.Parallel()

	type nullable struct {
		Name string `col:"1"`
		Age  *int32 `col:"2"`
	}
	data, err := recordcodec.Encode(&nullable{Name: "noage"})
	require.NoError(t, err)

	var out nullable
	require.NoError(t, recordcodec.Decode(data, &out))
	assert.Nil(t, out.Age)
	assert.Equal(t, "noage", out.Name)

	age := int32(30)
	data2, err := recordcodec.Encode(&nullable{Name: "hasage", Age: &age})
	require.NoError(t, err)
	var out2 nullable
	require.NoError(t, recordcodec.Decode(data2, &out2))
	require.NotNil(t, out2.Age)
	assert.Equal(t, int32(30), *out2.Age)
}

func TestFieldsEncodeInAscendingColumnIDOrder(t *testing.T) {
	t.Parallel()

	type outOfOrder struct {
		C bool   `col:"3"`
		A string `col:"1"`
		B int32  `col:"2"`
	}
	data, err := recordcodec.Encode(&outOfOrder{A: "z", B: 1, C: false})
	require.NoError(t, err)

	// first tag byte should be for column 1 (tag = 1<<3|2 = 0x0a), not column 3.
	require.NotEmpty(t, data)
	assert.Equal(t, byte(0x0a), data[0])
}

func TestEncodeWithSize_RoundTrip(t *testing.T) {
	t.Parallel()

	p1 := person{Name: "first", Age: 1, Registered: true}
	p2 := person{Name: "second", Age: 2, Registered: false}

	buf, err := recordcodec.EncodeWithSize(&p1)
	require.NoError(t, err)
	buf2, err := recordcodec.EncodeWithSize(&p2)
	require.NoError(t, err)
	buf = append(buf, buf2...)

	var out1, out2 person
	n, err := recordcodec.DecodeWithSize(buf, &out1)
	require.NoError(t, err)
	_, err = recordcodec.DecodeWithSize(buf[n:], &out2)
	require.NoError(t, err)

	assert.Equal(t, p1, out1)
	assert.Equal(t, p2, out2)
}

func TestDecode_RejectsNonPointerTarget(t *testing.T) {
	t.Parallel()

	var p person
	err := recordcodec.Decode([]byte{}, p)
	assert.Error(t, err)
}
