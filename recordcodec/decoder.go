package recordcodec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when the input ends in the middle of a field.
var ErrTruncated = errors.New("recordcodec: truncated input")

// decoder is a cursor over an encoded message's bytes.
type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) done() bool { return d.pos >= len(d.buf) }

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, ErrTruncated
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readVarint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, fmt.Errorf("recordcodec: varint overflow")
		}
	}
}

func (d *decoder) readFixed64() (uint64, error) {
	if d.pos+8 > len(d.buf) {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos : d.pos+8])
	d.pos += 8
	return v, nil
}

func (d *decoder) readFixed32() (uint32, error) {
	if d.pos+4 > len(d.buf) {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos : d.pos+4])
	d.pos += 4
	return v, nil
}

// readLengthDelimited reads a varint length followed by that many raw bytes
// and returns the payload (aliasing the decoder's buffer).
func (d *decoder) readLengthDelimited() ([]byte, error) {
	n, err := d.readVarint()
	if err != nil {
		return nil, err
	}
	if d.pos+int(n) > len(d.buf) {
		return nil, ErrTruncated
	}
	b := d.buf[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return b, nil
}

// readTag reads a field tag and splits it into column id and wire kind.
func (d *decoder) readTag() (columnID uint32, kind WireKind, err error) {
	tag, err := d.readVarint()
	if err != nil {
		return 0, 0, err
	}
	id, k := SplitTag(tag)
	return id, k, nil
}

// skip discards the value of a field of the given wire kind, without
// interpreting it. Used for unknown tags encountered during decode.
func (d *decoder) skip(kind WireKind) error {
	switch kind {
	case WireVarint:
		_, err := d.readVarint()
		return err
	case WireFixed64:
		_, err := d.readFixed64()
		return err
	case WireFixed32:
		_, err := d.readFixed32()
		return err
	case WireLengthDelimited:
		_, err := d.readLengthDelimited()
		return err
	default:
		return fmt.Errorf("recordcodec: cannot skip unknown wire kind %d", kind)
	}
}

// readBoxedBytes reads a LENGTH_DELIMITED field whose payload is itself a
// single-field envelope {1: raw bytes} — the representation RecordCodec
// uses for scalar string and byte-array columns (see doc.go). Returns the
// raw payload.
func readBoxedBytes(payload []byte) ([]byte, error) {
	inner := &decoder{buf: payload}
	if inner.done() {
		return nil, nil
	}
	id, kind, err := inner.readTag()
	if err != nil {
		return nil, err
	}
	if id != 1 || kind != WireLengthDelimited {
		return nil, fmt.Errorf("recordcodec: malformed boxed scalar (tag id=%d kind=%s)", id, kind)
	}
	return inner.readLengthDelimited()
}

func appendBoxedBytes(dst []byte, raw []byte) []byte {
	dst = appendVarint(dst, MakeTag(1, WireLengthDelimited))
	dst = appendVarint(dst, uint64(len(raw)))
	dst = append(dst, raw...)
	return dst
}

func sizeBoxedBytes(raw []byte) int {
	return sizeVarint(MakeTag(1, WireLengthDelimited)) + sizeVarint(uint64(len(raw))) + len(raw)
}
