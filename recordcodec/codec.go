package recordcodec

import (
	"fmt"
	"reflect"
	"time"
)

// Encode serializes v, which must be a struct or a pointer to one, into the
// tagged wire format. Fields are written in ascending column-id order.
func Encode(v any) ([]byte, error) {
	rv, err := structValue(v)
	if err != nil {
		return nil, err
	}
	si, err := structInfoFor(rv.Type())
	if err != nil {
		return nil, err
	}
	var dst []byte
	for _, f := range si.fields {
		fv := rv.Field(f.index)
		if f.ptr {
			if fv.IsNil() {
				continue // absent column
			}
			fv = fv.Elem()
		}
		var err error
		dst, err = appendField(dst, f, fv)
		if err != nil {
			return nil, fmt.Errorf("recordcodec: field %s: %w", f.name, err)
		}
	}
	return dst, nil
}

// Size returns len(Encode(v)). It encodes v to measure it, so it costs the
// same as Encode.
func Size(v any) (int, error) {
	b, err := Encode(v)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// EncodeWithSize prefixes the encoded message with its own varint length,
// so that several records can be concatenated in one buffer and read back
// one at a time with DecodeWithSize.
func EncodeWithSize(v any) ([]byte, error) {
	body, err := Encode(v)
	if err != nil {
		return nil, err
	}
	dst := appendVarint(make([]byte, 0, sizeVarint(uint64(len(body)))+len(body)), uint64(len(body)))
	return append(dst, body...), nil
}

// Decode parses data into v, which must be a non-nil pointer to a struct.
// Unknown tags are skipped; fields absent from data keep their Go zero
// value.
func Decode(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("recordcodec: Decode target must be a non-nil pointer, got %T", v)
	}
	return decodeInto(data, rv.Elem())
}

// DecodeWithSize reads one varint-length-prefixed message from the front of
// data, decodes it into v, and returns the number of bytes consumed
// (length prefix plus body).
func DecodeWithSize(data []byte, v any) (int, error) {
	d := &decoder{buf: data}
	n, err := d.readVarint()
	if err != nil {
		return 0, err
	}
	if d.pos+int(n) > len(data) {
		return 0, ErrTruncated
	}
	body := data[d.pos : d.pos+int(n)]
	if err := Decode(body, v); err != nil {
		return 0, err
	}
	return d.pos + int(n), nil
}

func structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("recordcodec: Encode target is a nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("recordcodec: Encode target must be a struct, got %T", v)
	}
	return rv, nil
}

func decodeInto(data []byte, rv reflect.Value) error {
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("recordcodec: Decode target must be a struct, got %s", rv.Type())
	}
	si, err := structInfoFor(rv.Type())
	if err != nil {
		return err
	}
	byID := make(map[uint32]*fieldInfo, len(si.fields))
	for i := range si.fields {
		byID[si.fields[i].id] = &si.fields[i]
	}

	d := &decoder{buf: data}
	for !d.done() {
		id, wk, err := d.readTag()
		if err != nil {
			return err
		}
		f, known := byID[id]
		if !known {
			if err := d.skip(wk); err != nil {
				return err
			}
			continue
		}
		if err := readField(d, wk, rv.Field(f.index), *f); err != nil {
			return fmt.Errorf("recordcodec: field %s: %w", f.name, err)
		}
	}
	return nil
}

// appendField writes one tagged field (or, for list/set kinds, one tagged
// entry per element) for fv, whose Go kind matches f.kind (f.elemKind for
// containers).
func appendField(dst []byte, f fieldInfo, fv reflect.Value) ([]byte, error) {
	switch f.kind {
	case kList:
		for i := 0; i < fv.Len(); i++ {
			var err error
			dst, err = appendScalar(dst, f.id, f.elemKind, fv.Index(i))
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	case kSet:
		iter := fv.MapRange()
		for iter.Next() {
			var err error
			dst, err = appendScalar(dst, f.id, f.elemKind, iter.Key())
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	default:
		return appendScalar(dst, f.id, f.kind, fv)
	}
}

func appendScalar(dst []byte, id uint32, k kind, fv reflect.Value) ([]byte, error) {
	switch k {
	case kBool:
		v := uint64(0)
		if fv.Bool() {
			v = 1
		}
		dst = appendVarint(dst, MakeTag(id, WireVarint))
		return appendVarint(dst, v), nil
	case kInt:
		dst = appendVarint(dst, MakeTag(id, WireVarint))
		return appendVarint(dst, zigzagEncode(fv.Int())), nil
	case kUint:
		dst = appendVarint(dst, MakeTag(id, WireVarint))
		return appendVarint(dst, asUint64(fv)), nil
	case kFloat32:
		dst = appendVarint(dst, MakeTag(id, WireFixed32))
		return appendFixed32(dst, float32ToBits(float32(fv.Float()))), nil
	case kFloat64:
		dst = appendVarint(dst, MakeTag(id, WireFixed64))
		return appendFixed64(dst, float64ToBits(fv.Float())), nil
	case kTime:
		t := fv.Interface().(time.Time)
		dst = appendVarint(dst, MakeTag(id, WireFixed64))
		return appendFixed64(dst, uint64(t.UnixMilli())), nil
	case kString:
		dst = appendVarint(dst, MakeTag(id, WireLengthDelimited))
		raw := []byte(fv.String())
		dst = appendVarint(dst, uint64(sizeBoxedBytes(raw)))
		return appendBoxedBytes(dst, raw), nil
	case kBytes:
		dst = appendVarint(dst, MakeTag(id, WireLengthDelimited))
		raw := fv.Bytes()
		dst = appendVarint(dst, uint64(sizeBoxedBytes(raw)))
		return appendBoxedBytes(dst, raw), nil
	case kNested:
		nested, err := Encode(fv.Interface())
		if err != nil {
			return nil, err
		}
		dst = appendVarint(dst, MakeTag(id, WireLengthDelimited))
		dst = appendVarint(dst, uint64(len(nested)))
		return append(dst, nested...), nil
	default:
		return nil, fmt.Errorf("unsupported field kind %d", k)
	}
}

func readField(d *decoder, wk WireKind, fv reflect.Value, f fieldInfo) error {
	switch f.kind {
	case kList:
		if fv.IsNil() {
			fv.Set(reflect.MakeSlice(fv.Type(), 0, 1))
		}
		elem := reflect.New(f.elemType).Elem()
		if err := readScalar(d, wk, f.elemKind, elem); err != nil {
			return err
		}
		fv.Set(reflect.Append(fv, elem))
		return nil
	case kSet:
		if fv.IsNil() {
			fv.Set(reflect.MakeMap(fv.Type()))
		}
		elem := reflect.New(f.elemType).Elem()
		if err := readScalar(d, wk, f.elemKind, elem); err != nil {
			return err
		}
		valType := fv.Type().Elem()
		member := reflect.Zero(valType)
		if valType.Kind() == reflect.Bool {
			member = reflect.ValueOf(true).Convert(valType)
		}
		fv.SetMapIndex(elem, member)
		return nil
	default:
		target := fv
		if f.ptr {
			if target.IsNil() {
				target.Set(reflect.New(target.Type().Elem()))
			}
			target = target.Elem()
		}
		return readScalar(d, wk, f.kind, target)
	}
}

func readScalar(d *decoder, wk WireKind, k kind, target reflect.Value) error {
	switch k {
	case kBool:
		v, err := d.readVarint()
		if err != nil {
			return err
		}
		target.SetBool(v != 0)
		return nil
	case kInt:
		v, err := d.readVarint()
		if err != nil {
			return err
		}
		target.SetInt(zigzagDecode(v))
		return nil
	case kUint:
		v, err := d.readVarint()
		if err != nil {
			return err
		}
		setUint64(target, v)
		return nil
	case kFloat32:
		v, err := d.readFixed32()
		if err != nil {
			return err
		}
		target.SetFloat(float64(bitsToFloat32(v)))
		return nil
	case kFloat64:
		v, err := d.readFixed64()
		if err != nil {
			return err
		}
		target.SetFloat(bitsToFloat64(v))
		return nil
	case kTime:
		v, err := d.readFixed64()
		if err != nil {
			return err
		}
		target.Set(reflect.ValueOf(time.UnixMilli(int64(v)).UTC()))
		return nil
	case kString:
		payload, err := d.readLengthDelimited()
		if err != nil {
			return err
		}
		raw, err := readBoxedBytes(payload)
		if err != nil {
			return err
		}
		target.SetString(string(raw))
		return nil
	case kBytes:
		payload, err := d.readLengthDelimited()
		if err != nil {
			return err
		}
		raw, err := readBoxedBytes(payload)
		if err != nil {
			return err
		}
		target.SetBytes(append([]byte(nil), raw...))
		return nil
	case kNested:
		payload, err := d.readLengthDelimited()
		if err != nil {
			return err
		}
		if target.Kind() == reflect.Ptr {
			if target.IsNil() {
				target.Set(reflect.New(target.Type().Elem()))
			}
			return decodeInto(payload, target.Elem())
		}
		return decodeInto(payload, target)
	case kUnknownContainer:
		return fmt.Errorf("recordcodec: field has interface type, not initialized with a concrete container")
	default:
		return fmt.Errorf("recordcodec: cannot decode wire kind %s into field kind %d", wk, k)
	}
}

func asUint64(fv reflect.Value) uint64 {
	switch fv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(fv.Int())
	default:
		return fv.Uint()
	}
}

func setUint64(target reflect.Value, v uint64) {
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		target.SetInt(int64(v))
	default:
		target.SetUint(v)
	}
}
