package querycompiler

import (
	"fmt"
	"reflect"

	"github.com/syssam/ormcore/keyenc"
	"github.com/syssam/ormcore/schema"
)

// encodeColumn appends one column's value to b using the order-preserving
// encoding for its kind, in the desc sibling if desc is true.
func encodeColumn(b *keyenc.Builder, kind schema.Kind, v any, desc bool) error {
	switch kind {
	case schema.KindBool:
		bv, ok := v.(bool)
		if !ok {
			return fmt.Errorf("querycompiler: expected bool, got %T", v)
		}
		u := uint64(0)
		if bv {
			u = 1
		}
		if desc {
			b.DescUint(u)
		} else {
			b.AddUint(u)
		}
		return nil
	case schema.KindInt8, schema.KindInt16, schema.KindInt32, schema.KindInt64, schema.KindTimestamp:
		iv, err := toInt64(v)
		if err != nil {
			return err
		}
		if iv < 0 {
			// Positive signed values share the unsigned encoding; nothing
			// can encode below zero's single 0x00 byte, so negative key
			// components are unsupported rather than silently mis-sorted.
			return fmt.Errorf("querycompiler: negative value %d cannot be key-encoded", iv)
		}
		if desc {
			b.DescInt64(iv)
		} else {
			b.AddInt64(iv)
		}
		return nil
	case schema.KindChar, schema.KindEnum:
		uv, err := toUint64(v)
		if err != nil {
			return err
		}
		if desc {
			b.DescUint(uv)
		} else {
			b.AddUint(uv)
		}
		return nil
	case schema.KindFloat32, schema.KindFloat64:
		fv, err := toFloat64(v)
		if err != nil {
			return err
		}
		if desc {
			b.DescFloat64(fv)
		} else {
			b.AddFloat64(fv)
		}
		return nil
	case schema.KindString:
		sv, ok := v.(string)
		if !ok {
			return fmt.Errorf("querycompiler: expected string, got %T", v)
		}
		if desc {
			b.DescString(sv)
		} else {
			b.AddString(sv)
		}
		return nil
	case schema.KindBytes:
		bs, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("querycompiler: expected []byte, got %T", v)
		}
		if desc {
			b.DescBytes(bs)
		} else {
			b.AddBytes(bs)
		}
		return nil
	default:
		return fmt.Errorf("querycompiler: unsupported column kind %s", kind)
	}
}

func toInt64(v any) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	default:
		return 0, fmt.Errorf("querycompiler: cannot interpret %T as an integer", v)
	}
}

func toUint64(v any) (uint64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(rv.Int()), nil
	default:
		return 0, fmt.Errorf("querycompiler: cannot interpret %T as an unsigned ordinal", v)
	}
}

func toFloat64(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	default:
		return 0, fmt.Errorf("querycompiler: cannot interpret %T as a float", v)
	}
}
