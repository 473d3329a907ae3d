package recordcodec

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// kind classifies how a single Go value (a struct field, or an element of a
// repeated field) is represented on the wire. It is distinct from WireKind:
// several kinds (kString, kBytes) share WireLengthDelimited but need
// different encode/decode logic (the boxed-scalar envelope vs a raw nested
// message).
type kind uint8

const (
	kBool kind = iota
	kInt       // signed, zig-zag varint
	kUint      // unsigned varint (also used for enum ordinals and char->u32)
	kFloat32
	kFloat64
	kString
	kBytes
	kTime
	kNested
	kList // repeated, ordered (backed by a Go slice)
	kSet  // repeated, membership-only (backed by a Go map[T]struct{} or map[T]bool)
	kUnknownContainer
)

var timeType = reflect.TypeOf(time.Time{})

// fieldInfo describes one encodable struct field.
type fieldInfo struct {
	id        uint32
	index     int
	name      string
	kind      kind
	elemKind  kind  // valid when kind is kList or kSet
	elemType  reflect.Type
	ptr       bool  // field is a pointer to the classified value (nullable column)
}

type structInfo struct {
	typ    reflect.Type
	fields []fieldInfo
}

var structCache sync.Map // reflect.Type -> *structInfo

// structInfoFor returns the cached field layout for t, building it on first
// use by reading each field's `col:"<id>[,modifier]"` tag.
func structInfoFor(t reflect.Type) (*structInfo, error) {
	if v, ok := structCache.Load(t); ok {
		return v.(*structInfo), nil
	}
	si, err := buildStructInfo(t)
	if err != nil {
		return nil, err
	}
	actual, _ := structCache.LoadOrStore(t, si)
	return actual.(*structInfo), nil
}

func buildStructInfo(t reflect.Type) (*structInfo, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("recordcodec: %s is not a struct", t)
	}
	si := &structInfo{typ: t}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		tag, ok := sf.Tag.Lookup("col")
		if !ok || tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		id, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("recordcodec: field %s: invalid col tag %q: %w", sf.Name, tag, err)
		}
		modifier := ""
		if len(parts) > 1 {
			modifier = parts[1]
		}
		ft := sf.Type
		isPtr := false
		if ft.Kind() == reflect.Ptr {
			isPtr = true
			ft = ft.Elem()
		}
		k, elemKind, elemType, err := classify(ft, modifier)
		if err != nil {
			return nil, fmt.Errorf("recordcodec: field %s: %w", sf.Name, err)
		}
		si.fields = append(si.fields, fieldInfo{
			id:       uint32(id),
			index:    i,
			name:     sf.Name,
			kind:     k,
			elemKind: elemKind,
			elemType: elemType,
			ptr:      isPtr,
		})
	}
	sort := func() {
		for i := 1; i < len(si.fields); i++ {
			for j := i; j > 0 && si.fields[j-1].id > si.fields[j].id; j-- {
				si.fields[j-1], si.fields[j] = si.fields[j], si.fields[j-1]
			}
		}
	}
	sort()
	return si, nil
}

// classify maps a Go type (with an optional tag modifier) to the wire kind
// used to encode it, and — for repeated fields — the kind of its elements.
func classify(t reflect.Type, modifier string) (k kind, elemKind kind, elemType reflect.Type, err error) {
	switch t.Kind() {
	case reflect.Bool:
		return kBool, 0, nil, nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		switch modifier {
		case "enum", "char":
			return kUint, 0, nil, nil
		default:
			return kInt, 0, nil, nil
		}
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return kUint, 0, nil, nil
	case reflect.Float32:
		return kFloat32, 0, nil, nil
	case reflect.Float64:
		return kFloat64, 0, nil, nil
	case reflect.String:
		return kString, 0, nil, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return kBytes, 0, nil, nil
		}
		ek, _, _, err := classify(t.Elem(), "")
		if err != nil {
			return 0, 0, nil, fmt.Errorf("repeated element type %s: %w", t.Elem(), err)
		}
		return kList, ek, t.Elem(), nil
	case reflect.Map:
		ek, _, _, err := classify(t.Key(), "")
		if err != nil {
			return 0, 0, nil, fmt.Errorf("set element type %s: %w", t.Key(), err)
		}
		return kSet, ek, t.Key(), nil
	case reflect.Struct:
		if t == timeType {
			return kTime, 0, nil, nil
		}
		return kNested, 0, nil, nil
	case reflect.Interface:
		return kUnknownContainer, 0, nil, nil
	default:
		return 0, 0, nil, fmt.Errorf("unsupported type %s", t)
	}
}
