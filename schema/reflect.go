package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/tsawler/tabulate/model"
	"github.com/tsawler/tabulate/plural"
)

// TagName is the struct tag key that renames or skips a field:
//
//	Email string `tabulate:"E-mail"`
//	Notes string `tabulate:"-"`
const TagName = "tabulate"

var timeType = reflect.TypeOf(time.Time{})

// Reflect derives a schema from the exported fields of struct type T (or of
// the struct T points to), in declaration order. Fields promoted from
// embedded structs are included where they are exported and reachable.
// The schema title is the pluralized type name.
//
// Reflection happens once, here. The returned accessors are closures over
// precomputed field indexes.
func Reflect[T any]() (*Schema[T], error) {
	rt := reflect.TypeFor[T]()
	isPtr := false
	if rt.Kind() == reflect.Pointer {
		isPtr = true
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct type", rt)
	}

	var fields []Field[T]
	for _, sf := range reflect.VisibleFields(rt) {
		if !sf.IsExported() || !reachable(rt, sf.Index) {
			continue
		}
		if sf.Anonymous && sf.Type != timeType && indirect(sf.Type).Kind() == reflect.Struct {
			// The embedded struct contributes its promoted fields instead.
			continue
		}

		name := sf.Name
		if tag, ok := sf.Tag.Lookup(TagName); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}

		fields = append(fields, reflectField[T](name, sf, isPtr))
	}

	return New[T](plural.Of(rt.Name()), fields...), nil
}

// MustReflect is like Reflect but panics on error. It is intended for
// package-level schema variables.
func MustReflect[T any]() *Schema[T] {
	s, err := Reflect[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// KindOf returns the declared kind for a Go type.
func KindOf(t reflect.Type) model.Kind {
	t = indirect(t)
	if t == timeType {
		return model.KindDate
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return model.KindInteger
	case reflect.Float32, reflect.Float64:
		return model.KindFloat
	case reflect.Bool:
		return model.KindBoolean
	case reflect.String:
		return model.KindString
	default:
		return model.KindOther
	}
}

func indirect(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

// reachable reports whether every struct on the path to a promoted field is
// embedded through an exported field, so the field can be read and set.
func reachable(rt reflect.Type, index []int) bool {
	t := rt
	for _, i := range index[:len(index)-1] {
		sf := t.Field(i)
		if !sf.IsExported() {
			return false
		}
		t = indirect(sf.Type)
	}
	return true
}

func reflectField[T any](name string, sf reflect.StructField, isPtr bool) Field[T] {
	kind := KindOf(sf.Type)
	index := sf.Index

	return Field[T]{
		Name:   name,
		Kind:   kind,
		GoType: sf.Type.String(),
		Get: func(rec *T) model.Value {
			fv, ok := readField(reflect.ValueOf(rec).Elem(), index, isPtr)
			if !ok {
				return model.Empty()
			}
			return valueOf(fv, kind)
		},
		Set: func(rec *T, v model.Value) error {
			if kind == model.KindOther {
				return &model.UnsupportedFieldError{Field: name, Type: sf.Type.String()}
			}
			fv := writableField(reflect.ValueOf(rec).Elem(), index, isPtr)
			return assign(fv, kind, v)
		},
	}
}

// readField walks to the field without allocating. It reports false when a
// nil pointer is on the path.
func readField(rv reflect.Value, index []int, isPtr bool) (reflect.Value, bool) {
	if isPtr {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	fv, err := rv.FieldByIndexErr(index)
	if err != nil {
		return reflect.Value{}, false
	}
	return fv, true
}

// writableField walks to the field, allocating nil pointers on the way.
func writableField(rv reflect.Value, index []int, isPtr bool) reflect.Value {
	if isPtr {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}
	for i, x := range index {
		if i > 0 && rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				rv.Set(reflect.New(rv.Type().Elem()))
			}
			rv = rv.Elem()
		}
		rv = rv.Field(x)
	}
	return rv
}

func valueOf(fv reflect.Value, kind model.Kind) model.Value {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return model.Empty()
		}
		fv = fv.Elem()
	}

	switch kind {
	case model.KindInteger:
		if fv.CanInt() {
			return model.Int(fv.Int())
		}
		return model.Uint(fv.Uint())
	case model.KindFloat:
		if fv.Kind() == reflect.Float32 {
			return model.Float32(float32(fv.Float()))
		}
		return model.Float(fv.Float())
	case model.KindBoolean:
		return model.Bool(fv.Bool())
	case model.KindDate:
		return model.Date(fv.Interface().(time.Time))
	case model.KindString:
		return model.String(fv.String())
	default:
		return model.String(fmt.Sprint(fv.Interface()))
	}
}

func assign(fv reflect.Value, kind model.Kind, v model.Value) error {
	if v.IsEmpty() {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}

	switch kind {
	case model.KindInteger:
		if v.Kind() != model.KindInteger {
			return ErrKindMismatch
		}
		if v.IsUint() {
			if fv.CanInt() || fv.OverflowUint(v.Uint()) {
				return ErrOutOfRange
			}
			fv.SetUint(v.Uint())
			return nil
		}
		n := v.Int()
		if fv.CanInt() {
			if fv.OverflowInt(n) {
				return ErrOutOfRange
			}
			fv.SetInt(n)
			return nil
		}
		if n < 0 || fv.OverflowUint(uint64(n)) {
			return ErrOutOfRange
		}
		fv.SetUint(uint64(n))
	case model.KindFloat:
		var f float64
		switch v.Kind() {
		case model.KindFloat:
			f = v.Float()
		case model.KindInteger:
			f = integerAsFloat(v)
		default:
			return ErrKindMismatch
		}
		if fv.OverflowFloat(f) {
			return ErrOutOfRange
		}
		fv.SetFloat(f)
	case model.KindBoolean:
		if v.Kind() != model.KindBoolean {
			return ErrKindMismatch
		}
		fv.SetBool(v.Bool())
	case model.KindDate:
		if v.Kind() != model.KindDate {
			return ErrKindMismatch
		}
		fv.Set(reflect.ValueOf(v.Time()))
	case model.KindString:
		if v.Kind() != model.KindString {
			return ErrKindMismatch
		}
		fv.SetString(v.Str())
	default:
		return ErrKindMismatch
	}
	return nil
}

func integerAsFloat(v model.Value) float64 {
	if v.IsUint() {
		return float64(v.Uint())
	}
	return float64(v.Int())
}
