package schema

import (
	"reflect"
	"time"

	"github.com/tsawler/tabulate/model"
)

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type float interface {
	~float32 | ~float64
}

// Int registers an integer field.
func Int[T any, N integer](name string, get func(*T) N, set func(*T, N)) Field[T] {
	unsigned := isUnsigned[N]()
	return Field[T]{
		Name:   name,
		Kind:   model.KindInteger,
		GoType: "integer",
		Get: func(rec *T) model.Value {
			if unsigned {
				return model.Uint(uint64(get(rec)))
			}
			return model.Int(int64(get(rec)))
		},
		Set: func(rec *T, v model.Value) error {
			if v.IsEmpty() {
				set(rec, 0)
				return nil
			}
			if v.Kind() != model.KindInteger {
				return ErrKindMismatch
			}
			if v.IsUint() {
				n := N(v.Uint())
				if !unsigned || uint64(n) != v.Uint() {
					return ErrOutOfRange
				}
				set(rec, n)
				return nil
			}
			n := N(v.Int())
			if int64(n) != v.Int() || (v.Int() < 0 && n > 0) {
				return ErrOutOfRange
			}
			set(rec, n)
			return nil
		},
	}
}

// Float registers a floating-point field. Values of a float32 field keep
// the shortest text of the narrower type.
func Float[T any, F float](name string, get func(*T) F, set func(*T, F)) Field[T] {
	narrow := reflect.TypeFor[F]().Kind() == reflect.Float32
	return Field[T]{
		Name:   name,
		Kind:   model.KindFloat,
		GoType: "float",
		Get: func(rec *T) model.Value {
			if narrow {
				return model.Float32(float32(get(rec)))
			}
			return model.Float(float64(get(rec)))
		},
		Set: func(rec *T, v model.Value) error {
			switch v.Kind() {
			case model.KindEmpty:
				set(rec, 0)
			case model.KindFloat:
				set(rec, F(v.Float()))
			case model.KindInteger:
				set(rec, F(integerAsFloat(v)))
			default:
				return ErrKindMismatch
			}
			return nil
		},
	}
}

func isUnsigned[N integer]() bool {
	switch reflect.TypeFor[N]().Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// Bool registers a boolean field.
func Bool[T any](name string, get func(*T) bool, set func(*T, bool)) Field[T] {
	return Field[T]{
		Name:   name,
		Kind:   model.KindBoolean,
		GoType: "bool",
		Get: func(rec *T) model.Value {
			return model.Bool(get(rec))
		},
		Set: func(rec *T, v model.Value) error {
			if v.IsEmpty() {
				set(rec, false)
				return nil
			}
			if v.Kind() != model.KindBoolean {
				return ErrKindMismatch
			}
			set(rec, v.Bool())
			return nil
		},
	}
}

// Time registers a date/time field.
func Time[T any](name string, get func(*T) time.Time, set func(*T, time.Time)) Field[T] {
	return Field[T]{
		Name:   name,
		Kind:   model.KindDate,
		GoType: "time.Time",
		Get: func(rec *T) model.Value {
			return model.Date(get(rec))
		},
		Set: func(rec *T, v model.Value) error {
			if v.IsEmpty() {
				set(rec, time.Time{})
				return nil
			}
			if v.Kind() != model.KindDate {
				return ErrKindMismatch
			}
			set(rec, v.Time())
			return nil
		},
	}
}

// String registers a text field.
func String[T any, S ~string](name string, get func(*T) S, set func(*T, S)) Field[T] {
	return Field[T]{
		Name:   name,
		Kind:   model.KindString,
		GoType: "string",
		Get: func(rec *T) model.Value {
			return model.String(string(get(rec)))
		},
		Set: func(rec *T, v model.Value) error {
			switch v.Kind() {
			case model.KindEmpty:
				set(rec, "")
			case model.KindString:
				set(rec, S(v.Str()))
			default:
				return ErrKindMismatch
			}
			return nil
		},
	}
}
