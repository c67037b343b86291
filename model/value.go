package model

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind identifies the type of a cell or the declared type of a record field.
type Kind int

const (
	// KindEmpty indicates a missing value.
	KindEmpty Kind = iota
	// KindInteger indicates a signed or unsigned integer.
	KindInteger
	// KindFloat indicates a binary floating-point number.
	KindFloat
	// KindBoolean indicates a boolean.
	KindBoolean
	// KindDate indicates a date/time, stored in cells as a day-count serial.
	KindDate
	// KindString indicates text.
	KindString
	// KindOther indicates a field type with no defined coercion. It is only
	// ever used as a declared field kind, never as a cell tag.
	KindOther
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindString:
		return "string"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// ParseKind returns the Kind named by s, as produced by Kind.String. The
// second result is false for unknown names.
func ParseKind(s string) (Kind, bool) {
	for k := KindEmpty; k <= KindOther; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return KindEmpty, false
}

// Value is a tagged union over the values a field can carry into or out of a
// cell. The zero Value is empty.
type Value struct {
	kind Kind
	i    int64
	u    uint64 // Set with unsigned for integers above math.MaxInt64
	big  bool
	f    float64
	bits int
	b    bool
	t    time.Time
	s    string
}

// Empty returns the empty value.
func Empty() Value { return Value{} }

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInteger, i: v} }

// Uint returns an integer value from an unsigned integer. Values that fit
// in an int64 are indistinguishable from Int.
func Uint(v uint64) Value {
	if v <= math.MaxInt64 {
		return Int(int64(v))
	}
	return Value{kind: KindInteger, u: v, big: true}
}

// Float returns a 64-bit floating-point value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v, bits: 64} }

// Float32 returns a floating-point value that originated from a float32, so
// that its shortest textual form is the one of the narrower type.
func Float32(v float32) Value { return Value{kind: KindFloat, f: float64(v), bits: 32} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBoolean, b: v} }

// Date returns a date/time value.
func Date(v time.Time) Value { return Value{kind: KindDate, t: v} }

// String returns a text value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Kind returns the tag of the value.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value is empty.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Int returns the integer payload. It is zero unless Kind is KindInteger,
// and meaningless when IsUint is true.
func (v Value) Int() int64 { return v.i }

// IsUint reports whether the value is an integer above math.MaxInt64, whose
// payload is read with Uint.
func (v Value) IsUint() bool { return v.big }

// Uint returns the payload of an integer above math.MaxInt64.
func (v Value) Uint() uint64 { return v.u }

// Float returns the floating-point payload. It is zero unless Kind is KindFloat.
func (v Value) Float() float64 { return v.f }

// FloatBits returns 32 or 64 depending on the width the float came from.
func (v Value) FloatBits() int {
	if v.bits == 0 {
		return 64
	}
	return v.bits
}

// Bool returns the boolean payload. It is false unless Kind is KindBoolean.
func (v Value) Bool() bool { return v.b }

// Time returns the date payload. It is the zero time unless Kind is KindDate.
func (v Value) Time() time.Time { return v.t }

// Str returns the text payload. It is empty unless Kind is KindString.
func (v Value) Str() string { return v.s }

// Display returns a human-readable rendering of the value, used by output
// formats that carry plain text only (Word, PDF, HTML).
func (v Value) Display() string {
	switch v.kind {
	case KindInteger:
		if v.big {
			return strconv.FormatUint(v.u, 10)
		}
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, v.FloatBits())
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindDate:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format(time.DateOnly)
		}
		return v.t.Format(time.DateTime)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// GoString implements fmt.GoStringer for readable test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("model.Value{%s: %q}", v.kind, v.Display())
}
