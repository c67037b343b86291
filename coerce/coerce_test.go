package coerce

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/tabulate/model"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		value    model.Value
		wantKind model.Kind
		wantText string
	}{
		{"integer", model.Int(1234567), model.KindInteger, "1234567"},
		{"negative integer", model.Int(-42), model.KindInteger, "-42"},
		{"float", model.Float(1234.5), model.KindFloat, "1234.5"},
		{"large float has no exponent", model.Float(1e21), model.KindFloat, "1000000000000000000000"},
		{"float32 keeps short form", model.Float32(0.1), model.KindFloat, "0.1"},
		{"true", model.Bool(true), model.KindBoolean, "1"},
		{"false", model.Bool(false), model.KindBoolean, "0"},
		{"date", model.Date(time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)), model.KindDate, "45292.5"},
		{"string", model.String("Pen"), model.KindString, "Pen"},
		{"empty", model.Empty(), model.KindString, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.value)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantText, got.Text)
		})
	}
}

func TestEncode_DisplayForPlainText(t *testing.T) {
	assert.Equal(t, "true", Encode(model.Bool(true)).PlainText())
	assert.Equal(t, "2024-01-01", Encode(model.Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))).PlainText())
	assert.Equal(t, "2024-01-01 06:30:00", Encode(model.Date(time.Date(2024, 1, 1, 6, 30, 0, 0, time.UTC))).PlainText())
	assert.Equal(t, "7", Encode(model.Int(7)).PlainText())
}

func TestDecode_Boolean(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"1", true},
		{"TRUE", true},
		{"true", true},
		{"True", true},
		{"0", false},
		{"no", false},
		{"yes", false},
		{"FALSE", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			v, err := Decode(tt.text, model.KindBoolean)
			require.NoError(t, err)
			assert.Equal(t, model.KindBoolean, v.Kind())
			assert.Equal(t, tt.want, v.Bool())
		})
	}
}

func TestDecode_Numbers(t *testing.T) {
	v, err := Decode("42", model.KindInteger)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int())

	v, err = Decode("3.25", model.KindFloat)
	require.NoError(t, err)
	assert.Equal(t, 3.25, v.Float())

	_, err = Decode("abc", model.KindInteger)
	var ce *model.CoercionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "abc", ce.Text)
	assert.Equal(t, model.KindInteger, ce.Kind)

	_, err = Decode("3,25", model.KindFloat)
	assert.True(t, errors.As(err, &ce))

	_, err = Decode("1.5", model.KindInteger)
	assert.True(t, errors.As(err, &ce))
}

func TestDecode_LargeUnsigned(t *testing.T) {
	v, err := Decode("18446744073709551615", model.KindInteger)
	require.NoError(t, err)
	require.True(t, v.IsUint())
	assert.Equal(t, uint64(math.MaxUint64), v.Uint())
	assert.Equal(t, "18446744073709551615", Encode(v).Text)
	assert.Equal(t, model.KindInteger, Encode(v).Kind)

	v, err = Decode("9223372036854775807", model.KindInteger)
	require.NoError(t, err)
	assert.False(t, v.IsUint())

	var ce *model.CoercionError
	_, err = Decode("18446744073709551616", model.KindInteger)
	assert.True(t, errors.As(err, &ce))
	_, err = Decode("-9223372036854775809", model.KindInteger)
	assert.True(t, errors.As(err, &ce))
}

func TestDecode_EmptyText(t *testing.T) {
	for _, k := range []model.Kind{model.KindInteger, model.KindFloat, model.KindBoolean, model.KindDate, model.KindString} {
		t.Run(k.String(), func(t *testing.T) {
			v, err := Decode("  \t", k)
			require.NoError(t, err)
			assert.True(t, v.IsEmpty())
		})
	}
}

func TestDecode_StringIsVerbatim(t *testing.T) {
	v, err := Decode(" padded ", model.KindString)
	require.NoError(t, err)
	assert.Equal(t, " padded ", v.Str())
}

func TestDecode_Other(t *testing.T) {
	_, err := Decode("x", model.KindOther)
	var ue *model.UnsupportedFieldError
	assert.True(t, errors.As(err, &ue))
}

func TestDecode_Date(t *testing.T) {
	v, err := Decode("45292.5", model.KindDate)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC), v.Time())

	_, err = Decode("not a date", model.KindDate)
	var ce *model.CoercionError
	assert.True(t, errors.As(err, &ce))

	_, err = Decode("1e12", model.KindDate)
	require.True(t, errors.As(err, &ce))
	assert.ErrorIs(t, err, ErrSerialOutOfRange)
}
