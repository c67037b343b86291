// Package coerce converts between typed field values and the textual form
// they take inside a document cell.
//
// Encode is total over every [model.Value] tag and never fails. Decode parses
// cell text back into a value of a requested kind and reports failures as
// [model.CoercionError].
package coerce

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tsawler/tabulate/model"
)

// Encode converts a value to its cell representation. Numbers use the
// invariant form (period radix point, no grouping, no exponent), booleans
// become "1" or "0", and dates become day-count serials.
func Encode(v model.Value) model.Cell {
	switch v.Kind() {
	case model.KindInteger:
		if v.IsUint() {
			return model.Cell{Kind: model.KindInteger, Text: strconv.FormatUint(v.Uint(), 10)}
		}
		return model.Cell{Kind: model.KindInteger, Text: strconv.FormatInt(v.Int(), 10)}
	case model.KindFloat:
		return model.Cell{Kind: model.KindFloat, Text: strconv.FormatFloat(v.Float(), 'f', -1, v.FloatBits())}
	case model.KindBoolean:
		text := "0"
		if v.Bool() {
			text = "1"
		}
		return model.Cell{Kind: model.KindBoolean, Text: text, Display: v.Display()}
	case model.KindDate:
		return model.Cell{Kind: model.KindDate, Text: FormatSerial(ToSerial(v.Time())), Display: v.Display()}
	case model.KindString:
		return model.Cell{Kind: model.KindString, Text: v.Str()}
	default:
		return model.Cell{Kind: model.KindString}
	}
}

// Decode parses cell text into a value of the target kind. Empty or
// whitespace-only text decodes to the empty value for every kind.
//
// Booleans never fail: the text is true iff it is "1" or, ignoring case,
// "true". Any other text is false.
func Decode(text string, target model.Kind) (model.Value, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.Empty(), nil
	}

	switch target {
	case model.KindInteger:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if errors.Is(err, strconv.ErrRange) && trimmed[0] != '-' {
			if u, uerr := strconv.ParseUint(trimmed, 10, 64); uerr == nil {
				return model.Uint(u), nil
			}
		}
		if err != nil {
			return model.Empty(), &model.CoercionError{Kind: target, Text: text, Err: unwrapNum(err)}
		}
		return model.Int(n), nil

	case model.KindFloat:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return model.Empty(), &model.CoercionError{Kind: target, Text: text, Err: unwrapNum(err)}
		}
		return model.Float(f), nil

	case model.KindBoolean:
		return model.Bool(trimmed == "1" || strings.EqualFold(trimmed, "true")), nil

	case model.KindDate:
		serial, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return model.Empty(), &model.CoercionError{Kind: target, Text: text, Err: unwrapNum(err)}
		}
		t, err := FromSerial(serial)
		if err != nil {
			return model.Empty(), &model.CoercionError{Kind: target, Text: text, Err: err}
		}
		return model.Date(t), nil

	case model.KindString:
		return model.String(text), nil

	default:
		return model.Empty(), &model.UnsupportedFieldError{Type: target.String()}
	}
}

// unwrapNum strips the function/input prefix strconv adds, since the
// CoercionError already reports the text.
func unwrapNum(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}
