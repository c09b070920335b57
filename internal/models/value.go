package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the declared type of a column's values.
type Kind uint8

const (
	KindFloat Kind = iota
	KindInt
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a single observation cell: a float, an int, a string, or the
// missing marker for its column's kind. Missing is distinct from zero so
// downstream code can tell "no measurement" from a measured 0.
// Value is comparable, so rows can be compared directly in tests.
type Value struct {
	kind    Kind
	missing bool
	f       float64
	i       int64
	s       string
}

// Float returns a float-kinded value.
func Float(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

// Int returns an int-kinded value.
func Int(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// Text returns a string-kinded value.
func Text(s string) Value {
	return Value{kind: KindString, s: s}
}

// Missing returns the "no measurement" value for the given kind.
func Missing(k Kind) Value {
	return Value{kind: k, missing: true}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.missing }

// AsFloat returns the float value; ok is false for missing or non-float values.
func (v Value) AsFloat() (float64, bool) {
	if v.missing || v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// AsInt returns the int value; ok is false for missing or non-int values.
func (v Value) AsInt() (int64, bool) {
	if v.missing || v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsText returns the string value; ok is false for missing or non-string values.
func (v Value) AsText() (string, bool) {
	if v.missing || v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) String() string {
	if v.missing {
		return "missing"
	}
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	default:
		return v.s
	}
}

// MarshalJSON encodes missing as null so consumers can never mistake an
// absent measurement for a real zero.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.missing {
		return []byte("null"), nil
	}
	switch v.kind {
	case KindFloat:
		return json.Marshal(v.f)
	case KindInt:
		return json.Marshal(v.i)
	default:
		return json.Marshal(v.s)
	}
}
