package record

import (
	"strconv"
	"strings"
	"time"

	"normas/internal/constants"
)

type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a tagged union over the scalar kinds a raw record can carry.
// Coercion to a declared rule type goes through the As* functions, which
// report failure instead of panicking.
type Value struct {
	kind    Kind
	str     string
	num     float64
	boolean bool
}

func Null() Value {
	return Value{kind: KindNull}
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsBlank reports whether the value is a string that is empty or whitespace
// only. Blank strings in required fields count as missing.
func (v Value) IsBlank() bool {
	return v.kind == KindString && strings.TrimSpace(v.str) == ""
}

func (v Value) StringValue() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) NumberValue() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

func (v Value) BoolValue() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolean, true
}

// AsString coerces to the str rule type. The second return is the string
// form used for pattern matching.
func AsString(v Value) (Value, string, bool) {
	switch v.kind {
	case KindString:
		return v, v.str, true
	case KindNumber:
		s := formatNumber(v.num)
		return String(s), s, true
	case KindBool:
		s := strconv.FormatBool(v.boolean)
		return String(s), s, true
	default:
		return Value{}, "", false
	}
}

// AsInt coerces to the int rule type.
func AsInt(v Value) (Value, string, bool) {
	switch v.kind {
	case KindNumber:
		if v.num != float64(int64(v.num)) {
			return Value{}, "", false
		}
		s := strconv.FormatInt(int64(v.num), 10)
		return Number(v.num), s, true
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.str), 10, 64)
		if err != nil {
			return Value{}, "", false
		}
		return Number(float64(n)), strconv.FormatInt(n, 10), true
	default:
		return Value{}, "", false
	}
}

// AsBool coerces to the bool rule type.
func AsBool(v Value) (Value, string, bool) {
	switch v.kind {
	case KindBool:
		return v, strconv.FormatBool(v.boolean), true
	case KindString:
		switch strings.ToLower(strings.TrimSpace(v.str)) {
		case "true", "1":
			return Bool(true), "true", true
		case "false", "0":
			return Bool(false), "false", true
		}
		return Value{}, "", false
	default:
		return Value{}, "", false
	}
}

// AsDate coerces to the date rule type, normalizing to yyyy-mm-dd.
func AsDate(v Value) (Value, string, bool) {
	s, ok := v.StringValue()
	if !ok {
		return Value{}, "", false
	}
	t, err := time.Parse(constants.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Value{}, "", false
	}
	canonical := t.Format(constants.DateLayout)
	return String(canonical), canonical, true
}

// AsDateTime coerces to the datetime rule type. Accepts the pipeline's
// canonical layout and RFC 3339, normalizing to the canonical layout.
func AsDateTime(v Value) (Value, string, bool) {
	s, ok := v.StringValue()
	if !ok {
		return Value{}, "", false
	}
	trimmed := strings.TrimSpace(s)
	t, err := time.Parse(constants.DateTimeLayout, trimmed)
	if err != nil {
		t, err = time.Parse(time.RFC3339, trimmed)
		if err != nil {
			return Value{}, "", false
		}
	}
	canonical := t.Format(constants.DateTimeLayout)
	return String(canonical), canonical, true
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
