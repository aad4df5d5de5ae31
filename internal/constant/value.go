package constant

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the payload of a Value.
type Kind uint8

const (
	// KindInvalid marks a value that is not a constant. The zero Value
	// has this kind.
	KindInvalid Kind = iota
	KindInteger
	KindReal
	KindString
	KindNull
	// KindElements is an aggregate: the evaluated slots of an unpacked
	// array or struct value, in index or declaration order.
	KindElements
)

// Value is a tagged constant produced by evaluation: a four-state
// integer, a real, a string, the null literal, or the explicit
// "not a constant" marker.
type Value struct {
	kind  Kind
	i     Integer
	r     float64
	s     string
	elems []Value
}

// Invalid returns the not-a-constant marker.
func Invalid() Value { return Value{} }

// IntValue wraps a four-state integer.
func IntValue(i Integer) Value { return Value{kind: KindInteger, i: i} }

// RealValue wraps a real number.
func RealValue(r float64) Value { return Value{kind: KindReal, r: r} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// NullValue returns the null constant.
func NullValue() Value { return Value{kind: KindNull} }

// ElementsValue wraps an aggregate's evaluated slots.
func ElementsValue(elems []Value) Value { return Value{kind: KindElements, elems: elems} }

// Kind returns the payload tag.
func (v Value) Kind() Kind { return v.kind }

// IsConstant reports whether the value carries an actual constant.
func (v Value) IsConstant() bool { return v.kind != KindInvalid }

// IsInteger reports whether the payload is a four-state integer.
func (v Value) IsInteger() bool { return v.kind == KindInteger }

// IsReal reports whether the payload is a real number.
func (v Value) IsReal() bool { return v.kind == KindReal }

// Integer returns the integer payload. It is a defect to call this on a
// non-integer value.
func (v Value) Integer() Integer {
	if v.kind != KindInteger {
		panic(fmt.Sprintf("constant: Integer() on %v value", v.kind))
	}
	return v.i
}

// Real returns the real payload. It is a defect to call this on a
// non-real value.
func (v Value) Real() float64 {
	if v.kind != KindReal {
		panic(fmt.Sprintf("constant: Real() on %v value", v.kind))
	}
	return v.r
}

// Str returns the string payload. It is a defect to call this on a
// non-string value.
func (v Value) Str() string {
	if v.kind != KindString {
		panic(fmt.Sprintf("constant: Str() on %v value", v.kind))
	}
	return v.s
}

// Elements returns the aggregate payload. It is a defect to call this on
// a non-aggregate value.
func (v Value) Elements() []Value {
	if v.kind != KindElements {
		panic(fmt.Sprintf("constant: Elements() on %v value", v.kind))
	}
	return v.elems
}

// IsTrue reports whether the value is a known non-zero/non-empty
// constant.
func (v Value) IsTrue() bool {
	switch v.kind {
	case KindInteger:
		return v.i.LogicValue() == L1
	case KindReal:
		return v.r != 0
	case KindString:
		return v.s != ""
	default:
		return false
	}
}

// IsFalse reports whether the value is a known zero/empty constant.
// An integer with unknown bits is neither true nor false.
func (v Value) IsFalse() bool {
	switch v.kind {
	case KindInteger:
		return v.i.LogicValue() == L0
	case KindReal:
		return v.r == 0
	case KindString:
		return v.s == ""
	case KindNull:
		return true
	default:
		return false
	}
}

// String renders the value for debug output.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return v.i.String()
	case KindReal:
		return strconv.FormatFloat(v.r, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindNull:
		return "null"
	case KindElements:
		var sb strings.Builder
		sb.WriteString("'{")
		for i, e := range v.elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteString("}")
		return sb.String()
	default:
		return "<not constant>"
	}
}

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	case KindNull:
		return "null"
	case KindElements:
		return "elements"
	default:
		return "invalid"
	}
}
