package types

import (
	"fmt"
	"strings"
)

// Type represents a resolved data type. Construction and interning happen
// outside this core; binding and evaluation only consume the shapes below.
type Type interface {
	String() string
	// IsType is a marker method to ensure type safety.
	IsType()
}

// Integral represents a packed integral type: scalar bits, logic vectors
// and the predefined integer atoms all collapse to a width, a signedness
// and whether the bits are four-state.
type Integral struct {
	Name      string // optional keyword name (e.g. "int", "logic")
	Width     int
	Signed    bool
	FourState bool
}

func (t *Integral) String() string {
	if t.Name != "" {
		return t.Name
	}
	base := "bit"
	if t.FourState {
		base = "logic"
	}
	var sb strings.Builder
	sb.WriteString(base)
	if t.Signed {
		sb.WriteString(" signed")
	}
	fmt.Fprintf(&sb, " [%d:0]", t.Width-1)
	return sb.String()
}
func (t *Integral) IsType() {}

// Real represents a floating-point type.
type Real struct {
	Name string
	Bits int
}

func (t *Real) String() string { return t.Name }
func (t *Real) IsType()        {}

// StringType represents the dynamic string type.
type StringType struct{}

func (t *StringType) String() string { return "string" }
func (t *StringType) IsType()        {}

// NullType is the type of the null literal.
type NullType struct{}

func (t *NullType) String() string { return "null" }
func (t *NullType) IsType()        {}

// VoidType is the return type of subroutines that produce no value.
type VoidType struct{}

func (t *VoidType) String() string { return "void" }
func (t *VoidType) IsType()        {}

// ErrorType is the sentinel type carried by invalid expressions.
type ErrorType struct{}

func (t *ErrorType) String() string { return "<error>" }
func (t *ErrorType) IsType()        {}

// FixedArray represents a fixed-size array. Packed arrays are integral
// and contribute their flattened width; unpacked arrays are aggregates.
type FixedArray struct {
	Elem   Type
	Size   int
	Packed bool
}

func (t *FixedArray) String() string {
	if t.Packed {
		return fmt.Sprintf("%s [%d:0]", t.Elem, t.Size-1)
	}
	return fmt.Sprintf("%s $[%d]", t.Elem, t.Size)
}
func (t *FixedArray) IsType() {}

// Field describes one member of a struct type.
type Field struct {
	Name  string
	Type  Type
	Index int // declaration order, 0-based
}

// Struct represents a struct type. Packed structs are integral with a
// flattened width; unpacked structs are aggregates.
type Struct struct {
	Name   string
	Fields []*Field
	Packed bool
}

func (t *Struct) String() string {
	if t.Name != "" {
		return t.Name
	}
	if t.Packed {
		return "struct packed"
	}
	return "struct"
}
func (t *Struct) IsType() {}

// FieldByName returns the named field, or nil.
func (t *Struct) FieldByName(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Well-known types, fully initialized before any binding begins and never
// mutated afterward.
var (
	ErrType   = &ErrorType{}
	BitType   = &Integral{Name: "bit", Width: 1, Signed: false, FourState: false}
	LogicType = &Integral{Name: "logic", Width: 1, Signed: false, FourState: true}
	IntType   = &Integral{Name: "int", Width: 32, Signed: true, FourState: false}
	IntegerT  = &Integral{Name: "integer", Width: 32, Signed: true, FourState: true}
	RealT     = &Real{Name: "real", Bits: 64}
	ShortReal = &Real{Name: "shortreal", Bits: 32}
	StringT   = &StringType{}
	NullT     = &NullType{}
	VoidT     = &VoidType{}
)

// Packed returns an unnamed integral type with the given shape. A real
// compilation memoizes these; fresh values are equivalent because
// integral types compare structurally.
func Packed(width int, signed, fourState bool) *Integral {
	return &Integral{Width: width, Signed: signed, FourState: fourState}
}

// IsError reports whether t is the error sentinel.
func IsError(t Type) bool {
	_, ok := t.(*ErrorType)
	return ok
}

// IsIntegral reports whether t is a packed, bit-addressable type.
func IsIntegral(t Type) bool {
	switch u := t.(type) {
	case *Integral:
		return true
	case *FixedArray:
		return u.Packed
	case *Struct:
		return u.Packed
	default:
		return false
	}
}

// IsReal reports whether t is a floating-point type.
func IsReal(t Type) bool {
	_, ok := t.(*Real)
	return ok
}

// IsNumeric reports whether t participates in arithmetic.
func IsNumeric(t Type) bool { return IsIntegral(t) || IsReal(t) }

// IsAggregate reports whether t is an unpacked array or struct.
func IsAggregate(t Type) bool {
	switch u := t.(type) {
	case *FixedArray:
		return !u.Packed
	case *Struct:
		return !u.Packed
	default:
		return false
	}
}

// IsUnpackedArray reports whether t is a fixed-size unpacked array.
func IsUnpackedArray(t Type) bool {
	u, ok := t.(*FixedArray)
	return ok && !u.Packed
}

// IsString reports whether t is the string type.
func IsString(t Type) bool {
	_, ok := t.(*StringType)
	return ok
}

// BitWidth returns the flattened bit width of an integral type, or 0 for
// non-integral types.
func BitWidth(t Type) int {
	switch u := t.(type) {
	case *Integral:
		return u.Width
	case *FixedArray:
		if u.Packed {
			return u.Size * BitWidth(u.Elem)
		}
	case *Struct:
		if u.Packed {
			w := 0
			for _, f := range u.Fields {
				w += BitWidth(f.Type)
			}
			return w
		}
	}
	return 0
}

// IsSigned reports whether an integral type is signed.
func IsSigned(t Type) bool {
	if u, ok := t.(*Integral); ok {
		return u.Signed
	}
	return false
}

// IsFourState reports whether any bit of the type can hold X or Z.
func IsFourState(t Type) bool {
	switch u := t.(type) {
	case *Integral:
		return u.FourState
	case *FixedArray:
		return IsFourState(u.Elem)
	case *Struct:
		for _, f := range u.Fields {
			if IsFourState(f.Type) {
				return true
			}
		}
	}
	return false
}

// Matches reports whether two types are identical for assignment
// purposes. Named integral atoms match structurally equal vectors.
func Matches(a, b Type) bool {
	if a == b {
		return true
	}
	switch x := a.(type) {
	case *Integral:
		y, ok := b.(*Integral)
		return ok && x.Width == y.Width && x.Signed == y.Signed && x.FourState == y.FourState
	case *Real:
		y, ok := b.(*Real)
		return ok && x.Bits == y.Bits
	case *StringType:
		_, ok := b.(*StringType)
		return ok
	case *NullType:
		_, ok := b.(*NullType)
		return ok
	case *VoidType:
		_, ok := b.(*VoidType)
		return ok
	case *FixedArray:
		y, ok := b.(*FixedArray)
		return ok && x.Packed == y.Packed && x.Size == y.Size && Matches(x.Elem, y.Elem)
	default:
		return false
	}
}
