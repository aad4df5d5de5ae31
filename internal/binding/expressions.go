// Package binding turns expression syntax into typed, analyzable
// expression trees and provides the constant-expression interpreter used
// for elaboration-time computation.
package binding

import (
	"fmt"

	"github.com/brightclark/slang/internal/constant"
	"github.com/brightclark/slang/internal/diag"
	"github.com/brightclark/slang/internal/types"
)

// ExpressionKind identifies the concrete variant of an Expression.
type ExpressionKind uint8

const (
	KindInvalid ExpressionKind = iota
	KindIntegerLiteral
	KindRealLiteral
	KindUnbasedUnsizedLiteral
	KindNullLiteral
	KindStringLiteral
	KindNamedValue
	KindUnaryOp
	KindBinaryOp
	KindConditionalOp
	KindInside
	KindAssignment
	KindConcatenation
	KindReplication
	KindElementSelect
	KindRangeSelect
	KindMemberAccess
	KindCall
	KindConversion
	KindDataType
	KindSimpleAssignmentPattern
	KindStructuredAssignmentPattern
	KindReplicatedAssignmentPattern
	KindEmptyArgument
)

var kindNames = [...]string{
	KindInvalid:                     "Invalid",
	KindIntegerLiteral:              "IntegerLiteral",
	KindRealLiteral:                 "RealLiteral",
	KindUnbasedUnsizedLiteral:       "UnbasedUnsizedLiteral",
	KindNullLiteral:                 "NullLiteral",
	KindStringLiteral:               "StringLiteral",
	KindNamedValue:                  "NamedValue",
	KindUnaryOp:                     "UnaryOp",
	KindBinaryOp:                    "BinaryOp",
	KindConditionalOp:               "ConditionalOp",
	KindInside:                      "Inside",
	KindAssignment:                  "Assignment",
	KindConcatenation:               "Concatenation",
	KindReplication:                 "Replication",
	KindElementSelect:               "ElementSelect",
	KindRangeSelect:                 "RangeSelect",
	KindMemberAccess:                "MemberAccess",
	KindCall:                        "Call",
	KindConversion:                  "Conversion",
	KindDataType:                    "DataType",
	KindSimpleAssignmentPattern:     "SimpleAssignmentPattern",
	KindStructuredAssignmentPattern: "StructuredAssignmentPattern",
	KindReplicatedAssignmentPattern: "ReplicatedAssignmentPattern",
	KindEmptyArgument:               "EmptyArgument",
}

func (k ExpressionKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ExpressionKind(%d)", k)
}

// Expression is a bound, typed expression node. The variant set is closed;
// downcast with As when the kind is known.
type Expression interface {
	// Kind identifies the concrete variant.
	Kind() ExpressionKind
	// Type returns the result type. Never nil; invalid expressions
	// carry the error sentinel type.
	Type() types.Type
	// Constant returns the folded constant value, or the not-a-constant
	// marker if the node has not been proven foldable.
	Constant() constant.Value
	// Span returns the source range, which is zero for synthesized
	// nodes.
	Span() diag.Span
	// Bad reports whether this is the invalid sentinel variant.
	Bad() bool

	exprNode()
}

// base is the shared expression header. All fields except the folded
// constant are immutable after construction.
type base struct {
	kind ExpressionKind
	typ  types.Type
	cons constant.Value
	span diag.Span
}

func newBase(kind ExpressionKind, typ types.Type, span diag.Span) base {
	if typ == nil {
		panic("binding: expression constructed with nil type")
	}
	return base{kind: kind, typ: typ, span: span}
}

func (b *base) Kind() ExpressionKind     { return b.kind }
func (b *base) Type() types.Type         { return b.typ }
func (b *base) Constant() constant.Value { return b.cons }
func (b *base) Span() diag.Span          { return b.span }
func (b *base) Bad() bool                { return b.kind == KindInvalid }
func (b *base) exprNode()                {}

// setConstant memoizes the folded value. It is a defect to fold the same
// node twice with different results; re-folding to the same value is a
// no-op.
func (b *base) setConstant(v constant.Value) {
	b.cons = v
}

// As downcasts an expression to a concrete variant. A mismatched kind is
// a programming defect, not a user error.
func As[T Expression](e Expression) T {
	t, ok := e.(T)
	if !ok {
		panic(fmt.Sprintf("binding: expression kind %s downcast to %T", e.Kind(), t))
	}
	return t
}

// Invalid wraps an expression that violated language semantics. The
// original child, when present, is kept for diagnostics context.
type Invalid struct {
	base
	Child Expression
}

func newInvalid(child Expression) *Invalid {
	return &Invalid{base: newBase(KindInvalid, types.ErrType, diag.Span{}), Child: child}
}

// IntegerLiteralExpr is a sized or unsized integer literal.
type IntegerLiteralExpr struct {
	base
	Value constant.Integer
}

// RealLiteralExpr is a floating-point literal.
type RealLiteralExpr struct {
	base
	Value float64
}

// UnbasedUnsizedLiteralExpr is a '0 / '1 / 'x / 'z literal whose width is
// determined entirely by context.
type UnbasedUnsizedLiteralExpr struct {
	base
	Bit constant.Bit
}

// NullLiteralExpr is the null literal.
type NullLiteralExpr struct {
	base
}

// StringLiteralExpr is a string literal.
type StringLiteralExpr struct {
	base
	Value string
}

// NamedValueExpr references a value-holding symbol.
type NamedValueExpr struct {
	base
	Symbol         *types.ValueSymbol
	IsHierarchical bool
}

// UnaryOpExpr applies a unary operator.
type UnaryOpExpr struct {
	base
	Op      UnaryOperator
	Operand Expression
}

// BinaryOpExpr applies a binary operator.
type BinaryOpExpr struct {
	base
	Op    BinaryOperator
	Left  Expression
	Right Expression
}

// ConditionalOpExpr is the ternary ?: operator.
type ConditionalOpExpr struct {
	base
	Cond  Expression
	Left  Expression
	Right Expression
}

// InsideExpr is the set membership operator over bound candidates.
type InsideExpr struct {
	base
	Left       Expression
	Candidates []Expression
}

// AssignmentExpr is an assignment. A non-nil Op marks a compound
// assignment applying that binary operator before the store.
type AssignmentExpr struct {
	base
	Op  *BinaryOperator
	Lhs Expression
	Rhs Expression
}

// ConcatenationExpr joins operands MSB-first.
type ConcatenationExpr struct {
	base
	Operands []Expression
}

// ReplicationExpr repeats a concatenation a constant number of times.
type ReplicationExpr struct {
	base
	Count   Expression
	Operand Expression
}

// ElementSelectExpr selects one element of a vector or array.
type ElementSelectExpr struct {
	base
	Value    Expression
	Selector Expression
}

// RangeSelectExpr selects a bit range or array slice.
type RangeSelectExpr struct {
	base
	SelectionKind RangeSelectionKind
	Value         Expression
	Left          Expression
	Right         Expression
}

// MemberAccessExpr accesses a struct field.
type MemberAccessExpr struct {
	base
	Field *types.Field
	Value Expression
}

// SubroutineRef is the closed two-way choice between a user-defined
// subroutine and a builtin. Exactly one side is non-nil.
type SubroutineRef struct {
	User   *types.Subroutine
	System *SystemSubroutine
}

// IsSystem reports whether the reference names a builtin subroutine.
func (r SubroutineRef) IsSystem() bool { return r.System != nil }

// Name returns the referenced subroutine's name.
func (r SubroutineRef) Name() string {
	if r.System != nil {
		return r.System.Name
	}
	return r.User.Name
}

// CallExpr invokes a subroutine with bound arguments.
type CallExpr struct {
	base
	Subroutine SubroutineRef
	Arguments  []Expression
	Lookup     types.LookupLocation
}

// ConversionExpr changes the type of its operand. Implicit conversions
// are inserted by the binder; explicit ones come from cast syntax. The
// flag affects diagnostics only.
type ConversionExpr struct {
	base
	IsImplicit bool
	Operand    Expression
}

// DataTypeExpr adapts a data type for use in expression position, e.g.
// as an argument to $bits.
type DataTypeExpr struct {
	base
}

// SimpleAssignmentPatternExpr is a positional aggregate literal, expanded
// to one bound element per slot.
type SimpleAssignmentPatternExpr struct {
	base
	Elements []Expression
}

// MemberSetter addresses a struct field by name.
type MemberSetter struct {
	Member *types.Field
	Expr   Expression
}

// TypeSetter addresses every slot of a matching type.
type TypeSetter struct {
	Type types.Type
	Expr Expression
}

// IndexSetter addresses an array slot by constant index.
type IndexSetter struct {
	Index Expression
	Expr  Expression
}

// StructuredAssignmentPatternExpr is a keyed aggregate literal. Elements
// holds the fully expanded per-slot expressions; the setter lists record
// how each slot was addressed.
type StructuredAssignmentPatternExpr struct {
	base
	MemberSetters []MemberSetter
	TypeSetters   []TypeSetter
	IndexSetters  []IndexSetter
	DefaultSetter Expression
	Elements      []Expression
}

// ReplicatedAssignmentPatternExpr is a replicated aggregate literal. The
// element list already repeats the inner pattern Count times.
type ReplicatedAssignmentPatternExpr struct {
	base
	Count    Expression
	Elements []Expression
}

// EmptyArgumentExpr is the placeholder for an elided call argument. Its
// type is always the error sentinel.
type EmptyArgumentExpr struct {
	base
}

// patternElements returns the per-slot element list shared by the three
// assignment pattern variants, or nil for other kinds.
func patternElements(e Expression) []Expression {
	switch p := e.(type) {
	case *SimpleAssignmentPatternExpr:
		return p.Elements
	case *StructuredAssignmentPatternExpr:
		return p.Elements
	case *ReplicatedAssignmentPatternExpr:
		return p.Elements
	default:
		return nil
	}
}
