// Package syntax defines the expression syntax shapes consumed by the
// binder. Producing these nodes (lexing and parsing) happens outside this
// core; the binder only dispatches on them.
package syntax

import (
	"github.com/brightclark/slang/internal/constant"
	"github.com/brightclark/slang/internal/diag"
)

// Node represents any syntax node with an associated source span.
type Node interface {
	Span() diag.Span
}

// Expr represents an expression syntax node.
type Expr interface {
	Node
	exprNode()
}

// OpToken identifies an operator token as written in source.
type OpToken uint8

const (
	OpInvalid OpToken = iota
	OpPlus            // +
	OpMinus           // -
	OpBang            // !
	OpTilde           // ~
	OpAmp             // & (binary and, unary reduction)
	OpTildeAmp        // ~&
	OpPipe            // |
	OpTildePipe       // ~|
	OpCaret           // ^
	OpTildeCaret      // ~^
	OpPlusPlus        // ++
	OpMinusMinus      // --
	OpStar            // *
	OpSlash           // /
	OpPercent         // %
	OpEqEq            // ==
	OpBangEq          // !=
	OpEqEqEq          // ===
	OpBangEqEq        // !==
	OpEqEqQuestion    // ==?
	OpBangEqQuestion  // !=?
	OpLess            // <
	OpLessEq          // <=
	OpGreater         // >
	OpGreaterEq       // >=
	OpAmpAmp          // &&
	OpPipePipe        // ||
	OpArrow           // ->
	OpDoubleArrow     // <->
	OpShiftLeft       // <<
	OpShiftRight      // >>
	OpAShiftLeft      // <<<
	OpAShiftRight     // >>>
	OpStarStar        // **
	OpAssign          // =
)

type span struct {
	span diag.Span
}

func (s span) Span() diag.Span { return s.span }

// IntegerLiteral is a sized or unsized integer literal. Size 0 means the
// literal was written without an explicit size.
type IntegerLiteral struct {
	Size   int
	Signed bool
	Value  constant.Integer
	span
}

func (*IntegerLiteral) exprNode() {}

// NewIntegerLiteral constructs an integer literal node.
func NewIntegerLiteral(size int, signed bool, value constant.Integer, sp diag.Span) *IntegerLiteral {
	return &IntegerLiteral{Size: size, Signed: signed, Value: value, span: span{sp}}
}

// UnbasedUnsizedLiteral is one of '0, '1, 'x, 'z: a single bit replicated
// to whatever width context demands.
type UnbasedUnsizedLiteral struct {
	Bit constant.Bit
	span
}

func (*UnbasedUnsizedLiteral) exprNode() {}

// NewUnbasedUnsizedLiteral constructs an unbased unsized literal node.
func NewUnbasedUnsizedLiteral(b constant.Bit, sp diag.Span) *UnbasedUnsizedLiteral {
	return &UnbasedUnsizedLiteral{Bit: b, span: span{sp}}
}

// RealLiteral is a floating-point literal.
type RealLiteral struct {
	Value float64
	span
}

func (*RealLiteral) exprNode() {}

// NewRealLiteral constructs a real literal node.
func NewRealLiteral(v float64, sp diag.Span) *RealLiteral {
	return &RealLiteral{Value: v, span: span{sp}}
}

// StringLiteral is a string literal.
type StringLiteral struct {
	Value string
	span
}

func (*StringLiteral) exprNode() {}

// NewStringLiteral constructs a string literal node.
func NewStringLiteral(v string, sp diag.Span) *StringLiteral {
	return &StringLiteral{Value: v, span: span{sp}}
}

// NullLiteral is the null keyword.
type NullLiteral struct {
	span
}

func (*NullLiteral) exprNode() {}

// NewNullLiteral constructs a null literal node.
func NewNullLiteral(sp diag.Span) *NullLiteral {
	return &NullLiteral{span: span{sp}}
}

// IdentifierName references a symbol by simple name.
type IdentifierName struct {
	Name string
	span
}

func (*IdentifierName) exprNode() {}

// NewIdentifierName constructs an identifier reference node.
func NewIdentifierName(name string, sp diag.Span) *IdentifierName {
	return &IdentifierName{Name: name, span: span{sp}}
}

// HierarchicalName references a symbol through a dotted cross-scope path.
type HierarchicalName struct {
	Parts []string
	span
}

func (*HierarchicalName) exprNode() {}

// NewHierarchicalName constructs a hierarchical reference node.
func NewHierarchicalName(parts []string, sp diag.Span) *HierarchicalName {
	return &HierarchicalName{Parts: parts, span: span{sp}}
}

// SystemName references a builtin ("system") subroutine, e.g. $bits.
type SystemName struct {
	Name string
	span
}

func (*SystemName) exprNode() {}

// NewSystemName constructs a system name node.
func NewSystemName(name string, sp diag.Span) *SystemName {
	return &SystemName{Name: name, span: span{sp}}
}

// UnaryExpr is a prefix or postfix unary operator application.
type UnaryExpr struct {
	Op      OpToken
	Operand Expr
	Postfix bool
	span
}

func (*UnaryExpr) exprNode() {}

// NewUnaryExpr constructs a unary operator node.
func NewUnaryExpr(op OpToken, operand Expr, postfix bool, sp diag.Span) *UnaryExpr {
	return &UnaryExpr{Op: op, Operand: operand, Postfix: postfix, span: span{sp}}
}

// BinaryExpr is a binary operator application.
type BinaryExpr struct {
	Op    OpToken
	Left  Expr
	Right Expr
	span
}

func (*BinaryExpr) exprNode() {}

// NewBinaryExpr constructs a binary operator node.
func NewBinaryExpr(op OpToken, left, right Expr, sp diag.Span) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: left, Right: right, span: span{sp}}
}

// ConditionalExpr is the ternary ?: operator.
type ConditionalExpr struct {
	Cond  Expr
	Left  Expr
	Right Expr
	span
}

func (*ConditionalExpr) exprNode() {}

// NewConditionalExpr constructs a conditional operator node.
func NewConditionalExpr(cond, left, right Expr, sp diag.Span) *ConditionalExpr {
	return &ConditionalExpr{Cond: cond, Left: left, Right: right, span: span{sp}}
}

// InsideExpr is the set membership operator.
type InsideExpr struct {
	Left       Expr
	Candidates []Expr
	span
}

func (*InsideExpr) exprNode() {}

// NewInsideExpr constructs a membership operator node.
func NewInsideExpr(left Expr, candidates []Expr, sp diag.Span) *InsideExpr {
	return &InsideExpr{Left: left, Candidates: candidates, span: span{sp}}
}

// AssignmentExpr is an assignment usable in expression position inside
// constant-evaluation contexts.
type AssignmentExpr struct {
	Op    OpToken // OpAssign, or the base operator of a compound assign
	Left  Expr
	Right Expr
	span
}

func (*AssignmentExpr) exprNode() {}

// NewAssignmentExpr constructs an assignment node.
func NewAssignmentExpr(op OpToken, left, right Expr, sp diag.Span) *AssignmentExpr {
	return &AssignmentExpr{Op: op, Left: left, Right: right, span: span{sp}}
}

// ConcatExpr is a {a, b, c} concatenation.
type ConcatExpr struct {
	Operands []Expr
	span
}

func (*ConcatExpr) exprNode() {}

// NewConcatExpr constructs a concatenation node.
func NewConcatExpr(operands []Expr, sp diag.Span) *ConcatExpr {
	return &ConcatExpr{Operands: operands, span: span{sp}}
}

// ReplicationExpr is a {n{...}} multiple concatenation.
type ReplicationExpr struct {
	Count Expr
	Inner *ConcatExpr
	span
}

func (*ReplicationExpr) exprNode() {}

// NewReplicationExpr constructs a multiple-concatenation node.
func NewReplicationExpr(count Expr, inner *ConcatExpr, sp diag.Span) *ReplicationExpr {
	return &ReplicationExpr{Count: count, Inner: inner, span: span{sp}}
}

// IndexExpr selects a single element of a vector or array.
type IndexExpr struct {
	Value Expr
	Index Expr
	span
}

func (*IndexExpr) exprNode() {}

// NewIndexExpr constructs an element select node.
func NewIndexExpr(value, index Expr, sp diag.Span) *IndexExpr {
	return &IndexExpr{Value: value, Index: index, span: span{sp}}
}

// RangeKind distinguishes the three range select forms.
type RangeKind uint8

const (
	RangeSimple      RangeKind = iota // [msb:lsb]
	RangeIndexedUp                    // [base +: width]
	RangeIndexedDown                  // [base -: width]
)

// RangeExpr selects a bit range of a vector or a slice of an array.
type RangeExpr struct {
	Value Expr
	Kind  RangeKind
	Left  Expr
	Right Expr
	span
}

func (*RangeExpr) exprNode() {}

// NewRangeExpr constructs a range select node.
func NewRangeExpr(value Expr, kind RangeKind, left, right Expr, sp diag.Span) *RangeExpr {
	return &RangeExpr{Value: value, Kind: kind, Left: left, Right: right, span: span{sp}}
}

// MemberAccessExpr selects a struct member.
type MemberAccessExpr struct {
	Value  Expr
	Member string
	span
}

func (*MemberAccessExpr) exprNode() {}

// NewMemberAccessExpr constructs a member access node.
func NewMemberAccessExpr(value Expr, member string, sp diag.Span) *MemberAccessExpr {
	return &MemberAccessExpr{Value: value, Member: member, span: span{sp}}
}

// InvocationExpr is a subroutine call. A nil argument entry denotes an
// explicitly elided (empty) argument.
type InvocationExpr struct {
	Target Expr // IdentifierName, HierarchicalName or SystemName
	Args   []Expr
	span
}

func (*InvocationExpr) exprNode() {}

// NewInvocationExpr constructs a call node.
func NewInvocationExpr(target Expr, args []Expr, sp diag.Span) *InvocationExpr {
	return &InvocationExpr{Target: target, Args: args, span: span{sp}}
}

// DataTypeExpr names a data type in expression position. Resolution to an
// actual type is delegated to the binder's TypeResolver.
type DataTypeExpr struct {
	Name string
	span
}

func (*DataTypeExpr) exprNode() {}

// NewDataTypeExpr constructs a data type reference node.
func NewDataTypeExpr(name string, sp diag.Span) *DataTypeExpr {
	return &DataTypeExpr{Name: name, span: span{sp}}
}

// CastExpr is a type'(expr) cast.
type CastExpr struct {
	Target  *DataTypeExpr
	Operand Expr
	span
}

func (*CastExpr) exprNode() {}

// NewCastExpr constructs a cast node.
func NewCastExpr(target *DataTypeExpr, operand Expr, sp diag.Span) *CastExpr {
	return &CastExpr{Target: target, Operand: operand, span: span{sp}}
}

// SignCastExpr is a signed'(expr) or unsigned'(expr) cast.
type SignCastExpr struct {
	Signed  bool
	Operand Expr
	span
}

func (*SignCastExpr) exprNode() {}

// NewSignCastExpr constructs a signedness cast node.
func NewSignCastExpr(signed bool, operand Expr, sp diag.Span) *SignCastExpr {
	return &SignCastExpr{Signed: signed, Operand: operand, span: span{sp}}
}

// SimpleAssignmentPattern is a positional '{a, b, c} aggregate literal.
type SimpleAssignmentPattern struct {
	Elements []Expr
	span
}

func (*SimpleAssignmentPattern) exprNode() {}

// NewSimpleAssignmentPattern constructs a positional pattern node.
func NewSimpleAssignmentPattern(elements []Expr, sp diag.Span) *SimpleAssignmentPattern {
	return &SimpleAssignmentPattern{Elements: elements, span: span{sp}}
}

// StructuredSetter is one key:value entry of a structured pattern. The
// key is nil for the default entry. The binder classifies non-default
// keys as member names, type names or index expressions.
type StructuredSetter struct {
	Key       Expr
	IsDefault bool
	Value     Expr
}

// StructuredAssignmentPattern is a keyed '{key: value, ...} aggregate
// literal.
type StructuredAssignmentPattern struct {
	Setters []StructuredSetter
	span
}

func (*StructuredAssignmentPattern) exprNode() {}

// NewStructuredAssignmentPattern constructs a keyed pattern node.
func NewStructuredAssignmentPattern(setters []StructuredSetter, sp diag.Span) *StructuredAssignmentPattern {
	return &StructuredAssignmentPattern{Setters: setters, span: span{sp}}
}

// ReplicatedAssignmentPattern is a '{n{...}} aggregate literal.
type ReplicatedAssignmentPattern struct {
	Count    Expr
	Elements []Expr
	span
}

func (*ReplicatedAssignmentPattern) exprNode() {}

// NewReplicatedAssignmentPattern constructs a replicated pattern node.
func NewReplicatedAssignmentPattern(count Expr, elements []Expr, sp diag.Span) *ReplicatedAssignmentPattern {
	return &ReplicatedAssignmentPattern{Count: count, Elements: elements, span: span{sp}}
}

// ParenExpr is a parenthesized expression.
type ParenExpr struct {
	Inner Expr
	span
}

func (*ParenExpr) exprNode() {}

// NewParenExpr constructs a parenthesized expression node.
func NewParenExpr(inner Expr, sp diag.Span) *ParenExpr {
	return &ParenExpr{Inner: inner, span: span{sp}}
}
