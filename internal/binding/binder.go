package binding

import (
	"fmt"

	"github.com/brightclark/slang/internal/constant"
	"github.com/brightclark/slang/internal/diag"
	"github.com/brightclark/slang/internal/syntax"
	"github.com/brightclark/slang/internal/types"
)

// BindFlags adjust binding behavior for particular contexts.
type BindFlags uint8

const (
	FlagNone BindFlags = 0
	// FlagConstant marks a context that requires a constant expression,
	// rejecting hierarchical references at bind time.
	FlagConstant BindFlags = 1 << iota
)

// TypeResolver resolves data type syntax to an interned type. The real
// implementation lives with the type construction machinery.
type TypeResolver interface {
	Resolve(dt *syntax.DataTypeExpr) types.Type
}

// BindContext carries everything the binder needs from its collaborators:
// a scope for name lookup, a lookup location for visibility rules, a type
// resolver and a diagnostic sink.
type BindContext struct {
	Scope    types.Scope
	Lookup   types.LookupLocation
	Resolver TypeResolver
	Sink     *diag.Sink
	Flags    BindFlags
}

func (ctx *BindContext) reportError(code diag.Code, msg string, span diag.Span) {
	ctx.Sink.Error(diag.StageBinder, code, msg, span)
}

func (ctx *BindContext) inConstant() bool { return ctx.Flags&FlagConstant != 0 }

func (ctx *BindContext) withFlags(flags BindFlags) *BindContext {
	if flags == FlagNone {
		return ctx
	}
	c := *ctx
	c.Flags |= flags
	return &c
}

// badExpr wraps expr (which may be nil) in the invalid sentinel. The
// caller reports the diagnostic; child invalids have already done so.
func badExpr(_ *BindContext, expr Expression) Expression {
	return newInvalid(expr)
}

// Bind constructs a typed expression tree from syntax. Semantic
// violations are recorded on the context's sink and produce an Invalid
// node; binding never fails fatally on bad user input.
func Bind(s syntax.Expr, ctx *BindContext, flags BindFlags) Expression {
	return create(s, ctx.withFlags(flags), nil)
}

// BindAssignment binds rhs in assignment context against the target type
// and applies ConvertAssignment to the result.
func BindAssignment(target types.Type, rhs syntax.Expr, location diag.Span, ctx *BindContext) Expression {
	expr := create(rhs, ctx, target)
	return ConvertAssignment(ctx, target, expr, location)
}

// create is the central dispatch from syntax shape to bound variant.
// assignmentTarget is non-nil only when binding the right side of an
// assignment-like context; aggregate patterns require it. Reaching the
// default branch means the syntax tree is malformed, which is a defect
// in the producer, not a user error.
func create(s syntax.Expr, ctx *BindContext, assignmentTarget types.Type) Expression {
	switch e := s.(type) {
	case *syntax.IntegerLiteral:
		return bindIntegerLiteral(e)
	case *syntax.RealLiteral:
		lit := &RealLiteralExpr{base: newBase(KindRealLiteral, types.RealT, e.Span()), Value: e.Value}
		lit.setConstant(constant.RealValue(e.Value))
		return lit
	case *syntax.UnbasedUnsizedLiteral:
		return newUnbasedUnsizedLiteral(e.Bit, types.LogicType, e.Span())
	case *syntax.StringLiteral:
		lit := &StringLiteralExpr{base: newBase(KindStringLiteral, types.StringT, e.Span()), Value: e.Value}
		lit.setConstant(constant.StringValue(e.Value))
		return lit
	case *syntax.NullLiteral:
		lit := &NullLiteralExpr{base: newBase(KindNullLiteral, types.NullT, e.Span())}
		lit.setConstant(constant.NullValue())
		return lit
	case *syntax.IdentifierName:
		return bindName(e, ctx)
	case *syntax.HierarchicalName:
		return bindHierarchicalName(e, ctx)
	case *syntax.ParenExpr:
		return create(e.Inner, ctx, assignmentTarget)
	case *syntax.UnaryExpr:
		return bindUnaryExpr(e, ctx)
	case *syntax.BinaryExpr:
		return bindBinaryExpr(e, ctx)
	case *syntax.ConditionalExpr:
		return bindConditionalExpr(e, ctx, assignmentTarget)
	case *syntax.InsideExpr:
		return bindInsideExpr(e, ctx)
	case *syntax.AssignmentExpr:
		return bindAssignmentExpr(e, ctx)
	case *syntax.ConcatExpr:
		return bindConcatExpr(e, ctx)
	case *syntax.ReplicationExpr:
		return bindReplicationExpr(e, ctx)
	case *syntax.IndexExpr:
		return bindIndexExpr(e, ctx)
	case *syntax.RangeExpr:
		return bindRangeExpr(e, ctx)
	case *syntax.MemberAccessExpr:
		return bindMemberAccess(e, ctx)
	case *syntax.InvocationExpr:
		return bindInvocation(e, ctx)
	case *syntax.CastExpr:
		return bindCastExpr(e, ctx)
	case *syntax.SignCastExpr:
		return bindSignCastExpr(e, ctx)
	case *syntax.DataTypeExpr:
		typ := ctx.Resolver.Resolve(e)
		return &DataTypeExpr{base: newBase(KindDataType, typ, e.Span())}
	case *syntax.SimpleAssignmentPattern, *syntax.StructuredAssignmentPattern,
		*syntax.ReplicatedAssignmentPattern:
		return bindAssignmentPattern(s, ctx, assignmentTarget)
	default:
		panic(fmt.Sprintf("binding: unexpected syntax node %T", s))
	}
}

// selfDetermined binds an operand with no knowledge of its siblings.
func selfDetermined(s syntax.Expr, ctx *BindContext) Expression {
	return create(s, ctx, nil)
}

func bindIntegerLiteral(e *syntax.IntegerLiteral) Expression {
	var typ types.Type
	v := e.Value
	fourState := v.HasUnknown()
	if e.Size > 0 {
		v = v.Resize(e.Size).AsSigned(e.Signed)
		typ = types.Packed(e.Size, e.Signed, fourState)
	} else {
		// Unsized literals take the 32-bit signed integer type.
		v = v.Resize(32).AsSigned(true)
		typ = types.Packed(32, true, fourState)
	}
	lit := &IntegerLiteralExpr{base: newBase(KindIntegerLiteral, typ, e.Span()), Value: v}
	lit.setConstant(constant.IntValue(v))
	return lit
}

func newUnbasedUnsizedLiteral(bit constant.Bit, typ types.Type, span diag.Span) Expression {
	lit := &UnbasedUnsizedLiteralExpr{base: newBase(KindUnbasedUnsizedLiteral, typ, span), Bit: bit}
	width := types.BitWidth(typ)
	if width > 0 {
		lit.setConstant(constant.IntValue(constant.Fill(width, bit, types.IsSigned(typ))))
	}
	return lit
}

func bindName(e *syntax.IdentifierName, ctx *BindContext) Expression {
	sym := ctx.Scope.Lookup(e.Name, ctx.Lookup)
	if sym == nil {
		ctx.reportError(diag.CodeUndefinedIdentifier,
			fmt.Sprintf("use of undeclared identifier %q", e.Name), e.Span())
		return badExpr(ctx, nil)
	}
	return fromSymbol(sym, false, e.Span(), ctx)
}

func bindHierarchicalName(e *syntax.HierarchicalName, ctx *BindContext) Expression {
	if ctx.inConstant() {
		ctx.reportError(diag.CodeHierarchicalNotAllowed,
			"hierarchical references are not allowed in constant expressions", e.Span())
		return badExpr(ctx, nil)
	}
	sym := ctx.Scope.LookupHierarchical(e.Parts)
	if sym == nil {
		ctx.reportError(diag.CodeUndefinedIdentifier,
			fmt.Sprintf("hierarchical name %q could not be resolved", joinParts(e.Parts)), e.Span())
		return badExpr(ctx, nil)
	}
	return fromSymbol(sym, true, e.Span(), ctx)
}

// fromSymbol builds a reference expression for a resolved symbol.
// Parameter references memoize the symbol's initializer as the folded
// constant.
func fromSymbol(sym types.Symbol, hierarchical bool, span diag.Span, ctx *BindContext) Expression {
	val, ok := sym.(*types.ValueSymbol)
	if !ok {
		ctx.reportError(diag.CodeNotAValue,
			fmt.Sprintf("%q does not refer to a value", sym.SymbolName()), span)
		return badExpr(ctx, nil)
	}
	expr := &NamedValueExpr{
		base:           newBase(KindNamedValue, val.Type, span),
		Symbol:         val,
		IsHierarchical: hierarchical,
	}
	if val.IsParameter && !hierarchical {
		if init := val.Initializer(); init.IsConstant() {
			expr.setConstant(init)
		}
	}
	return expr
}

func joinParts(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

func bindUnaryExpr(e *syntax.UnaryExpr, ctx *BindContext) Expression {
	op := unaryOperatorFor(e.Op, e.Postfix)
	operand := selfDetermined(e.Operand, ctx)
	if operand.Bad() {
		return badExpr(ctx, operand)
	}
	ot := operand.Type()

	var resultType types.Type
	switch op {
	case UnaryPlus, UnaryMinus:
		if !types.IsNumeric(ot) {
			return badUnary(ctx, op, operand, e.Span())
		}
		resultType = ot
	case UnaryBitwiseNot:
		if !types.IsIntegral(ot) {
			return badUnary(ctx, op, operand, e.Span())
		}
		resultType = ot
	case UnaryBitwiseAnd, UnaryBitwiseOr, UnaryBitwiseXor,
		UnaryBitwiseNand, UnaryBitwiseNor, UnaryBitwiseXnor:
		if !types.IsIntegral(ot) {
			return badUnary(ctx, op, operand, e.Span())
		}
		resultType = singleBitType(ot, ot)
	case UnaryLogicalNot:
		if !types.IsNumeric(ot) {
			return badUnary(ctx, op, operand, e.Span())
		}
		resultType = singleBitType(ot, ot)
	default:
		// Increment and decrement mutate their operand.
		if !types.IsNumeric(ot) {
			return badUnary(ctx, op, operand, e.Span())
		}
		if !isLValue(operand) {
			ctx.reportError(diag.CodeBadAssignmentTarget,
				"operand of increment or decrement must be assignable", e.Span())
			return badExpr(ctx, operand)
		}
		resultType = ot
	}

	expr := &UnaryOpExpr{
		base:    newBase(KindUnaryOp, resultType, e.Span()),
		Op:      op,
		Operand: operand,
	}
	if !isIncDec(op) {
		if folded := evalUnaryOperator(op, operand.Constant()); folded.IsConstant() {
			expr.setConstant(folded)
		}
	}
	return expr
}

func isIncDec(op UnaryOperator) bool {
	switch op {
	case UnaryPreincrement, UnaryPredecrement, UnaryPostincrement, UnaryPostdecrement:
		return true
	default:
		return false
	}
}

func badUnary(ctx *BindContext, op UnaryOperator, operand Expression, span diag.Span) Expression {
	ctx.reportError(diag.CodeBadUnaryOperand,
		fmt.Sprintf("invalid operand type %s for unary operator", operand.Type()), span)
	return badExpr(ctx, operand)
}

func bindBinaryExpr(e *syntax.BinaryExpr, ctx *BindContext) Expression {
	op := binaryOperatorFor(e.Op)
	lhs := selfDetermined(e.Left, ctx)
	rhs := selfDetermined(e.Right, ctx)
	return bindBinaryOperator(op, lhs, rhs, e.Span(), ctx)
}

// bindBinaryOperator applies the two-pass typing algorithm: both operands
// arrive self-determined, the combined operator type is computed from the
// tables, and context-determined propagation revisits whichever operands
// must agree with it.
func bindBinaryOperator(op BinaryOperator, lhs, rhs Expression, span diag.Span, ctx *BindContext) Expression {
	if lhs.Bad() || rhs.Bad() {
		return badExpr(ctx, nil)
	}
	lt, rt := lhs.Type(), rhs.Type()

	bothNumeric := types.IsNumeric(lt) && types.IsNumeric(rt)
	bothIntegral := types.IsIntegral(lt) && types.IsIntegral(rt)
	if isIntegralOnly(op) && !bothIntegral {
		return badBinary(ctx, lhs, rhs, span)
	}

	var resultType types.Type
	switch classify(op) {
	case classArithmetic, classBitwise:
		if !bothNumeric {
			return badBinary(ctx, lhs, rhs, span)
		}
		combined := binaryOperatorType(lt, rt, false)
		lhs = contextDetermined(ctx, lhs, combined)
		rhs = contextDetermined(ctx, rhs, combined)
		resultType = combined

	case classRelational:
		if !bothNumeric {
			return badBinary(ctx, lhs, rhs, span)
		}
		combined := binaryOperatorType(lt, rt, false)
		lhs = contextDetermined(ctx, lhs, combined)
		rhs = contextDetermined(ctx, rhs, combined)
		resultType = singleBitType(lt, rt)

	case classEquality, classCaseEq:
		switch {
		case bothNumeric:
			combined := binaryOperatorType(lt, rt, false)
			lhs = contextDetermined(ctx, lhs, combined)
			rhs = contextDetermined(ctx, rhs, combined)
		case types.Matches(lt, rt):
			// Strings, null and matching aggregates compare directly.
		default:
			return badBinary(ctx, lhs, rhs, span)
		}
		if classify(op) == classCaseEq {
			resultType = types.BitType
		} else {
			resultType = singleBitType(lt, rt)
		}

	case classLogical:
		// Logical operands stay self-determined.
		if !bothNumeric {
			return badBinary(ctx, lhs, rhs, span)
		}
		resultType = singleBitType(lt, rt)

	case classShift, classPower:
		// The left operand is typed by context; the amount or exponent
		// stays self-determined.
		if !bothIntegral {
			return badBinary(ctx, lhs, rhs, span)
		}
		result := types.Packed(types.BitWidth(lt), types.IsSigned(lt),
			types.IsFourState(lt) || types.IsFourState(rt))
		lhs = contextDetermined(ctx, lhs, result)
		resultType = result
	}

	expr := &BinaryOpExpr{
		base:  newBase(KindBinaryOp, resultType, span),
		Op:    op,
		Left:  lhs,
		Right: rhs,
	}
	if folded := evalBinaryOperator(op, lhs.Constant(), rhs.Constant()); folded.IsConstant() {
		expr.setConstant(fitResult(folded, resultType))
	}
	return expr
}

// fitResult adjusts a folded operator result to the node's declared
// result type; single-bit predicates already match.
func fitResult(v constant.Value, typ types.Type) constant.Value {
	if v.Kind() != constant.KindInteger || !types.IsIntegral(typ) {
		return v
	}
	i := v.Integer()
	if i.Width() == types.BitWidth(typ) && i.IsSigned() == types.IsSigned(typ) {
		return v
	}
	return constant.IntValue(i.Resize(types.BitWidth(typ)).AsSigned(types.IsSigned(typ)))
}

func badBinary(ctx *BindContext, lhs, rhs Expression, span diag.Span) Expression {
	ctx.reportError(diag.CodeBadBinaryOperands,
		fmt.Sprintf("invalid operand types %s and %s for binary operator", lhs.Type(), rhs.Type()),
		span)
	return badExpr(ctx, nil)
}

func bindConditionalExpr(e *syntax.ConditionalExpr, ctx *BindContext, assignmentTarget types.Type) Expression {
	cond := selfDetermined(e.Cond, ctx)
	lhs := create(e.Left, ctx, assignmentTarget)
	rhs := create(e.Right, ctx, assignmentTarget)
	if cond.Bad() || lhs.Bad() || rhs.Bad() {
		return badExpr(ctx, nil)
	}
	if !types.IsNumeric(cond.Type()) {
		ctx.reportError(diag.CodeBadConditionalValue,
			fmt.Sprintf("condition of type %s cannot be converted to a predicate", cond.Type()),
			e.Cond.Span())
		return badExpr(ctx, nil)
	}

	lt, rt := lhs.Type(), rhs.Type()
	var resultType types.Type
	switch {
	case types.IsNumeric(lt) && types.IsNumeric(rt):
		combined := binaryOperatorType(lt, rt, false)
		lhs = contextDetermined(ctx, lhs, combined)
		rhs = contextDetermined(ctx, rhs, combined)
		resultType = combined
	case types.Matches(lt, rt):
		resultType = lt
	default:
		ctx.reportError(diag.CodeBadConditionalValue,
			fmt.Sprintf("conditional arms have incompatible types %s and %s", lt, rt), e.Span())
		return badExpr(ctx, nil)
	}

	expr := &ConditionalOpExpr{
		base:  newBase(KindConditionalOp, resultType, e.Span()),
		Cond:  cond,
		Left:  lhs,
		Right: rhs,
	}
	if folded := foldConditional(cond.Constant(), lhs.Constant(), rhs.Constant(), resultType); folded.IsConstant() {
		expr.setConstant(folded)
	}
	return expr
}

// foldConditional folds ?: with four-state merge semantics: an unknown
// condition merges integral arms bitwise, yielding X wherever they
// disagree.
func foldConditional(cond, l, r constant.Value, typ types.Type) constant.Value {
	if !cond.IsConstant() {
		return constant.Invalid()
	}
	switch {
	case cond.IsTrue():
		return l
	case cond.IsFalse():
		return r
	default:
		if !l.IsConstant() || !r.IsConstant() ||
			l.Kind() != constant.KindInteger || r.Kind() != constant.KindInteger {
			return constant.Invalid()
		}
		return constant.IntValue(mergeUnknown(l.Integer(), r.Integer()))
	}
}

func mergeUnknown(l, r constant.Integer) constant.Integer {
	w := max(l.Width(), r.Width())
	bits := make([]constant.Bit, w)
	for n := 0; n < w; n++ {
		a, b := l.Bit(n), r.Bit(n)
		if a == b && !a.IsUnknown() {
			bits[n] = a
		} else {
			bits[n] = constant.LX
		}
	}
	return constant.FromBits(bits, l.IsSigned() && r.IsSigned())
}

func bindInsideExpr(e *syntax.InsideExpr, ctx *BindContext) Expression {
	results, ok := BindMembershipExpressions(ctx, "inside", false, true, e.Left, e.Candidates)
	if !ok {
		return badExpr(ctx, nil)
	}
	expr := &InsideExpr{
		base:       newBase(KindInside, types.LogicType, e.Span()),
		Left:       results[0],
		Candidates: results[1:],
	}
	return expr
}

// BindMembershipExpressions binds a value expression together with a list
// of comparison candidates so that all expressions jointly influence the
// common comparison type. It is used for case statements and the inside
// operator. wildcard restricts candidate types to integral kinds;
// unwrapUnpacked compares unpacked-array candidates against their element
// type instead of rejecting them. On failure diagnostics have already
// been issued and false is returned.
func BindMembershipExpressions(ctx *BindContext, keyword string, wildcard, unwrapUnpacked bool,
	valueExpr syntax.Expr, candidates []syntax.Expr) ([]Expression, bool) {

	value := selfDetermined(valueExpr, ctx)
	if value.Bad() {
		return nil, false
	}
	if !types.IsNumeric(value.Type()) && !types.IsString(value.Type()) {
		ctx.reportError(diag.CodeBadMembershipType,
			fmt.Sprintf("value of type %s cannot be compared in %s", value.Type(), keyword),
			valueExpr.Span())
		return nil, false
	}
	if wildcard && !types.IsIntegral(value.Type()) {
		ctx.reportError(diag.CodeBadMembershipType,
			fmt.Sprintf("%s with wildcard comparison requires integral types, not %s",
				keyword, value.Type()),
			valueExpr.Span())
		return nil, false
	}

	bound := make([]Expression, 0, len(candidates)+1)
	bound = append(bound, value)

	common := value.Type()
	unpacked := make([]bool, len(candidates))
	ok := true
	for i, cs := range candidates {
		cand := selfDetermined(cs, ctx)
		bound = append(bound, cand)
		if cand.Bad() {
			ok = false
			continue
		}
		ct := cand.Type()
		if unwrapUnpacked && types.IsUnpackedArray(ct) {
			ct = ct.(*types.FixedArray).Elem
			unpacked[i] = true
		}
		if wildcard && !types.IsIntegral(ct) {
			ctx.reportError(diag.CodeBadMembershipType,
				fmt.Sprintf("%s with wildcard comparison requires integral types, not %s", keyword, ct),
				cs.Span())
			ok = false
			continue
		}
		switch {
		case types.IsNumeric(common) && types.IsNumeric(ct):
			common = binaryOperatorType(common, ct, false)
		case types.Matches(common, ct):
			// Compatible as-is.
		default:
			ctx.reportError(diag.CodeBadMembershipType,
				fmt.Sprintf("type %s is not comparable with %s in %s", ct, common, keyword),
				cs.Span())
			ok = false
		}
	}
	if !ok {
		return nil, false
	}

	if types.IsNumeric(common) {
		bound[0] = contextDetermined(ctx, bound[0], common)
		for i := range candidates {
			if unpacked[i] {
				continue
			}
			bound[i+1] = contextDetermined(ctx, bound[i+1], common)
		}
	}
	return bound, true
}

func bindAssignmentExpr(e *syntax.AssignmentExpr, ctx *BindContext) Expression {
	lhs := selfDetermined(e.Left, ctx)
	if lhs.Bad() {
		return badExpr(ctx, lhs)
	}
	if !isLValue(lhs) {
		ctx.reportError(diag.CodeBadAssignmentTarget,
			"left side of assignment is not assignable", e.Left.Span())
		return badExpr(ctx, lhs)
	}

	var op *BinaryOperator
	var rhs Expression
	if e.Op == syntax.OpAssign {
		rhs = BindAssignment(lhs.Type(), e.Right, e.Span(), ctx)
	} else {
		bop := binaryOperatorFor(e.Op)
		op = &bop
		rhs = selfDetermined(e.Right, ctx)
		if rhs.Bad() {
			return badExpr(ctx, rhs)
		}
		combined := binaryOperatorType(lhs.Type(), rhs.Type(), false)
		if types.IsError(combined) {
			return badBinary(ctx, lhs, rhs, e.Span())
		}
		rhs = contextDetermined(ctx, rhs, combined)
	}
	if rhs.Bad() {
		return badExpr(ctx, rhs)
	}

	return &AssignmentExpr{
		base: newBase(KindAssignment, lhs.Type(), e.Span()),
		Op:   op,
		Lhs:  lhs,
		Rhs:  rhs,
	}
}

func bindConcatExpr(e *syntax.ConcatExpr, ctx *BindContext) Expression {
	operands := make([]Expression, 0, len(e.Operands))
	bad := false
	anyString := false
	totalWidth := 0
	fourState := false
	for _, os := range e.Operands {
		op := selfDetermined(os, ctx)
		operands = append(operands, op)
		if op.Bad() {
			bad = true
			continue
		}
		ot := op.Type()
		switch {
		case types.IsIntegral(ot):
			totalWidth += types.BitWidth(ot)
			fourState = fourState || types.IsFourState(ot)
		case types.IsString(ot):
			anyString = true
		default:
			ctx.reportError(diag.CodeBadConcatOperand,
				fmt.Sprintf("value of type %s cannot appear in a concatenation", ot), os.Span())
			bad = true
		}
	}
	if bad {
		return badExpr(ctx, nil)
	}

	var resultType types.Type
	if anyString {
		for i, op := range operands {
			if !isImplicitString(op) {
				ctx.reportError(diag.CodeBadConcatOperand,
					"string concatenation requires all operands to be strings", e.Operands[i].Span())
				return badExpr(ctx, nil)
			}
			if !types.IsString(op.Type()) {
				operands[i] = implicitConversion(ctx, types.StringT, op)
			}
		}
		resultType = types.StringT
	} else {
		resultType = types.Packed(totalWidth, false, fourState)
	}

	expr := &ConcatenationExpr{
		base:     newBase(KindConcatenation, resultType, e.Span()),
		Operands: operands,
	}
	if folded := foldConcat(operands, anyString); folded.IsConstant() {
		expr.setConstant(folded)
	}
	return expr
}

func foldConcat(operands []Expression, asString bool) constant.Value {
	if asString {
		out := ""
		for _, op := range operands {
			cv := op.Constant()
			if cv.Kind() != constant.KindString {
				return constant.Invalid()
			}
			out += cv.Str()
		}
		return constant.StringValue(out)
	}
	parts := make([]constant.Integer, 0, len(operands))
	for _, op := range operands {
		cv := op.Constant()
		if cv.Kind() != constant.KindInteger {
			return constant.Invalid()
		}
		parts = append(parts, cv.Integer())
	}
	return constant.IntValue(constant.Concat(parts...))
}

func bindReplicationExpr(e *syntax.ReplicationExpr, ctx *BindContext) Expression {
	count, countVal, ok := bindConstantCount(e.Count, ctx)
	if !ok {
		return badExpr(ctx, count)
	}
	operand := selfDetermined(e.Inner, ctx)
	if operand.Bad() {
		return badExpr(ctx, operand)
	}
	if !types.IsIntegral(operand.Type()) {
		ctx.reportError(diag.CodeBadConcatOperand,
			fmt.Sprintf("value of type %s cannot be replicated", operand.Type()), e.Inner.Span())
		return badExpr(ctx, operand)
	}

	width := countVal * types.BitWidth(operand.Type())
	resultType := types.Packed(width, false, types.IsFourState(operand.Type()))
	expr := &ReplicationExpr{
		base:    newBase(KindReplication, resultType, e.Span()),
		Count:   count,
		Operand: operand,
	}
	if cv := operand.Constant(); cv.Kind() == constant.KindInteger {
		expr.setConstant(constant.IntValue(cv.Integer().Replicate(countVal)))
	}
	return expr
}

// bindConstantCount binds a replication or pattern count, which must fold
// to a non-negative constant integer.
func bindConstantCount(s syntax.Expr, ctx *BindContext) (Expression, int, bool) {
	count := selfDetermined(s, ctx)
	if count.Bad() {
		return count, 0, false
	}
	cv := count.Constant()
	if cv.Kind() != constant.KindInteger {
		ctx.reportError(diag.CodeBadReplicationCount,
			"replication count must be a constant integer", s.Span())
		return count, 0, false
	}
	n, ok := cv.Integer().Int64()
	if !ok || n < 0 {
		ctx.reportError(diag.CodeBadReplicationCount,
			fmt.Sprintf("replication count %s must be non-negative and known", cv), s.Span())
		return count, 0, false
	}
	return count, int(n), true
}

func bindIndexExpr(e *syntax.IndexExpr, ctx *BindContext) Expression {
	value := selfDetermined(e.Value, ctx)
	index := selfDetermined(e.Index, ctx)
	if value.Bad() || index.Bad() {
		return badExpr(ctx, nil)
	}
	if !types.IsIntegral(index.Type()) {
		ctx.reportError(diag.CodeIndexMustBeIntegral,
			fmt.Sprintf("index of type %s is not integral", index.Type()), e.Index.Span())
		return badExpr(ctx, nil)
	}

	elemType, ok := elementTypeOf(value.Type())
	if !ok {
		ctx.reportError(diag.CodeCannotIndex,
			fmt.Sprintf("value of type %s cannot be indexed", value.Type()), e.Span())
		return badExpr(ctx, value)
	}

	expr := &ElementSelectExpr{
		base:     newBase(KindElementSelect, elemType, e.Span()),
		Value:    value,
		Selector: index,
	}
	if folded := foldElementSelect(value.Constant(), index.Constant(), value.Type(), elemType); folded.IsConstant() {
		expr.setConstant(folded)
	}
	return expr
}

// elementTypeOf returns the element type produced by indexing t.
func elementTypeOf(t types.Type) (types.Type, bool) {
	switch u := t.(type) {
	case *types.Integral:
		if u.FourState {
			return types.LogicType, true
		}
		return types.BitType, true
	case *types.FixedArray:
		return u.Elem, true
	default:
		return nil, false
	}
}

func bindRangeExpr(e *syntax.RangeExpr, ctx *BindContext) Expression {
	value := selfDetermined(e.Value, ctx)
	left := selfDetermined(e.Left, ctx)
	right := selfDetermined(e.Right, ctx)
	if value.Bad() || left.Bad() || right.Bad() {
		return badExpr(ctx, nil)
	}
	if !types.IsIntegral(left.Type()) || !types.IsIntegral(right.Type()) {
		ctx.reportError(diag.CodeIndexMustBeIntegral, "range bounds must be integral", e.Span())
		return badExpr(ctx, nil)
	}

	elemType, ok := elementTypeOf(value.Type())
	if !ok {
		ctx.reportError(diag.CodeCannotIndex,
			fmt.Sprintf("value of type %s cannot be sliced", value.Type()), e.Span())
		return badExpr(ctx, value)
	}

	kind := rangeKindFor(e.Kind)
	var width int
	switch kind {
	case RangeSimple:
		l, lok := constantIndex(left)
		r, rok := constantIndex(right)
		if !lok || !rok {
			ctx.reportError(diag.CodeRangeNotConstant,
				"bounds of a simple range select must be constant", e.Span())
			return badExpr(ctx, nil)
		}
		if l < r {
			ctx.reportError(diag.CodeRangeOutOfBounds,
				fmt.Sprintf("range [%d:%d] is reversed", l, r), e.Span())
			return badExpr(ctx, nil)
		}
		width = l - r + 1
	default:
		w, wok := constantIndex(right)
		if !wok || w <= 0 {
			ctx.reportError(diag.CodeRangeNotConstant,
				"width of an indexed range select must be a positive constant", e.Right.Span())
			return badExpr(ctx, nil)
		}
		width = w
	}

	var resultType types.Type
	if types.IsUnpackedArray(value.Type()) {
		resultType = &types.FixedArray{Elem: elemType, Size: width}
	} else {
		resultType = types.Packed(width*max(types.BitWidth(elemType), 1), false,
			types.IsFourState(value.Type()))
	}

	expr := &RangeSelectExpr{
		base:          newBase(KindRangeSelect, resultType, e.Span()),
		SelectionKind: kind,
		Value:         value,
		Left:          left,
		Right:         right,
	}
	if folded := foldRangeSelect(expr); folded.IsConstant() {
		expr.setConstant(folded)
	}
	return expr
}

func rangeKindFor(k syntax.RangeKind) RangeSelectionKind {
	switch k {
	case syntax.RangeSimple:
		return RangeSimple
	case syntax.RangeIndexedUp:
		return RangeIndexedUp
	default:
		return RangeIndexedDown
	}
}

// constantIndex extracts a folded integer index.
func constantIndex(e Expression) (int, bool) {
	cv := e.Constant()
	if cv.Kind() != constant.KindInteger {
		return 0, false
	}
	n, ok := cv.Integer().Int64()
	if !ok {
		return 0, false
	}
	return int(n), true
}

func bindMemberAccess(e *syntax.MemberAccessExpr, ctx *BindContext) Expression {
	value := selfDetermined(e.Value, ctx)
	if value.Bad() {
		return badExpr(ctx, value)
	}
	st, ok := value.Type().(*types.Struct)
	if !ok {
		ctx.reportError(diag.CodeMemberOfScalar,
			fmt.Sprintf("value of type %s has no members", value.Type()), e.Span())
		return badExpr(ctx, value)
	}
	field := st.FieldByName(e.Member)
	if field == nil {
		ctx.reportError(diag.CodeUnknownMember,
			fmt.Sprintf("no member %q in %s", e.Member, st), e.Span())
		return badExpr(ctx, value)
	}

	expr := &MemberAccessExpr{
		base:  newBase(KindMemberAccess, field.Type, e.Span()),
		Field: field,
		Value: value,
	}
	if folded := foldMemberAccess(value.Constant(), st, field); folded.IsConstant() {
		expr.setConstant(folded)
	}
	return expr
}

func bindCastExpr(e *syntax.CastExpr, ctx *BindContext) Expression {
	target := ctx.Resolver.Resolve(e.Target)
	operand := create(e.Operand, ctx, target)
	if operand.Bad() || types.IsError(target) {
		return badExpr(ctx, operand)
	}
	if !castLegal(target, operand.Type()) {
		ctx.reportError(diag.CodeBadCast,
			fmt.Sprintf("cannot cast value of type %s to %s", operand.Type(), target), e.Span())
		return badExpr(ctx, operand)
	}

	expr := &ConversionExpr{
		base:       newBase(KindConversion, target, e.Span()),
		IsImplicit: false,
		Operand:    operand,
	}
	if cv := operand.Constant(); cv.IsConstant() {
		if folded := convertValue(cv, operand.Type(), target); folded.IsConstant() {
			expr.setConstant(folded)
		}
	}
	return expr
}

func castLegal(target, source types.Type) bool {
	switch {
	case types.IsIntegral(target):
		return types.IsIntegral(source) || types.IsReal(source) || types.IsString(source)
	case types.IsReal(target):
		return types.IsNumeric(source)
	case types.IsString(target):
		return types.IsIntegral(source) || types.IsString(source)
	default:
		return types.Matches(target, source)
	}
}

func bindSignCastExpr(e *syntax.SignCastExpr, ctx *BindContext) Expression {
	operand := selfDetermined(e.Operand, ctx)
	if operand.Bad() {
		return badExpr(ctx, operand)
	}
	if !types.IsIntegral(operand.Type()) {
		ctx.reportError(diag.CodeBadCast,
			fmt.Sprintf("signedness cast requires an integral value, not %s", operand.Type()),
			e.Span())
		return badExpr(ctx, operand)
	}
	ot := operand.Type()
	target := types.Packed(types.BitWidth(ot), e.Signed, types.IsFourState(ot))

	expr := &ConversionExpr{
		base:       newBase(KindConversion, target, e.Span()),
		IsImplicit: false,
		Operand:    operand,
	}
	if cv := operand.Constant(); cv.IsConstant() {
		if folded := convertValue(cv, ot, target); folded.IsConstant() {
			expr.setConstant(folded)
		}
	}
	return expr
}
