package binding

import (
	"fmt"
	"math"
	"math/big"

	"github.com/brightclark/slang/internal/constant"
	"github.com/brightclark/slang/internal/diag"
	"github.com/brightclark/slang/internal/types"
)

// contextDetermined revisits a self-determined operand whose final type
// is forced by an enclosing operator. Operands already of the combined
// type pass through; unbased unsized literals re-materialize at the new
// width with their fill bit replicated; everything else is wrapped in an
// implicit conversion and, when constant, re-folded under the new type.
func contextDetermined(ctx *BindContext, expr Expression, newType types.Type) Expression {
	if expr.Bad() || types.IsError(newType) {
		return expr
	}
	if types.Matches(expr.Type(), newType) {
		return expr
	}

	if lit, ok := expr.(*UnbasedUnsizedLiteralExpr); ok && types.IsIntegral(newType) {
		return newUnbasedUnsizedLiteral(lit.Bit, newType, lit.Span())
	}
	return implicitConversion(ctx, newType, expr)
}

// implicitConversion wraps expr in an implicit conversion node to the
// given type, folding through the wrapper when the operand is constant.
func implicitConversion(_ *BindContext, typ types.Type, expr Expression) Expression {
	conv := &ConversionExpr{
		base:       newBase(KindConversion, typ, expr.Span()),
		IsImplicit: true,
		Operand:    expr,
	}
	if cv := expr.Constant(); cv.IsConstant() {
		if folded := convertValue(cv, expr.Type(), typ); folded.IsConstant() {
			conv.setConstant(folded)
		}
	}
	return conv
}

// ConvertAssignment determines whether expr can be used where type is
// expected, as if assigned without a cast. Widening and sign/state
// changes insert exactly one implicit conversion; narrowing without an
// explicit cast and incompatible aggregate shapes are binding errors.
func ConvertAssignment(ctx *BindContext, typ types.Type, expr Expression, location diag.Span) Expression {
	if expr.Bad() || types.IsError(typ) {
		return badExpr(ctx, expr)
	}
	et := expr.Type()
	if types.Matches(et, typ) {
		return expr
	}

	switch {
	case types.IsIntegral(typ) && types.IsIntegral(et):
		tw, ew := types.BitWidth(typ), types.BitWidth(et)
		if tw < ew {
			ctx.reportError(diag.CodeNarrowingConversion,
				fmt.Sprintf("implicit conversion from %s to narrower type %s requires an explicit cast", et, typ),
				location)
			return badExpr(ctx, expr)
		}
		return implicitConversion(ctx, typ, expr)

	case types.IsReal(typ) && types.IsNumeric(et):
		return implicitConversion(ctx, typ, expr)

	case types.IsIntegral(typ) && types.IsReal(et):
		// Reals round to integral targets only through an explicit cast.
		ctx.reportError(diag.CodeNoImplicitConversion,
			fmt.Sprintf("value of type %s cannot be implicitly converted to %s", et, typ),
			location)
		return badExpr(ctx, expr)

	case types.IsString(typ) && isImplicitString(expr):
		return implicitConversion(ctx, typ, expr)

	case types.IsAggregate(typ) || types.IsAggregate(et):
		ctx.reportError(diag.CodeNoImplicitConversion,
			fmt.Sprintf("incompatible aggregate shapes: %s and %s", et, typ),
			location)
		return badExpr(ctx, expr)

	default:
		ctx.reportError(diag.CodeNoImplicitConversion,
			fmt.Sprintf("value of type %s cannot be implicitly converted to %s", et, typ),
			location)
		return badExpr(ctx, expr)
	}
}

// isImplicitString reports whether the expression is a string literal or
// otherwise implicitly convertible to a string.
func isImplicitString(expr Expression) bool {
	switch e := expr.(type) {
	case *StringLiteralExpr:
		return true
	case *ConcatenationExpr:
		for _, op := range e.Operands {
			if !isImplicitString(op) {
				return false
			}
		}
		return true
	case *ConversionExpr:
		return e.IsImplicit && isImplicitString(e.Operand)
	default:
		return types.IsString(expr.Type())
	}
}

// convertValue folds a value through a type conversion. An impossible
// conversion yields the not-a-constant marker; the binder has already
// validated legality, so that only happens for unknown-shaped input.
func convertValue(v constant.Value, from, to types.Type) constant.Value {
	if !v.IsConstant() {
		return constant.Invalid()
	}
	switch {
	case types.IsIntegral(to):
		switch v.Kind() {
		case constant.KindInteger:
			out := v.Integer().Resize(types.BitWidth(to)).AsSigned(types.IsSigned(to))
			if !types.IsFourState(to) {
				out = xToZero(out)
			}
			return constant.IntValue(out)
		case constant.KindReal:
			r := v.Real()
			if math.IsNaN(r) || math.IsInf(r, 0) {
				return constant.IntValue(constant.AllX(types.BitWidth(to), types.IsSigned(to)))
			}
			b, _ := big.NewFloat(math.Round(r)).Int(nil)
			return constant.IntValue(constant.FromBig(types.BitWidth(to), b, types.IsSigned(to)))
		default:
			return constant.Invalid()
		}

	case types.IsReal(to):
		switch v.Kind() {
		case constant.KindReal:
			return v
		case constant.KindInteger:
			b, ok := v.Integer().Big()
			if !ok {
				return constant.Invalid()
			}
			f, _ := new(big.Float).SetInt(b).Float64()
			return constant.RealValue(f)
		default:
			return constant.Invalid()
		}

	case types.IsString(to):
		switch v.Kind() {
		case constant.KindString:
			return v
		case constant.KindInteger:
			return constant.StringValue(integerToString(v.Integer()))
		default:
			return constant.Invalid()
		}

	default:
		if types.Matches(from, to) {
			return v
		}
		return constant.Invalid()
	}
}

// xToZero collapses unknown bits to zero for two-state targets.
func xToZero(v constant.Integer) constant.Integer {
	bits := make([]constant.Bit, v.Width())
	for n := range bits {
		if v.Bit(n) == constant.L1 {
			bits[n] = constant.L1
		}
	}
	return constant.FromBits(bits, v.IsSigned())
}

// integerToString decodes an integer as the packed ASCII form used by
// string conversions, most significant byte first.
func integerToString(v constant.Integer) string {
	w := v.Width()
	out := make([]byte, 0, (w+7)/8)
	for pos := ((w + 7) / 8) * 8; pos > 0; pos -= 8 {
		b, ok := v.Slice(pos-8, 8).Uint64()
		if ok && b != 0 {
			out = append(out, byte(b))
		}
	}
	return string(out)
}
