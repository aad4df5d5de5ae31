package binding

import (
	"fmt"
	"math"
	"math/big"

	"github.com/brightclark/slang/internal/constant"
	"github.com/brightclark/slang/internal/syntax"
	"github.com/brightclark/slang/internal/types"
)

// UnaryOperator identifies a bound unary operation.
type UnaryOperator uint8

const (
	UnaryPlus UnaryOperator = iota
	UnaryMinus
	UnaryBitwiseNot
	UnaryBitwiseAnd
	UnaryBitwiseOr
	UnaryBitwiseXor
	UnaryBitwiseNand
	UnaryBitwiseNor
	UnaryBitwiseXnor
	UnaryLogicalNot
	UnaryPreincrement
	UnaryPredecrement
	UnaryPostincrement
	UnaryPostdecrement
)

var unaryOperatorNames = [...]string{
	UnaryPlus:          "Plus",
	UnaryMinus:         "Minus",
	UnaryBitwiseNot:    "BitwiseNot",
	UnaryBitwiseAnd:    "BitwiseAnd",
	UnaryBitwiseOr:     "BitwiseOr",
	UnaryBitwiseXor:    "BitwiseXor",
	UnaryBitwiseNand:   "BitwiseNand",
	UnaryBitwiseNor:    "BitwiseNor",
	UnaryBitwiseXnor:   "BitwiseXnor",
	UnaryLogicalNot:    "LogicalNot",
	UnaryPreincrement:  "Preincrement",
	UnaryPredecrement:  "Predecrement",
	UnaryPostincrement: "Postincrement",
	UnaryPostdecrement: "Postdecrement",
}

func (op UnaryOperator) String() string {
	if int(op) < len(unaryOperatorNames) {
		return unaryOperatorNames[op]
	}
	return fmt.Sprintf("UnaryOperator(%d)", op)
}

// BinaryOperator identifies a bound binary operation.
type BinaryOperator uint8

const (
	BinaryAdd BinaryOperator = iota
	BinarySubtract
	BinaryMultiply
	BinaryDivide
	BinaryMod
	BinaryAnd
	BinaryOr
	BinaryXor
	BinaryXnor
	BinaryEquality
	BinaryInequality
	BinaryCaseEquality
	BinaryCaseInequality
	BinaryWildcardEquality
	BinaryWildcardInequality
	BinaryGreaterThanEqual
	BinaryGreaterThan
	BinaryLessThanEqual
	BinaryLessThan
	BinaryLogicalAnd
	BinaryLogicalOr
	BinaryLogicalImplication
	BinaryLogicalEquivalence
	BinaryLogicalShiftLeft
	BinaryLogicalShiftRight
	BinaryArithmeticShiftLeft
	BinaryArithmeticShiftRight
	BinaryPower
)

var binaryOperatorNames = [...]string{
	BinaryAdd:                  "Add",
	BinarySubtract:             "Subtract",
	BinaryMultiply:             "Multiply",
	BinaryDivide:               "Divide",
	BinaryMod:                  "Mod",
	BinaryAnd:                  "And",
	BinaryOr:                   "Or",
	BinaryXor:                  "Xor",
	BinaryXnor:                 "Xnor",
	BinaryEquality:             "Equality",
	BinaryInequality:           "Inequality",
	BinaryCaseEquality:         "CaseEquality",
	BinaryCaseInequality:       "CaseInequality",
	BinaryWildcardEquality:     "WildcardEquality",
	BinaryWildcardInequality:   "WildcardInequality",
	BinaryGreaterThanEqual:     "GreaterThanEqual",
	BinaryGreaterThan:          "GreaterThan",
	BinaryLessThanEqual:        "LessThanEqual",
	BinaryLessThan:             "LessThan",
	BinaryLogicalAnd:           "LogicalAnd",
	BinaryLogicalOr:            "LogicalOr",
	BinaryLogicalImplication:   "LogicalImplication",
	BinaryLogicalEquivalence:   "LogicalEquivalence",
	BinaryLogicalShiftLeft:     "LogicalShiftLeft",
	BinaryLogicalShiftRight:    "LogicalShiftRight",
	BinaryArithmeticShiftLeft:  "ArithmeticShiftLeft",
	BinaryArithmeticShiftRight: "ArithmeticShiftRight",
	BinaryPower:                "Power",
}

func (op BinaryOperator) String() string {
	if int(op) < len(binaryOperatorNames) {
		return binaryOperatorNames[op]
	}
	return fmt.Sprintf("BinaryOperator(%d)", op)
}

// RangeSelectionKind distinguishes the three range select forms.
type RangeSelectionKind uint8

const (
	RangeSimple RangeSelectionKind = iota
	RangeIndexedUp
	RangeIndexedDown
)

func (k RangeSelectionKind) String() string {
	switch k {
	case RangeSimple:
		return "Simple"
	case RangeIndexedUp:
		return "IndexedUp"
	default:
		return "IndexedDown"
	}
}

// unaryOperatorFor maps a unary operator token to its bound operator.
// An unmapped token is an internal defect: the parser only produces the
// tokens below in unary position.
func unaryOperatorFor(op syntax.OpToken, postfix bool) UnaryOperator {
	switch op {
	case syntax.OpPlus:
		return UnaryPlus
	case syntax.OpMinus:
		return UnaryMinus
	case syntax.OpTilde:
		return UnaryBitwiseNot
	case syntax.OpAmp:
		return UnaryBitwiseAnd
	case syntax.OpPipe:
		return UnaryBitwiseOr
	case syntax.OpCaret:
		return UnaryBitwiseXor
	case syntax.OpTildeAmp:
		return UnaryBitwiseNand
	case syntax.OpTildePipe:
		return UnaryBitwiseNor
	case syntax.OpTildeCaret:
		return UnaryBitwiseXnor
	case syntax.OpBang:
		return UnaryLogicalNot
	case syntax.OpPlusPlus:
		if postfix {
			return UnaryPostincrement
		}
		return UnaryPreincrement
	case syntax.OpMinusMinus:
		if postfix {
			return UnaryPostdecrement
		}
		return UnaryPredecrement
	default:
		panic(fmt.Sprintf("binding: token %d is not a unary operator", op))
	}
}

// binaryOperatorFor maps a binary operator token to its bound operator.
func binaryOperatorFor(op syntax.OpToken) BinaryOperator {
	switch op {
	case syntax.OpPlus:
		return BinaryAdd
	case syntax.OpMinus:
		return BinarySubtract
	case syntax.OpStar:
		return BinaryMultiply
	case syntax.OpSlash:
		return BinaryDivide
	case syntax.OpPercent:
		return BinaryMod
	case syntax.OpAmp:
		return BinaryAnd
	case syntax.OpPipe:
		return BinaryOr
	case syntax.OpCaret:
		return BinaryXor
	case syntax.OpTildeCaret:
		return BinaryXnor
	case syntax.OpEqEq:
		return BinaryEquality
	case syntax.OpBangEq:
		return BinaryInequality
	case syntax.OpEqEqEq:
		return BinaryCaseEquality
	case syntax.OpBangEqEq:
		return BinaryCaseInequality
	case syntax.OpEqEqQuestion:
		return BinaryWildcardEquality
	case syntax.OpBangEqQuestion:
		return BinaryWildcardInequality
	case syntax.OpGreaterEq:
		return BinaryGreaterThanEqual
	case syntax.OpGreater:
		return BinaryGreaterThan
	case syntax.OpLessEq:
		return BinaryLessThanEqual
	case syntax.OpLess:
		return BinaryLessThan
	case syntax.OpAmpAmp:
		return BinaryLogicalAnd
	case syntax.OpPipePipe:
		return BinaryLogicalOr
	case syntax.OpArrow:
		return BinaryLogicalImplication
	case syntax.OpDoubleArrow:
		return BinaryLogicalEquivalence
	case syntax.OpShiftLeft:
		return BinaryLogicalShiftLeft
	case syntax.OpShiftRight:
		return BinaryLogicalShiftRight
	case syntax.OpAShiftLeft:
		return BinaryArithmeticShiftLeft
	case syntax.OpAShiftRight:
		return BinaryArithmeticShiftRight
	case syntax.OpStarStar:
		return BinaryPower
	default:
		panic(fmt.Sprintf("binding: token %d is not a binary operator", op))
	}
}

// opClass groups binary operators by their typing behavior.
type opClass uint8

const (
	classArithmetic opClass = iota // combined operand type, combined result
	classBitwise                   // combined operand type, combined result
	classRelational                // combined operand type, single-bit result
	classEquality                  // combined operand type, single-bit result
	classCaseEq                    // exact comparison, two-state single-bit result
	classLogical                   // self-determined operands, single-bit result
	classShift                     // left operand typed by context, right self-determined
	classPower                     // like shift: exponent stays self-determined
)

func classify(op BinaryOperator) opClass {
	switch op {
	case BinaryAdd, BinarySubtract, BinaryMultiply, BinaryDivide, BinaryMod:
		return classArithmetic
	case BinaryAnd, BinaryOr, BinaryXor, BinaryXnor:
		return classBitwise
	case BinaryGreaterThanEqual, BinaryGreaterThan, BinaryLessThanEqual, BinaryLessThan:
		return classRelational
	case BinaryEquality, BinaryInequality, BinaryWildcardEquality, BinaryWildcardInequality:
		return classEquality
	case BinaryCaseEquality, BinaryCaseInequality:
		return classCaseEq
	case BinaryLogicalAnd, BinaryLogicalOr, BinaryLogicalImplication, BinaryLogicalEquivalence:
		return classLogical
	case BinaryLogicalShiftLeft, BinaryLogicalShiftRight,
		BinaryArithmeticShiftLeft, BinaryArithmeticShiftRight:
		return classShift
	default:
		return classPower
	}
}

// isIntegralOnly reports whether the operator requires integral operands.
func isIntegralOnly(op BinaryOperator) bool {
	switch op {
	case BinaryAnd, BinaryOr, BinaryXor, BinaryXnor, BinaryMod,
		BinaryLogicalShiftLeft, BinaryLogicalShiftRight,
		BinaryArithmeticShiftLeft, BinaryArithmeticShiftRight,
		BinaryWildcardEquality, BinaryWildcardInequality:
		return true
	default:
		return false
	}
}

// binaryOperatorType computes the combined operand type for a binary
// operator: real if either side is real, otherwise width is the max of
// the operand widths, the result is signed only if both operands are
// signed, and four-state if either operand is four-state (or forced).
func binaryOperatorType(lt, rt types.Type, forceFourState bool) types.Type {
	if types.IsError(lt) || types.IsError(rt) {
		return types.ErrType
	}
	if types.IsReal(lt) || types.IsReal(rt) {
		return types.RealT
	}
	if !types.IsIntegral(lt) || !types.IsIntegral(rt) {
		return types.ErrType
	}
	width := max(types.BitWidth(lt), types.BitWidth(rt))
	signed := types.IsSigned(lt) && types.IsSigned(rt)
	fourState := forceFourState || types.IsFourState(lt) || types.IsFourState(rt)
	return types.Packed(width, signed, fourState)
}

// singleBitType returns the predicate result type for comparisons and
// logical operators: one bit, four-state if either operand is.
func singleBitType(lt, rt types.Type) types.Type {
	if types.IsFourState(lt) || types.IsFourState(rt) {
		return types.LogicType
	}
	return types.BitType
}

func bitResult(b constant.Bit) constant.Value {
	return constant.IntValue(constant.FromBits([]constant.Bit{b}, false))
}

// evalBinaryOperator folds a binary operation over two constant values
// according to the four-state operator tables. An invalid operand yields
// the not-a-constant marker.
func evalBinaryOperator(op BinaryOperator, cvl, cvr constant.Value) constant.Value {
	if !cvl.IsConstant() || !cvr.IsConstant() {
		return constant.Invalid()
	}

	if cvl.IsReal() || cvr.IsReal() {
		return evalRealBinary(op, cvl, cvr)
	}
	if !cvl.IsInteger() || !cvr.IsInteger() {
		return evalMiscBinary(op, cvl, cvr)
	}

	l, r := cvl.Integer(), cvr.Integer()

	switch op {
	case BinaryAdd:
		return constant.IntValue(l.Add(r))
	case BinarySubtract:
		return constant.IntValue(l.Sub(r))
	case BinaryMultiply:
		return constant.IntValue(l.Mul(r))
	case BinaryDivide:
		v, ok := l.Div(r)
		if !ok {
			return constant.Invalid()
		}
		return constant.IntValue(v)
	case BinaryMod:
		v, ok := l.Mod(r)
		if !ok {
			return constant.Invalid()
		}
		return constant.IntValue(v)
	case BinaryPower:
		return constant.IntValue(l.Pow(r))
	case BinaryAnd:
		return constant.IntValue(l.And(r))
	case BinaryOr:
		return constant.IntValue(l.Or(r))
	case BinaryXor:
		return constant.IntValue(l.Xor(r))
	case BinaryXnor:
		return constant.IntValue(l.Xnor(r))
	case BinaryLogicalShiftLeft, BinaryArithmeticShiftLeft:
		return constant.IntValue(l.Shl(r))
	case BinaryLogicalShiftRight:
		return constant.IntValue(l.Shr(r, false))
	case BinaryArithmeticShiftRight:
		return constant.IntValue(l.Shr(r, true))
	case BinaryEquality:
		return bitResult(l.Equal(r))
	case BinaryInequality:
		return bitResult(notLogic(l.Equal(r)))
	case BinaryCaseEquality:
		return bitResult(boolBit(l.CaseEqual(r)))
	case BinaryCaseInequality:
		return bitResult(boolBit(!l.CaseEqual(r)))
	case BinaryWildcardEquality:
		return bitResult(l.WildcardEqual(r))
	case BinaryWildcardInequality:
		return bitResult(notLogic(l.WildcardEqual(r)))
	case BinaryLessThan:
		return bitResult(l.Less(r))
	case BinaryGreaterThanEqual:
		return bitResult(notLogic(l.Less(r)))
	case BinaryGreaterThan:
		return bitResult(r.Less(l))
	case BinaryLessThanEqual:
		return bitResult(notLogic(r.Less(l)))
	case BinaryLogicalAnd:
		return bitResult(logicAnd(l.LogicValue(), r.LogicValue()))
	case BinaryLogicalOr:
		return bitResult(logicOr(l.LogicValue(), r.LogicValue()))
	case BinaryLogicalImplication:
		return bitResult(logicOr(notLogic(l.LogicValue()), r.LogicValue()))
	case BinaryLogicalEquivalence:
		lb, rb := l.LogicValue(), r.LogicValue()
		both := logicAnd(lb, rb)
		neither := logicAnd(notLogic(lb), notLogic(rb))
		return bitResult(logicOr(both, neither))
	default:
		panic(fmt.Sprintf("binding: unhandled binary operator %d", op))
	}
}

func evalRealBinary(op BinaryOperator, cvl, cvr constant.Value) constant.Value {
	l, lok := asReal(cvl)
	r, rok := asReal(cvr)
	if !lok || !rok {
		return constant.Invalid()
	}
	switch op {
	case BinaryAdd:
		return constant.RealValue(l + r)
	case BinarySubtract:
		return constant.RealValue(l - r)
	case BinaryMultiply:
		return constant.RealValue(l * r)
	case BinaryDivide:
		if r == 0 {
			return constant.Invalid()
		}
		return constant.RealValue(l / r)
	case BinaryPower:
		return constant.RealValue(math.Pow(l, r))
	case BinaryEquality:
		return bitResult(boolBit(l == r))
	case BinaryInequality:
		return bitResult(boolBit(l != r))
	case BinaryLessThan:
		return bitResult(boolBit(l < r))
	case BinaryLessThanEqual:
		return bitResult(boolBit(l <= r))
	case BinaryGreaterThan:
		return bitResult(boolBit(l > r))
	case BinaryGreaterThanEqual:
		return bitResult(boolBit(l >= r))
	case BinaryLogicalAnd:
		return bitResult(boolBit(l != 0 && r != 0))
	case BinaryLogicalOr:
		return bitResult(boolBit(l != 0 || r != 0))
	case BinaryLogicalImplication:
		return bitResult(boolBit(l == 0 || r != 0))
	case BinaryLogicalEquivalence:
		return bitResult(boolBit((l != 0) == (r != 0)))
	default:
		return constant.Invalid()
	}
}

func evalMiscBinary(op BinaryOperator, cvl, cvr constant.Value) constant.Value {
	// Strings and null only support (in)equality comparisons.
	switch op {
	case BinaryEquality, BinaryCaseEquality:
		return bitResult(boolBit(valuesEqual(cvl, cvr)))
	case BinaryInequality, BinaryCaseInequality:
		return bitResult(boolBit(!valuesEqual(cvl, cvr)))
	default:
		return constant.Invalid()
	}
}

func valuesEqual(a, b constant.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case constant.KindString:
		return a.Str() == b.Str()
	case constant.KindNull:
		return true
	default:
		return false
	}
}

// evalUnaryOperator folds a unary operation. Increment and decrement are
// handled by the evaluator directly since they touch storage.
func evalUnaryOperator(op UnaryOperator, cv constant.Value) constant.Value {
	if !cv.IsConstant() {
		return constant.Invalid()
	}
	if cv.IsReal() {
		switch op {
		case UnaryPlus:
			return cv
		case UnaryMinus:
			return constant.RealValue(-cv.Real())
		case UnaryLogicalNot:
			return bitResult(boolBit(cv.Real() == 0))
		default:
			return constant.Invalid()
		}
	}
	if !cv.IsInteger() {
		return constant.Invalid()
	}
	v := cv.Integer()
	switch op {
	case UnaryPlus:
		return cv
	case UnaryMinus:
		return constant.IntValue(v.Neg())
	case UnaryBitwiseNot:
		return constant.IntValue(v.Not())
	case UnaryBitwiseAnd:
		return bitResult(v.ReduceAnd())
	case UnaryBitwiseOr:
		return bitResult(v.ReduceOr())
	case UnaryBitwiseXor:
		return bitResult(v.ReduceXor())
	case UnaryBitwiseNand:
		return bitResult(notLogic(v.ReduceAnd()))
	case UnaryBitwiseNor:
		return bitResult(notLogic(v.ReduceOr()))
	case UnaryBitwiseXnor:
		return bitResult(notLogic(v.ReduceXor()))
	case UnaryLogicalNot:
		return bitResult(notLogic(v.LogicValue()))
	default:
		panic(fmt.Sprintf("binding: unhandled unary operator %d", op))
	}
}

func notLogic(b constant.Bit) constant.Bit {
	switch b {
	case constant.L0:
		return constant.L1
	case constant.L1:
		return constant.L0
	default:
		return constant.LX
	}
}

func logicAnd(a, b constant.Bit) constant.Bit {
	if a == constant.L0 || b == constant.L0 {
		return constant.L0
	}
	if a == constant.L1 && b == constant.L1 {
		return constant.L1
	}
	return constant.LX
}

func logicOr(a, b constant.Bit) constant.Bit {
	if a == constant.L1 || b == constant.L1 {
		return constant.L1
	}
	if a == constant.L0 && b == constant.L0 {
		return constant.L0
	}
	return constant.LX
}

func boolBit(b bool) constant.Bit {
	if b {
		return constant.L1
	}
	return constant.L0
}

func asReal(v constant.Value) (float64, bool) {
	switch v.Kind() {
	case constant.KindReal:
		return v.Real(), true
	case constant.KindInteger:
		b, ok := v.Integer().Big()
		if !ok {
			return 0, false
		}
		f, _ := new(big.Float).SetInt(b).Float64()
		return f, true
	default:
		return 0, false
	}
}
