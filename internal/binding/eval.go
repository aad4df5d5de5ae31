package binding

import (
	"fmt"

	"github.com/brightclark/slang/internal/constant"
	"github.com/brightclark/slang/internal/diag"
	"github.com/brightclark/slang/internal/types"
)

// maxEvalDepth bounds recursion so that a pathological tree degrades
// into a diagnostic instead of a stack overflow.
const maxEvalDepth = 512

// EvalContext carries the state of one constant evaluation: a stack of
// local frames for compile-time subroutine and loop locals, and an error
// accumulator. Errors never abort evaluation of sibling expressions.
type EvalContext struct {
	Diagnostics []diag.Diagnostic

	frames []*evalFrame
	depth  int
}

type evalFrame struct {
	locals map[*types.ValueSymbol]*constant.Value
}

// NewEvalContext returns an evaluation context with a single root frame.
func NewEvalContext() *EvalContext {
	return &EvalContext{frames: []*evalFrame{{locals: map[*types.ValueSymbol]*constant.Value{}}}}
}

// PushFrame enters a new local frame.
func (ec *EvalContext) PushFrame() {
	ec.frames = append(ec.frames, &evalFrame{locals: map[*types.ValueSymbol]*constant.Value{}})
}

// PopFrame leaves the innermost local frame.
func (ec *EvalContext) PopFrame() {
	if len(ec.frames) <= 1 {
		panic("binding: popping the root evaluation frame")
	}
	ec.frames = ec.frames[:len(ec.frames)-1]
}

// CreateLocal installs a mutable local for sym in the innermost frame.
func (ec *EvalContext) CreateLocal(sym *types.ValueSymbol, v constant.Value) *constant.Value {
	cell := new(constant.Value)
	*cell = v
	ec.frames[len(ec.frames)-1].locals[sym] = cell
	return cell
}

// FindLocal returns the storage cell for sym, or nil.
func (ec *EvalContext) FindLocal(sym *types.ValueSymbol) *constant.Value {
	for i := len(ec.frames) - 1; i >= 0; i-- {
		if cell, ok := ec.frames[i].locals[sym]; ok {
			return cell
		}
	}
	return nil
}

func (ec *EvalContext) reportError(code diag.Code, msg string, span diag.Span) {
	ec.Diagnostics = append(ec.Diagnostics, diag.Diagnostic{
		Stage:    diag.StageEval,
		Severity: diag.SeverityError,
		Code:     code,
		Message:  msg,
		Span:     span,
	})
}

// Eval computes the expression's constant value. Evaluation errors are
// recorded on the context and surface as the not-a-constant marker for
// the affected subtree only.
func (ec *EvalContext) Eval(e Expression) constant.Value {
	return ec.eval(e)
}

func (ec *EvalContext) eval(e Expression) constant.Value {
	if cv := e.Constant(); cv.IsConstant() {
		return cv
	}
	if ec.depth >= maxEvalDepth {
		ec.reportError(diag.CodeEvalDepthExceeded, "expression is too deeply nested to evaluate", e.Span())
		return constant.Invalid()
	}
	ec.depth++
	defer func() { ec.depth-- }()

	switch n := e.(type) {
	case *Invalid, *EmptyArgumentExpr, *DataTypeExpr:
		return constant.Invalid()
	case *IntegerLiteralExpr, *RealLiteralExpr, *UnbasedUnsizedLiteralExpr,
		*NullLiteralExpr, *StringLiteralExpr:
		// Literals fold at construction; an unconstant literal is an
		// unsized unbased bit that context never widened.
		return e.Constant()
	case *NamedValueExpr:
		return ec.evalNamedValue(n)
	case *UnaryOpExpr:
		return ec.evalUnary(n)
	case *BinaryOpExpr:
		return ec.evalBinary(n)
	case *ConditionalOpExpr:
		return ec.evalConditional(n)
	case *InsideExpr:
		return ec.evalInside(n)
	case *AssignmentExpr:
		return ec.evalAssignment(n)
	case *ConcatenationExpr:
		return ec.evalConcat(n)
	case *ReplicationExpr:
		return ec.evalReplication(n)
	case *ElementSelectExpr:
		elemType, _ := elementTypeOf(n.Value.Type())
		return foldElementSelect(ec.eval(n.Value), ec.eval(n.Selector), n.Value.Type(), elemType)
	case *RangeSelectExpr:
		return ec.evalRangeSelect(n)
	case *MemberAccessExpr:
		return foldMemberAccess(ec.eval(n.Value), n.Value.Type().(*types.Struct), n.Field)
	case *CallExpr:
		return ec.evalCall(n)
	case *ConversionExpr:
		return convertValue(ec.eval(n.Operand), n.Operand.Type(), n.Type())
	case *SimpleAssignmentPatternExpr:
		return ec.evalPattern(n.Type(), n.Elements)
	case *StructuredAssignmentPatternExpr:
		return ec.evalPattern(n.Type(), n.Elements)
	case *ReplicatedAssignmentPatternExpr:
		return ec.evalPattern(n.Type(), n.Elements)
	default:
		panic(fmt.Sprintf("binding: unexpected expression %T in eval", e))
	}
}

func (ec *EvalContext) evalNamedValue(n *NamedValueExpr) constant.Value {
	if n.IsHierarchical {
		ec.reportError(diag.CodeEvalHierarchical,
			fmt.Sprintf("hierarchical reference to %q cannot be evaluated at compile time",
				n.Symbol.Name),
			n.Span())
		return constant.Invalid()
	}
	if cell := ec.FindLocal(n.Symbol); cell != nil {
		return *cell
	}
	if n.Symbol.IsParameter {
		if init := n.Symbol.Initializer(); init.IsConstant() {
			return init
		}
	}
	code := diag.CodeEvalNotConstant
	msg := fmt.Sprintf("reference to %q is not constant", n.Symbol.Name)
	if n.Symbol.IsAutomatic {
		code = diag.CodeEvalUninitialized
		msg = fmt.Sprintf("automatic variable %q is used before it has a value", n.Symbol.Name)
	}
	ec.reportError(code, msg, n.Span())
	return constant.Invalid()
}

func (ec *EvalContext) evalUnary(n *UnaryOpExpr) constant.Value {
	if isIncDec(n.Op) {
		return ec.evalIncDec(n)
	}
	return evalUnaryOperator(n.Op, ec.eval(n.Operand))
}

func (ec *EvalContext) evalIncDec(n *UnaryOpExpr) constant.Value {
	lv, ok := ec.EvalLValue(n.Operand)
	if !ok {
		return constant.Invalid()
	}
	old := lv.Load()
	if old.Kind() != constant.KindInteger {
		ec.reportError(diag.CodeEvalNotConstant,
			"increment or decrement requires an integral value", n.Span())
		return constant.Invalid()
	}
	one := constant.NewInteger(old.Integer().Width(), 1, false)
	var updated constant.Integer
	switch n.Op {
	case UnaryPreincrement, UnaryPostincrement:
		updated = old.Integer().Add(one)
	default:
		updated = old.Integer().Sub(one)
	}
	lv.Store(constant.IntValue(updated))
	if n.Op == UnaryPostincrement || n.Op == UnaryPostdecrement {
		return old
	}
	return constant.IntValue(updated)
}

func (ec *EvalContext) evalBinary(n *BinaryOpExpr) constant.Value {
	l := ec.eval(n.Left)
	r := ec.eval(n.Right)
	if (n.Op == BinaryDivide || n.Op == BinaryMod) && isKnownZero(r) {
		ec.reportError(diag.CodeEvalDivideByZero, "division by zero", n.Span())
		return constant.Invalid()
	}
	return fitResult(evalBinaryOperator(n.Op, l, r), n.Type())
}

func isKnownZero(v constant.Value) bool {
	switch v.Kind() {
	case constant.KindInteger:
		return v.Integer().LogicValue() == constant.L0
	case constant.KindReal:
		return v.Real() == 0
	default:
		return false
	}
}

// evalConditional evaluates only the selected arm when the condition is
// known, so errors in the dead arm never surface. An unknown condition
// evaluates both arms for the bitwise X merge.
func (ec *EvalContext) evalConditional(n *ConditionalOpExpr) constant.Value {
	cond := ec.eval(n.Cond)
	if !cond.IsConstant() {
		return constant.Invalid()
	}
	switch {
	case cond.IsTrue():
		return ec.eval(n.Left)
	case cond.IsFalse():
		return ec.eval(n.Right)
	}
	return foldConditional(cond, ec.eval(n.Left), ec.eval(n.Right), n.Type())
}

func (ec *EvalContext) evalInside(n *InsideExpr) constant.Value {
	lv := ec.eval(n.Left)
	if lv.Kind() != constant.KindInteger {
		return constant.Invalid()
	}
	out := constant.L0
	for _, cand := range n.Candidates {
		cv := ec.eval(cand)
		var hit constant.Bit
		if types.IsUnpackedArray(cand.Type()) {
			if cv.Kind() != constant.KindElements {
				return constant.Invalid()
			}
			hit = constant.L0
			for _, elem := range cv.Elements() {
				if elem.Kind() != constant.KindInteger {
					return constant.Invalid()
				}
				hit = logicOr(hit, lv.Integer().WildcardEqual(elem.Integer()))
			}
		} else {
			if cv.Kind() != constant.KindInteger {
				return constant.Invalid()
			}
			hit = lv.Integer().WildcardEqual(cv.Integer())
		}
		out = logicOr(out, hit)
		if out == constant.L1 {
			break
		}
	}
	return bitResult(out)
}

func (ec *EvalContext) evalAssignment(n *AssignmentExpr) constant.Value {
	lv, ok := ec.EvalLValue(n.Lhs)
	if !ok {
		return constant.Invalid()
	}
	rhs := ec.eval(n.Rhs)
	if !rhs.IsConstant() {
		return constant.Invalid()
	}
	if n.Op != nil {
		cur := lv.Load()
		if (*n.Op == BinaryDivide || *n.Op == BinaryMod) && isKnownZero(rhs) {
			ec.reportError(diag.CodeEvalDivideByZero, "division by zero", n.Span())
			return constant.Invalid()
		}
		rhs = evalBinaryOperator(*n.Op, cur, rhs)
	}
	stored := convertValue(rhs, n.Rhs.Type(), n.Type())
	if !stored.IsConstant() {
		return constant.Invalid()
	}
	lv.Store(stored)
	return stored
}

func (ec *EvalContext) evalConcat(n *ConcatenationExpr) constant.Value {
	asString := types.IsString(n.Type())
	values := make([]constant.Value, len(n.Operands))
	for i, op := range n.Operands {
		values[i] = ec.eval(op)
		if !values[i].IsConstant() {
			return constant.Invalid()
		}
	}
	if asString {
		out := ""
		for _, v := range values {
			if v.Kind() != constant.KindString {
				return constant.Invalid()
			}
			out += v.Str()
		}
		return constant.StringValue(out)
	}
	parts := make([]constant.Integer, len(values))
	for i, v := range values {
		if v.Kind() != constant.KindInteger {
			return constant.Invalid()
		}
		parts[i] = v.Integer()
	}
	return constant.IntValue(constant.Concat(parts...))
}

func (ec *EvalContext) evalReplication(n *ReplicationExpr) constant.Value {
	count, ok := constantIndex(n.Count)
	if !ok {
		return constant.Invalid()
	}
	cv := ec.eval(n.Operand)
	if cv.Kind() != constant.KindInteger {
		return constant.Invalid()
	}
	return constant.IntValue(cv.Integer().Replicate(count))
}

func (ec *EvalContext) evalRangeSelect(n *RangeSelectExpr) constant.Value {
	value := ec.eval(n.Value)
	left := ec.eval(n.Left)
	right := ec.eval(n.Right)
	return rangeSelectValue(n, value, left, right)
}

func (ec *EvalContext) evalCall(n *CallExpr) constant.Value {
	if n.Subroutine.IsSystem() {
		sys := n.Subroutine.System
		if sys.Fold == nil {
			ec.reportError(diag.CodeEvalNonConstantCall,
				fmt.Sprintf("system function %q cannot be evaluated at compile time", sys.Name),
				n.Span())
			return constant.Invalid()
		}
		return sys.Fold(ec, n)
	}

	sub := n.Subroutine.User
	if !sub.IsConstEval || sub.Eval == nil {
		ec.reportError(diag.CodeEvalNonConstantCall,
			fmt.Sprintf("subroutine %q cannot be called in a constant expression", sub.Name),
			n.Span())
		return constant.Invalid()
	}
	args := make([]constant.Value, len(n.Arguments))
	for i, arg := range n.Arguments {
		if arg.Kind() == KindEmptyArgument {
			args[i] = sub.Args[i].DefaultValue
		} else {
			args[i] = ec.eval(arg)
		}
		if !args[i].IsConstant() {
			return constant.Invalid()
		}
	}
	return sub.Eval(args)
}

func (ec *EvalContext) evalPattern(typ types.Type, elements []Expression) constant.Value {
	values := make([]constant.Value, len(elements))
	for i, e := range elements {
		values[i] = ec.eval(e)
		if !values[i].IsConstant() {
			return constant.Invalid()
		}
	}
	return patternValue(typ, values)
}

func patternValue(typ types.Type, values []constant.Value) constant.Value {
	if types.IsIntegral(typ) {
		parts := make([]constant.Integer, len(values))
		for i, v := range values {
			if v.Kind() != constant.KindInteger {
				return constant.Invalid()
			}
			parts[i] = v.Integer()
		}
		return constant.IntValue(constant.Concat(parts...))
	}
	return constant.ElementsValue(values)
}

// foldElementSelect implements element select semantics shared by the
// binder's folding pass and the evaluator. An out-of-range or unknown
// index yields an unknown value of the element width, mirroring hardware
// out-of-bounds read behavior; it is never an error.
func foldElementSelect(value, index constant.Value, baseType, elemType types.Type) constant.Value {
	if !value.IsConstant() || index.Kind() != constant.KindInteger {
		return constant.Invalid()
	}
	i, known := index.Integer().Int64()
	if !known {
		return defaultValue(elemType)
	}

	switch value.Kind() {
	case constant.KindInteger:
		ew := max(types.BitWidth(elemType), 1)
		return constant.IntValue(value.Integer().Slice(int(i)*ew, ew))
	case constant.KindElements:
		elems := value.Elements()
		if i < 0 || int(i) >= len(elems) {
			return defaultValue(elemType)
		}
		return elems[i]
	default:
		return constant.Invalid()
	}
}

// rangeSelectValue implements range select semantics over evaluated
// operands; bounds outside the base read as X fill.
func rangeSelectValue(n *RangeSelectExpr, value, left, right constant.Value) constant.Value {
	if !value.IsConstant() {
		return constant.Invalid()
	}

	var count int
	if arr, ok := n.Type().(*types.FixedArray); ok {
		count = arr.Size
	} else {
		elemType, _ := elementTypeOf(n.Value.Type())
		count = types.BitWidth(n.Type()) / max(types.BitWidth(elemType), 1)
	}

	lsb, known := rangeLow(n.SelectionKind, left, right, count)
	if !known {
		return defaultValue(n.Type())
	}

	switch value.Kind() {
	case constant.KindInteger:
		elemType, _ := elementTypeOf(n.Value.Type())
		ew := max(types.BitWidth(elemType), 1)
		return constant.IntValue(value.Integer().Slice(lsb*ew, count*ew))
	case constant.KindElements:
		elems := value.Elements()
		arr := n.Type().(*types.FixedArray)
		out := make([]constant.Value, count)
		for i := range out {
			idx := lsb + i
			if idx < 0 || idx >= len(elems) {
				out[i] = defaultValue(arr.Elem)
			} else {
				out[i] = elems[idx]
			}
		}
		return constant.ElementsValue(out)
	default:
		return constant.Invalid()
	}
}

// rangeLow computes the lowest selected index for each selection kind.
func rangeLow(kind RangeSelectionKind, left, right constant.Value, count int) (int, bool) {
	switch kind {
	case RangeSimple:
		r, ok := intOf(right)
		return r, ok
	case RangeIndexedUp:
		l, ok := intOf(left)
		return l, ok
	default:
		l, ok := intOf(left)
		return l - count + 1, ok
	}
}

func intOf(v constant.Value) (int, bool) {
	if v.Kind() != constant.KindInteger {
		return 0, false
	}
	n, ok := v.Integer().Int64()
	return int(n), ok
}

// foldRangeSelect folds a range select at bind time once its operands
// have folded.
func foldRangeSelect(n *RangeSelectExpr) constant.Value {
	return rangeSelectValue(n, n.Value.Constant(), n.Left.Constant(), n.Right.Constant())
}

// foldMemberAccess extracts a struct field from an evaluated base value.
// Packed structs store their first declared field in the most
// significant bits.
func foldMemberAccess(value constant.Value, st *types.Struct, field *types.Field) constant.Value {
	if !value.IsConstant() {
		return constant.Invalid()
	}
	switch value.Kind() {
	case constant.KindInteger:
		offset := 0
		for i := len(st.Fields) - 1; i > field.Index; i-- {
			offset += types.BitWidth(st.Fields[i].Type)
		}
		return constant.IntValue(value.Integer().Slice(offset, types.BitWidth(field.Type)))
	case constant.KindElements:
		elems := value.Elements()
		if field.Index >= len(elems) {
			return constant.Invalid()
		}
		return elems[field.Index]
	default:
		return constant.Invalid()
	}
}

// defaultValue produces the unknown-filled value of a type, used for
// out-of-bounds reads.
func defaultValue(t types.Type) constant.Value {
	switch u := t.(type) {
	case *types.Integral:
		return constant.IntValue(constant.AllX(u.Width, u.Signed))
	case *types.Real:
		return constant.RealValue(0)
	case *types.StringType:
		return constant.StringValue("")
	case *types.FixedArray:
		if u.Packed {
			return constant.IntValue(constant.AllX(types.BitWidth(u), false))
		}
		out := make([]constant.Value, u.Size)
		for i := range out {
			out[i] = defaultValue(u.Elem)
		}
		return constant.ElementsValue(out)
	case *types.Struct:
		if u.Packed {
			return constant.IntValue(constant.AllX(types.BitWidth(u), false))
		}
		out := make([]constant.Value, len(u.Fields))
		for i, f := range u.Fields {
			out[i] = defaultValue(f.Type)
		}
		return constant.ElementsValue(out)
	default:
		return constant.Invalid()
	}
}
