package binding

import (
	"fmt"

	"github.com/brightclark/slang/internal/constant"
	"github.com/brightclark/slang/internal/diag"
	"github.com/brightclark/slang/internal/types"
)

// isLValue reports whether an expression designates assignable storage.
// The binder checks this before constructing assignments, increments and
// output argument bindings, so the evaluator may treat a non-lvalue
// target as a malformed tree.
func isLValue(e Expression) bool {
	switch n := e.(type) {
	case *NamedValueExpr:
		return !n.IsHierarchical
	case *ElementSelectExpr:
		return isLValue(n.Value)
	case *RangeSelectExpr:
		return isLValue(n.Value)
	case *MemberAccessExpr:
		return isLValue(n.Value)
	default:
		return false
	}
}

// LValue is resolved assignable storage: a root cell, a path of element
// indices through unpacked aggregates, and an optional bit range within
// the final integral value. A discarded LValue loads unknown bits and
// drops stores, which is how out-of-range element writes behave.
type LValue struct {
	cell    *constant.Value
	path    []int
	hasBits bool
	lsb     int
	width   int
	discard bool

	// Slice mode addresses a run of elements in an unpacked array.
	hasSlice   bool
	sliceLow   int
	sliceCount int
}

func discardLValue(width int) LValue {
	return LValue{discard: true, width: width}
}

func (lv *LValue) resolve() *constant.Value {
	cur := lv.cell
	for _, idx := range lv.path {
		elems := cur.Elements()
		cur = &elems[idx]
	}
	return cur
}

// Load reads the current value of the addressed storage.
func (lv *LValue) Load() constant.Value {
	if lv.discard {
		return constant.IntValue(constant.AllX(max(lv.width, 1), false))
	}
	cur := lv.resolve()
	if lv.hasBits {
		return constant.IntValue(cur.Integer().Slice(lv.lsb, lv.width))
	}
	if lv.hasSlice {
		elems := cur.Elements()
		out := make([]constant.Value, lv.sliceCount)
		copy(out, elems[lv.sliceLow:lv.sliceLow+lv.sliceCount])
		return constant.ElementsValue(out)
	}
	return *cur
}

// Store writes v into the addressed storage.
func (lv *LValue) Store(v constant.Value) {
	if lv.discard {
		return
	}
	cur := lv.resolve()
	if lv.hasBits {
		if v.Kind() != constant.KindInteger {
			return
		}
		*cur = constant.IntValue(cur.Integer().SetSlice(lv.lsb, v.Integer().Resize(lv.width)))
		return
	}
	if lv.hasSlice {
		if v.Kind() != constant.KindElements {
			return
		}
		elems := cur.Elements()
		copy(elems[lv.sliceLow:lv.sliceLow+lv.sliceCount], v.Elements())
		return
	}
	*cur = v
}

// EvalLValue resolves an assignment target to storage. The expression
// must satisfy isLValue; anything else is a defect in the caller and
// panics. Failure to locate storage (for example a reference to a
// non-local in a constant context) reports a diagnostic and returns
// ok false.
func (ec *EvalContext) EvalLValue(e Expression) (LValue, bool) {
	switch n := e.(type) {
	case *NamedValueExpr:
		return ec.namedLValue(n)
	case *ElementSelectExpr:
		return ec.elementLValue(n)
	case *RangeSelectExpr:
		return ec.rangeLValue(n)
	case *MemberAccessExpr:
		return ec.memberLValue(n)
	default:
		panic(fmt.Sprintf("binding: %T is not an lvalue", e))
	}
}

func (ec *EvalContext) namedLValue(n *NamedValueExpr) (LValue, bool) {
	if n.IsHierarchical {
		panic("binding: hierarchical reference used as an lvalue")
	}
	cell := ec.FindLocal(n.Symbol)
	if cell == nil {
		ec.reportError(diag.CodeEvalNotConstant,
			fmt.Sprintf("cannot modify %q in a constant expression", n.Symbol.Name),
			n.Span())
		return LValue{}, false
	}
	return LValue{cell: cell}, true
}

func (ec *EvalContext) elementLValue(n *ElementSelectExpr) (LValue, bool) {
	base, ok := ec.EvalLValue(n.Value)
	if !ok {
		return LValue{}, false
	}
	elemType, _ := elementTypeOf(n.Value.Type())
	ew := max(types.BitWidth(elemType), 1)

	idx := ec.eval(n.Selector)
	i, known := intOf(idx)
	if !known {
		return discardLValue(types.BitWidth(n.Type())), true
	}

	if types.IsIntegral(n.Value.Type()) || isPackedAggregate(n.Value.Type()) {
		return base.withBits(i*ew, ew), true
	}
	arr := n.Value.Type().(*types.FixedArray)
	if i < 0 || i >= arr.Size {
		return discardLValue(types.BitWidth(n.Type())), true
	}
	if base.hasSlice {
		i += base.sliceLow
		base.hasSlice = false
	}
	base.path = append(base.path, i)
	return base, true
}

func (ec *EvalContext) rangeLValue(n *RangeSelectExpr) (LValue, bool) {
	base, ok := ec.EvalLValue(n.Value)
	if !ok {
		return LValue{}, false
	}
	left := ec.eval(n.Left)
	right := ec.eval(n.Right)

	var count int
	elemType, _ := elementTypeOf(n.Value.Type())
	ew := max(types.BitWidth(elemType), 1)
	if arr, isArr := n.Type().(*types.FixedArray); isArr && !arr.Packed {
		count = arr.Size
	} else {
		count = types.BitWidth(n.Type()) / ew
	}

	lsb, known := rangeLow(n.SelectionKind, left, right, count)
	if !known {
		return discardLValue(types.BitWidth(n.Type())), true
	}
	if types.IsIntegral(n.Value.Type()) || isPackedAggregate(n.Value.Type()) {
		return base.withBits(lsb*ew, count*ew), true
	}
	arr := n.Value.Type().(*types.FixedArray)
	if lsb < 0 || lsb+count > arr.Size {
		return discardLValue(types.BitWidth(n.Type())), true
	}
	base.hasSlice = true
	base.sliceLow = lsb
	base.sliceCount = count
	return base, true
}

func (ec *EvalContext) memberLValue(n *MemberAccessExpr) (LValue, bool) {
	base, ok := ec.EvalLValue(n.Value)
	if !ok {
		return LValue{}, false
	}
	st := n.Value.Type().(*types.Struct)
	if st.Packed {
		offset := 0
		for i := len(st.Fields) - 1; i > n.Field.Index; i-- {
			offset += types.BitWidth(st.Fields[i].Type)
		}
		return base.withBits(offset, types.BitWidth(n.Field.Type)), true
	}
	base.path = append(base.path, n.Field.Index)
	return base, true
}

// withBits narrows the lvalue to a bit range, composing with any range
// already present.
func (lv LValue) withBits(lsb, width int) LValue {
	if lv.hasBits {
		lv.lsb += lsb
	} else {
		lv.hasBits = true
		lv.lsb = lsb
	}
	lv.width = width
	return lv
}

func isPackedAggregate(t types.Type) bool {
	switch u := t.(type) {
	case *types.FixedArray:
		return u.Packed
	case *types.Struct:
		return u.Packed
	default:
		return false
	}
}
