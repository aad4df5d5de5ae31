package binding

import (
	"fmt"
	"math/big"

	"github.com/brightclark/slang/internal/constant"
	"github.com/brightclark/slang/internal/diag"
	"github.com/brightclark/slang/internal/types"
)

// SystemSubroutine describes a builtin ("system") subroutine with a fixed
// signature. The registry is fully populated at package initialization
// and never mutated afterward, so concurrent compilation units may read
// it freely.
type SystemSubroutine struct {
	Name    string
	MinArgs int
	MaxArgs int

	// Check validates one bound argument; a nil Check accepts anything.
	Check func(i int, arg Expression, ctx *BindContext) bool
	// Return computes the call's result type; a nil Return yields int.
	Return func(args []Expression) types.Type
	// Fold evaluates the call over its bound arguments. Diagnostics go
	// to the evaluation context.
	Fold func(ec *EvalContext, call *CallExpr) constant.Value
}

func (s *SystemSubroutine) checkArg(i int, arg Expression, ctx *BindContext) bool {
	if s.Check == nil {
		return true
	}
	return s.Check(i, arg, ctx)
}

func (s *SystemSubroutine) returnType(args []Expression) types.Type {
	if s.Return == nil {
		return types.IntType
	}
	return s.Return(args)
}

func (s *SystemSubroutine) arityString() string {
	if s.MinArgs == s.MaxArgs {
		return fmt.Sprintf("%d arguments", s.MinArgs)
	}
	return fmt.Sprintf("%d to %d arguments", s.MinArgs, s.MaxArgs)
}

var systemSubroutines = map[string]*SystemSubroutine{}

func registerSystemSubroutine(s *SystemSubroutine) {
	systemSubroutines[s.Name] = s
}

// LookupSystemSubroutine returns the registered builtin with the given
// name (without the $ prefix stripped), or nil.
func LookupSystemSubroutine(name string) *SystemSubroutine {
	return systemSubroutines[name]
}

func checkIntegralArg(_ int, arg Expression, ctx *BindContext) bool {
	if types.IsIntegral(arg.Type()) {
		return true
	}
	ctx.reportError(diag.CodeBadBinaryOperands,
		fmt.Sprintf("argument of type %s must be integral", arg.Type()), arg.Span())
	return false
}

func init() {
	// $bits accepts a data type or any fixed-size value and yields its
	// bit width.
	registerSystemSubroutine(&SystemSubroutine{
		Name:    "$bits",
		MinArgs: 1,
		MaxArgs: 1,
		Check: func(_ int, arg Expression, ctx *BindContext) bool {
			if arg.Kind() == KindDataType {
				return true
			}
			if types.IsIntegral(arg.Type()) || types.IsAggregate(arg.Type()) {
				return true
			}
			ctx.reportError(diag.CodeBadBinaryOperands,
				fmt.Sprintf("$bits is not defined for type %s", arg.Type()), arg.Span())
			return false
		},
		Fold: func(ec *EvalContext, call *CallExpr) constant.Value {
			t := call.Arguments[0].Type()
			w := types.BitWidth(t)
			if w == 0 {
				if arr, ok := t.(*types.FixedArray); ok {
					w = arr.Size * types.BitWidth(arr.Elem)
				}
			}
			if w == 0 {
				ec.reportError(diag.CodeEvalNotConstant,
					fmt.Sprintf("$bits is not defined for type %s", t), call.Span())
				return constant.Invalid()
			}
			return constant.IntValue(constant.NewInteger(32, uint64(w), true))
		},
	})

	// $clog2 computes the ceiling base-2 logarithm used for address
	// width calculations.
	registerSystemSubroutine(&SystemSubroutine{
		Name:    "$clog2",
		MinArgs: 1,
		MaxArgs: 1,
		Check:   checkIntegralArg,
		Fold: func(ec *EvalContext, call *CallExpr) constant.Value {
			cv := ec.eval(call.Arguments[0])
			if cv.Kind() != constant.KindInteger {
				return constant.Invalid()
			}
			b, ok := cv.Integer().Big()
			if !ok {
				return constant.IntValue(constant.AllX(32, true))
			}
			if b.Sign() < 0 {
				// Treat the argument as unsigned per the standard.
				b = new(big.Int).Add(b, new(big.Int).Lsh(big.NewInt(1), uint(cv.Integer().Width())))
			}
			out := 0
			if b.Sign() > 0 {
				out = new(big.Int).Sub(b, big.NewInt(1)).BitLen()
			}
			return constant.IntValue(constant.NewInteger(32, uint64(out), true))
		},
	})

	// $signed and $unsigned reinterpret the operand's signedness at its
	// own width.
	registerSystemSubroutine(signCastSubroutine("$signed", true))
	registerSystemSubroutine(signCastSubroutine("$unsigned", false))

	// $countones counts known-one bits; unknown bits do not count.
	registerSystemSubroutine(&SystemSubroutine{
		Name:    "$countones",
		MinArgs: 1,
		MaxArgs: 1,
		Check:   checkIntegralArg,
		Fold: func(ec *EvalContext, call *CallExpr) constant.Value {
			cv := ec.eval(call.Arguments[0])
			if cv.Kind() != constant.KindInteger {
				return constant.Invalid()
			}
			v := cv.Integer()
			n := 0
			for i := 0; i < v.Width(); i++ {
				if v.Bit(i) == constant.L1 {
					n++
				}
			}
			return constant.IntValue(constant.NewInteger(32, uint64(n), true))
		},
	})

	// $isunknown reports whether any bit of the operand is X or Z.
	registerSystemSubroutine(&SystemSubroutine{
		Name:    "$isunknown",
		MinArgs: 1,
		MaxArgs: 1,
		Check:   checkIntegralArg,
		Return:  func([]Expression) types.Type { return types.BitType },
		Fold: func(ec *EvalContext, call *CallExpr) constant.Value {
			cv := ec.eval(call.Arguments[0])
			if cv.Kind() != constant.KindInteger {
				return constant.Invalid()
			}
			return bitResult(boolBit(cv.Integer().HasUnknown()))
		},
	})
}

func signCastSubroutine(name string, signed bool) *SystemSubroutine {
	return &SystemSubroutine{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Check:   checkIntegralArg,
		Return: func(args []Expression) types.Type {
			t := args[0].Type()
			if !types.IsIntegral(t) {
				return types.ErrType
			}
			return types.Packed(types.BitWidth(t), signed, types.IsFourState(t))
		},
		Fold: func(ec *EvalContext, call *CallExpr) constant.Value {
			cv := ec.eval(call.Arguments[0])
			if cv.Kind() != constant.KindInteger {
				return constant.Invalid()
			}
			return constant.IntValue(cv.Integer().AsSigned(signed))
		},
	}
}

// foldSystemCall attempts bind-time folding of a builtin call whose
// arguments are already constant. Diagnostics produced by a failed fold
// attempt are discarded along with the scratch context.
func foldSystemCall(sub *SystemSubroutine, call *CallExpr) constant.Value {
	if sub.Fold == nil {
		return constant.Invalid()
	}
	for _, arg := range call.Arguments {
		if arg.Kind() != KindDataType && !arg.Constant().IsConstant() {
			return constant.Invalid()
		}
	}
	scratch := NewEvalContext()
	v := sub.Fold(scratch, call)
	if len(scratch.Diagnostics) > 0 {
		return constant.Invalid()
	}
	return v
}
