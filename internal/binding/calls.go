package binding

import (
	"fmt"

	"github.com/brightclark/slang/internal/diag"
	"github.com/brightclark/slang/internal/syntax"
	"github.com/brightclark/slang/internal/types"
)

func bindInvocation(e *syntax.InvocationExpr, ctx *BindContext) Expression {
	switch target := e.Target.(type) {
	case *syntax.SystemName:
		return bindSystemCall(target, e, ctx)
	case *syntax.IdentifierName:
		sym := ctx.Scope.Lookup(target.Name, ctx.Lookup)
		if sym == nil {
			ctx.reportError(diag.CodeUndefinedIdentifier,
				fmt.Sprintf("use of undeclared identifier %q", target.Name), target.Span())
			return badExpr(ctx, nil)
		}
		sub, ok := sym.(*types.Subroutine)
		if !ok {
			ctx.reportError(diag.CodeNotASubroutine,
				fmt.Sprintf("%q is not a subroutine", target.Name), target.Span())
			return badExpr(ctx, nil)
		}
		return bindUserCall(sub, e, ctx)
	default:
		ctx.reportError(diag.CodeNotASubroutine,
			"call target is not a subroutine name", e.Target.Span())
		return badExpr(ctx, nil)
	}
}

// bindUserCall binds each actual argument against the corresponding
// formal's declared direction: in and const ref arguments go through
// normal assignment conversion; out, inout and ref arguments must be
// valid lvalues of exactly matching type and are bound without a copy
// wrapper.
func bindUserCall(sub *types.Subroutine, e *syntax.InvocationExpr, ctx *BindContext) Expression {
	if len(e.Args) > len(sub.Args) {
		ctx.reportError(diag.CodeArgCountMismatch,
			fmt.Sprintf("%q expects %d arguments, got %d", sub.Name, len(sub.Args), len(e.Args)),
			e.Span())
		return badExpr(ctx, nil)
	}

	args := make([]Expression, len(sub.Args))
	bad := false
	for i, formal := range sub.Args {
		var actual syntax.Expr
		if i < len(e.Args) {
			actual = e.Args[i]
		}
		if actual == nil {
			if !formal.HasDefault {
				code := diag.CodeArgCountMismatch
				if i < len(e.Args) {
					code = diag.CodeEmptyArgNotAllowed
				}
				ctx.reportError(code,
					fmt.Sprintf("argument %q of %q has no default and cannot be omitted",
						formal.Name, sub.Name),
					e.Span())
				bad = true
			}
			args[i] = &EmptyArgumentExpr{base: newBase(KindEmptyArgument, types.ErrType, e.Span())}
			continue
		}

		switch formal.Direction {
		case types.ArgIn, types.ArgConstRef:
			args[i] = BindAssignment(formal.Type, actual, actual.Span(), ctx)
		default:
			expr := selfDetermined(actual, ctx)
			if expr.Bad() {
				bad = true
				args[i] = expr
				continue
			}
			if !isLValue(expr) {
				ctx.reportError(diag.CodeRefArgNotLValue,
					fmt.Sprintf("argument for %s formal %q must be assignable",
						formal.Direction, formal.Name),
					actual.Span())
				bad = true
			} else if !types.Matches(expr.Type(), formal.Type) {
				ctx.reportError(diag.CodeNoImplicitConversion,
					fmt.Sprintf("%s argument %q requires exactly type %s, got %s",
						formal.Direction, formal.Name, formal.Type, expr.Type()),
					actual.Span())
				bad = true
			}
			args[i] = expr
		}
		bad = bad || args[i].Bad()
	}
	if bad {
		return badExpr(ctx, nil)
	}

	return &CallExpr{
		base:       newBase(KindCall, sub.ReturnType, e.Span()),
		Subroutine: SubroutineRef{User: sub},
		Arguments:  args,
		Lookup:     ctx.Lookup,
	}
}

// bindSystemCall constructs a builtin call through the registry,
// validating the builtin's argument-count and per-argument contract
// before the node exists.
func bindSystemCall(name *syntax.SystemName, e *syntax.InvocationExpr, ctx *BindContext) Expression {
	sub := LookupSystemSubroutine(name.Name)
	if sub == nil {
		ctx.reportError(diag.CodeUnknownSystemName,
			fmt.Sprintf("unknown system function %q", name.Name), name.Span())
		return badExpr(ctx, nil)
	}
	if len(e.Args) < sub.MinArgs || len(e.Args) > sub.MaxArgs {
		ctx.reportError(diag.CodeArgCountMismatch,
			fmt.Sprintf("%q expects %s, got %d", sub.Name, sub.arityString(), len(e.Args)),
			e.Span())
		return badExpr(ctx, nil)
	}

	args := make([]Expression, len(e.Args))
	bad := false
	for i, as := range e.Args {
		if as == nil {
			ctx.reportError(diag.CodeEmptyArgNotAllowed,
				fmt.Sprintf("%q does not accept empty arguments", sub.Name), e.Span())
			bad = true
			args[i] = &EmptyArgumentExpr{base: newBase(KindEmptyArgument, types.ErrType, e.Span())}
			continue
		}
		args[i] = selfDetermined(as, ctx)
		if args[i].Bad() {
			bad = true
			continue
		}
		if !sub.checkArg(i, args[i], ctx) {
			bad = true
		}
	}
	if bad {
		return badExpr(ctx, nil)
	}

	expr := &CallExpr{
		base:       newBase(KindCall, sub.returnType(args), e.Span()),
		Subroutine: SubroutineRef{System: sub},
		Arguments:  args,
		Lookup:     ctx.Lookup,
	}
	if folded := foldSystemCall(sub, expr); folded.IsConstant() {
		expr.setConstant(folded)
	}
	return expr
}
