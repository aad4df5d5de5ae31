package binding

import (
	"fmt"

	"github.com/brightclark/slang/internal/constant"
	"github.com/brightclark/slang/internal/diag"
	"github.com/brightclark/slang/internal/syntax"
	"github.com/brightclark/slang/internal/types"
)

// bindAssignmentPattern dispatches an aggregate literal against the
// assignment target type. Patterns are only meaningful where a target
// type is known (assignment context or a cast).
func bindAssignmentPattern(s syntax.Expr, ctx *BindContext, target types.Type) Expression {
	if target == nil || types.IsError(target) {
		ctx.reportError(diag.CodePatternBadTarget,
			"assignment pattern requires a known target type", s.Span())
		return badExpr(ctx, nil)
	}

	switch t := target.(type) {
	case *types.Struct:
		switch p := s.(type) {
		case *syntax.SimpleAssignmentPattern:
			return simplePatternForStruct(p, ctx, t)
		case *syntax.StructuredAssignmentPattern:
			return structuredPatternForStruct(p, ctx, t)
		case *syntax.ReplicatedAssignmentPattern:
			return replicatedPatternForStruct(p, ctx, t)
		}
	case *types.FixedArray:
		switch p := s.(type) {
		case *syntax.SimpleAssignmentPattern:
			return simplePatternForArray(p, ctx, t)
		case *syntax.StructuredAssignmentPattern:
			return structuredPatternForArray(p, ctx, t)
		case *syntax.ReplicatedAssignmentPattern:
			return replicatedPatternForArray(p, ctx, t)
		}
	default:
		ctx.reportError(diag.CodePatternBadTarget,
			fmt.Sprintf("assignment pattern cannot target type %s", target), s.Span())
		return badExpr(ctx, nil)
	}
	panic(fmt.Sprintf("binding: unexpected pattern syntax %T", s))
}

func simplePatternForStruct(p *syntax.SimpleAssignmentPattern, ctx *BindContext, st *types.Struct) Expression {
	if len(p.Elements) != len(st.Fields) {
		ctx.reportError(diag.CodePatternCountMismatch,
			fmt.Sprintf("pattern has %d elements but %s has %d fields",
				len(p.Elements), st, len(st.Fields)),
			p.Span())
		return badExpr(ctx, nil)
	}
	elements := make([]Expression, len(p.Elements))
	bad := false
	for i, es := range p.Elements {
		elements[i] = BindAssignment(st.Fields[i].Type, es, es.Span(), ctx)
		bad = bad || elements[i].Bad()
	}
	if bad {
		return badExpr(ctx, nil)
	}
	return finishSimplePattern(st, elements, p.Span())
}

func simplePatternForArray(p *syntax.SimpleAssignmentPattern, ctx *BindContext, arr *types.FixedArray) Expression {
	if len(p.Elements) != arr.Size {
		ctx.reportError(diag.CodePatternCountMismatch,
			fmt.Sprintf("pattern has %d elements but target array has %d",
				len(p.Elements), arr.Size),
			p.Span())
		return badExpr(ctx, nil)
	}
	elements := make([]Expression, len(p.Elements))
	bad := false
	for i, es := range p.Elements {
		elements[i] = BindAssignment(arr.Elem, es, es.Span(), ctx)
		bad = bad || elements[i].Bad()
	}
	if bad {
		return badExpr(ctx, nil)
	}
	return finishSimplePattern(arr, elements, p.Span())
}

func finishSimplePattern(typ types.Type, elements []Expression, span diag.Span) Expression {
	expr := &SimpleAssignmentPatternExpr{
		base:     newBase(KindSimpleAssignmentPattern, typ, span),
		Elements: elements,
	}
	if folded := foldPattern(typ, elements); folded.IsConstant() {
		expr.setConstant(folded)
	}
	return expr
}

// structuredPatternForStruct binds a keyed pattern against a struct.
// Setters are classified in declaration order; when more than one setter
// addresses the same field, the last one in the pattern wins, matching
// positional tie-break behavior for member, type and default setters
// alike.
func structuredPatternForStruct(p *syntax.StructuredAssignmentPattern, ctx *BindContext, st *types.Struct) Expression {
	var memberSetters []MemberSetter
	var typeSetters []TypeSetter
	var defaultSetter Expression
	bad := false

	for _, setter := range p.Setters {
		switch {
		case setter.IsDefault:
			defaultSetter = selfDetermined(setter.Value, ctx)
			bad = bad || defaultSetter.Bad()

		case isMemberKey(setter.Key, st):
			name := setter.Key.(*syntax.IdentifierName).Name
			field := st.FieldByName(name)
			expr := BindAssignment(field.Type, setter.Value, setter.Value.Span(), ctx)
			bad = bad || expr.Bad()
			memberSetters = append(memberSetters, MemberSetter{Member: field, Expr: expr})

		case isTypeKey(setter.Key):
			typ := ctx.Resolver.Resolve(setter.Key.(*syntax.DataTypeExpr))
			if types.IsError(typ) {
				bad = true
				continue
			}
			expr := BindAssignment(typ, setter.Value, setter.Value.Span(), ctx)
			bad = bad || expr.Bad()
			typeSetters = append(typeSetters, TypeSetter{Type: typ, Expr: expr})

		default:
			ctx.reportError(diag.CodePatternUnknownSetter,
				fmt.Sprintf("pattern key does not name a member of %s", st),
				setter.Value.Span())
			bad = true
		}
	}
	if bad {
		return badExpr(ctx, nil)
	}

	// Fill slots in declaration order: the latest matching member setter
	// wins over any type setter, which wins over the default.
	elements := make([]Expression, len(st.Fields))
	for i, field := range st.Fields {
		for _, ms := range memberSetters {
			if ms.Member == field {
				elements[i] = ms.Expr
			}
		}
		if elements[i] != nil {
			continue
		}
		for _, ts := range typeSetters {
			if types.Matches(ts.Type, field.Type) {
				elements[i] = ts.Expr
			}
		}
		if elements[i] != nil {
			continue
		}
		if defaultSetter != nil {
			elements[i] = ConvertAssignment(ctx, field.Type, defaultSetter, p.Span())
			if elements[i].Bad() {
				return badExpr(ctx, nil)
			}
			continue
		}
		ctx.reportError(diag.CodePatternMissingSlot,
			fmt.Sprintf("field %q of %s is not covered by any setter and no default is present",
				field.Name, st),
			p.Span())
		return badExpr(ctx, nil)
	}

	expr := &StructuredAssignmentPatternExpr{
		base:          newBase(KindStructuredAssignmentPattern, st, p.Span()),
		MemberSetters: memberSetters,
		TypeSetters:   typeSetters,
		DefaultSetter: defaultSetter,
		Elements:      elements,
	}
	if folded := foldPattern(st, elements); folded.IsConstant() {
		expr.setConstant(folded)
	}
	return expr
}

func structuredPatternForArray(p *syntax.StructuredAssignmentPattern, ctx *BindContext, arr *types.FixedArray) Expression {
	var indexSetters []IndexSetter
	var defaultSetter Expression
	slots := make([]Expression, arr.Size)
	bad := false

	for _, setter := range p.Setters {
		if setter.IsDefault {
			defaultSetter = selfDetermined(setter.Value, ctx)
			bad = bad || defaultSetter.Bad()
			continue
		}
		index := selfDetermined(setter.Key, ctx)
		if index.Bad() {
			bad = true
			continue
		}
		n, ok := constantIndex(index)
		if !ok {
			ctx.reportError(diag.CodeRangeNotConstant,
				"array pattern index must be a constant integer", setter.Key.Span())
			bad = true
			continue
		}
		if n < 0 || n >= arr.Size {
			ctx.reportError(diag.CodeRangeOutOfBounds,
				fmt.Sprintf("pattern index %d is outside the target array", n),
				setter.Key.Span())
			bad = true
			continue
		}
		expr := BindAssignment(arr.Elem, setter.Value, setter.Value.Span(), ctx)
		bad = bad || expr.Bad()
		indexSetters = append(indexSetters, IndexSetter{Index: index, Expr: expr})
		// Last setter for a slot wins.
		slots[n] = expr
	}
	if bad {
		return badExpr(ctx, nil)
	}

	for i := range slots {
		if slots[i] != nil {
			continue
		}
		if defaultSetter == nil {
			ctx.reportError(diag.CodePatternMissingSlot,
				fmt.Sprintf("array index %d is not covered by any setter and no default is present", i),
				p.Span())
			return badExpr(ctx, nil)
		}
		slots[i] = ConvertAssignment(ctx, arr.Elem, defaultSetter, p.Span())
		if slots[i].Bad() {
			return badExpr(ctx, nil)
		}
	}

	expr := &StructuredAssignmentPatternExpr{
		base:          newBase(KindStructuredAssignmentPattern, arr, p.Span()),
		IndexSetters:  indexSetters,
		DefaultSetter: defaultSetter,
		Elements:      slots,
	}
	if folded := foldPattern(arr, slots); folded.IsConstant() {
		expr.setConstant(folded)
	}
	return expr
}

func replicatedPatternForStruct(p *syntax.ReplicatedAssignmentPattern, ctx *BindContext, st *types.Struct) Expression {
	count, countVal, ok := bindConstantCount(p.Count, ctx)
	if !ok {
		return badExpr(ctx, count)
	}
	total := countVal * len(p.Elements)
	if total != len(st.Fields) {
		ctx.reportError(diag.CodePatternCountMismatch,
			fmt.Sprintf("replicated pattern supplies %d elements but %s has %d fields",
				total, st, len(st.Fields)),
			p.Span())
		return badExpr(ctx, nil)
	}

	elements := make([]Expression, 0, total)
	bad := false
	for rep := 0; rep < countVal; rep++ {
		for i, es := range p.Elements {
			field := st.Fields[rep*len(p.Elements)+i]
			expr := BindAssignment(field.Type, es, es.Span(), ctx)
			bad = bad || expr.Bad()
			elements = append(elements, expr)
		}
	}
	if bad {
		return badExpr(ctx, nil)
	}
	return finishReplicatedPattern(st, count, elements, p.Span())
}

func replicatedPatternForArray(p *syntax.ReplicatedAssignmentPattern, ctx *BindContext, arr *types.FixedArray) Expression {
	count, countVal, ok := bindConstantCount(p.Count, ctx)
	if !ok {
		return badExpr(ctx, count)
	}
	total := countVal * len(p.Elements)
	if total != arr.Size {
		ctx.reportError(diag.CodePatternCountMismatch,
			fmt.Sprintf("replicated pattern supplies %d elements but target array has %d",
				total, arr.Size),
			p.Span())
		return badExpr(ctx, nil)
	}

	inner := make([]Expression, 0, len(p.Elements))
	bad := false
	for _, es := range p.Elements {
		expr := BindAssignment(arr.Elem, es, es.Span(), ctx)
		bad = bad || expr.Bad()
		inner = append(inner, expr)
	}
	if bad {
		return badExpr(ctx, nil)
	}

	// The element list logically repeats the inner pattern count times;
	// repeated entries reference the same bound nodes, so the tree is a
	// DAG rather than a deep copy.
	elements := make([]Expression, 0, total)
	for rep := 0; rep < countVal; rep++ {
		elements = append(elements, inner...)
	}
	return finishReplicatedPattern(arr, count, elements, p.Span())
}

func finishReplicatedPattern(typ types.Type, count Expression, elements []Expression, span diag.Span) Expression {
	expr := &ReplicatedAssignmentPatternExpr{
		base:     newBase(KindReplicatedAssignmentPattern, typ, span),
		Count:    count,
		Elements: elements,
	}
	if folded := foldPattern(typ, elements); folded.IsConstant() {
		expr.setConstant(folded)
	}
	return expr
}

func isMemberKey(key syntax.Expr, st *types.Struct) bool {
	id, ok := key.(*syntax.IdentifierName)
	return ok && st.FieldByName(id.Name) != nil
}

func isTypeKey(key syntax.Expr) bool {
	_, ok := key.(*syntax.DataTypeExpr)
	return ok
}

// foldPattern folds a fully constant pattern: packed targets concatenate
// their slots MSB-first, unpacked targets build an element list value.
func foldPattern(typ types.Type, elements []Expression) constant.Value {
	values := make([]constant.Value, len(elements))
	for i, e := range elements {
		values[i] = e.Constant()
		if !values[i].IsConstant() {
			return constant.Invalid()
		}
	}
	return patternValue(typ, values)
}
