package binding_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/brightclark/slang/internal/binding"
	"github.com/brightclark/slang/internal/constant"
	"github.com/brightclark/slang/internal/diag"
	"github.com/brightclark/slang/internal/syntax"
	"github.com/brightclark/slang/internal/types"
)

var noSpan = diag.Span{}

func bigNeg(v int64) *big.Int { return big.NewInt(-v) }

type testScope struct {
	syms map[string]types.Symbol
	hier map[string]types.Symbol
}

func (s *testScope) Lookup(name string, _ types.LookupLocation) types.Symbol {
	return s.syms[name]
}

func (s *testScope) LookupHierarchical(parts []string) types.Symbol {
	return s.hier[strings.Join(parts, ".")]
}

func scopeOf(syms ...types.Symbol) *testScope {
	s := &testScope{syms: map[string]types.Symbol{}, hier: map[string]types.Symbol{}}
	for _, sym := range syms {
		s.syms[sym.SymbolName()] = sym
	}
	return s
}

type testResolver map[string]types.Type

func (r testResolver) Resolve(dt *syntax.DataTypeExpr) types.Type {
	if t, ok := r[dt.Name]; ok {
		return t
	}
	return types.ErrType
}

func newCtx(scope *testScope) *binding.BindContext {
	if scope == nil {
		scope = scopeOf()
	}
	return &binding.BindContext{
		Scope:  scope,
		Lookup: types.LookupMax,
		Resolver: testResolver{
			"bit":    types.BitType,
			"logic":  types.LogicType,
			"int":    types.IntType,
			"byte":   types.Packed(8, true, false),
			"real":   types.RealT,
			"string": types.StringT,
		},
		Sink: &diag.Sink{},
	}
}

// sized builds a sized unsigned integer literal like 8'd5.
func sized(width int, v uint64) *syntax.IntegerLiteral {
	return syntax.NewIntegerLiteral(width, false, constant.NewInteger(width, v, false), noSpan)
}

// unsized builds an unsized decimal literal, which types as 32-bit
// signed.
func unsized(v uint64) *syntax.IntegerLiteral {
	return syntax.NewIntegerLiteral(0, false, constant.NewInteger(32, v, true), noSpan)
}

// sizedBits builds a sized literal from an MSB-first 0/1/x/z string.
func sizedBits(t *testing.T, s string) *syntax.IntegerLiteral {
	t.Helper()
	bits := make([]constant.Bit, len(s))
	for i, r := range s {
		var b constant.Bit
		switch r {
		case '0':
			b = constant.L0
		case '1':
			b = constant.L1
		case 'x':
			b = constant.LX
		case 'z':
			b = constant.LZ
		default:
			t.Fatalf("bad bit rune %q", r)
		}
		bits[len(s)-1-i] = b
	}
	return syntax.NewIntegerLiteral(len(s), false, constant.FromBits(bits, false), noSpan)
}

func parameter(name string, typ types.Type, init constant.Value) *types.ValueSymbol {
	return &types.ValueSymbol{
		Name:        name,
		Type:        typ,
		IsParameter: true,
		Init:        func() constant.Value { return init },
	}
}

func variable(name string, typ types.Type) *types.ValueSymbol {
	return &types.ValueSymbol{Name: name, Type: typ}
}

func mustFoldInteger(t *testing.T, e binding.Expression) constant.Integer {
	t.Helper()
	cv := e.Constant()
	if cv.Kind() != constant.KindInteger {
		t.Fatalf("expression did not fold to an integer: %v", cv)
	}
	return cv.Integer()
}

func requireClean(t *testing.T, ctx *binding.BindContext) {
	t.Helper()
	if len(ctx.Sink.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", ctx.Sink.Diagnostics)
	}
}

func requireOneError(t *testing.T, ctx *binding.BindContext, code diag.Code) {
	t.Helper()
	if len(ctx.Sink.Diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d: %v",
			len(ctx.Sink.Diagnostics), ctx.Sink.Diagnostics)
	}
	if got := ctx.Sink.Diagnostics[0].Code; got != code {
		t.Fatalf("expected code %s, got %s", code, got)
	}
}

func TestIntegerLiteralTyping(t *testing.T) {
	ctx := newCtx(nil)

	e := binding.Bind(sized(8, 5), ctx, binding.FlagNone)
	if types.BitWidth(e.Type()) != 8 || types.IsSigned(e.Type()) {
		t.Fatalf("8'd5 typed as %s", e.Type())
	}
	if types.IsFourState(e.Type()) {
		t.Fatal("a fully known literal should be two-state")
	}

	e = binding.Bind(unsized(5), ctx, binding.FlagNone)
	if types.BitWidth(e.Type()) != 32 || !types.IsSigned(e.Type()) {
		t.Fatalf("unsized 5 typed as %s", e.Type())
	}

	e = binding.Bind(sizedBits(t, "1x0"), ctx, binding.FlagNone)
	if !types.IsFourState(e.Type()) {
		t.Fatal("a literal with unknown bits must be four-state")
	}
	requireClean(t, ctx)
}

func TestBinaryAdditionFolds(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(syntax.NewBinaryExpr(syntax.OpPlus, sized(8, 5), sized(8, 3), noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)

	if types.BitWidth(e.Type()) != 8 {
		t.Fatalf("result width = %d, want 8", types.BitWidth(e.Type()))
	}
	if types.IsFourState(e.Type()) {
		t.Fatal("adding two-state operands should give a two-state result")
	}
	got := mustFoldInteger(t, e)
	if v, _ := got.Uint64(); v != 8 || got.Width() != 8 || got.HasUnknown() {
		t.Fatalf("8'd5 + 8'd3 folded to %s", got)
	}
}

func TestWidthPropagationInsertsOneConversion(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(syntax.NewBinaryExpr(syntax.OpPlus, sized(4, 9), sized(8, 1), noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)

	bin := binding.As[*binding.BinaryOpExpr](e)
	conv := binding.As[*binding.ConversionExpr](bin.Left)
	if !conv.IsImplicit {
		t.Fatal("width propagation must use an implicit conversion")
	}
	if types.BitWidth(conv.Type()) != 8 {
		t.Fatalf("converted operand width = %d, want 8", types.BitWidth(conv.Type()))
	}
	if conv.Operand.Kind() != binding.KindIntegerLiteral {
		t.Fatalf("conversion wraps %s, want the original literal", conv.Operand.Kind())
	}
	if bin.Right.Kind() != binding.KindIntegerLiteral {
		t.Fatal("the wider operand must not be wrapped")
	}

	got := mustFoldInteger(t, e)
	if v, _ := got.Uint64(); v != 10 {
		t.Fatalf("4'd9 + 8'd1 folded to %s, want 10", got)
	}
}

func TestFourStateFolding(t *testing.T) {
	cases := []struct {
		name string
		op   syntax.OpToken
		l, r string
		want constant.Bit
	}{
		{"one and x", syntax.OpAmp, "1", "x", constant.LX},
		{"zero and x", syntax.OpAmp, "0", "x", constant.L0},
		{"x or x", syntax.OpPipe, "x", "x", constant.LX},
		{"one or x", syntax.OpPipe, "1", "x", constant.L1},
		{"x xor one", syntax.OpCaret, "x", "1", constant.LX},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := newCtx(nil)
			e := binding.Bind(syntax.NewBinaryExpr(tc.op, sizedBits(t, tc.l), sizedBits(t, tc.r), noSpan),
				ctx, binding.FlagNone)
			requireClean(t, ctx)
			got := mustFoldInteger(t, e)
			if got.Width() != 1 || got.Bit(0) != tc.want {
				t.Fatalf("folded to %s, want bit %d", got, tc.want)
			}
		})
	}
}

func TestUndefinedIdentifier(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(syntax.NewIdentifierName("q", noSpan), ctx, binding.FlagNone)
	if !e.Bad() {
		t.Fatal("expected the invalid sentinel")
	}
	if !types.IsError(e.Type()) {
		t.Fatalf("invalid expression carries type %s, want the error sentinel", e.Type())
	}
	requireOneError(t, ctx, diag.CodeUndefinedIdentifier)
}

func TestErrorPropagatesWithoutCascading(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(
		syntax.NewBinaryExpr(syntax.OpPlus, syntax.NewIdentifierName("q", noSpan), sized(8, 1), noSpan),
		ctx, binding.FlagNone)
	if !e.Bad() {
		t.Fatal("expected the invalid sentinel")
	}
	// The undefined name is the only error; the addition stays silent.
	requireOneError(t, ctx, diag.CodeUndefinedIdentifier)
}

func TestParameterInitializerMemoized(t *testing.T) {
	calls := 0
	p := &types.ValueSymbol{
		Name:        "P",
		Type:        types.Packed(4, false, false),
		IsParameter: true,
		Init: func() constant.Value {
			calls++
			return constant.IntValue(constant.NewInteger(4, 3, false))
		},
	}
	ctx := newCtx(scopeOf(p))

	for i := 0; i < 2; i++ {
		e := binding.Bind(syntax.NewIdentifierName("P", noSpan), ctx, binding.FlagNone)
		got := mustFoldInteger(t, e)
		if v, _ := got.Uint64(); v != 3 {
			t.Fatalf("parameter folded to %s", got)
		}
	}
	if calls != 1 {
		t.Fatalf("initializer ran %d times, want 1", calls)
	}
	requireClean(t, ctx)
}

func TestHierarchicalRejectedInConstantContext(t *testing.T) {
	v := variable("x", types.IntType)
	scope := scopeOf()
	scope.hier["top.x"] = v
	ctx := newCtx(scope)

	e := binding.Bind(syntax.NewHierarchicalName([]string{"top", "x"}, noSpan),
		ctx, binding.FlagConstant)
	if !e.Bad() {
		t.Fatal("expected the invalid sentinel")
	}
	requireOneError(t, ctx, diag.CodeHierarchicalNotAllowed)

	// Outside constant context the same reference binds fine.
	ctx = newCtx(scope)
	e = binding.Bind(syntax.NewHierarchicalName([]string{"top", "x"}, noSpan), ctx, binding.FlagNone)
	requireClean(t, ctx)
	nv := binding.As[*binding.NamedValueExpr](e)
	if !nv.IsHierarchical {
		t.Fatal("reference should be marked hierarchical")
	}
}

func TestConditionalMergesUnknownCondition(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(
		syntax.NewConditionalExpr(sizedBits(t, "x"), sizedBits(t, "0110"), sizedBits(t, "1010"), noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)

	got := mustFoldInteger(t, e)
	// Positions where the arms agree keep their value; the rest go X.
	want := []constant.Bit{constant.L0, constant.L1, constant.LX, constant.LX}
	for n, b := range want {
		if got.Bit(n) != b {
			t.Fatalf("merged bit %d = %v, want %v (value %s)", n, got.Bit(n), b, got)
		}
	}
}

func TestConditionalKnownConditionPicksArm(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(
		syntax.NewConditionalExpr(sized(1, 1), sized(8, 10), sized(8, 20), noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)
	if v, _ := mustFoldInteger(t, e).Uint64(); v != 10 {
		t.Fatalf("true ? 10 : 20 folded to %d", v)
	}
}

func TestLogicalOperandsStaySelfDetermined(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(syntax.NewBinaryExpr(syntax.OpAmpAmp, sized(8, 1), sized(16, 1), noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)

	bin := binding.As[*binding.BinaryOpExpr](e)
	if types.BitWidth(bin.Left.Type()) != 8 || types.BitWidth(bin.Right.Type()) != 16 {
		t.Fatal("logical operands must keep their self-determined widths")
	}
	if types.BitWidth(e.Type()) != 1 {
		t.Fatalf("logical result width = %d, want 1", types.BitWidth(e.Type()))
	}
	if v, _ := mustFoldInteger(t, e).Uint64(); v != 1 {
		t.Fatal("1 && 1 should fold to 1")
	}
}

func TestShiftKeepsLeftWidth(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(syntax.NewBinaryExpr(syntax.OpShiftLeft, sized(8, 1), unsized(2), noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)

	bin := binding.As[*binding.BinaryOpExpr](e)
	if types.BitWidth(e.Type()) != 8 {
		t.Fatalf("shift result width = %d, want the left operand's 8", types.BitWidth(e.Type()))
	}
	if types.BitWidth(bin.Right.Type()) != 32 {
		t.Fatal("shift amount must stay self-determined")
	}
	if v, _ := mustFoldInteger(t, e).Uint64(); v != 4 {
		t.Fatalf("8'd1 << 2 folded to %d", v)
	}
}

func TestUnbasedUnsizedLiteralWidens(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(
		syntax.NewBinaryExpr(syntax.OpAmp,
			syntax.NewUnbasedUnsizedLiteral(constant.L1, noSpan), sized(8, 0xA5), noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)

	bin := binding.As[*binding.BinaryOpExpr](e)
	// The literal re-materializes at the operator width instead of being
	// wrapped in a conversion.
	lit := binding.As[*binding.UnbasedUnsizedLiteralExpr](bin.Left)
	if types.BitWidth(lit.Type()) != 8 {
		t.Fatalf("'1 widened to %d bits, want 8", types.BitWidth(lit.Type()))
	}
	if v, _ := mustFoldInteger(t, e).Uint64(); v != 0xA5 {
		t.Fatalf("'1 & 8'hA5 folded to %#x", v)
	}
}

func TestReplicationConcat(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(
		syntax.NewReplicationExpr(unsized(3),
			syntax.NewConcatExpr([]syntax.Expr{sized(2, 1)}, noSpan), noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)

	if types.BitWidth(e.Type()) != 6 {
		t.Fatalf("{3{2'b01}} width = %d, want 6", types.BitWidth(e.Type()))
	}
	got := mustFoldInteger(t, e)
	if got.String() != "6'd21" {
		t.Fatalf("{3{2'b01}} folded to %s, want 6'b010101", got)
	}
}

func TestReplicationCountMustBeConstant(t *testing.T) {
	v := variable("n", types.IntType)
	ctx := newCtx(scopeOf(v))
	e := binding.Bind(
		syntax.NewReplicationExpr(syntax.NewIdentifierName("n", noSpan),
			syntax.NewConcatExpr([]syntax.Expr{sized(2, 1)}, noSpan), noSpan),
		ctx, binding.FlagNone)
	if !e.Bad() {
		t.Fatal("expected the invalid sentinel")
	}
	requireOneError(t, ctx, diag.CodeBadReplicationCount)
}

func TestReplicationCountMustBeNonNegative(t *testing.T) {
	ctx := newCtx(nil)
	neg := syntax.NewIntegerLiteral(0, true, constant.FromBig(32, bigNeg(1), true), noSpan)
	e := binding.Bind(
		syntax.NewReplicationExpr(neg,
			syntax.NewConcatExpr([]syntax.Expr{sized(2, 1)}, noSpan), noSpan),
		ctx, binding.FlagNone)
	if !e.Bad() {
		t.Fatal("expected the invalid sentinel")
	}
	requireOneError(t, ctx, diag.CodeBadReplicationCount)
}

func TestConcatenationWidthAndValue(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(
		syntax.NewConcatExpr([]syntax.Expr{sized(4, 0xA), sized(4, 0x5)}, noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)
	if types.BitWidth(e.Type()) != 8 || types.IsSigned(e.Type()) {
		t.Fatalf("{4'hA, 4'h5} typed as %s", e.Type())
	}
	if v, _ := mustFoldInteger(t, e).Uint64(); v != 0xA5 {
		t.Fatalf("{4'hA, 4'h5} folded to %#x, want 0xA5", v)
	}
}

func TestInsideOperator(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(
		syntax.NewInsideExpr(sized(8, 5), []syntax.Expr{sized(8, 3), sized(8, 5)}, noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)
	if !types.Matches(e.Type(), types.LogicType) {
		t.Fatalf("inside result typed as %s, want logic", e.Type())
	}

	ec := binding.NewEvalContext()
	got := ec.Eval(e)
	if len(ec.Diagnostics) != 0 {
		t.Fatalf("unexpected eval diagnostics: %v", ec.Diagnostics)
	}
	if got.Kind() != constant.KindInteger || got.Integer().Bit(0) != constant.L1 {
		t.Fatalf("5 inside {3, 5} evaluated to %v", got)
	}
}

func TestSignCast(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(syntax.NewSignCastExpr(true, sized(4, 0xF), noSpan), ctx, binding.FlagNone)
	requireClean(t, ctx)
	if !types.IsSigned(e.Type()) || types.BitWidth(e.Type()) != 4 {
		t.Fatalf("signed'(4'hF) typed as %s", e.Type())
	}
	got := mustFoldInteger(t, e)
	if v, ok := got.Int64(); !ok || v != -1 {
		t.Fatalf("signed'(4'hF) folded to %s, want -1", got)
	}
}

func TestCastRealToInt(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(
		syntax.NewCastExpr(syntax.NewDataTypeExpr("int", noSpan),
			syntax.NewRealLiteral(3.7, noSpan), noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)
	if v, _ := mustFoldInteger(t, e).Uint64(); v != 4 {
		t.Fatalf("int'(3.7) folded to %d, want 4 (round to nearest)", v)
	}
}
