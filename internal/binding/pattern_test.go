package binding_test

import (
	"testing"

	"github.com/brightclark/slang/internal/binding"
	"github.com/brightclark/slang/internal/constant"
	"github.com/brightclark/slang/internal/diag"
	"github.com/brightclark/slang/internal/syntax"
	"github.com/brightclark/slang/internal/types"
)

func byteArray(size int) *types.FixedArray {
	return &types.FixedArray{Elem: types.Packed(8, false, false), Size: size}
}

func TestSimplePatternForArray(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.BindAssignment(byteArray(3),
		syntax.NewSimpleAssignmentPattern([]syntax.Expr{
			sized(8, 1), sized(8, 2), sized(8, 3),
		}, noSpan), noSpan, ctx)
	requireClean(t, ctx)

	cv := e.Constant()
	if cv.Kind() != constant.KindElements {
		t.Fatalf("unpacked pattern folded to %s, want an element list", cv)
	}
	elems := cv.Elements()
	if len(elems) != 3 {
		t.Fatalf("got %d elements, want 3", len(elems))
	}
	for i, want := range []uint64{1, 2, 3} {
		if v, _ := elems[i].Integer().Uint64(); v != want {
			t.Fatalf("element %d = %d, want %d", i, v, want)
		}
	}
}

func TestSimplePatternForPackedStruct(t *testing.T) {
	st := packedPair()
	ctx := newCtx(nil)
	e := binding.BindAssignment(st,
		syntax.NewSimpleAssignmentPattern([]syntax.Expr{
			sized(4, 0xA), sized(4, 0x5),
		}, noSpan), noSpan, ctx)
	requireClean(t, ctx)

	// Packed targets flatten MSB-first: the first field lands in the
	// high nibble.
	got := mustFoldInteger(t, e)
	if v, _ := got.Uint64(); v != 0xA5 || got.Width() != 8 {
		t.Fatalf("'{4'hA, 4'h5} as %s = %s, want 8'hA5", st, got)
	}
}

func TestSimplePatternCountMismatch(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.BindAssignment(byteArray(3),
		syntax.NewSimpleAssignmentPattern([]syntax.Expr{
			sized(8, 1), sized(8, 2),
		}, noSpan), noSpan, ctx)
	if !e.Bad() {
		t.Fatal("short pattern must be rejected")
	}
	requireOneError(t, ctx, diag.CodePatternCountMismatch)
}

func TestStructuredPatternWithMemberAndDefault(t *testing.T) {
	st := packedPair()
	ctx := newCtx(nil)
	e := binding.BindAssignment(st,
		syntax.NewStructuredAssignmentPattern([]syntax.StructuredSetter{
			{Key: syntax.NewIdentifierName("lo", noSpan), Value: sized(4, 0x5)},
			{IsDefault: true, Value: sized(4, 0xF)},
		}, noSpan), noSpan, ctx)
	requireClean(t, ctx)

	// "hi" falls through to the default.
	if v, _ := mustFoldInteger(t, e).Uint64(); v != 0xF5 {
		t.Fatalf("folded to %#x, want 0xF5", v)
	}
}

func TestStructuredPatternLastSetterWins(t *testing.T) {
	st := packedPair()
	ctx := newCtx(nil)
	e := binding.BindAssignment(st,
		syntax.NewStructuredAssignmentPattern([]syntax.StructuredSetter{
			{Key: syntax.NewIdentifierName("hi", noSpan), Value: sized(4, 0x1)},
			{Key: syntax.NewIdentifierName("lo", noSpan), Value: sized(4, 0x2)},
			{Key: syntax.NewIdentifierName("hi", noSpan), Value: sized(4, 0x9)},
		}, noSpan), noSpan, ctx)
	requireClean(t, ctx)

	if v, _ := mustFoldInteger(t, e).Uint64(); v != 0x92 {
		t.Fatalf("folded to %#x, want 0x92 (last setter for hi wins)", v)
	}
}

func TestStructuredPatternMissingSlot(t *testing.T) {
	st := packedPair()
	ctx := newCtx(nil)
	e := binding.BindAssignment(st,
		syntax.NewStructuredAssignmentPattern([]syntax.StructuredSetter{
			{Key: syntax.NewIdentifierName("hi", noSpan), Value: sized(4, 0x1)},
		}, noSpan), noSpan, ctx)
	if !e.Bad() {
		t.Fatal("uncovered field without a default must be rejected")
	}
	requireOneError(t, ctx, diag.CodePatternMissingSlot)
}

func TestStructuredPatternUnknownKey(t *testing.T) {
	st := packedPair()
	ctx := newCtx(nil)
	e := binding.BindAssignment(st,
		syntax.NewStructuredAssignmentPattern([]syntax.StructuredSetter{
			{Key: syntax.NewIdentifierName("mid", noSpan), Value: sized(4, 0x1)},
		}, noSpan), noSpan, ctx)
	if !e.Bad() {
		t.Fatal("key naming no member must be rejected")
	}
	requireOneError(t, ctx, diag.CodePatternUnknownSetter)
}

func TestStructuredPatternTypeSetter(t *testing.T) {
	st := packedPair()
	ctx := newCtx(nil)
	ctx.Resolver = testResolver{"nibble": types.Packed(4, false, false)}
	// A type key covers every field whose type matches. Both fields of
	// pair_t are 4-bit, so one nibble setter fills both.
	e := binding.BindAssignment(st,
		syntax.NewStructuredAssignmentPattern([]syntax.StructuredSetter{
			{Key: syntax.NewDataTypeExpr("nibble", noSpan), Value: sized(4, 0x7)},
		}, noSpan), noSpan, ctx)
	requireClean(t, ctx)

	if v, _ := mustFoldInteger(t, e).Uint64(); v != 0x77 {
		t.Fatalf("folded to %#x, want 0x77", v)
	}
}

func TestStructuredPatternForArrayWithIndices(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.BindAssignment(byteArray(3),
		syntax.NewStructuredAssignmentPattern([]syntax.StructuredSetter{
			{Key: unsized(2), Value: sized(8, 30)},
			{Key: unsized(0), Value: sized(8, 10)},
			{IsDefault: true, Value: sized(8, 99)},
		}, noSpan), noSpan, ctx)
	requireClean(t, ctx)

	elems := e.Constant().Elements()
	for i, want := range []uint64{10, 99, 30} {
		if v, _ := elems[i].Integer().Uint64(); v != want {
			t.Fatalf("element %d = %d, want %d", i, v, want)
		}
	}
}

func TestStructuredPatternArrayIndexOutOfRange(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.BindAssignment(byteArray(3),
		syntax.NewStructuredAssignmentPattern([]syntax.StructuredSetter{
			{Key: unsized(5), Value: sized(8, 1)},
			{IsDefault: true, Value: sized(8, 0)},
		}, noSpan), noSpan, ctx)
	if !e.Bad() {
		t.Fatal("pattern index past the array must be rejected")
	}
	requireOneError(t, ctx, diag.CodeRangeOutOfBounds)
}

func TestReplicatedPatternForArray(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.BindAssignment(byteArray(4),
		syntax.NewReplicatedAssignmentPattern(unsized(2), []syntax.Expr{
			sized(8, 0xAB), sized(8, 0xCD),
		}, noSpan), noSpan, ctx)
	requireClean(t, ctx)

	rp := binding.As[*binding.ReplicatedAssignmentPatternExpr](e)
	if len(rp.Elements) != 4 {
		t.Fatalf("got %d elements, want 4", len(rp.Elements))
	}
	// Repeats share the bound nodes instead of re-binding them.
	if rp.Elements[0] != rp.Elements[2] || rp.Elements[1] != rp.Elements[3] {
		t.Fatal("replicated entries must reference the same bound nodes")
	}

	elems := e.Constant().Elements()
	for i, want := range []uint64{0xAB, 0xCD, 0xAB, 0xCD} {
		if v, _ := elems[i].Integer().Uint64(); v != want {
			t.Fatalf("element %d = %#x, want %#x", i, v, want)
		}
	}
}

func TestReplicatedPatternCountMismatch(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.BindAssignment(byteArray(3),
		syntax.NewReplicatedAssignmentPattern(unsized(2), []syntax.Expr{
			sized(8, 1), sized(8, 2),
		}, noSpan), noSpan, ctx)
	if !e.Bad() {
		t.Fatal("2*2 elements into a 3-element array must be rejected")
	}
	requireOneError(t, ctx, diag.CodePatternCountMismatch)
}

func TestPatternNeedsAggregateTarget(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.BindAssignment(types.IntType,
		syntax.NewSimpleAssignmentPattern([]syntax.Expr{sized(8, 1)}, noSpan),
		noSpan, ctx)
	if !e.Bad() {
		t.Fatal("pattern against a plain integral target must be rejected")
	}
	requireOneError(t, ctx, diag.CodePatternBadTarget)
}
