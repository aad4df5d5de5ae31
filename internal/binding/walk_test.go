package binding_test

import (
	"strings"
	"testing"

	"github.com/brightclark/slang/internal/binding"
	"github.com/brightclark/slang/internal/syntax"
	"github.com/brightclark/slang/internal/types"
)

func TestWalkIsPreorder(t *testing.T) {
	v := variable("v", types.IntType)
	ctx := newCtx(scopeOf(v))
	e := binding.Bind(
		syntax.NewBinaryExpr(syntax.OpPlus,
			syntax.NewIdentifierName("v", noSpan),
			syntax.NewBinaryExpr(syntax.OpStar, unsized(2), unsized(3), noSpan),
			noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)

	var kinds []binding.ExpressionKind
	binding.Walk(e, func(n binding.Expression) bool {
		kinds = append(kinds, n.Kind())
		return true
	})

	want := []binding.ExpressionKind{
		binding.KindBinaryOp,
		binding.KindNamedValue,
		binding.KindBinaryOp,
		binding.KindIntegerLiteral,
		binding.KindIntegerLiteral,
	}
	if len(kinds) != len(want) {
		t.Fatalf("visited %d nodes, want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("visit %d = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestWalkSkipsChildrenOnFalse(t *testing.T) {
	ctx := newCtx(nil)
	e := binding.Bind(
		syntax.NewBinaryExpr(syntax.OpPlus,
			syntax.NewBinaryExpr(syntax.OpStar, sized(8, 2), sized(8, 3), noSpan),
			sized(8, 1), noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)

	n := 0
	binding.Walk(e, func(node binding.Expression) bool {
		n++
		return node == e
	})
	// Root plus its two direct children, nothing below them.
	if n != 3 {
		t.Fatalf("visited %d nodes, want 3", n)
	}
}

func TestDumpShowsStructureAndValues(t *testing.T) {
	// Unsigned 32-bit so the combined operator type matches v exactly and
	// only the narrow literal needs widening.
	v := variable("v", types.Packed(32, false, false))
	ctx := newCtx(scopeOf(v))
	e := binding.Bind(
		syntax.NewBinaryExpr(syntax.OpPlus,
			syntax.NewIdentifierName("v", noSpan), sized(4, 9), noSpan),
		ctx, binding.FlagNone)
	requireClean(t, ctx)

	out := binding.Dump(e)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("dump has %d lines, want 4:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "BinaryOp Add") {
		t.Fatalf("root line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "NamedValue v") {
		t.Fatalf("first child line = %q", lines[1])
	}
	// The narrow literal is widened under the combined type, so the dump
	// shows the inserted conversion with its folded value over the
	// original literal.
	if !strings.Contains(lines[2], "Conversion implicit") || !strings.Contains(lines[2], "= 32'd9") {
		t.Fatalf("second child line = %q", lines[2])
	}
	if !strings.Contains(lines[3], "IntegerLiteral") || !strings.Contains(lines[3], "= 4'd9") {
		t.Fatalf("literal line = %q", lines[3])
	}
}
