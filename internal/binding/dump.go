package binding

import (
	"fmt"
	"strings"
)

// Dump renders the expression tree as an indented structural listing,
// one node per line with its kind, type and folded value. Intended for
// debugging and golden tests, not for user-facing output.
func Dump(e Expression) string {
	var sb strings.Builder
	dumpInto(&sb, e, 0)
	return sb.String()
}

func dumpInto(sb *strings.Builder, e Expression, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(e.Kind().String())

	switch n := e.(type) {
	case *NamedValueExpr:
		fmt.Fprintf(sb, " %s", n.Symbol.Name)
		if n.IsHierarchical {
			sb.WriteString(" hierarchical")
		}
	case *UnaryOpExpr:
		fmt.Fprintf(sb, " %s", n.Op)
	case *BinaryOpExpr:
		fmt.Fprintf(sb, " %s", n.Op)
	case *AssignmentExpr:
		if n.Op != nil {
			fmt.Fprintf(sb, " %s=", *n.Op)
		}
	case *RangeSelectExpr:
		fmt.Fprintf(sb, " %s", n.SelectionKind)
	case *MemberAccessExpr:
		fmt.Fprintf(sb, " .%s", n.Field.Name)
	case *CallExpr:
		fmt.Fprintf(sb, " %s", n.Subroutine.Name())
	case *ConversionExpr:
		if n.IsImplicit {
			sb.WriteString(" implicit")
		}
	case *StringLiteralExpr:
		fmt.Fprintf(sb, " %q", n.Value)
	}

	fmt.Fprintf(sb, " : %s", e.Type())
	if cv := e.Constant(); cv.IsConstant() {
		fmt.Fprintf(sb, " = %s", cv)
	}
	sb.WriteByte('\n')

	Walk(e, func(child Expression) bool {
		if child == e {
			return true
		}
		dumpInto(sb, child, depth+1)
		return false
	})
}
