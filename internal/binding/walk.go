package binding

import "fmt"

// Walk visits e and its children in preorder. Returning false from the
// visitor skips the node's children. Expression trees may share
// subtrees, so a visitor that records per-node state must tolerate
// seeing a node more than once.
func Walk(e Expression, visit func(Expression) bool) {
	if e == nil || !visit(e) {
		return
	}
	switch n := e.(type) {
	case *Invalid:
		if n.Child != nil {
			Walk(n.Child, visit)
		}
	case *IntegerLiteralExpr, *RealLiteralExpr, *UnbasedUnsizedLiteralExpr,
		*NullLiteralExpr, *StringLiteralExpr, *NamedValueExpr,
		*DataTypeExpr, *EmptyArgumentExpr:
	case *UnaryOpExpr:
		Walk(n.Operand, visit)
	case *BinaryOpExpr:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *ConditionalOpExpr:
		Walk(n.Cond, visit)
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *InsideExpr:
		Walk(n.Left, visit)
		for _, c := range n.Candidates {
			Walk(c, visit)
		}
	case *AssignmentExpr:
		Walk(n.Lhs, visit)
		Walk(n.Rhs, visit)
	case *ConcatenationExpr:
		for _, op := range n.Operands {
			Walk(op, visit)
		}
	case *ReplicationExpr:
		Walk(n.Count, visit)
		Walk(n.Operand, visit)
	case *ElementSelectExpr:
		Walk(n.Value, visit)
		Walk(n.Selector, visit)
	case *RangeSelectExpr:
		Walk(n.Value, visit)
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *MemberAccessExpr:
		Walk(n.Value, visit)
	case *CallExpr:
		for _, arg := range n.Arguments {
			Walk(arg, visit)
		}
	case *ConversionExpr:
		Walk(n.Operand, visit)
	case *SimpleAssignmentPatternExpr:
		for _, el := range n.Elements {
			Walk(el, visit)
		}
	case *StructuredAssignmentPatternExpr:
		for _, el := range n.Elements {
			Walk(el, visit)
		}
	case *ReplicatedAssignmentPatternExpr:
		Walk(n.Count, visit)
		for _, el := range n.Elements {
			Walk(el, visit)
		}
	default:
		panic(fmt.Sprintf("binding: unexpected expression %T in Walk", e))
	}
}
