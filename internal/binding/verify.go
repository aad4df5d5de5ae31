package binding

import (
	"fmt"

	"github.com/brightclark/slang/internal/diag"
)

// VerifyConstant walks the expression and reports every reason it cannot
// be evaluated at compile time, without computing any values. It keeps
// walking after the first failure so that all problems surface at once.
func (ec *EvalContext) VerifyConstant(e Expression) bool {
	ok := true
	Walk(e, func(node Expression) bool {
		switch n := node.(type) {
		case *Invalid:
			// Already diagnosed at bind time.
			ok = false
			return false
		case *NamedValueExpr:
			if n.IsHierarchical {
				ec.reportError(diag.CodeEvalHierarchical,
					fmt.Sprintf("hierarchical reference to %q cannot be evaluated at compile time",
						n.Symbol.Name),
					n.Span())
				ok = false
				break
			}
			if n.Symbol.IsParameter || ec.FindLocal(n.Symbol) != nil {
				break
			}
			if n.Symbol.IsAutomatic {
				ec.reportError(diag.CodeEvalUninitialized,
					fmt.Sprintf("automatic variable %q is used before it has a value", n.Symbol.Name),
					n.Span())
			} else {
				ec.reportError(diag.CodeEvalNotConstant,
					fmt.Sprintf("reference to %q is not constant", n.Symbol.Name),
					n.Span())
			}
			ok = false
		case *CallExpr:
			if n.Subroutine.IsSystem() {
				if n.Subroutine.System.Fold == nil {
					ec.reportError(diag.CodeEvalNonConstantCall,
						fmt.Sprintf("system function %q cannot be evaluated at compile time",
							n.Subroutine.System.Name),
						n.Span())
					ok = false
				}
				break
			}
			if !n.Subroutine.User.IsConstEval {
				ec.reportError(diag.CodeEvalNonConstantCall,
					fmt.Sprintf("subroutine %q cannot be called in a constant expression",
						n.Subroutine.User.Name),
					n.Span())
				ok = false
			}
		}
		return true
	})
	return ok
}
