package exprs

import (
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
)

// Expr is the typed expression boundary between the script front-end and
// this interpreter core. The full AST lives outside the core; the node kinds
// here are exactly the ones the reduction pipeline must understand: already
// reduced constants, the logical connectives they compose under, and the
// embedded sub-script placeholder that the deserialize-substitution pass
// resolves.
type Expr interface {
	isExpr()
}

// BoolConstant is a plain boolean evaluation result.
type BoolConstant struct {
	Value bool
}

func (*BoolConstant) isExpr() {}

// SigmaPropConstant is an already-reduced sigma proposition.
type SigmaPropConstant struct {
	Value sigma.SigmaBoolean
}

func (*SigmaPropConstant) isExpr() {}

// BinAnd is a conjunction of two sigma-proposition-valued operands.
type BinAnd struct {
	Left  Expr
	Right Expr
}

func (*BinAnd) isExpr() {}

// BinOr is a disjunction of two sigma-proposition-valued operands.
type BinOr struct {
	Left  Expr
	Right Expr
}

func (*BinOr) isExpr() {}

// ConstantPlaceholder references an entry of the enclosing tree's segregated
// constant pool by index. Placeholders are spliced out when the container is
// propositionized, before any evaluation.
type ConstantPlaceholder struct {
	Index uint8
}

func (*ConstantPlaceholder) isExpr() {}

// DeserializeContext stands for a sub-script supplied at spending time in a
// context-extension variable. It is resolved, type-checked and spliced in by
// the reduction pipeline before evaluation.
type DeserializeContext struct {
	VarID uint8
}

func (*DeserializeContext) isExpr() {}

// Rewrite rebuilds the expression bottom-up, replacing every node by
// whatever f returns for it. Children are rewritten before their parent, so
// f sees already-rewritten subtrees. The input expression is never mutated.
func Rewrite(expr Expr, f func(Expr) (Expr, error)) (Expr, error) {
	switch expr := expr.(type) {
	case *BinAnd:
		left, err := Rewrite(expr.Left, f)
		if err != nil {
			return nil, err
		}
		right, err := Rewrite(expr.Right, f)
		if err != nil {
			return nil, err
		}
		return f(&BinAnd{Left: left, Right: right})
	case *BinOr:
		left, err := Rewrite(expr.Left, f)
		if err != nil {
			return nil, err
		}
		right, err := Rewrite(expr.Right, f)
		if err != nil {
			return nil, err
		}
		return f(&BinOr{Left: left, Right: right})
	default:
		return f(expr)
	}
}

// ContainsDeserialize reports whether any embedded sub-script placeholder
// remains in the expression.
func ContainsDeserialize(expr Expr) bool {
	switch expr := expr.(type) {
	case *DeserializeContext:
		return true
	case *BinAnd:
		return ContainsDeserialize(expr.Left) || ContainsDeserialize(expr.Right)
	case *BinOr:
		return ContainsDeserialize(expr.Left) || ContainsDeserialize(expr.Right)
	default:
		return false
	}
}

// StructuralComplexity is the node-count complexity metric of an
// expression, with sigma-proposition constants weighted by their own tree
// size.
func StructuralComplexity(expr Expr) uint64 {
	switch expr := expr.(type) {
	case *SigmaPropConstant:
		return sigma.StructuralSize(expr.Value)
	case *BinAnd:
		return 1 + StructuralComplexity(expr.Left) + StructuralComplexity(expr.Right)
	case *BinOr:
		return 1 + StructuralComplexity(expr.Left) + StructuralComplexity(expr.Right)
	default:
		return 1
	}
}

// IsSigmaShaped reports whether the expression can evaluate to a boolean or
// sigma-proposition value. The reduction pipeline rejects anything else as
// an internal error, a conforming front-end never produces it.
func IsSigmaShaped(expr Expr) bool {
	switch expr := expr.(type) {
	case *BoolConstant, *SigmaPropConstant:
		return true
	case *BinAnd:
		return IsSigmaShaped(expr.Left) && IsSigmaShaped(expr.Right)
	case *BinOr:
		return IsSigmaShaped(expr.Left) && IsSigmaShaped(expr.Right)
	default:
		return false
	}
}
