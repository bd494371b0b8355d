package exprs

import (
	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/model/externalapi"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/costs"
)

// Evaluator turns an expression into a cost estimate and a reduced value
// against a verification context. The reduction pipeline owns the budget;
// the evaluator only prices and computes. Front-ends with a richer
// expression language supply their own implementation covering their node
// kinds; the built-in one covers exactly the boundary nodes of this package.
type Evaluator interface {
	// EstimateCost returns the cost of reducing expr under ctx, before the
	// reduction is attempted.
	EstimateCost(expr Expr, ctx *externalapi.VerificationContext) (costs.CostDetails, error)

	// Reduce computes the sigma proposition expr reduces to under ctx.
	// Boolean results come back normalized to the trivial propositions.
	Reduce(expr Expr, ctx *externalapi.VerificationContext) (sigma.SigmaBoolean, error)
}

// Per-node prices of the built-in evaluator.
var (
	constantCost   = costs.FixedCost{Cost: 20}
	connectiveCost = costs.FixedCost{Cost: 40}
)

type defaultEvaluator struct{}

// NewEvaluator returns the built-in evaluator for the boundary node kinds.
func NewEvaluator() Evaluator {
	return &defaultEvaluator{}
}

func (e *defaultEvaluator) EstimateCost(expr Expr, _ *externalapi.VerificationContext) (costs.CostDetails, error) {
	var items []costs.CostItem
	err := collectCostItems(expr, &items)
	if err != nil {
		return nil, err
	}
	return costs.TracedCost{Items: items}, nil
}

func collectCostItems(expr Expr, items *[]costs.CostItem) error {
	switch expr := expr.(type) {
	case *BoolConstant:
		*items = append(*items, costs.FixedCostItem{Name: "BoolConstant", ItemCost: constantCost})
		return nil
	case *SigmaPropConstant:
		*items = append(*items, costs.SeqCostItem{
			Name: "SigmaPropConstant",
			ItemCost: costs.PerItemCost{
				BaseCost:     constantCost.Cost,
				PerChunkCost: constantCost.Cost,
				ChunkSize:    1,
			},
			NItems: sigma.StructuralSize(expr.Value),
		})
		return nil
	case *BinAnd:
		return collectConnectiveCostItems("BinAnd", expr.Left, expr.Right, items)
	case *BinOr:
		return collectConnectiveCostItems("BinOr", expr.Left, expr.Right, items)
	default:
		return errors.Wrapf(ruleerrors.ErrInterpreter,
			"can't price expression type %T", expr)
	}
}

func collectConnectiveCostItems(name string, left, right Expr, items *[]costs.CostItem) error {
	err := collectCostItems(left, items)
	if err != nil {
		return err
	}
	err = collectCostItems(right, items)
	if err != nil {
		return err
	}
	*items = append(*items, costs.FixedCostItem{Name: name, ItemCost: connectiveCost})
	return nil
}

func (e *defaultEvaluator) Reduce(expr Expr, ctx *externalapi.VerificationContext) (sigma.SigmaBoolean, error) {
	switch expr := expr.(type) {
	case *BoolConstant:
		return sigma.BoolToProp(expr.Value), nil
	case *SigmaPropConstant:
		return expr.Value, nil
	case *BinAnd:
		left, right, err := e.reduceOperands(expr.Left, expr.Right, ctx)
		if err != nil {
			return nil, err
		}
		return sigma.NewAnd(left, right), nil
	case *BinOr:
		left, right, err := e.reduceOperands(expr.Left, expr.Right, ctx)
		if err != nil {
			return nil, err
		}
		return sigma.NewOr(left, right), nil
	case *DeserializeContext:
		// Substitution should have resolved or rejected this before
		// evaluation was attempted.
		return nil, errors.Wrapf(ruleerrors.ErrInterpreter,
			"unresolved sub-script placeholder for context variable %d", expr.VarID)
	default:
		return nil, errors.Wrapf(ruleerrors.ErrInterpreter,
			"can't evaluate expression type %T", expr)
	}
}

func (e *defaultEvaluator) reduceOperands(left, right Expr, ctx *externalapi.VerificationContext) (sigma.SigmaBoolean, sigma.SigmaBoolean, error) {
	leftValue, err := e.Reduce(left, ctx)
	if err != nil {
		return nil, nil, err
	}
	rightValue, err := e.Reduce(right, ctx)
	if err != nil {
		return nil, nil, err
	}
	return leftValue, rightValue, nil
}
