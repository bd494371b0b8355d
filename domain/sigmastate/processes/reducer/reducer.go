package reducer

import (
	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/exprs"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/model/externalapi"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/costs"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/validation"
	"github.com/thub1271/sigmastate-interpreter/infrastructure/logger"
)

// Cost kinds charged by the pipeline itself, on top of whatever the
// evaluator prices.
var (
	// sigmaPropConstantCost prices the fast path for scripts that are
	// already a bare sigma-proposition constant, per proposition node.
	sigmaPropConstantCost = costs.PerItemCost{BaseCost: 10, PerChunkCost: 10, ChunkSize: 1}

	// deserializedScriptCost prices splicing in a sub-script from a context
	// variable, per structural node of the deserialized expression.
	deserializedScriptCost = costs.PerItemCost{BaseCost: 100, PerChunkCost: 50, ChunkSize: 1}
)

// ReductionResult is a finished reduction: the sigma proposition the script
// reduced to and the total accumulated cost, including everything the caller
// had already spent.
type ReductionResult struct {
	Value sigma.SigmaBoolean
	Cost  uint64
}

// Reducer runs the cost-metered reduction pipeline that turns a parsed
// script container into a sigma proposition. A reducer holds no per-call
// state beyond its cache, so one instance serves concurrent verifications.
type Reducer struct {
	evaluator exprs.Evaluator
	cache     *reductionCache
}

// New creates a reducer around the given evaluator. cacheCapacity bounds the
// finished-reduction cache; zero disables caching.
func New(evaluator exprs.Evaluator, cacheCapacity int) *Reducer {
	reducer := &Reducer{evaluator: evaluator}
	if cacheCapacity > 0 {
		reducer.cache = newReductionCache(cacheCapacity)
	}
	return reducer
}

// FullReduction reduces a script container to a sigma proposition under the
// given context, charging against the context's cost budget on top of
// currentCost. Soft-fork signals raised inside the pipeline's tolerant
// scopes come back as a trivially true result, never as an error; a blown
// budget is always a hard failure.
func (r *Reducer) FullReduction(tree *exprs.ErgoTree, ctx *externalapi.VerificationContext,
	currentCost uint64) (*ReductionResult, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "FullReduction")
	defer onEnd()

	// Propositionize. A recorded parse failure is tolerated only when the
	// registry's configuration covers it.
	if tree.ParseError != nil {
		if ctx.Registry.SoftForkAccepts(tree.ParseError) {
			log.Debugf("script parse failure tolerated as a soft fork: %s", tree.ParseError)
			return &ReductionResult{Value: sigma.TrivialTrueProp, Cost: currentCost}, nil
		}
		return nil, tree.ParseError
	}
	root, err := tree.Proposition()
	if err != nil {
		return nil, err
	}

	// A bare sigma-proposition constant needs no evaluation, only a fixed
	// charge per proposition node.
	if constant, ok := root.(*exprs.SigmaPropConstant); ok {
		cost, err := costs.AddCostChecked(currentCost,
			sigmaPropConstantCost.Cost(sigma.StructuralSize(constant.Value)), ctx.CostLimit)
		if err != nil {
			return nil, err
		}
		return &ReductionResult{Value: constant.Value, Cost: cost}, nil
	}

	if r.cache != nil && !exprs.ContainsDeserialize(root) {
		return r.reduceCached(tree, root, ctx, currentCost)
	}
	return r.reduce(root, ctx, currentCost)
}

// reduceCached serves deserialize-free scripts out of the finished-reduction
// cache. Without embedded sub-scripts the reduction depends only on the
// script bytes and the registry configuration, so the cached value is valid
// for every context; only the budget check is re-run per call.
func (r *Reducer) reduceCached(tree *exprs.ErgoTree, root exprs.Expr,
	ctx *externalapi.VerificationContext, currentCost uint64) (*ReductionResult, error) {

	key := reductionCacheKey(tree.Bytes, ctx.Registry)
	if entry, ok := r.cache.get(key); ok {
		cost, err := costs.AddCostChecked(currentCost, entry.evalCost, ctx.CostLimit)
		if err != nil {
			return nil, err
		}
		return &ReductionResult{Value: entry.value, Cost: cost}, nil
	}

	result, err := r.reduce(root, ctx, currentCost)
	if err != nil {
		return nil, err
	}
	r.cache.add(key, cachedReduction{value: result.Value, evalCost: result.Cost - currentCost})
	return result, nil
}

// reduce runs the substitution, shape-validation and evaluation steps.
func (r *Reducer) reduce(root exprs.Expr, ctx *externalapi.VerificationContext,
	currentCost uint64) (*ReductionResult, error) {

	// Deserialize substitution runs in a tolerant scope: a soft-fork signal
	// from an embedded sub-script collapses the whole reduction to trivially
	// true. A blown budget inside the scope stays fatal.
	substituted, cost, err := r.substituteDeserialize(root, ctx, currentCost)
	if err != nil {
		tolerated, hardErr := validation.Absorb(err)
		if tolerated {
			log.Debugf("sub-script substitution tolerated as a soft fork: %s", err)
			return &ReductionResult{Value: sigma.TrivialTrueProp, Cost: cost}, nil
		}
		return nil, hardErr
	}

	// The substituted script must be boolean or sigma-proposition shaped.
	// This check runs outside any tolerant scope, so a non-enabled rule
	// status here is a configuration defect rather than a fork to tolerate.
	err = ctx.Registry.Validate(validation.CheckDeserializedScriptIsSigmaProp,
		func() bool { return exprs.IsSigmaShaped(substituted) },
		func() error {
			return errors.Wrap(ruleerrors.ErrInterpreter,
				"the script doesn't reduce to a boolean or sigma proposition")
		})
	if err != nil {
		if validation.IsSoftForkSignal(err) {
			return nil, errors.Wrap(ruleerrors.ErrInterpreter, err.Error())
		}
		return nil, err
	}

	// Cost-checked evaluation, also tolerant.
	result, err := r.evaluate(substituted, ctx, cost)
	if err != nil {
		tolerated, hardErr := validation.Absorb(err)
		if tolerated {
			log.Debugf("script evaluation tolerated as a soft fork: %s", err)
			return &ReductionResult{Value: sigma.TrivialTrueProp, Cost: cost}, nil
		}
		return nil, hardErr
	}
	return result, nil
}

// substituteDeserialize resolves embedded sub-script placeholders bottom-up
// as a pure fold, threading the accumulated cost through instead of mutating
// shared state. The returned cost is valid even on error, it reflects
// everything charged before the failure.
func (r *Reducer) substituteDeserialize(root exprs.Expr, ctx *externalapi.VerificationContext,
	currentCost uint64) (exprs.Expr, uint64, error) {

	cost := currentCost
	substituted, err := exprs.Rewrite(root, func(expr exprs.Expr) (exprs.Expr, error) {
		placeholder, ok := expr.(*exprs.DeserializeContext)
		if !ok {
			return expr, nil
		}
		value, present := ctx.Extension[placeholder.VarID]
		if !present {
			// Left unresolved; the shape validation after this pass rejects
			// it unless a fork tolerates the whole script.
			return expr, nil
		}
		err := ctx.Registry.Validate(validation.CheckDeserializedScriptType,
			func() bool { return value.IsByteArray },
			func() error {
				return errors.Wrapf(ruleerrors.ErrScriptMalformed,
					"context variable %d is not byte-typed, can't splice it in as a sub-script",
					placeholder.VarID)
			})
		if err != nil {
			return nil, err
		}
		subScript, err := exprs.DeserializeExpr(value.Bytes, ctx.Registry)
		if err != nil {
			return nil, err
		}
		cost, err = costs.AddCostChecked(cost,
			deserializedScriptCost.Cost(exprs.StructuralComplexity(subScript)), ctx.CostLimit)
		if err != nil {
			return nil, err
		}
		err = ctx.Registry.Validate(validation.CheckDeserializedScriptType,
			func() bool { return exprs.IsSigmaShaped(subScript) },
			func() error {
				return errors.Wrapf(ruleerrors.ErrScriptMalformed,
					"the sub-script in context variable %d doesn't fit a boolean or sigma-proposition slot",
					placeholder.VarID)
			})
		if err != nil {
			return nil, err
		}
		return subScript, nil
	})
	if err != nil {
		return nil, cost, err
	}
	return substituted, cost, nil
}

// evaluate prices the expression, charges the budget, and computes the
// reduced proposition.
func (r *Reducer) evaluate(expr exprs.Expr, ctx *externalapi.VerificationContext,
	currentCost uint64) (*ReductionResult, error) {

	estimate, err := r.evaluator.EstimateCost(expr, ctx)
	if err != nil {
		return nil, err
	}
	cost, err := costs.AddCostChecked(currentCost, estimate.Total(), ctx.CostLimit)
	if err != nil {
		return nil, err
	}
	value, err := r.evaluator.Reduce(expr, ctx)
	if err != nil {
		return nil, err
	}
	log.Debugf("evaluation cost %d over %d trace items", estimate.Total(), len(estimate.Trace()))
	return &ReductionResult{Value: value, Cost: cost}, nil
}
