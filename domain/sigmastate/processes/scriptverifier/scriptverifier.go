package scriptverifier

import (
	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/exprs"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/model/externalapi"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/processes/reducer"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigmaprotocol"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/constants"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/costs"
)

// Verifier is the top-level script verification entry point. A single
// verifier is safe for concurrent use; every call is a pure computation over
// its inputs, the only shared state is the reducer's cache.
type Verifier interface {
	// Verify checks whether proofBytes proves the script guarding a spend
	// under the given context and message. It returns the verdict together
	// with the total accumulated cost. An error means the input was invalid
	// in a way that makes it rejectable regardless of the proof; callers
	// must treat errors and a false verdict alike as rejection.
	Verify(tree *exprs.ErgoTree, ctx *externalapi.VerificationContext,
		proofBytes []byte, message []byte) (accepted bool, cost uint64, err error)

	// ReduceToCrypto runs only the reduction pipeline, without checking any
	// proof. Diagnostics and fee estimation use it.
	ReduceToCrypto(tree *exprs.ErgoTree, ctx *externalapi.VerificationContext) (*reducer.ReductionResult, error)
}

type verifier struct {
	reducer *reducer.Reducer
}

// New creates a verifier. cacheCapacity bounds the reducer's
// finished-reduction cache; zero disables it.
func New(evaluator exprs.Evaluator, cacheCapacity int) Verifier {
	return &verifier{reducer: reducer.New(evaluator, cacheCapacity)}
}

func (v *verifier) Verify(tree *exprs.ErgoTree, ctx *externalapi.VerificationContext,
	proofBytes []byte, message []byte) (bool, uint64, error) {

	// A network that activated a version beyond what this build understands
	// has forked past us; every script is accepted on trust. Block
	// candidates built by this node must never take this path, their
	// callers pass the maximum supported version as the activated one.
	if ctx.ActivatedVersion > constants.MaxSupportedScriptVersion {
		log.Warnf("activated script version %d is above the supported %d, accepting on trust",
			ctx.ActivatedVersion, constants.MaxSupportedScriptVersion)
		return true, ctx.InitCost, nil
	}

	if tree.Version > ctx.ActivatedVersion {
		return false, 0, errors.Wrapf(ruleerrors.ErrScriptVersionTooHigh,
			"the script declares version %d but the network activated %d",
			tree.Version, ctx.ActivatedVersion)
	}

	cost, err := costs.AddCostChecked(ctx.InitCost, tree.Complexity, ctx.CostLimit)
	if err != nil {
		return false, 0, err
	}

	result, err := v.reducer.FullReduction(tree, ctx, cost)
	if err != nil {
		return false, 0, err
	}

	switch {
	case sigma.IsTrivialTrue(result.Value):
		return true, result.Cost, nil
	case sigma.IsTrivialFalse(result.Value):
		log.Debugf("script reduced to the trivially false proposition")
		return false, result.Cost, nil
	default:
		accepted := sigmaprotocol.Verify(result.Value, message, proofBytes)
		if !accepted {
			log.Debugf("rejecting spend: %s", ruleerrors.ErrProofVerificationFailed)
		}
		return accepted, result.Cost, nil
	}
}

func (v *verifier) ReduceToCrypto(tree *exprs.ErgoTree,
	ctx *externalapi.VerificationContext) (*reducer.ReductionResult, error) {

	return v.reducer.FullReduction(tree, ctx, ctx.InitCost)
}
