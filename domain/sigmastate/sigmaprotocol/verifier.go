package sigmaprotocol

import (
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
)

// Verify checks a non-interactive proof against a sigma proposition and a
// message. Malformed proofs, shape mismatches and challenge inconsistencies
// are all ordinary verification failures, never errors: the only outcome is
// the verdict.
func Verify(proposition sigma.SigmaBoolean, message []byte, proofBytes []byte) bool {
	if trivial, ok := proposition.(*sigma.TrivialProp); ok {
		// A trivially true statement needs no proof; a trivially false one
		// admits none.
		return trivial.Value && len(proofBytes) == 0
	}

	tree, err := ParseProof(proposition, proofBytes)
	if err != nil {
		log.Debugf("Rejecting proof that failed to parse: %s", err)
		return false
	}
	computeCommitments(tree)
	expectedChallenge, err := rootChallenge(tree, message)
	if err != nil {
		log.Debugf("Rejecting proof whose transcript failed to hash: %s", err)
		return false
	}
	return expectedChallenge == tree.Challenge()
}
