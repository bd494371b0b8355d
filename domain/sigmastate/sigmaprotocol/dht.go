package sigmaprotocol

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
)

// Primitives of the Diffie-Hellman-tuple sigma protocol: a proof of
// knowledge of w with U = G^w and V = H^w. The shape is the discrete-log
// protocol run against two bases in lockstep with a shared nonce and
// response.

// dhtFirstMessage samples a fresh nonce r and returns it with the two
// commitments G^r and H^r.
func dhtFirstMessage(tuple *sigma.ProveDHTuple) (nonce *secp256k1.ModNScalar, commitmentA, commitmentB *sigma.GroupElement, err error) {
	nonce, err = randomScalar()
	if err != nil {
		return nil, nil, nil, err
	}
	return nonce, tuple.G.Exp(nonce), tuple.H.Exp(nonce), nil
}

// dhtSecondMessage computes the shared response z = r + e*w mod the group
// order.
func dhtSecondMessage(secret *secp256k1.ModNScalar, nonce *secp256k1.ModNScalar, challenge Challenge) *secp256k1.ModNScalar {
	return dlogSecondMessage(secret, nonce, challenge)
}

// dhtSimulate produces an accepting transcript for a tuple whose secret
// isn't known, for a fixed challenge.
func dhtSimulate(tuple *sigma.ProveDHTuple, challenge Challenge) (commitmentA, commitmentB *sigma.GroupElement, response *secp256k1.ModNScalar, err error) {
	response, err = randomScalar()
	if err != nil {
		return nil, nil, nil, err
	}
	commitmentA, commitmentB = dhtComputeCommitments(tuple, challenge, response)
	return commitmentA, commitmentB, response, nil
}

// dhtComputeCommitments recovers both commitments, a = G^z * U^(-e) and
// b = H^z * V^(-e), from a transcript's challenge and response.
func dhtComputeCommitments(tuple *sigma.ProveDHTuple, challenge Challenge, response *secp256k1.ModNScalar) (commitmentA, commitmentB *sigma.GroupElement) {
	challengeScalar := challenge.scalar()
	commitmentA = tuple.G.Exp(response).Mul(tuple.U.Exp(challengeScalar).Inverse())
	commitmentB = tuple.H.Exp(response).Mul(tuple.V.Exp(challengeScalar).Inverse())
	return commitmentA, commitmentB
}
