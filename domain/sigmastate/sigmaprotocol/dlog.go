package sigmaprotocol

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
)

// Primitives of the discrete-log sigma protocol: a three-move proof of
// knowledge of w with H = g^w.

// dlogFirstMessage samples a fresh nonce r and returns it with the
// commitment g^r.
func dlogFirstMessage() (nonce *secp256k1.ModNScalar, commitment *sigma.GroupElement, err error) {
	nonce, err = randomScalar()
	if err != nil {
		return nil, nil, err
	}
	return nonce, sigma.ExpGenerator(nonce), nil
}

// dlogSecondMessage computes the response z = r + e*w mod the group order.
func dlogSecondMessage(secret *secp256k1.ModNScalar, nonce *secp256k1.ModNScalar, challenge Challenge) *secp256k1.ModNScalar {
	response := new(secp256k1.ModNScalar).Set(challenge.scalar())
	response.Mul(secret)
	response.Add(nonce)
	return response
}

// dlogSimulate produces an accepting transcript for a public key whose
// secret isn't known, for a fixed challenge: sample a random response z and
// solve for the commitment a = g^z * H^(-e). The transcript distribution is
// identical to a real one.
func dlogSimulate(publicKey *sigma.GroupElement, challenge Challenge) (commitment *sigma.GroupElement, response *secp256k1.ModNScalar, err error) {
	response, err = randomScalar()
	if err != nil {
		return nil, nil, err
	}
	return dlogComputeCommitment(publicKey, challenge, response), response, nil
}

// dlogComputeCommitment recovers the commitment a = g^z * H^(-e) from a
// transcript's challenge and response. A transcript is accepting exactly
// when this recovers the prover's original commitment.
func dlogComputeCommitment(publicKey *sigma.GroupElement, challenge Challenge, response *secp256k1.ModNScalar) *sigma.GroupElement {
	return sigma.ExpGenerator(response).Mul(publicKey.Exp(challenge.scalar()).Inverse())
}
