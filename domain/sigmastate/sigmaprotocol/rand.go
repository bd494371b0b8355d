package sigmaprotocol

import (
	"crypto/rand"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

// randomScalar samples a uniformly random non-zero scalar modulo the group
// order from the system's cryptographically secure source. Only the proving
// side ever calls this; verification is fully deterministic.
func randomScalar() (*secp256k1.ModNScalar, error) {
	var buf [32]byte
	scalar := new(secp256k1.ModNScalar)
	for {
		_, err := rand.Read(buf[:])
		if err != nil {
			return nil, errors.Wrap(err, "failed to read from the system randomness source")
		}
		overflow := scalar.SetBytes(&buf)
		if overflow == 0 && !scalar.IsZero() {
			return scalar, nil
		}
	}
}

// randomChallenge samples a uniformly random challenge, used for simulated
// branches.
func randomChallenge() (Challenge, error) {
	var challenge Challenge
	_, err := rand.Read(challenge[:])
	if err != nil {
		return challenge, errors.Wrap(err, "failed to read from the system randomness source")
	}
	return challenge, nil
}
