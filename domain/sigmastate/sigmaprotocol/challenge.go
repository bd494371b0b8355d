package sigmaprotocol

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/constants"
)

// challengeSize is the byte width of a challenge, 192 bits of soundness.
const challengeSize = constants.SoundnessBytes

// Challenge is a Fiat-Shamir challenge: the prefix of a transcript hash,
// also read as a GF(2^192) element for threshold reconstruction.
type Challenge [challengeSize]byte

// NewChallenge builds a challenge from a byte slice of exactly the challenge
// width.
func NewChallenge(b []byte) (Challenge, error) {
	var challenge Challenge
	if len(b) != challengeSize {
		return challenge, errors.Errorf("invalid challenge size. Want: %d, got: %d", challengeSize, len(b))
	}
	copy(challenge[:], b)
	return challenge, nil
}

// Xor combines two challenges, the OR-node splitting operation.
func (c Challenge) Xor(other Challenge) Challenge {
	var result Challenge
	for i := range c {
		result[i] = c[i] ^ other[i]
	}
	return result
}

// IsZero reports whether the challenge is all zero.
func (c Challenge) IsZero() bool {
	return c == Challenge{}
}

// fieldElement reads the challenge as a GF(2^192) element.
func (c Challenge) fieldElement() fieldElement {
	return fieldElementFromBytes(c)
}

// challengeFromFieldElement is the inverse of Challenge.fieldElement.
func challengeFromFieldElement(e fieldElement) Challenge {
	return e.bytes()
}

// scalar reads the challenge as an integer modulo the group order, the form
// used inside response equations. A 192-bit value can never overflow the
// 256-bit group order.
func (c Challenge) scalar() *secp256k1.ModNScalar {
	scalar := new(secp256k1.ModNScalar)
	scalar.SetByteSlice(c[:])
	return scalar
}
