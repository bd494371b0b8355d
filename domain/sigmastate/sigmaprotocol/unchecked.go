package sigmaprotocol

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/constants"
)

// UncheckedTree is the parsed proof transcript before commitments are
// recomputed and the root challenge is checked. Its shape mirrors the
// proposition it was parsed against.
type UncheckedTree interface {
	Challenge() Challenge
	isUncheckedTree()
}

// UncheckedSchnorr is a discrete-log leaf transcript.
type UncheckedSchnorr struct {
	Proposition    *sigma.ProveDlog
	ChallengeValue Challenge
	Response       *secp256k1.ModNScalar

	// Commitment is recomputed from the challenge and response during
	// verification, it is not part of the wire form.
	Commitment *sigma.GroupElement
}

func (n *UncheckedSchnorr) isUncheckedTree() {}

// Challenge returns the node's challenge
func (n *UncheckedSchnorr) Challenge() Challenge { return n.ChallengeValue }

// UncheckedDHTuple is a Diffie-Hellman-tuple leaf transcript.
type UncheckedDHTuple struct {
	Proposition    *sigma.ProveDHTuple
	ChallengeValue Challenge
	Response       *secp256k1.ModNScalar

	CommitmentA *sigma.GroupElement
	CommitmentB *sigma.GroupElement
}

func (n *UncheckedDHTuple) isUncheckedTree() {}

// Challenge returns the node's challenge
func (n *UncheckedDHTuple) Challenge() Challenge { return n.ChallengeValue }

// UncheckedAnd is a conjunction node; every child carries the parent's
// challenge.
type UncheckedAnd struct {
	ChallengeValue Challenge
	Children       []UncheckedTree
}

func (n *UncheckedAnd) isUncheckedTree() {}

// Challenge returns the node's challenge
func (n *UncheckedAnd) Challenge() Challenge { return n.ChallengeValue }

// UncheckedOr is a disjunction node; the children's challenges xor to the
// parent's.
type UncheckedOr struct {
	ChallengeValue Challenge
	Children       []UncheckedTree
}

func (n *UncheckedOr) isUncheckedTree() {}

// Challenge returns the node's challenge
func (n *UncheckedOr) Challenge() Challenge { return n.ChallengeValue }

// UncheckedThreshold is a k-out-of-n node; child i carries the challenge
// q(i+1) of a polynomial q with q(0) equal to the parent challenge.
type UncheckedThreshold struct {
	K              uint8
	ChallengeValue Challenge
	Polynomial     *gf2Poly
	Children       []UncheckedTree
}

func (n *UncheckedThreshold) isUncheckedTree() {}

// Challenge returns the node's challenge
func (n *UncheckedThreshold) Challenge() Challenge { return n.ChallengeValue }

// ParseProof parses raw proof bytes against the shape of the expected
// proposition. The wire form is compact: it carries only the root challenge,
// leaf responses and the minimum challenge data internal nodes can't
// recompute; everything else is derived from the proposition's shape.
func ParseProof(proposition sigma.SigmaBoolean, proofBytes []byte) (UncheckedTree, error) {
	reader := newProofReader(proofBytes)
	rootChallenge, err := reader.readChallenge()
	if err != nil {
		return nil, err
	}
	tree, err := readUncheckedNode(proposition, rootChallenge, reader)
	if err != nil {
		return nil, err
	}
	if !reader.empty() {
		return nil, errors.Wrapf(ruleerrors.ErrScriptMalformed,
			"%d trailing bytes after a complete proof", reader.remaining())
	}
	return tree, nil
}

func readUncheckedNode(proposition sigma.SigmaBoolean, challenge Challenge, reader *proofReader) (UncheckedTree, error) {
	switch proposition := proposition.(type) {
	case *sigma.ProveDlog:
		response, err := reader.readResponse()
		if err != nil {
			return nil, err
		}
		return &UncheckedSchnorr{Proposition: proposition, ChallengeValue: challenge, Response: response}, nil

	case *sigma.ProveDHTuple:
		response, err := reader.readResponse()
		if err != nil {
			return nil, err
		}
		return &UncheckedDHTuple{Proposition: proposition, ChallengeValue: challenge, Response: response}, nil

	case *sigma.And:
		children := make([]UncheckedTree, len(proposition.Children))
		for i, child := range proposition.Children {
			childNode, err := readUncheckedNode(child, challenge, reader)
			if err != nil {
				return nil, err
			}
			children[i] = childNode
		}
		return &UncheckedAnd{ChallengeValue: challenge, Children: children}, nil

	case *sigma.Or:
		children := make([]UncheckedTree, len(proposition.Children))
		lastChallenge := challenge
		for i, child := range proposition.Children {
			childChallenge := lastChallenge
			if i < len(proposition.Children)-1 {
				var err error
				childChallenge, err = reader.readChallenge()
				if err != nil {
					return nil, err
				}
				lastChallenge = lastChallenge.Xor(childChallenge)
			}
			childNode, err := readUncheckedNode(child, childChallenge, reader)
			if err != nil {
				return nil, err
			}
			children[i] = childNode
		}
		return &UncheckedOr{ChallengeValue: challenge, Children: children}, nil

	case *sigma.Threshold:
		coefficients := make([]fieldElement, len(proposition.Children)-int(proposition.K)+1)
		coefficients[0] = challenge.fieldElement()
		for i := 1; i < len(coefficients); i++ {
			coefficientChallenge, err := reader.readChallenge()
			if err != nil {
				return nil, err
			}
			coefficients[i] = coefficientChallenge.fieldElement()
		}
		polynomial := &gf2Poly{coefficients: coefficients}
		children := make([]UncheckedTree, len(proposition.Children))
		for i, child := range proposition.Children {
			childChallenge := challengeFromFieldElement(polynomial.evaluate(byte(i + 1)))
			childNode, err := readUncheckedNode(child, childChallenge, reader)
			if err != nil {
				return nil, err
			}
			children[i] = childNode
		}
		return &UncheckedThreshold{
			K:              proposition.K,
			ChallengeValue: challenge,
			Polynomial:     polynomial,
			Children:       children,
		}, nil

	case *sigma.TrivialProp:
		return nil, errors.Wrap(ruleerrors.ErrScriptMalformed,
			"trivial propositions take no proof")

	default:
		return nil, errors.Wrapf(ruleerrors.ErrInterpreter,
			"no sigma protocol is defined for proposition type %T", proposition)
	}
}

// computeCommitments recomputes every leaf's commitment from its challenge
// and response, in place. Internal nodes are untouched.
func computeCommitments(tree UncheckedTree) {
	switch node := tree.(type) {
	case *UncheckedSchnorr:
		node.Commitment = dlogComputeCommitment(node.Proposition.H, node.ChallengeValue, node.Response)
	case *UncheckedDHTuple:
		node.CommitmentA, node.CommitmentB = dhtComputeCommitments(node.Proposition, node.ChallengeValue, node.Response)
	case *UncheckedAnd:
		for _, child := range node.Children {
			computeCommitments(child)
		}
	case *UncheckedOr:
		for _, child := range node.Children {
			computeCommitments(child)
		}
	case *UncheckedThreshold:
		for _, child := range node.Children {
			computeCommitments(child)
		}
	}
}

type proofReader struct {
	buf []byte
	pos int
}

func newProofReader(buf []byte) *proofReader {
	return &proofReader{buf: buf}
}

func (r *proofReader) readChallenge() (Challenge, error) {
	var challenge Challenge
	if r.pos+challengeSize > len(r.buf) {
		return challenge, errors.Wrap(ruleerrors.ErrScriptMalformed, "proof is truncated inside a challenge")
	}
	copy(challenge[:], r.buf[r.pos:r.pos+challengeSize])
	r.pos += challengeSize
	return challenge, nil
}

func (r *proofReader) readResponse() (*secp256k1.ModNScalar, error) {
	if r.pos+constants.ResponseSize > len(r.buf) {
		return nil, errors.Wrap(ruleerrors.ErrScriptMalformed, "proof is truncated inside a response")
	}
	var responseBytes [constants.ResponseSize]byte
	copy(responseBytes[:], r.buf[r.pos:r.pos+constants.ResponseSize])
	r.pos += constants.ResponseSize
	response := new(secp256k1.ModNScalar)
	if overflow := response.SetBytes(&responseBytes); overflow != 0 {
		return nil, errors.Wrap(ruleerrors.ErrScriptMalformed, "response is not canonical modulo the group order")
	}
	return response, nil
}

func (r *proofReader) empty() bool {
	return r.pos == len(r.buf)
}

func (r *proofReader) remaining() int {
	return len(r.buf) - r.pos
}
