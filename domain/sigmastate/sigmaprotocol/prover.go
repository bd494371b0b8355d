package sigmaprotocol

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
)

// Prover produces non-interactive proofs for sigma propositions out of a
// bag of held secrets. Branches whose secrets aren't held are satisfied with
// simulated transcripts, so the proof reveals nothing about which secrets
// were real.
type Prover struct {
	secrets []PrivateInput
}

// NewProver returns a prover holding the given secrets.
func NewProver(secrets ...PrivateInput) *Prover {
	return &Prover{secrets: secrets}
}

// Prove builds a proof that the proposition holds for the given message.
// Fails when the held secrets can't satisfy the proposition.
func (p *Prover) Prove(proposition sigma.SigmaBoolean, message []byte) ([]byte, error) {
	if trivial, ok := proposition.(*sigma.TrivialProp); ok {
		if trivial.Value {
			return []byte{}, nil
		}
		return nil, errors.New("the trivially false proposition can't be proven")
	}

	root, err := p.buildProofTree(proposition)
	if err != nil {
		return nil, err
	}
	if !root.provable {
		return nil, errors.New("the held secrets can't satisfy the proposition")
	}
	markSimulated(root, false)
	err = generateCommitments(root)
	if err != nil {
		return nil, err
	}
	rootChallenge, err := rootChallenge(commitmentTree(root), message)
	if err != nil {
		return nil, err
	}
	err = distributeChallenges(root, rootChallenge)
	if err != nil {
		return nil, err
	}
	return serializeProof(root, rootChallenge), nil
}

// proofTreeNode is the prover's working view of one proposition node.
type proofTreeNode struct {
	proposition sigma.SigmaBoolean
	children    []*proofTreeNode

	provable  bool
	simulated bool

	// Leaf state.
	secret      PrivateInput
	nonce       *secp256k1.ModNScalar
	commitmentA *sigma.GroupElement
	commitmentB *sigma.GroupElement
	response    *secp256k1.ModNScalar

	// Simulated subtrees get their challenges before Fiat-Shamir, real ones
	// after.
	challenge    Challenge
	hasChallenge bool

	// Threshold state.
	polynomial *gf2Poly
}

// buildProofTree mirrors the proposition into prover nodes, attaches held
// secrets to their leaves and computes provability bottom-up.
func (p *Prover) buildProofTree(proposition sigma.SigmaBoolean) (*proofTreeNode, error) {
	node := &proofTreeNode{proposition: proposition}
	switch proposition := proposition.(type) {
	case *sigma.ProveDlog, *sigma.ProveDHTuple:
		node.secret = p.findSecret(proposition)
		node.provable = node.secret != nil
		return node, nil

	case *sigma.And:
		err := p.buildChildren(node, proposition.Children)
		if err != nil {
			return nil, err
		}
		node.provable = countProvable(node.children) == len(node.children)
		return node, nil

	case *sigma.Or:
		err := p.buildChildren(node, proposition.Children)
		if err != nil {
			return nil, err
		}
		node.provable = countProvable(node.children) >= 1
		return node, nil

	case *sigma.Threshold:
		err := p.buildChildren(node, proposition.Children)
		if err != nil {
			return nil, err
		}
		node.provable = countProvable(node.children) >= int(proposition.K)
		return node, nil

	default:
		return nil, errors.Errorf("no sigma protocol is defined for proposition type %T", proposition)
	}
}

func (p *Prover) buildChildren(node *proofTreeNode, children []sigma.SigmaBoolean) error {
	node.children = make([]*proofTreeNode, len(children))
	for i, child := range children {
		childNode, err := p.buildProofTree(child)
		if err != nil {
			return err
		}
		node.children[i] = childNode
	}
	return nil
}

func (p *Prover) findSecret(proposition sigma.SigmaBoolean) PrivateInput {
	for _, secret := range p.secrets {
		if sigma.Equal(secret.PublicImage(), proposition) {
			return secret
		}
	}
	return nil
}

func countProvable(children []*proofTreeNode) int {
	count := 0
	for _, child := range children {
		if child.provable {
			count++
		}
	}
	return count
}

// markSimulated decides, top-down, which subtrees run the real protocol and
// which get simulated transcripts. A simulated parent simulates all its
// children; a real OR proves exactly one provable child and a real
// k-out-of-n threshold proves exactly k.
func markSimulated(node *proofTreeNode, simulated bool) {
	node.simulated = simulated
	switch node.proposition.(type) {
	case *sigma.And:
		for _, child := range node.children {
			markSimulated(child, simulated)
		}
	case *sigma.Or:
		if simulated {
			for _, child := range node.children {
				markSimulated(child, true)
			}
			return
		}
		realPicked := false
		for _, child := range node.children {
			pickReal := !realPicked && child.provable
			markSimulated(child, !pickReal)
			realPicked = realPicked || pickReal
		}
	case *sigma.Threshold:
		if simulated {
			for _, child := range node.children {
				markSimulated(child, true)
			}
			return
		}
		remaining := int(node.proposition.(*sigma.Threshold).K)
		for _, child := range node.children {
			pickReal := remaining > 0 && child.provable
			markSimulated(child, !pickReal)
			if pickReal {
				remaining--
			}
		}
	}
}

// generateCommitments walks the tree generating first messages for real
// leaves and full simulated transcripts (under freshly drawn challenges) for
// simulated subtrees hanging off real connectives.
func generateCommitments(node *proofTreeNode) error {
	if node.simulated {
		return errors.Wrap(errProverInternal, "generateCommitments entered a simulated subtree without a challenge")
	}
	switch proposition := node.proposition.(type) {
	case *sigma.ProveDlog:
		nonce, commitment, err := dlogFirstMessage()
		if err != nil {
			return err
		}
		node.nonce, node.commitmentA = nonce, commitment
		return nil

	case *sigma.ProveDHTuple:
		nonce, commitmentA, commitmentB, err := dhtFirstMessage(proposition)
		if err != nil {
			return err
		}
		node.nonce, node.commitmentA, node.commitmentB = nonce, commitmentA, commitmentB
		return nil

	default:
		for _, child := range node.children {
			var err error
			if child.simulated {
				challenge, randErr := randomChallenge()
				if randErr != nil {
					return randErr
				}
				err = simulateSubtree(child, challenge)
			} else {
				err = generateCommitments(child)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
}

// simulateSubtree completes a whole simulated subtree for a fixed challenge:
// challenges are split down to the leaves per the connective rules and every
// leaf gets a simulated accepting transcript.
func simulateSubtree(node *proofTreeNode, challenge Challenge) error {
	node.challenge, node.hasChallenge = challenge, true
	switch proposition := node.proposition.(type) {
	case *sigma.ProveDlog:
		commitment, response, err := dlogSimulate(proposition.H, challenge)
		if err != nil {
			return err
		}
		node.commitmentA, node.response = commitment, response
		return nil

	case *sigma.ProveDHTuple:
		commitmentA, commitmentB, response, err := dhtSimulate(proposition, challenge)
		if err != nil {
			return err
		}
		node.commitmentA, node.commitmentB, node.response = commitmentA, commitmentB, response
		return nil

	case *sigma.And:
		for _, child := range node.children {
			err := simulateSubtree(child, challenge)
			if err != nil {
				return err
			}
		}
		return nil

	case *sigma.Or:
		rest := challenge
		for i, child := range node.children {
			childChallenge := rest
			if i < len(node.children)-1 {
				var err error
				childChallenge, err = randomChallenge()
				if err != nil {
					return err
				}
				rest = rest.Xor(childChallenge)
			}
			err := simulateSubtree(child, childChallenge)
			if err != nil {
				return err
			}
		}
		return nil

	case *sigma.Threshold:
		coefficients := make([]fieldElement, len(node.children)-int(proposition.K)+1)
		coefficients[0] = challenge.fieldElement()
		for i := 1; i < len(coefficients); i++ {
			coefficientChallenge, err := randomChallenge()
			if err != nil {
				return err
			}
			coefficients[i] = coefficientChallenge.fieldElement()
		}
		node.polynomial = &gf2Poly{coefficients: coefficients}
		for i, child := range node.children {
			err := simulateSubtree(child, challengeFromFieldElement(node.polynomial.evaluate(byte(i+1))))
			if err != nil {
				return err
			}
		}
		return nil

	default:
		return errors.Wrapf(errProverInternal, "can't simulate proposition type %T", proposition)
	}
}

// distributeChallenges pushes the Fiat-Shamir root challenge down the real
// part of the tree and computes the leaf responses. Simulated subtrees
// already carry consistent challenges and transcripts.
func distributeChallenges(node *proofTreeNode, challenge Challenge) error {
	if node.simulated {
		return errors.Wrap(errProverInternal, "distributeChallenges entered a simulated subtree")
	}
	node.challenge, node.hasChallenge = challenge, true
	switch proposition := node.proposition.(type) {
	case *sigma.ProveDlog:
		node.response = dlogSecondMessage(node.secret.secret(), node.nonce, challenge)
		return nil

	case *sigma.ProveDHTuple:
		node.response = dhtSecondMessage(node.secret.secret(), node.nonce, challenge)
		return nil

	case *sigma.And:
		for _, child := range node.children {
			err := distributeChallenges(child, challenge)
			if err != nil {
				return err
			}
		}
		return nil

	case *sigma.Or:
		realChallenge := challenge
		var realChild *proofTreeNode
		for _, child := range node.children {
			if child.simulated {
				realChallenge = realChallenge.Xor(child.challenge)
				continue
			}
			if realChild != nil {
				return errors.Wrap(errProverInternal, "an OR node has more than one real child")
			}
			realChild = child
		}
		if realChild == nil {
			return errors.Wrap(errProverInternal, "an OR node has no real child")
		}
		return distributeChallenges(realChild, realChallenge)

	case *sigma.Threshold:
		// The polynomial is pinned by the root challenge at zero and the
		// simulated children's already-drawn challenges at their indices.
		points := make([]interpolationPoint, 0, len(node.children)-int(proposition.K)+1)
		points = append(points, interpolationPoint{x: 0, y: challenge.fieldElement()})
		for i, child := range node.children {
			if child.simulated {
				points = append(points, interpolationPoint{x: byte(i + 1), y: child.challenge.fieldElement()})
			}
		}
		polynomial, err := interpolate(points)
		if err != nil {
			return err
		}
		node.polynomial = polynomial
		for i, child := range node.children {
			if child.simulated {
				continue
			}
			err := distributeChallenges(child, challengeFromFieldElement(polynomial.evaluate(byte(i+1))))
			if err != nil {
				return err
			}
		}
		return nil

	default:
		return errors.Wrapf(errProverInternal, "can't distribute a challenge over proposition type %T", proposition)
	}
}

// commitmentTree converts the prover tree into the unchecked form the
// Fiat-Shamir serializer consumes. Only propositions, structure and
// commitments matter for hashing.
func commitmentTree(node *proofTreeNode) UncheckedTree {
	switch proposition := node.proposition.(type) {
	case *sigma.ProveDlog:
		return &UncheckedSchnorr{Proposition: proposition, Commitment: node.commitmentA}
	case *sigma.ProveDHTuple:
		return &UncheckedDHTuple{Proposition: proposition, CommitmentA: node.commitmentA, CommitmentB: node.commitmentB}
	case *sigma.And:
		return &UncheckedAnd{Children: commitmentChildren(node.children)}
	case *sigma.Or:
		return &UncheckedOr{Children: commitmentChildren(node.children)}
	case *sigma.Threshold:
		return &UncheckedThreshold{K: proposition.K, Children: commitmentChildren(node.children)}
	default:
		return nil
	}
}

func commitmentChildren(children []*proofTreeNode) []UncheckedTree {
	result := make([]UncheckedTree, len(children))
	for i, child := range children {
		result[i] = commitmentTree(child)
	}
	return result
}

// serializeProof writes the compact wire form: root challenge, then per node
// only what a shape-directed parser can't recompute.
func serializeProof(root *proofTreeNode, rootChallenge Challenge) []byte {
	buf := append([]byte{}, rootChallenge[:]...)
	return appendProofNode(buf, root)
}

func appendProofNode(buf []byte, node *proofTreeNode) []byte {
	switch node.proposition.(type) {
	case *sigma.ProveDlog, *sigma.ProveDHTuple:
		responseBytes := node.response.Bytes()
		return append(buf, responseBytes[:]...)

	case *sigma.And:
		for _, child := range node.children {
			buf = appendProofNode(buf, child)
		}
		return buf

	case *sigma.Or:
		for i, child := range node.children {
			if i < len(node.children)-1 {
				buf = append(buf, child.challenge[:]...)
			}
			buf = appendProofNode(buf, child)
		}
		return buf

	case *sigma.Threshold:
		for _, coefficient := range node.polynomial.coefficients[1:] {
			coefficientBytes := coefficient.bytes()
			buf = append(buf, coefficientBytes[:]...)
		}
		for _, child := range node.children {
			buf = appendProofNode(buf, child)
		}
		return buf

	default:
		return buf
	}
}

var errProverInternal = errors.New("prover internal invariant violated")
