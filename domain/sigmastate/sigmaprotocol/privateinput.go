package sigmaprotocol

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
)

// PrivateInput is a secret sufficient to prove one leaf proposition.
type PrivateInput interface {
	PublicImage() sigma.SigmaBoolean
	secret() *secp256k1.ModNScalar
}

// DlogProverInput is knowledge of the discrete log w of a public key
// H = g^w.
type DlogProverInput struct {
	W           *secp256k1.ModNScalar
	publicImage *sigma.ProveDlog
}

// NewDlogProverInput generates a fresh random secret and its public image.
func NewDlogProverInput() (*DlogProverInput, error) {
	w, err := randomScalar()
	if err != nil {
		return nil, err
	}
	return DlogProverInputFromScalar(w), nil
}

// DlogProverInputFromScalar wraps an existing secret scalar.
func DlogProverInputFromScalar(w *secp256k1.ModNScalar) *DlogProverInput {
	return &DlogProverInput{
		W:           w,
		publicImage: &sigma.ProveDlog{H: sigma.ExpGenerator(w)},
	}
}

// PublicImage returns the ProveDlog statement this secret proves.
func (i *DlogProverInput) PublicImage() sigma.SigmaBoolean {
	return i.publicImage
}

func (i *DlogProverInput) secret() *secp256k1.ModNScalar {
	return i.W
}

// DHTupleProverInput is knowledge of w tying a Diffie-Hellman tuple
// together: U = G^w, V = H^w.
type DHTupleProverInput struct {
	W           *secp256k1.ModNScalar
	publicImage *sigma.ProveDHTuple
}

// NewDHTupleProverInput generates a fresh random secret for the given pair
// of bases and derives the full tuple.
func NewDHTupleProverInput(g, h *sigma.GroupElement) (*DHTupleProverInput, error) {
	w, err := randomScalar()
	if err != nil {
		return nil, err
	}
	return &DHTupleProverInput{
		W: w,
		publicImage: &sigma.ProveDHTuple{
			G: g,
			H: h,
			U: g.Exp(w),
			V: h.Exp(w),
		},
	}, nil
}

// PublicImage returns the ProveDHTuple statement this secret proves.
func (i *DHTupleProverInput) PublicImage() sigma.SigmaBoolean {
	return i.publicImage
}

func (i *DHTupleProverInput) secret() *secp256k1.ModNScalar {
	return i.W
}
