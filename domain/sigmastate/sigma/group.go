package sigma

import (
	"bytes"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/constants"
)

// GroupElement is a point on the prime-order group used by the sigma
// protocols. Group arithmetic is delegated to the underlying curve library;
// this type only fixes the encoding and the small API the protocols need.
// Elements are immutable, every operation returns a fresh element.
type GroupElement struct {
	point secp256k1.JacobianPoint
}

var infinityEncoding = make([]byte, constants.GroupElementSize)

// Generator returns the group's fixed generator.
func Generator() *GroupElement {
	one := new(secp256k1.ModNScalar).SetInt(1)
	result := &GroupElement{}
	secp256k1.ScalarBaseMultNonConst(one, &result.point)
	return result
}

// ExpGenerator returns generator^k.
func ExpGenerator(k *secp256k1.ModNScalar) *GroupElement {
	result := &GroupElement{}
	secp256k1.ScalarBaseMultNonConst(k, &result.point)
	return result
}

// DecodeGroupElement parses a compressed group element. The all-zero encoding
// decodes to the group identity.
func DecodeGroupElement(encoded []byte) (*GroupElement, error) {
	if len(encoded) != constants.GroupElementSize {
		return nil, errors.Errorf("invalid group element size. Want: %d, got: %d",
			constants.GroupElementSize, len(encoded))
	}
	if bytes.Equal(encoded, infinityEncoding) {
		return &GroupElement{}, nil
	}
	publicKey, err := secp256k1.ParsePubKey(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "invalid group element encoding")
	}
	result := &GroupElement{}
	publicKey.AsJacobian(&result.point)
	return result, nil
}

// IsIdentity reports whether the element is the group identity.
func (g *GroupElement) IsIdentity() bool {
	return (g.point.X.IsZero() && g.point.Y.IsZero()) || g.point.Z.IsZero()
}

// Encode returns the canonical 33-byte encoding: SEC compressed form for
// ordinary points, all zeros for the identity.
func (g *GroupElement) Encode() []byte {
	if g.IsIdentity() {
		encoded := make([]byte, constants.GroupElementSize)
		return encoded
	}
	affine := g.point
	affine.ToAffine()
	return secp256k1.NewPublicKey(&affine.X, &affine.Y).SerializeCompressed()
}

// Exp returns g^k.
func (g *GroupElement) Exp(k *secp256k1.ModNScalar) *GroupElement {
	if g.IsIdentity() || k.IsZero() {
		return &GroupElement{}
	}
	point := g.point
	result := &GroupElement{}
	secp256k1.ScalarMultNonConst(k, &point, &result.point)
	return result
}

// Mul returns the group operation g*other (point addition).
func (g *GroupElement) Mul(other *GroupElement) *GroupElement {
	if g.IsIdentity() {
		return &GroupElement{point: other.point}
	}
	if other.IsIdentity() {
		return &GroupElement{point: g.point}
	}
	p1 := g.point
	p2 := other.point
	result := &GroupElement{}
	secp256k1.AddNonConst(&p1, &p2, &result.point)
	return result
}

// Inverse returns the group inverse of g.
func (g *GroupElement) Inverse() *GroupElement {
	if g.IsIdentity() {
		return &GroupElement{}
	}
	result := &GroupElement{point: g.point}
	result.point.Y.Normalize()
	result.point.Y.Negate(1)
	result.point.Y.Normalize()
	return result
}

// Equal reports whether both elements are the same group point.
func (g *GroupElement) Equal(other *GroupElement) bool {
	if g == nil || other == nil {
		return g == other
	}
	return bytes.Equal(g.Encode(), other.Encode())
}
