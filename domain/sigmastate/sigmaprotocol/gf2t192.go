package sigmaprotocol

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Arithmetic in GF(2^192), the field challenges live in for threshold
// challenge reconstruction. Elements are polynomials over GF(2) modulo the
// reduction polynomial x^192 + x^7 + x^2 + x + 1.

// fieldElement is a GF(2^192) element as three 64-bit words, least
// significant word first.
type fieldElement [3]uint64

// lowReductionTerms is x^7 + x^2 + x + 1, the low part of the reduction
// polynomial, folded into the low word when a shift carries out of bit 191.
const lowReductionTerms = 0x87

var fieldZero = fieldElement{}
var fieldOne = fieldElement{1, 0, 0}

// fieldElementFromBytes maps a 24-byte big-endian challenge to a field
// element.
func fieldElementFromBytes(b [challengeSize]byte) fieldElement {
	return fieldElement{
		binary.BigEndian.Uint64(b[16:24]),
		binary.BigEndian.Uint64(b[8:16]),
		binary.BigEndian.Uint64(b[0:8]),
	}
}

// fieldElementFromByte lifts a small integer (an interpolation x-coordinate)
// into the field.
func fieldElementFromByte(b byte) fieldElement {
	return fieldElement{uint64(b), 0, 0}
}

// bytes returns the element's 24-byte big-endian encoding.
func (e fieldElement) bytes() [challengeSize]byte {
	var b [challengeSize]byte
	binary.BigEndian.PutUint64(b[0:8], e[2])
	binary.BigEndian.PutUint64(b[8:16], e[1])
	binary.BigEndian.PutUint64(b[16:24], e[0])
	return b
}

func (e fieldElement) isZero() bool {
	return e == fieldZero
}

// add is addition in GF(2^192), a plain xor. Subtraction is the same
// operation.
func (e fieldElement) add(other fieldElement) fieldElement {
	return fieldElement{e[0] ^ other[0], e[1] ^ other[1], e[2] ^ other[2]}
}

// shiftLeft multiplies by x, reducing modulo the field polynomial.
func (e fieldElement) shiftLeft() fieldElement {
	carry := e[2] >> 63
	shifted := fieldElement{
		e[0] << 1,
		e[1]<<1 | e[0]>>63,
		e[2]<<1 | e[1]>>63,
	}
	if carry != 0 {
		shifted[0] ^= lowReductionTerms
	}
	return shifted
}

// mul is carry-less multiplication reduced modulo the field polynomial.
func (e fieldElement) mul(other fieldElement) fieldElement {
	result := fieldZero
	shifted := e
	for word := 0; word < 3; word++ {
		bits := other[word]
		for bit := 0; bit < 64; bit++ {
			if bits&1 != 0 {
				result = result.add(shifted)
			}
			bits >>= 1
			shifted = shifted.shiftLeft()
		}
	}
	return result
}

// inverse computes the multiplicative inverse via Fermat's little theorem,
// e^(2^192 - 2). The zero element has no inverse.
func (e fieldElement) inverse() (fieldElement, error) {
	if e.isZero() {
		return fieldZero, errors.New("the zero field element has no inverse")
	}
	// The exponent 2^192-2 is 191 one bits followed by a zero bit. Process it
	// MSB first with square-and-multiply.
	result := fieldOne
	for i := 191; i >= 0; i-- {
		result = result.mul(result)
		if i != 0 {
			result = result.mul(e)
		}
	}
	return result, nil
}

// gf2Poly is a polynomial over GF(2^192), coefficients stored constant term
// first.
type gf2Poly struct {
	coefficients []fieldElement
}

// degree returns the polynomial's nominal degree (leading zero coefficients
// are not stripped; proofs fix the coefficient count by shape).
func (p *gf2Poly) degree() int {
	return len(p.coefficients) - 1
}

// evaluate computes p at a small-integer x-coordinate by Horner's rule.
func (p *gf2Poly) evaluate(x byte) fieldElement {
	xElement := fieldElementFromByte(x)
	result := fieldZero
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		result = result.mul(xElement).add(p.coefficients[i])
	}
	return result
}

// interpolationPoint is one (x, y) constraint for interpolate.
type interpolationPoint struct {
	x byte
	y fieldElement
}

// interpolate returns the unique polynomial of degree len(points)-1 passing
// through all points (Lagrange). The x-coordinates must be distinct.
func interpolate(points []interpolationPoint) (*gf2Poly, error) {
	if len(points) == 0 {
		return nil, errors.New("interpolation needs at least one point")
	}
	result := make([]fieldElement, len(points))
	for i, point := range points {
		// Build the Lagrange basis polynomial for point i, scaled by y_i.
		basis := []fieldElement{fieldOne}
		denominator := fieldOne
		for j, other := range points {
			if j == i {
				continue
			}
			if other.x == point.x {
				return nil, errors.Errorf("duplicate interpolation x-coordinate %d", point.x)
			}
			basis = mulLinear(basis, fieldElementFromByte(other.x))
			denominator = denominator.mul(fieldElementFromByte(point.x).add(fieldElementFromByte(other.x)))
		}
		denominatorInverse, err := denominator.inverse()
		if err != nil {
			return nil, err
		}
		scale := point.y.mul(denominatorInverse)
		for k := range basis {
			result[k] = result[k].add(basis[k].mul(scale))
		}
	}
	return &gf2Poly{coefficients: result}, nil
}

// mulLinear multiplies the polynomial by (X + root). In characteristic 2,
// (X + root) and (X - root) coincide.
func mulLinear(p []fieldElement, root fieldElement) []fieldElement {
	result := make([]fieldElement, len(p)+1)
	for i, coefficient := range p {
		result[i] = result[i].add(coefficient.mul(root))
		result[i+1] = result[i+1].add(coefficient)
	}
	return result
}
