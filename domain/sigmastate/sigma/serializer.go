package sigma

import (
	"io"

	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/constants"
)

// maxTreeDepth bounds proposition nesting so a malicious encoding can't blow
// the stack during deserialization.
const maxTreeDepth = 64

// Serialize returns the canonical byte encoding of the proposition. The
// encoding is deterministic and self-delimiting; it is the form bound into
// Fiat-Shamir hashes.
func Serialize(proposition SigmaBoolean) []byte {
	return appendProposition(nil, proposition)
}

func appendProposition(buf []byte, proposition SigmaBoolean) []byte {
	buf = append(buf, proposition.OpCode())
	switch proposition := proposition.(type) {
	case *TrivialProp:
		// The opcode alone carries the value.
	case *ProveDlog:
		buf = append(buf, proposition.H.Encode()...)
	case *ProveDHTuple:
		buf = append(buf, proposition.G.Encode()...)
		buf = append(buf, proposition.H.Encode()...)
		buf = append(buf, proposition.U.Encode()...)
		buf = append(buf, proposition.V.Encode()...)
	case *And:
		buf = appendChildren(buf, proposition.Children)
	case *Or:
		buf = appendChildren(buf, proposition.Children)
	case *Threshold:
		buf = append(buf, proposition.K)
		buf = appendChildren(buf, proposition.Children)
	}
	return buf
}

func appendChildren(buf []byte, children []SigmaBoolean) []byte {
	buf = append(buf, byte(len(children)))
	for _, child := range children {
		buf = appendProposition(buf, child)
	}
	return buf
}

// Deserialize parses a canonically encoded proposition and requires the
// input to be fully consumed.
func Deserialize(encoded []byte) (SigmaBoolean, error) {
	proposition, consumed, err := DeserializePrefix(encoded)
	if err != nil {
		return nil, err
	}
	if consumed != len(encoded) {
		return nil, errors.Wrapf(ruleerrors.ErrScriptMalformed,
			"%d trailing bytes after a complete sigma proposition", len(encoded)-consumed)
	}
	return proposition, nil
}

// DeserializePrefix parses one proposition off the front of encoded and
// returns how many bytes it consumed, for embedding inside larger encodings.
func DeserializePrefix(encoded []byte) (SigmaBoolean, int, error) {
	reader := &sliceReader{buf: encoded}
	proposition, err := readProposition(reader, 0)
	if err != nil {
		return nil, 0, err
	}
	return proposition, reader.pos, nil
}

func readProposition(reader *sliceReader, depth int) (SigmaBoolean, error) {
	if depth > maxTreeDepth {
		return nil, errors.Wrapf(ruleerrors.ErrScriptMalformed,
			"sigma proposition is nested deeper than %d levels", maxTreeDepth)
	}
	opCode, err := reader.readByte()
	if err != nil {
		return nil, err
	}
	switch opCode {
	case OpTrivialFalse:
		return TrivialFalseProp, nil
	case OpTrivialTrue:
		return TrivialTrueProp, nil
	case OpProveDlog:
		h, err := readGroupElement(reader)
		if err != nil {
			return nil, err
		}
		return &ProveDlog{H: h}, nil
	case OpProveDHTuple:
		elements := make([]*GroupElement, 4)
		for i := range elements {
			elements[i], err = readGroupElement(reader)
			if err != nil {
				return nil, err
			}
		}
		return &ProveDHTuple{G: elements[0], H: elements[1], U: elements[2], V: elements[3]}, nil
	case OpAnd:
		children, err := readChildren(reader, depth)
		if err != nil {
			return nil, err
		}
		return &And{Children: children}, nil
	case OpOr:
		children, err := readChildren(reader, depth)
		if err != nil {
			return nil, err
		}
		return &Or{Children: children}, nil
	case OpThreshold:
		k, err := reader.readByte()
		if err != nil {
			return nil, err
		}
		children, err := readChildren(reader, depth)
		if err != nil {
			return nil, err
		}
		if int(k) < 1 || int(k) > len(children) {
			return nil, errors.Wrapf(ruleerrors.ErrScriptMalformed,
				"threshold %d is out of range for %d children", k, len(children))
		}
		return &Threshold{K: k, Children: children}, nil
	default:
		return nil, ruleerrors.NewErrUnknownOpCode(opCode)
	}
}

func readChildren(reader *sliceReader, depth int) ([]SigmaBoolean, error) {
	count, err := reader.readByte()
	if err != nil {
		return nil, err
	}
	if count < 2 {
		return nil, errors.Wrapf(ruleerrors.ErrScriptMalformed,
			"a connective needs at least 2 children, got %d", count)
	}
	children := make([]SigmaBoolean, count)
	for i := range children {
		children[i], err = readProposition(reader, depth+1)
		if err != nil {
			return nil, err
		}
	}
	return children, nil
}

func readGroupElement(reader *sliceReader) (*GroupElement, error) {
	encoded, err := reader.readBytes(constants.GroupElementSize)
	if err != nil {
		return nil, err
	}
	element, err := DecodeGroupElement(encoded)
	if err != nil {
		return nil, errors.Wrap(ruleerrors.ErrScriptMalformed, err.Error())
	}
	return element, nil
}

type sliceReader struct {
	buf []byte
	pos int
}

func (r *sliceReader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, errors.Wrap(ruleerrors.ErrScriptMalformed, io.ErrUnexpectedEOF.Error())
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *sliceReader) readBytes(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, errors.Wrap(ruleerrors.ErrScriptMalformed, io.ErrUnexpectedEOF.Error())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *sliceReader) empty() bool {
	return r.pos == len(r.buf)
}

func (r *sliceReader) remaining() int {
	return len(r.buf) - r.pos
}
