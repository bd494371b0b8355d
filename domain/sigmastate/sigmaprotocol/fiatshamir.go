package sigmaprotocol

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/utils/hashes"
)

// Fiat-Shamir transform: the root challenge is the hash prefix of a
// canonical serialization of the commitment tree followed by the message.
// The serialization binds each leaf's proposition bytes and recomputed
// commitment plus every internal node's type and arity.

const (
	fiatShamirLeafPrefix     byte = 0x01
	fiatShamirInternalPrefix byte = 0x02
)

// rootChallenge hashes the commitment tree and the message into the
// challenge the proof's root must carry.
func rootChallenge(tree UncheckedTree, message []byte) (Challenge, error) {
	writer := hashes.NewFiatShamirHashWriter()
	err := writeFiatShamirTree(writer, tree)
	if err != nil {
		return Challenge{}, err
	}
	writer.InfallibleWrite(message)
	return NewChallenge(writer.Finalize().ByteSlice()[:challengeSize])
}

func writeFiatShamirTree(writer hashes.HashWriter, tree UncheckedTree) error {
	switch node := tree.(type) {
	case *UncheckedSchnorr:
		if node.Commitment == nil {
			return errors.Wrap(ruleerrors.ErrInterpreter, "a leaf commitment wasn't computed before hashing")
		}
		writeFiatShamirLeaf(writer, sigma.Serialize(node.Proposition), node.Commitment.Encode())
		return nil

	case *UncheckedDHTuple:
		if node.CommitmentA == nil || node.CommitmentB == nil {
			return errors.Wrap(ruleerrors.ErrInterpreter, "a leaf commitment wasn't computed before hashing")
		}
		commitments := append(node.CommitmentA.Encode(), node.CommitmentB.Encode()...)
		writeFiatShamirLeaf(writer, sigma.Serialize(node.Proposition), commitments)
		return nil

	case *UncheckedAnd:
		writeFiatShamirInternal(writer, sigma.OpAnd, 0, len(node.Children))
		return writeFiatShamirChildren(writer, node.Children)

	case *UncheckedOr:
		writeFiatShamirInternal(writer, sigma.OpOr, 0, len(node.Children))
		return writeFiatShamirChildren(writer, node.Children)

	case *UncheckedThreshold:
		writeFiatShamirInternal(writer, sigma.OpThreshold, node.K, len(node.Children))
		return writeFiatShamirChildren(writer, node.Children)

	default:
		return errors.Wrapf(ruleerrors.ErrInterpreter, "unknown unchecked tree node type %T", tree)
	}
}

func writeFiatShamirLeaf(writer hashes.HashWriter, propositionBytes, commitmentBytes []byte) {
	writer.InfallibleWrite([]byte{fiatShamirLeafPrefix})
	writeLengthPrefixed(writer, propositionBytes)
	writeLengthPrefixed(writer, commitmentBytes)
}

func writeFiatShamirInternal(writer hashes.HashWriter, opCode byte, k uint8, childCount int) {
	writer.InfallibleWrite([]byte{fiatShamirInternalPrefix, opCode})
	if opCode == sigma.OpThreshold {
		writer.InfallibleWrite([]byte{k})
	}
	writer.InfallibleWrite([]byte{byte(childCount)})
}

func writeFiatShamirChildren(writer hashes.HashWriter, children []UncheckedTree) error {
	for _, child := range children {
		err := writeFiatShamirTree(writer, child)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeLengthPrefixed(writer hashes.HashWriter, b []byte) {
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(b)))
	writer.InfallibleWrite(length[:])
	writer.InfallibleWrite(b)
}
