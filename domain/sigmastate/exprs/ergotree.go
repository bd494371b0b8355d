package exprs

import (
	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/validation"
)

// Header byte layout: the low 3 bits carry the script version, bit 0x10 marks
// a tree whose constants are segregated into a pool in front of the root.
const (
	headerVersionMask             byte = 0x07
	headerConstantSegregationFlag byte = 0x10
)

// ErgoTree is the versioned container a guarding script ships in. A container
// always carries its raw bytes and its declared version; the root expression
// is present only when parsing succeeded, otherwise ParseError records why it
// didn't. A recorded parse failure is not a verification verdict by itself,
// the reduction pipeline decides whether the active validation configuration
// tolerates it.
type ErgoTree struct {
	Version             uint8
	SegregatedConstants bool
	Complexity          uint64
	Constants           []Expr
	Root                Expr
	ParseError          error
	Bytes               []byte
}

// ParseErgoTree parses a serialized script container. It never fails: parse
// errors are recorded on the returned tree instead, along with everything
// that could be recovered before the failure. Unknown opcodes inside go
// through the opcode registration rule, so a recorded failure may be a
// soft-fork signal rather than a hard one.
func ParseErgoTree(encoded []byte, registry *validation.Registry) *ErgoTree {
	tree := &ErgoTree{
		Bytes:      encoded,
		Complexity: uint64(len(encoded)),
	}
	if len(encoded) == 0 {
		tree.ParseError = errors.Wrap(ruleerrors.ErrScriptMalformed, "the script is empty")
		return tree
	}
	header := encoded[0]
	tree.Version = header & headerVersionMask
	tree.SegregatedConstants = header&headerConstantSegregationFlag != 0

	reader := &exprReader{buf: encoded, pos: 1}
	if tree.SegregatedConstants {
		constants, err := readConstantPool(reader, registry)
		if err != nil {
			tree.ParseError = err
			return tree
		}
		tree.Constants = constants
	}
	root, err := readExpr(reader, registry, 0)
	if err != nil {
		tree.ParseError = err
		return tree
	}
	if !reader.empty() {
		tree.ParseError = errors.Wrapf(ruleerrors.ErrScriptMalformed,
			"%d trailing bytes after a complete script", reader.remaining())
		return tree
	}
	tree.Root = root
	tree.Complexity = StructuralComplexity(root)
	return tree
}

func readConstantPool(reader *exprReader, registry *validation.Registry) ([]Expr, error) {
	count, err := reader.readByte()
	if err != nil {
		return nil, err
	}
	constants := make([]Expr, count)
	for i := range constants {
		constant, err := readExpr(reader, registry, 0)
		if err != nil {
			return nil, err
		}
		switch constant.(type) {
		case *BoolConstant, *SigmaPropConstant:
		default:
			return nil, errors.Wrapf(ruleerrors.ErrScriptMalformed,
				"constant pool entry %d is a %T, not a constant", i, constant)
		}
		constants[i] = constant
	}
	return constants, nil
}

// Proposition returns the root expression with every constant-pool
// placeholder spliced out. Calling it on a tree whose parse failed is a
// caller defect.
func (t *ErgoTree) Proposition() (Expr, error) {
	if t.Root == nil {
		return nil, errors.Wrap(ruleerrors.ErrInterpreter,
			"can't propositionize a script that didn't parse")
	}
	if !t.SegregatedConstants {
		return t.Root, nil
	}
	return Rewrite(t.Root, func(expr Expr) (Expr, error) {
		placeholder, ok := expr.(*ConstantPlaceholder)
		if !ok {
			return expr, nil
		}
		if int(placeholder.Index) >= len(t.Constants) {
			return nil, errors.Wrapf(ruleerrors.ErrScriptMalformed,
				"constant placeholder %d is out of range for a pool of %d",
				placeholder.Index, len(t.Constants))
		}
		return t.Constants[placeholder.Index], nil
	})
}

// SerializeErgoTree returns the canonical container encoding of a tree built
// in memory. It is the inverse of ParseErgoTree for trees without a recorded
// parse error.
func SerializeErgoTree(tree *ErgoTree) []byte {
	header := tree.Version & headerVersionMask
	if tree.SegregatedConstants {
		header |= headerConstantSegregationFlag
	}
	buf := []byte{header}
	if tree.SegregatedConstants {
		buf = append(buf, byte(len(tree.Constants)))
		for _, constant := range tree.Constants {
			buf = appendExpr(buf, constant)
		}
	}
	return appendExpr(buf, tree.Root)
}

// NewErgoTree builds a container around a root expression, with its canonical
// bytes and complexity filled in.
func NewErgoTree(version uint8, root Expr) *ErgoTree {
	tree := &ErgoTree{
		Version:    version,
		Root:       root,
		Complexity: StructuralComplexity(root),
	}
	tree.Bytes = SerializeErgoTree(tree)
	return tree
}
